// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"net/http"

	"github.com/blinklabs-io/gavel/governance"
)

const (
	actorHeader = "X-Actor-Address"
	roleHeader  = "X-Actor-Role"
	roleAdmin   = "admin"
)

func actorFrom(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func statusForKind(kind governance.Kind) int {
	switch kind {
	case governance.KindValidation:
		return http.StatusBadRequest
	case governance.KindConflict:
		return http.StatusConflict
	case governance.KindStateInvariant:
		return http.StatusUnprocessableEntity
	case governance.KindNotFound:
		return http.StatusNotFound
	case governance.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError maps a command failure onto a response. Internal errors
// are logged and reported without detail.
func (a *API) writeEngineError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	var govErr *governance.Error
	if errors.As(err, &govErr) {
		writeError(w, statusForKind(govErr.Kind), govErr.Code, govErr.Message)
		return
	}
	a.logger.Error(
		"request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	writeError(
		w,
		http.StatusInternalServerError,
		"internal",
		"internal server error",
	)
}
