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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gavel/governance"
	"github.com/blinklabs-io/gavel/governance/era"
)

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

//nolint:unparam
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// statusWriter remembers the response code for the request metric
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (a *API) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		a.metrics.requestsTotal.WithLabelValues(
			route,
			strconv.Itoa(sw.status),
		).Inc()
	}
}

// query registers a read that needs no actor
func (a *API) query(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, a.instrument(pattern, h))
}

// command registers a mutation on behalf of the authenticated actor
func (a *API) command(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, a.instrument(pattern, requireActor(a.withIdempotency(h))))
}

// admin registers a mutation reserved for operators
func (a *API) admin(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, a.instrument(pattern, requireActor(requireAdmin(a.withIdempotency(h)))))
}

func requireActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if actorFrom(r) == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated",
				"missing "+actorHeader+" header")
			return
		}
		next(w, r)
	}
}

func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(roleHeader) != roleAdmin {
			writeError(w, http.StatusForbidden, "forbidden",
				"command requires the admin role")
			return
		}
		next(w, r)
	}
}

// decodeBody reads a JSON request. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_argument",
			"malformed request body: "+err.Error())
		return false
	}
	return true
}

func (a *API) handleHealth(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, err := a.engine.CurrentEra(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Healthy: true})
}

func (a *API) handleNotFound(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeError(w, http.StatusNotFound, "not_found", "the requested resource does not exist")
}

func (a *API) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req governance.CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	proposal, err := a.engine.CreateProposal(r.Context(), actorFrom(r), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func (a *API) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := a.engine.SubmitProposal(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (a *API) handleListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := a.engine.ListProposals(r.Context(), r.URL.Query().Get("stage"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (a *API) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := a.engine.GetProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (a *API) handlePoolStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.engine.PoolStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleChamberStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.engine.ChamberStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handlePoolVote(w http.ResponseWriter, r *http.Request) {
	var req governance.PoolVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := a.engine.PoolVote(r.Context(), actorFrom(r), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleChamberVote(w http.ResponseWriter, r *http.Request) {
	var req governance.ChamberVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := a.engine.ChamberVote(r.Context(), actorFrom(r), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleVetoVote(w http.ResponseWriter, r *http.Request) {
	var req governance.VetoVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := a.engine.VetoVote(r.Context(), actorFrom(r), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleVetoCouncil(w http.ResponseWriter, r *http.Request) {
	council, err := a.engine.ComputeVetoCouncil(r.Context())
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, council)
}

func (a *API) handleSetDelegation(w http.ResponseWriter, r *http.Request) {
	var req governance.SetDelegationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	delegation, err := a.engine.SetDelegation(r.Context(), actorFrom(r), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, delegation)
}

func (a *API) handleClearDelegation(w http.ResponseWriter, r *http.Request) {
	var req ClearDelegationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cleared, err := a.engine.ClearDelegation(r.Context(), actorFrom(r), req.ChamberID)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearDelegationResponse{
		ChamberID: req.ChamberID,
		Cleared:   cleared,
	})
}

func (a *API) handleDelegations(w http.ResponseWriter, r *http.Request) {
	delegations, err := a.engine.Delegations(r.Context(), r.PathValue("chamberId"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, delegations)
}

// handleDelegationWeights accepts a comma separated exclude list of
// addresses that voted directly
func (a *API) handleDelegationWeights(w http.ResponseWriter, r *http.Request) {
	chamberID := r.PathValue("chamberId")
	var excluded []string
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		excluded = strings.Split(raw, ",")
	}
	weights, err := a.engine.DelegationWeights(r.Context(), chamberID, excluded)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DelegationWeightsResponse{
		Weights:   weights,
		ChamberID: chamberID,
	})
}

func (a *API) handleDelegationLog(w http.ResponseWriter, r *http.Request) {
	entries, err := a.engine.DelegationLog(r.Context(), r.PathValue("chamberId"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleAdvanceEra(w http.ResponseWriter, r *http.Request) {
	var req AdvanceEraRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := a.engine.AdvanceEra(r.Context(), req.ExpectedFrom)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleRollupEra(w http.ResponseWriter, r *http.Request) {
	var req RollupEraRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := a.engine.RollupEra(r.Context(), req.Era)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleClock(w http.ResponseWriter, r *http.Request) {
	status, err := a.engine.CurrentEra(r.Context())
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleCreateChamber(w http.ResponseWriter, r *http.Request) {
	var req governance.CreateChamberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	chamber, err := a.engine.CreateChamber(r.Context(), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, chamber)
}

func (a *API) handleDissolveChamber(w http.ResponseWriter, r *http.Request) {
	chamber, err := a.engine.DissolveChamber(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chamber)
}

func (a *API) handleChambers(w http.ResponseWriter, r *http.Request) {
	chambers, err := a.engine.Chambers(r.Context())
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chambers)
}

func (a *API) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req RecordActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := era.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	counted, err := a.engine.RecordActivity(r.Context(), req.Address, category)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordActivityResponse{
		Address:  req.Address,
		Category: category.String(),
		Counted:  counted,
	})
}

func (a *API) handleAwardMerit(w http.ResponseWriter, r *http.Request) {
	var req governance.AwardMeritRequest
	if !decodeBody(w, r, &req) {
		return
	}
	award, err := a.engine.AwardMerit(r.Context(), req)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, award)
}

func (a *API) handleMeritTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := a.engine.MeritTotals(r.Context())
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
