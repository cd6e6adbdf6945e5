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

package models

import "time"

// IdempotencyRecord is the recorded response for one (actor, key) pair
type IdempotencyRecord struct {
	CreatedAt   time.Time `json:"createdAt"`
	Actor       string    `json:"actor"`
	Key         string    `json:"key"`
	RequestHash string    `json:"requestHash"`
	Body        []byte    `json:"body"`
	StatusCode  int       `json:"statusCode"`
}
