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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel/api"
	"github.com/blinklabs-io/gavel/clock"
	"github.com/blinklabs-io/gavel/governance"
	gtestutil "github.com/blinklabs-io/gavel/internal/test/testutil"
)

type testServer struct {
	api      *api.API
	handler  http.Handler
	engine   *governance.Engine
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := gtestutil.OpenDatabase(t, "memory")
	params := governance.DefaultParams()
	params.PoolAttentionQuorum = 0.01
	params.PoolUpvoteFraction = 0.01
	params.GenesisActiveGovernors = 100
	engine, err := governance.NewEngine(governance.EngineConfig{
		Database: db,
		Clock:    clock.NewManualClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		Params:   params,
	})
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	srv, err := api.New(api.Config{PromRegistry: registry}, engine, db, nil)
	require.NoError(t, err)
	return &testServer{
		api:      srv,
		handler:  srv.Handler(),
		engine:   engine,
		registry: registry,
	}
}

type call struct {
	headers map[string]string
	body    any
	method  string
	path    string
	actor   string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	if c.actor != "" {
		req.Header.Set("X-Actor-Address", c.actor)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Code, resp.StatusCode)
	return resp
}

func (s *testServer) createProposal(t *testing.T, id string) {
	t.Helper()
	rec := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/proposals",
		actor:  "author",
		body:   governance.CreateProposalRequest{ID: id, Title: "title"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/proposals/" + id + "/submit",
		actor:  "author",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Healthy)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/api/v1/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}

func TestProposalFlow(t *testing.T) {
	s := newTestServer(t)
	s.createProposal(t, "p1")

	rec := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/pool/vote",
		actor:  "voter",
		body:   governance.PoolVoteRequest{ProposalID: "p1", Direction: "up"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status governance.PoolStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, uint64(1), status.Counts.Upvotes)
	assert.Equal(t, "vote", status.Stage)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/proposals/p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"vote"`)

	rec = s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/chamber/vote",
		actor:  "voter",
		body:   governance.ChamberVoteRequest{ProposalID: "p1", Choice: "yes"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/proposals/p1/chamber"})
	require.Equal(t, http.StatusOK, rec.Code)
	var chamber governance.ChamberStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chamber))
	assert.Equal(t, uint64(1), chamber.Counts.Yes)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/proposals?stage=vote"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p1"`)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	s.createProposal(t, "p1")
	testDefs := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{
			name:   "missing actor",
			call:   call{method: http.MethodPost, path: "/api/v1/pool/vote"},
			status: http.StatusUnauthorized,
			code:   "unauthenticated",
		},
		{
			name: "validation",
			call: call{
				method: http.MethodPost,
				path:   "/api/v1/pool/vote",
				actor:  "voter",
				body:   governance.PoolVoteRequest{ProposalID: "p1", Direction: "sideways"},
			},
			status: http.StatusBadRequest,
			code:   "invalid_argument",
		},
		{
			name: "unknown field",
			call: call{
				method: http.MethodPost,
				path:   "/api/v1/pool/vote",
				actor:  "voter",
				body:   map[string]string{"proposal": "p1"},
			},
			status: http.StatusBadRequest,
			code:   "invalid_argument",
		},
		{
			name:   "not found",
			call:   call{method: http.MethodGet, path: "/api/v1/proposals/missing"},
			status: http.StatusNotFound,
			code:   "proposal_not_found",
		},
		{
			name: "conflict",
			call: call{
				method: http.MethodPost,
				path:   "/api/v1/chamber/vote",
				actor:  "voter",
				body:   governance.ChamberVoteRequest{ProposalID: "p1", Choice: "yes"},
			},
			status: http.StatusConflict,
			code:   "stage_conflict",
		},
		{
			name: "forbidden",
			call: call{
				method: http.MethodPost,
				path:   "/api/v1/proposals/p1/submit",
				actor:  "mallory",
			},
			status: http.StatusForbidden,
			code:   "forbidden",
		},
		{
			name: "state invariant",
			call: call{
				method: http.MethodPost,
				path:   "/api/v1/chambers/general/dissolve",
				actor:  "operator",
				headers: map[string]string{
					"X-Actor-Role": "admin",
				},
			},
			status: http.StatusUnprocessableEntity,
			code:   "chamber_protected",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			rec := s.do(t, testDef.call)
			require.Equal(t, testDef.status, rec.Code, rec.Body.String())
			assert.Equal(t, testDef.code, decodeError(t, rec).Error)
		})
	}
}

func TestAdminRole(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/chambers",
		actor:  "alice",
		body:   governance.CreateChamberRequest{ID: "infra", Title: "Infra"},
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/chambers",
		actor:   "operator",
		headers: map[string]string{"X-Actor-Role": "admin"},
		body:    governance.CreateChamberRequest{ID: "infra", Title: "Infra"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/chambers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"infra"`)
}

func TestAdvanceEraAndClock(t *testing.T) {
	s := newTestServer(t)
	admin := map[string]string{"X-Actor-Role": "admin"}
	rec := s.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/activity",
		actor:   "operator",
		headers: admin,
		body:    api.RecordActivityRequest{Address: "alice", Category: "court_action"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"counted":true`)

	rec = s.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/activity",
		actor:   "operator",
		headers: admin,
		body:    api.RecordActivityRequest{Address: "alice", Category: "bribe"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	from := uint64(0)
	rec = s.do(t, call{
		method:  http.MethodPost,
		path:    "/api/v1/clock/advance-era",
		actor:   "operator",
		headers: admin,
		body:    api.AdvanceEraRequest{ExpectedFrom: &from},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result governance.AdvanceEraResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Advanced)
	assert.Equal(t, uint64(1), result.Era)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/clock"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"era":1`)
}

func TestDelegationRoutes(t *testing.T) {
	s := newTestServer(t)
	for _, delegator := range []string{"bob", "carol"} {
		rec := s.do(t, call{
			method: http.MethodPost,
			path:   "/api/v1/delegation/set",
			actor:  delegator,
			body: governance.SetDelegationRequest{
				ChamberID:        "general",
				DelegateeAddress: "alice",
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/delegation/set",
		actor:  "alice",
		body: governance.SetDelegationRequest{
			ChamberID:        "general",
			DelegateeAddress: "bob",
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "delegation_cycle", decodeError(t, rec).Error)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/delegation/general/weights?exclude=carol"})
	require.Equal(t, http.StatusOK, rec.Code)
	var weights api.DelegationWeightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weights))
	assert.Equal(t, map[string]uint64{"alice": 1}, weights.Weights)

	rec = s.do(t, call{
		method: http.MethodPost,
		path:   "/api/v1/delegation/clear",
		actor:  "bob",
		body:   api.ClearDelegationRequest{ChamberID: "general"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cleared":true`)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/v1/delegation/general/log"})
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 3)
}

func TestIdempotencyReplay(t *testing.T) {
	s := newTestServer(t)
	s.createProposal(t, "p1")
	vote := call{
		method:  http.MethodPost,
		path:    "/api/v1/pool/vote",
		actor:   "voter",
		headers: map[string]string{"Idempotency-Key": "k1"},
		body:    governance.PoolVoteRequest{ProposalID: "p1", Direction: "up"},
	}
	first := s.do(t, vote)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))

	second := s.do(t, vote)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// Same key with a different payload
	vote.body = governance.PoolVoteRequest{ProposalID: "p1", Direction: "down"}
	third := s.do(t, vote)
	require.Equal(t, http.StatusUnprocessableEntity, third.Code)
	assert.Equal(t, "idempotency_key_reused", decodeError(t, third).Error)

	// Keys are scoped to the actor
	vote.actor = "other"
	fourth := s.do(t, vote)
	require.Equal(t, http.StatusOK, fourth.Code, fourth.Body.String())
	assert.Empty(t, fourth.Header().Get("Idempotent-Replayed"))

	expected := `
# HELP gavel_api_idempotent_replays_total total responses replayed for a repeated idempotency key
# TYPE gavel_api_idempotent_replays_total counter
gavel_api_idempotent_replays_total 1
`
	require.NoError(t, testutil.GatherAndCompare(
		s.registry,
		strings.NewReader(expected),
		"gavel_api_idempotent_replays_total",
	))
}

func TestIdempotencyReplaysRejections(t *testing.T) {
	s := newTestServer(t)
	vote := call{
		method:  http.MethodPost,
		path:    "/api/v1/pool/vote",
		actor:   "voter",
		headers: map[string]string{"Idempotency-Key": "k2"},
		body:    governance.PoolVoteRequest{ProposalID: "p1", Direction: "up"},
	}
	first := s.do(t, vote)
	require.Equal(t, http.StatusNotFound, first.Code)
	s.createProposal(t, "p1")
	// The recorded rejection is replayed even though the proposal now exists
	second := s.do(t, vote)
	require.Equal(t, http.StatusNotFound, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotencyConcurrent(t *testing.T) {
	s := newTestServer(t)
	s.createProposal(t, "p1")
	var wg sync.WaitGroup
	bodies := make([]string, 8)
	for i := range bodies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := s.do(t, call{
				method:  http.MethodPost,
				path:    "/api/v1/pool/vote",
				actor:   "voter",
				headers: map[string]string{"Idempotency-Key": "k3"},
				body:    governance.PoolVoteRequest{ProposalID: "p1", Direction: "up"},
			})
			bodies[i] = fmt.Sprintf("%d %s", rec.Code, rec.Body.String())
		}()
	}
	wg.Wait()
	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
	status, err := s.engine.PoolStatus(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.Counts.Upvotes)
}

func TestRequestMetrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, call{method: http.MethodGet, path: "/api/v1/proposals/missing"})
	expected := `
# HELP gavel_api_requests_total total API requests by route and status code
# TYPE gavel_api_requests_total counter
gavel_api_requests_total{code="404",route="GET /api/v1/proposals/{id}"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		s.registry,
		strings.NewReader(expected),
		"gavel_api_requests_total",
	))
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t)
	srv, err := api.New(
		api.Config{ListenAddress: "127.0.0.1:0"},
		s.engine,
		nil,
		nil,
	)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.Error(t, srv.Start(ctx))
	require.NoError(t, srv.Stop(context.Background()))
	// Stopping twice is a no-op
	require.NoError(t, srv.Stop(context.Background()))
}
