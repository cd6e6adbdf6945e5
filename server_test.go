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

package gavel_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gavel"
	"github.com/blinklabs-io/gavel/governance"
)

func TestServerRunStop(t *testing.T) {
	srv, err := gavel.New(
		gavel.NewConfig(
			gavel.WithMetadataPlugin("memory"),
			gavel.WithPrometheusRegistry(prometheus.NewRegistry()),
			gavel.WithEraSchedule(""),
			gavel.WithShutdownTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(context.Background())
	}()
	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	proposal, err := srv.Engine().CreateProposal(
		context.Background(),
		"alice",
		governance.CreateProposalRequest{ID: "p1", Title: "first"},
	)
	require.NoError(t, err)
	assert.Equal(t, "draft", proposal.Stage)

	require.NoError(t, srv.Stop())
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	// Stop is idempotent
	require.NoError(t, srv.Stop())
}

func TestServerInvalidConfig(t *testing.T) {
	params := governance.DefaultParams()
	params.ChamberPassingFraction = 1.5
	_, err := gavel.New(
		gavel.NewConfig(
			gavel.WithGovernanceParams(params),
		),
	)
	require.Error(t, err)

	_, err = gavel.New(
		gavel.NewConfig(
			gavel.WithFinalizeSchedule(""),
		),
	)
	require.Error(t, err)
}

func TestServerBadSchedule(t *testing.T) {
	srv, err := gavel.New(
		gavel.NewConfig(
			gavel.WithMetadataPlugin("memory"),
			gavel.WithEraSchedule("not a schedule"),
		),
	)
	require.NoError(t, err)
	err = srv.Run(context.Background())
	require.ErrorContains(t, err, "scheduler")
	require.NoError(t, srv.Stop())
}
