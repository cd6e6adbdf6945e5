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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	votesTotal         *prometheus.CounterVec
	stageTransitions   *prometheus.CounterVec
	commandErrors      *prometheus.CounterVec
	proposalsPassed    prometheus.Counter
	proposalsVetoed    prometheus.Counter
	proposalsFinalized prometheus.Counter
	eraRollups         prometheus.Counter
	eraCurrent         prometheus.Gauge
}

func (m *engineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.votesTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_votes_total",
			Help: "total votes accepted by kind",
		},
		[]string{"kind"},
	)
	m.stageTransitions = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_stage_transitions_total",
			Help: "total proposal stage transitions",
		},
		[]string{"from", "to"},
	)
	m.commandErrors = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_command_errors_total",
			Help: "total rejected or failed commands by command and error kind",
		},
		[]string{"command", "kind"},
	)
	m.proposalsPassed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_proposals_passed_total",
			Help: "total chamber votes that reached the passing threshold",
		},
	)
	m.proposalsVetoed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_proposals_vetoed_total",
			Help: "total passed votes rolled back by the veto council",
		},
	)
	m.proposalsFinalized = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_proposals_finalized_total",
			Help: "total proposals moved to build after their veto window",
		},
	)
	m.eraRollups = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_era_rollups_total",
			Help: "total era rollups written",
		},
	)
	m.eraCurrent = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "gavel_era_current",
			Help: "current governance era",
		},
	)
}
