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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal   *prometheus.CounterVec
	subscribers   *prometheus.GaugeVec
	droppedEvents *prometheus.CounterVec
	handlerPanics *prometheus.CounterVec
}

func newEventMetrics(promRegistry prometheus.Registerer) *eventMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &eventMetrics{
		eventsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gavel_event_published_total",
				Help: "total events published",
			},
			[]string{"type"},
		),
		subscribers: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gavel_event_subscribers",
				Help: "current subscribers",
			},
			[]string{"type"},
		),
		droppedEvents: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gavel_event_dropped_total",
				Help: "async events dropped because the queue was full",
			},
			[]string{"type"},
		),
		handlerPanics: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gavel_event_handler_panics_total",
				Help: "subscriber handler panics recovered",
			},
			[]string{"type"},
		),
	}
}
