// Copyright 2025 The kiwid Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kiwid/kiwid/common"
)

var (
	acceptedConns = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "accepted_connections_total",
			Help:      "Accepted connections total",
		},
	)

	activeConns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "active_connections",
			Help:      "Active connections",
		},
	)

	closedConns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "closed_connections_total",
			Help:      "Closed connections total",
		},
		[]string{"cause"},
	)

	handledCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "handled_commands_total",
			Help:      "Handled commands total",
		},
		[]string{"command"},
	)

	protocolErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "protocol_errors_total",
			Help:      "Recoverable protocol errors reported to clients total",
		},
	)
)
