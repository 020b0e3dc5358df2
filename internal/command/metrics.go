// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cascade tiers, used as metric labels.
const (
	TierContents  = "contents"
	TierLocation  = "location"
	TierInventory = "inventory"
	TierZone      = "zone"
	TierPersonal  = "personal_zone"
	TierMaster    = "master"
	TierExit      = "exit"
	TierAlias     = "alias"
)

// DispatchTotal counts dispatches by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var DispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pennmush_dispatch_total",
		Help: "Total number of dispatched input lines by outcome",
	},
	[]string{"outcome"},
)

// DispatchDuration is the histogram of dispatch duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var DispatchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pennmush_dispatch_duration_seconds",
		Help:    "Dispatch duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// CascadeMatches counts $command matches by the cascade tier that found
// them.
var CascadeMatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pennmush_cascade_matches_total",
		Help: "Total number of $command matches by cascade tier",
	},
	[]string{"tier"},
)

// CommandExecutions counts handler runs by command name.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pennmush_command_executions_total",
		Help: "Total number of command handler executions",
	},
	[]string{"command", "status"},
)

// Handler statuses for CommandExecutions.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusOverridden = "overridden"
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(DispatchTotal)
	reg.MustRegister(DispatchDuration)
	reg.MustRegister(CascadeMatches)
	reg.MustRegister(CommandExecutions)
}

// RecordDispatch records one finished dispatch.
func RecordDispatch(outcome Outcome, duration time.Duration) {
	DispatchTotal.WithLabelValues(outcome.String()).Inc()
	DispatchDuration.WithLabelValues(outcome.String()).Observe(duration.Seconds())
}

// RecordCascadeMatches adds n matches found in tier.
func RecordCascadeMatches(tier string, n int) {
	if n > 0 {
		CascadeMatches.WithLabelValues(tier).Add(float64(n))
	}
}

// RecordCommandExecution counts one handler run.
func RecordCommandExecution(command, status string) {
	CommandExecutions.WithLabelValues(command, status).Inc()
}
