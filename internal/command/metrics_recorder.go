// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import "time"

// MetricsRecorder tracks metrics for a single dispatch.
type MetricsRecorder struct {
	startTime time.Time
	outcome   Outcome
	tier      string
	matches   int
}

// NewMetricsRecorder initializes a recorder for a single dispatch.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{startTime: time.Now()}
}

// SetOutcome sets the dispatch outcome.
func (m *MetricsRecorder) SetOutcome(o Outcome) {
	m.outcome = o
}

// Outcome returns the outcome set so far.
func (m *MetricsRecorder) Outcome() Outcome { return m.outcome }

// AddMatches records n $command matches found in tier.
func (m *MetricsRecorder) AddMatches(tier string, n int) {
	if n <= 0 {
		return
	}
	m.tier = tier
	m.matches += n
}

// Record writes the collected metrics.
func (m *MetricsRecorder) Record() {
	RecordDispatch(m.outcome, time.Since(m.startTime))
	RecordCascadeMatches(m.tier, m.matches)
}
