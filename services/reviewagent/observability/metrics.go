// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the review agent.
//
// # Description
//
// Metrics cover the analysis pipeline (run counters, duration histograms),
// the fix-application workflow, and the chat responder chain (including
// fallback activations). They are exposed on /metrics and are intended for
// Prometheus + Grafana.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "aleutian"

// Subsystem for review agent metrics.
const reviewSubsystem = "review"

// Metrics holds all Prometheus metrics for the review agent.
//
// # Fields
//
//   - AnalysesTotal: Counter of analysis runs by source and status.
//   - AnalysisDurationSeconds: Histogram of analysis wall time.
//   - FixApplicationsTotal: Counter of fix applications by outcome.
//   - ChatRequestsTotal: Counter of chat requests by mentor mode.
//   - ChatFallbacksTotal: Counter of chat requests answered by the
//     canned responder after an LLM failure.
//   - StoredAnalyses: Gauge of analyses currently held in the store.
type Metrics struct {
	// AnalysesTotal counts analysis runs.
	// Labels: source (mock, github), status (success, error)
	AnalysesTotal *prometheus.CounterVec

	// AnalysisDurationSeconds measures end-to-end analysis duration.
	// Labels: source (mock, github)
	AnalysisDurationSeconds *prometheus.HistogramVec

	// FixApplicationsTotal counts fix applications.
	// Labels: outcome (applied, already_applied, not_found)
	FixApplicationsTotal *prometheus.CounterVec

	// ChatRequestsTotal counts chat requests.
	// Labels: mentor (sarah_lead, alex_security, jordan_perf, balanced)
	ChatRequestsTotal *prometheus.CounterVec

	// ChatFallbacksTotal counts canned-responder activations.
	ChatFallbacksTotal prometheus.Counter

	// StoredAnalyses tracks the store's current size.
	StoredAnalyses prometheus.Gauge
}

// DefaultMetrics is the singleton instance of Metrics.
// Initialized by InitMetrics().
var DefaultMetrics *Metrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// startup; a second call panics on duplicate registration.
func InitMetrics() *Metrics {
	DefaultMetrics = &Metrics{
		AnalysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "analyses_total",
				Help:      "Total number of analysis runs by source and status",
			},
			[]string{"source", "status"},
		),

		AnalysisDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "analysis_duration_seconds",
				Help:      "End-to-end analysis duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),

		FixApplicationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "fix_applications_total",
				Help:      "Total auto-fix applications by outcome",
			},
			[]string{"outcome"},
		),

		ChatRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "chat_requests_total",
				Help:      "Total chat requests by mentor mode",
			},
			[]string{"mentor"},
		),

		ChatFallbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "chat_fallbacks_total",
				Help:      "Total chat requests answered by the canned responder",
			},
		),

		StoredAnalyses: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: reviewSubsystem,
				Name:      "stored_analyses",
				Help:      "Number of analyses currently held in the store",
			},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Label Values
// =============================================================================

// Source labels an analysis run's origin for metrics.
type Source string

const (
	// SourceMock is an analysis over generated mock data.
	SourceMock Source = "mock"

	// SourceGitHub is an analysis over a fetched GitHub PR.
	SourceGitHub Source = "github"
)

// Fix application outcomes.
const (
	OutcomeApplied        = "applied"
	OutcomeAlreadyApplied = "already_applied"
	OutcomeNotFound       = "not_found"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordAnalysis records a completed analysis run.
func (m *Metrics) RecordAnalysis(source Source, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.AnalysesTotal.WithLabelValues(string(source), status).Inc()
	if success {
		m.AnalysisDurationSeconds.WithLabelValues(string(source)).Observe(seconds)
	}
}

// RecordFixApplication records a fix-application outcome.
func (m *Metrics) RecordFixApplication(outcome string) {
	m.FixApplicationsTotal.WithLabelValues(outcome).Inc()
}

// RecordChatRequest records a chat request by mentor mode.
func (m *Metrics) RecordChatRequest(mentor string) {
	m.ChatRequestsTotal.WithLabelValues(mentor).Inc()
}

// SetStoredAnalyses updates the store size gauge.
func (m *Metrics) SetStoredAnalyses(n int) {
	m.StoredAnalyses.Set(float64(n))
}
