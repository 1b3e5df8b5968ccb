// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scope holds the Prometheus collectors of one process.
// It owns its registry; nothing is registered on the prometheus default registry.
// A nil *Scope is valid and records nothing.
type Scope struct {
	registry *prometheus.Registry

	pollAttempts  *prometheus.HistogramVec
	pollDuration  *prometheus.HistogramVec
	auditTotal    *prometheus.CounterVec
	snapshotTotal *prometheus.CounterVec
	dispatchTotal *prometheus.CounterVec
}

// NewScope creates the collectors and registers them with a new registry
func NewScope() *Scope {
	s := &Scope{
		registry: prometheus.NewRegistry(),
		pollAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditflow_poll_attempts",
			Help:    "Number of state checks made by a poll loop before it terminated",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20, 30},
		}, []string{"kind", "outcome"}),
		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditflow_poll_duration_seconds",
			Help:    "Wall time spent in a poll loop",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"kind", "outcome"}),
		auditTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_audit_total",
			Help: "Audit runs by final phase and status",
		}, []string{"phase", "status"}),
		snapshotTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_snapshot_total",
			Help: "Snapshot pipeline operations by result status",
		}, []string{"operation", "status"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_dispatch_total",
			Help: "Audit invocations received by the async service",
		}, []string{"channel", "result"}),
	}

	s.registry.MustRegister(
		s.pollAttempts,
		s.pollDuration,
		s.auditTotal,
		s.snapshotTotal,
		s.dispatchTotal,
	)
	return s
}

func (s *Scope) RecordPoll(kind, outcome string, attempts int, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.pollAttempts.WithLabelValues(kind, outcome).Observe(float64(attempts))
	s.pollDuration.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
}

func (s *Scope) RecordAudit(phase, status string) {
	if s == nil {
		return
	}
	s.auditTotal.WithLabelValues(phase, status).Inc()
}

func (s *Scope) RecordSnapshot(operation, status string) {
	if s == nil {
		return
	}
	s.snapshotTotal.WithLabelValues(operation, status).Inc()
}

func (s *Scope) RecordDispatch(channel, result string) {
	if s == nil {
		return
	}
	s.dispatchTotal.WithLabelValues(channel, result).Inc()
}

// Registry exposes the underlying registry, mostly for tests
func (s *Scope) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the Prometheus exposition format
func (s *Scope) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
