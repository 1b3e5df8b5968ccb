// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeRecordsAudit(t *testing.T) {
	s := NewScope()
	s.RecordAudit("ANALYSIS_DONE", "SUCCEEDED")
	s.RecordAudit("ANALYSIS_DONE", "SUCCEEDED")
	s.RecordAudit("DISCOVERY_FAILED", "TIMEOUT")

	assert.Equal(t, 2.0, testutil.ToFloat64(s.auditTotal.WithLabelValues("ANALYSIS_DONE", "SUCCEEDED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.auditTotal.WithLabelValues("DISCOVERY_FAILED", "TIMEOUT")))
}

func TestScopeRecordsPoll(t *testing.T) {
	s := NewScope()
	s.RecordPoll("analytics", "succeeded", 3, 5*time.Second)

	families, err := s.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["auditflow_poll_attempts"])
	assert.True(t, names["auditflow_poll_duration_seconds"])
}

func TestNilScopeIsNoop(t *testing.T) {
	var s *Scope
	assert.NotPanics(t, func() {
		s.RecordAudit("START", "x")
		s.RecordPoll("discovery", "timed_out", 20, time.Minute)
		s.RecordSnapshot("start", "STARTED")
		s.RecordDispatch("http", "accepted")
	})
}
