// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

type (
	// ExecutionState is the status a remote system reports for an asynchronous operation.
	// It is not owned by auditflow, only compared against success and failure sets.
	ExecutionState string

	// QueryHandle is the reference returned by the query engine for a submitted query
	QueryHandle string

	// ExportHandle is the reference returned by the export trigger (an export ARN).
	// It is passed through the completion event and the invocation payload, never interpreted.
	ExportHandle string

	PollStatus string

	// PollOutcome is the result of one poll loop
	PollOutcome struct {
		Status PollStatus
		// State is the last observed state, empty if check never returned
		State ExecutionState
		// Attempts is the number of times the state was checked
		Attempts int
	}

	// AuditPhase is the state of the audit orchestrator state machine
	AuditPhase string

	// AuditOutcome is the terminal result of one audit run
	AuditOutcome struct {
		QueryHandle QueryHandle
		FinalState  ExecutionState
		Phase       AuditPhase
		// Err is set when the audit did not end with a state reported by the query engine,
		// e.g. invalid configuration, discovery timeout or a failed remote call
		Err error
	}
)

const (
	PollSucceeded PollStatus = "SUCCEEDED"
	PollFailed    PollStatus = "FAILED"
	PollTimedOut  PollStatus = "TIMED_OUT"
)

const (
	StateReady     ExecutionState = "READY"
	StateSucceeded ExecutionState = "SUCCEEDED"
	StateFailed    ExecutionState = "FAILED"
	StateCancelled ExecutionState = "CANCELLED"
)

const (
	AuditPhaseStart           AuditPhase = "START"
	AuditPhaseDiscovering     AuditPhase = "DISCOVERING"
	AuditPhaseDiscoveryFailed AuditPhase = "DISCOVERY_FAILED"
	AuditPhaseAnalyzing       AuditPhase = "ANALYZING"
	AuditPhaseAnalysisDone    AuditPhase = "ANALYSIS_DONE"
)

func (s ExecutionState) String() string {
	return string(s)
}

func (h QueryHandle) String() string {
	return string(h)
}

func (h ExportHandle) String() string {
	return string(h)
}

// Succeeded tells whether the audit query terminated in SUCCEEDED
func (o AuditOutcome) Succeeded() bool {
	return o.Err == nil && o.FinalState == StateSucceeded
}
