// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/xcherryio/auditflow/config"
)

var (
	// ErrPollTimeout is wrapped by PollTimeoutError
	ErrPollTimeout = errors.New("poll timed out")
	// ErrRefreshAlreadyRunning is returned by a MetadataCatalog when a refresh is already in progress.
	// The discovery stage treats it as a no-op.
	ErrRefreshAlreadyRunning = errors.New("refresh already running")
)

type FailureKind string

const (
	FailureNone                 FailureKind = ""
	FailureConfiguration        FailureKind = "CONFIGURATION_ERROR"
	FailureRemoteRejection      FailureKind = "REMOTE_REJECTION"
	FailureTerminalFailureState FailureKind = "TERMINAL_FAILURE_STATE"
	FailureTimeout              FailureKind = "TIMEOUT"
	// FailureCanceled is a stage stopped by process shutdown
	FailureCanceled FailureKind = "CANCELED"
)

// PollTimeoutError means the attempt budget ran out before a success or failure state was observed
type PollTimeoutError struct {
	Label     string
	Attempts  int
	LastState ExecutionState
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("%v timed out after %v attempts, last state %q", e.Label, e.Attempts, e.LastState)
}

func (e *PollTimeoutError) Unwrap() error {
	return ErrPollTimeout
}

// RemoteError is a failed collaborator call
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// TerminalStateError means the remote system reported an explicit failure state
type TerminalStateError struct {
	Label string
	State ExecutionState
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%v ended in failure state %q", e.Label, e.State)
}

func newRemoteError(op string, err error) error {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// ClassifyFailure maps an error produced by the engine to its FailureKind
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var terminalErr *TerminalStateError
	switch {
	case errors.Is(err, config.ErrInvalidConfiguration):
		return FailureConfiguration
	case errors.Is(err, ErrPollTimeout):
		return FailureTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.As(err, &terminalErr):
		return FailureTerminalFailureState
	default:
		return FailureRemoteRejection
	}
}
