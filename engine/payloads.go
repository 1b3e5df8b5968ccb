// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

const (
	// InvocationTypeSnapshotComplete is the type of the payload sent to the audit target
	InvocationTypeSnapshotComplete = "SNAPSHOT_COMPLETE"
	// ExportStatusCompleted is the only export status that triggers an audit
	ExportStatusCompleted = "COMPLETED"
)

type (
	// ExportCompletionEvent is the inbound event emitted when an export changes status
	ExportCompletionEvent struct {
		Detail ExportCompletionDetail `json:"detail"`
	}

	ExportCompletionDetail struct {
		ExportArn    string `json:"exportArn"`
		ExportStatus string `json:"exportStatus"`
	}

	// InvocationPayload is what the snapshot pipeline forwards to the audit target.
	// ExportArn is informational, the audit does not validate it.
	InvocationPayload struct {
		Type      string `json:"type"`
		ExportArn string `json:"export_arn"`
	}

	SnapshotStatus string

	// SnapshotResult is returned by both snapshot operations
	SnapshotResult struct {
		Status    SnapshotStatus `json:"status"`
		ExportArn string         `json:"export_arn,omitempty"`
		Reason    string         `json:"reason,omitempty"`
		Error     string         `json:"error,omitempty"`
	}
)

const (
	SnapshotStarted        SnapshotStatus = "STARTED"
	SnapshotFailed         SnapshotStatus = "FAILED"
	SnapshotIgnored        SnapshotStatus = "IGNORED"
	SnapshotAuditTriggered SnapshotStatus = "AUDIT_TRIGGERED"

	ReasonMissingConfig = "MISSING_CONFIG"
)
