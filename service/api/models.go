// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

type (
	// SnapshotStartRequest overrides the configured export source and destination.
	// Empty fields are taken from the workflow configuration.
	SnapshotStartRequest struct {
		TableName  string `json:"table_name,omitempty"`
		BucketName string `json:"bucket_name,omitempty"`
		Region     string `json:"region,omitempty"`
	}

	// AuditResponse is the body of the audit entry point.
	// Body is only set when the audit never reached a query state.
	AuditResponse struct {
		QueryId string `json:"query_id,omitempty"`
		Status  string `json:"status,omitempty"`
		Body    string `json:"body,omitempty"`
	}

	ApiErrorResponse struct {
		Detail string `json:"detail"`
	}
)

const (
	AuditStatusCompleted = "COMPLETED"

	BodyConfigurationError = "Internal Configuration Error"
	BodyExecutionFailed    = "Audit Execution Failed"
)
