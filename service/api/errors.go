// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package api

type ErrorWithStatus struct {
	StatusCode int
	// Error is the response body
	Error any
}

func NewErrorWithStatus(code int, details string) *ErrorWithStatus {
	return &ErrorWithStatus{
		StatusCode: code,
		Error: ApiErrorResponse{
			Detail: details,
		},
	}
}

func NewErrorResponseWithStatus(code int, body any) *ErrorWithStatus {
	return &ErrorWithStatus{
		StatusCode: code,
		Error:      body,
	}
}
