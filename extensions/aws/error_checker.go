// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/extensions"
)

// ErrorChecker classifies the api errors of the aws services
var ErrorChecker extensions.ErrorChecker = errorChecker{}

type errorChecker struct{}

func (errorChecker) IsThrottlingError(err error) bool {
	switch apiErrorCode(err) {
	case "ThrottlingException", "Throttling", "TooManyRequestsException",
		"ProvisionedThroughputExceededException", "RequestLimitExceeded":
		return true
	}
	return false
}

func (errorChecker) IsNotFoundError(err error) bool {
	switch apiErrorCode(err) {
	case "EntityNotFoundException", "ResourceNotFoundException", "TableNotFoundException":
		return true
	}
	return false
}

func (errorChecker) IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// logStateCheckError logs a failed state check with its cause.
// The error is returned to the poller unchanged, which ends the loop.
func logStateCheckError(logger log.Logger, err error, tags ...tag.Tag) {
	tags = append(tags, tag.Error(err))
	switch {
	case ErrorChecker.IsNotFoundError(err):
		logger.Error("state check target does not exist", tags...)
	case ErrorChecker.IsTimeoutError(err):
		logger.Warn("state check timed out", tags...)
	case ErrorChecker.IsThrottlingError(err):
		logger.Warn("state check throttled after sdk retries", tags...)
	default:
		logger.Warn("state check failed", tags...)
	}
}
