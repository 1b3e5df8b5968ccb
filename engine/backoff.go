// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"time"

	"github.com/xcherryio/auditflow/config"
)

// GetNextBackoff returns the wait after the given number of completed (non-terminal) attempts.
// The first wait is the initial delay, then it grows by the backoff factor, capped at the max delay.
func GetNextBackoff(completedAttempts int, policy config.PollPolicy) time.Duration {
	delay := policy.InitialDelay
	for i := 1; i < completedAttempts; i++ {
		delay = nextDelay(delay, policy)
	}
	return delay
}

func nextDelay(current time.Duration, policy config.PollPolicy) time.Duration {
	next := time.Duration(float64(current) * policy.BackoffFactor)
	if next > policy.MaxDelay {
		next = policy.MaxDelay
	}
	return next
}
