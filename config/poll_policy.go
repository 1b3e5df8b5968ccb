// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"
)

// PollPolicy is the tuning of one backoff poll loop.
// The first wait is InitialDelay, each following wait is the previous one
// multiplied by BackoffFactor and capped at MaxDelay.
type PollPolicy struct {
	InitialDelay  time.Duration `yaml:"initialDelay" json:"initialDelay"`
	MaxDelay      time.Duration `yaml:"maxDelay" json:"maxDelay"`
	BackoffFactor float64       `yaml:"backoffFactor" json:"backoffFactor"`
	// MaxAttempts is the maximum number of state checks
	MaxAttempts int `yaml:"maxAttempts" json:"maxAttempts"`
	// FailureStates are the states that end the loop as failed.
	// Only consulted for discovery, where it is empty by default.
	FailureStates []string `yaml:"failureStates" json:"failureStates,omitempty"`
}

// DefaultPollPolicy bounds the worst case wait to about seven minutes
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 1.5,
		MaxAttempts:   20,
	}
}

// DefaultDiscoveryPollPolicy has a longer window than DefaultPollPolicy
func DefaultDiscoveryPollPolicy() PollPolicy {
	p := DefaultPollPolicy()
	p.InitialDelay = 10 * time.Second
	p.MaxDelay = 60 * time.Second
	return p
}

// WithDefaults returns a copy where every zero field is taken from defaults
func (p PollPolicy) WithDefaults(defaults PollPolicy) PollPolicy {
	if p.InitialDelay == 0 {
		p.InitialDelay = defaults.InitialDelay
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.BackoffFactor == 0 {
		p.BackoffFactor = defaults.BackoffFactor
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = defaults.MaxAttempts
	}
	if p.FailureStates == nil {
		p.FailureStates = defaults.FailureStates
	}
	return p
}

// Validate rejects a policy whose delay sequence would not be non-decreasing and bounded
func (p PollPolicy) Validate() error {
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("maxAttempts must be positive, got %v", p.MaxAttempts)
	}
	if p.InitialDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("delays cannot be negative")
	}
	if p.InitialDelay > p.MaxDelay {
		return fmt.Errorf("initialDelay %v cannot exceed maxDelay %v", p.InitialDelay, p.MaxDelay)
	}
	if p.BackoffFactor < 1 {
		return fmt.Errorf("backoffFactor must be at least 1, got %v", p.BackoffFactor)
	}
	return nil
}

// MaxWait is the total sleep of a loop that uses every attempt without reaching a final state.
// The time spent in the state checks themselves is not included.
func (p PollPolicy) MaxWait() time.Duration {
	var total time.Duration
	delay := p.InitialDelay
	for i := 1; i < p.MaxAttempts; i++ {
		total += delay
		delay = min(time.Duration(float64(delay)*p.BackoffFactor), p.MaxDelay)
	}
	return total
}

// MaxAuditWait is the worst case sleep of one audit, discovery plus analytics,
// with zero fields taken from the stage defaults
func (c PollerConfig) MaxAuditWait() time.Duration {
	return c.Discovery.WithDefaults(DefaultDiscoveryPollPolicy()).MaxWait() +
		c.Analytics.WithDefaults(DefaultPollPolicy()).MaxWait()
}

func (p *PollPolicy) setDefaults(defaults PollPolicy) error {
	*p = p.WithDefaults(defaults)
	return p.Validate()
}
