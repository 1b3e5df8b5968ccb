// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

type (
	// AWSConfig is the config of the aws backend.
	// Retries of individual calls are done by the sdk, below the workflow engine.
	AWSConfig struct {
		// Region overrides Workflow.Region for the sdk clients
		Region string `yaml:"region"`
		// RetryMode is "adaptive" or "standard". Default is "adaptive"
		RetryMode string `yaml:"retryMode"`
		// RetryMaxAttempts is the max attempts of the sdk retryer. Default is 10
		RetryMaxAttempts int `yaml:"retryMaxAttempts"`
		// EndpointURL optionally points every client to a different endpoint, e.g. localstack
		EndpointURL string `yaml:"endpointUrl"`
	}

	// MemoryBackendConfig scripts the state sequences reported by the in-memory backend.
	// Once a sequence is exhausted its last state is repeated.
	MemoryBackendConfig struct {
		CrawlerStates []string `yaml:"crawlerStates"`
		QueryStates   []string `yaml:"queryStates"`
		// CrawlerAlreadyRunning makes every refresh report "already running"
		CrawlerAlreadyRunning bool `yaml:"crawlerAlreadyRunning"`
	}

	DispatchConfig struct {
		// Mode is one of backend, http or pulsar. Default is backend,
		// which uses the invoker of the configured backend (lambda for aws).
		Mode   DispatchMode       `yaml:"mode"`
		Http   HttpDispatchConfig `yaml:"http"`
		Pulsar PulsarConfig       `yaml:"pulsar"`
	}

	HttpDispatchConfig struct {
		// Timeout bounds the hand-off call, not the audit
		Timeout time.Duration `yaml:"timeout"`
	}

	PulsarConfig struct {
		// URL is the pulsar service url, e.g. pulsar://localhost:6650
		URL string `yaml:"url"`
		// Topic is the topic the async service consumes from.
		// The invoker publishes to the invocation target, which is usually the same topic.
		Topic string `yaml:"topic"`
		// Subscription is the shared subscription name of the async service
		Subscription     string        `yaml:"subscription"`
		OperationTimeout time.Duration `yaml:"operationTimeout"`
	}

	DispatchMode string
)

const (
	DispatchModeBackend DispatchMode = "backend"
	DispatchModeHttp    DispatchMode = "http"
	DispatchModePulsar  DispatchMode = "pulsar"

	DefaultPulsarTopic        = "persistent://public/default/auditflow-audit-invocations"
	DefaultPulsarSubscription = "auditflow-async"
)
