// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		// Log is the logging config
		Log Logger `yaml:"log"`

		// Backend is the name of the registered collaborator backend, e.g. "aws" or "memory"
		Backend string `yaml:"backend"`

		// Workflow is the identifiers required by the snapshot and audit pipelines
		Workflow WorkflowConfiguration `yaml:"workflow"`

		// Poller is the per-stage tuning of the backoff poller
		Poller PollerConfig `yaml:"poller"`

		// AWS is the config for the aws backend
		AWS AWSConfig `yaml:"aws"`

		// Memory is the config for the in-memory backend
		Memory MemoryBackendConfig `yaml:"memory"`

		// Dispatch decides how the snapshot pipeline forwards audit invocations
		Dispatch DispatchConfig `yaml:"dispatch"`

		// ApiService is the API service config
		ApiService ApiServiceConfig `yaml:"apiService"`

		// AsyncService is config for async service which consumes audit invocations
		AsyncService AsyncServiceConfig `yaml:"asyncService"`

		// Scheduler is the config for the cron scheduled snapshot
		Scheduler SchedulerConfig `yaml:"scheduler"`
	}

	PollerConfig struct {
		// Discovery is the poll policy for waiting on the catalog refresh.
		// Catalog refresh is typically slower than query execution, so it defaults to a longer window.
		Discovery PollPolicy `yaml:"discovery"`
		// Analytics is the poll policy for waiting on the query execution
		Analytics PollPolicy `yaml:"analytics"`
	}

	ApiServiceConfig struct {
		// HttpServer is the config for starting http.Server
		HttpServer HttpServerConfig `yaml:"httpServer"`
	}

	AsyncServiceConfig struct {
		// InternalHttpServer is the config for starting a http.Server
		// to receive audit invocations
		InternalHttpServer HttpServerConfig `yaml:"internalHttpServer"`
		// ProcessorConcurrency is the number of goroutines that run audits.
		// Each audit blocks its goroutine while polling, so this bounds the number of concurrent audits.
		// If not specified then the default value of 8.
		ProcessorConcurrency int `yaml:"processorConcurrency"`
		// ProcessorBufferSize is the number of accepted invocations waiting for a goroutine.
		// Intake is rejected when the buffer is full.
		// If not specified then the default value of 100 is used.
		ProcessorBufferSize int `yaml:"processorBufferSize"`
		// ConsumePulsar starts a pulsar consumer on Dispatch.Pulsar.Topic in addition to the http intake
		ConsumePulsar bool `yaml:"consumePulsar"`
	}

	SchedulerConfig struct {
		// SnapshotCron is the cron spec for starting the nightly snapshot, e.g. "0 1 * * *".
		// Empty disables the scheduler.
		SnapshotCron string `yaml:"snapshotCron"`
	}

	// HttpServerConfig is the config that will be mapped into http.Server
	HttpServerConfig struct {
		// Address optionally specifies the TCP address for the server to listen on,
		// in the form "host:port". If empty, ":http" (port 80) is used.
		Address string `yaml:"address"`
		// ReadTimeout is the maximum duration for reading the entire
		// request, including the body.
		ReadTimeout time.Duration `yaml:"readTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response.
		// The synchronous audit endpoint holds the response until the audit terminates,
		// so this must be larger than the worst case poll window.
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		// TLSConfig optionally provides a TLS configuration for use
		// by ServeTLS and ListenAndServeTLS
		TLSConfig *tls.Config `yaml:"tlsConfig"`
		// the rest are less frequently used
		ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
		IdleTimeout       time.Duration `yaml:"idleTimeout"`
		MaxHeaderBytes    int           `yaml:"maxHeaderBytes"`
	}
)

// NewConfig returns a new decoded Config struct
func NewConfig(configPath string) (*Config, error) {
	log.Printf("Loading configFile=%v\n", configPath)

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)

	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateAndSetDefaults checks the process level settings.
// Missing workflow identifiers are not an error here: each stage validates
// the WorkflowConfiguration itself before making any remote call.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Backend == "" {
		return fmt.Errorf("backend is required")
	}

	c.Workflow.setDefaults()

	if err := c.Poller.Discovery.setDefaults(DefaultDiscoveryPollPolicy()); err != nil {
		return fmt.Errorf("invalid poller.discovery: %w", err)
	}
	if err := c.Poller.Analytics.setDefaults(DefaultPollPolicy()); err != nil {
		return fmt.Errorf("invalid poller.analytics: %w", err)
	}
	writeTimeout, maxWait := c.ApiService.HttpServer.WriteTimeout, c.Poller.MaxAuditWait()
	if writeTimeout > 0 && writeTimeout <= maxWait {
		return fmt.Errorf("apiService.httpServer.writeTimeout %v must exceed the worst case audit wait %v",
			writeTimeout, maxWait)
	}

	if c.AWS.RetryMaxAttempts == 0 {
		c.AWS.RetryMaxAttempts = 10
	}
	if c.AWS.RetryMode == "" {
		c.AWS.RetryMode = "adaptive"
	}

	if c.Dispatch.Mode == "" {
		c.Dispatch.Mode = DispatchModeBackend
	}
	switch c.Dispatch.Mode {
	case DispatchModeBackend:
	case DispatchModeHttp:
		if c.Dispatch.Http.Timeout == 0 {
			c.Dispatch.Http.Timeout = 10 * time.Second
		}
		if err := validateHttpTarget(c.Workflow.AuditTarget); err != nil {
			return err
		}
	case DispatchModePulsar:
		if c.Dispatch.Pulsar.URL == "" {
			return fmt.Errorf("dispatch.pulsar.url is required for pulsar dispatch mode")
		}
	default:
		return fmt.Errorf("unsupported dispatch mode %v", c.Dispatch.Mode)
	}
	if c.Dispatch.Pulsar.Topic == "" {
		c.Dispatch.Pulsar.Topic = DefaultPulsarTopic
	}
	if c.Dispatch.Pulsar.Subscription == "" {
		c.Dispatch.Pulsar.Subscription = DefaultPulsarSubscription
	}
	if c.Dispatch.Pulsar.OperationTimeout == 0 {
		c.Dispatch.Pulsar.OperationTimeout = 30 * time.Second
	}

	asyncCfg := &c.AsyncService
	if asyncCfg.ProcessorConcurrency == 0 {
		asyncCfg.ProcessorConcurrency = 8
	}
	if asyncCfg.ProcessorBufferSize == 0 {
		asyncCfg.ProcessorBufferSize = 100
	}
	if asyncCfg.ConsumePulsar && c.Dispatch.Pulsar.URL == "" {
		return fmt.Errorf("dispatch.pulsar.url is required when asyncService.consumePulsar is enabled")
	}
	return nil
}

// validateHttpTarget requires an absolute http(s) url for http dispatch
func validateHttpTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("workflow.auditTarget %q must be an http(s) url for http dispatch mode", target)
	}
	return nil
}

// String converts the config object into a string
func (c *Config) String() string {
	out, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		panic(err)
	}
	return string(out)
}
