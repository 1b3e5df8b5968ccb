// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is returned when required workflow identifiers are missing
var ErrInvalidConfiguration = errors.New("invalid workflow configuration")

const (
	// DefaultRegion is used when neither the config nor the environment provides one
	DefaultRegion = "us-east-1"
	// DefaultAuditTarget is the downstream invocation target used when none is configured
	DefaultAuditTarget = "privacy-signal-analyzer-dev-PrivacySignalAuditor"
	// DefaultExportPrefix is the key prefix of the snapshot export in the destination bucket
	DefaultExportPrefix = "exports/"
)

// WorkflowConfiguration bundles the identifiers that the pipelines need before
// any stage runs. It is passed by value and never mutated after loading.
type WorkflowConfiguration struct {
	// CrawlerName is the metadata catalog refresh job (Glue crawler)
	CrawlerName string `yaml:"crawlerName" json:"crawlerName"`
	// DatabaseName is the catalog dataset the audit query runs against
	DatabaseName string `yaml:"databaseName" json:"databaseName"`
	// TableName is the catalog table that is audited.
	// It is also the source table of the snapshot export.
	TableName string `yaml:"tableName" json:"tableName"`
	// QueryOutputLocation is where the query engine writes results, e.g. s3://bucket/results/
	QueryOutputLocation string `yaml:"queryOutputLocation" json:"queryOutputLocation"`
	// SnapshotBucket is the destination storage location of the export
	SnapshotBucket string `yaml:"snapshotBucket" json:"snapshotBucket"`
	// ExportPrefix is the key prefix of the export inside SnapshotBucket
	ExportPrefix string `yaml:"exportPrefix" json:"exportPrefix"`
	// Region is the region of the source table
	Region string `yaml:"region" json:"region"`
	// AuditTarget is the downstream invocation target: a function name, an url or a topic
	// depending on the dispatch mode
	AuditTarget string `yaml:"auditTarget" json:"auditTarget"`
}

func (w *WorkflowConfiguration) setDefaults() {
	if w.Region == "" {
		w.Region = DefaultRegion
	}
	if w.ExportPrefix == "" {
		w.ExportPrefix = DefaultExportPrefix
	}
	if w.AuditTarget == "" {
		w.AuditTarget = DefaultAuditTarget
	}
}

// ValidateForAudit returns ErrInvalidConfiguration naming every missing identifier
// that the audit pipeline needs
func (w WorkflowConfiguration) ValidateForAudit() error {
	return missing(
		field{"crawlerName", w.CrawlerName},
		field{"databaseName", w.DatabaseName},
		field{"tableName", w.TableName},
		field{"queryOutputLocation", w.QueryOutputLocation},
	)
}

// ValidateForSnapshot returns ErrInvalidConfiguration naming every missing identifier
// that the snapshot pipeline needs
func (w WorkflowConfiguration) ValidateForSnapshot() error {
	return missing(
		field{"tableName", w.TableName},
		field{"snapshotBucket", w.SnapshotBucket},
		field{"auditTarget", w.AuditTarget},
	)
}

type field struct {
	name  string
	value string
}

func missing(fields ...field) error {
	var names []string
	for _, f := range fields {
		if f.value == "" {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %v", ErrInvalidConfiguration, strings.Join(names, ", "))
}

// LookupEnvFunc has the signature of os.LookupEnv
type LookupEnvFunc func(key string) (string, bool)

// ApplyEnv overrides the workflow identifiers with the environment variables that
// the deployment sets. Values from the environment win over the config file.
func (c *Config) ApplyEnv(lookup LookupEnvFunc) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"CRAWLER_NAME", &c.Workflow.CrawlerName},
		{"DATABASE_NAME", &c.Workflow.DatabaseName},
		{"TABLE_NAME", &c.Workflow.TableName},
		{"ATHENA_OUTPUT", &c.Workflow.QueryOutputLocation},
		{"DATA_LAKE_BUCKET", &c.Workflow.SnapshotBucket},
		{"AUDITOR_FUNCTION_NAME", &c.Workflow.AuditTarget},
		{"AWS_REGION", &c.Workflow.Region},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}
