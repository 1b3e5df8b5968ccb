// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/extensions"
)

const ExtensionName = "aws"

type extension struct{}

var _ extensions.BackendExtension = (*extension)(nil)

func init() {
	extensions.RegisterBackend(ExtensionName, &extension{})
}

func (e *extension) StartBackend(ctx context.Context, cfg *config.Config, logger log.Logger) (*extensions.Backend, error) {
	sdkCfg, err := LoadSDKConfig(ctx, cfg.AWS, cfg.Workflow.Region)
	if err != nil {
		return nil, err
	}
	logger.Info("aws backend started", tag.Region(sdkCfg.Region))
	return NewBackend(NewClients(sdkCfg), logger), nil
}

// NewBackend wires Glue as catalog, Athena as query engine,
// DynamoDB point in time export as exporter and Lambda as invoker
func NewBackend(clients *Clients, logger log.Logger) *extensions.Backend {
	logger = logger.WithTags(tag.Service(ExtensionName))
	return &extensions.Backend{
		Catalog:     NewGlueCatalog(clients.Glue, logger),
		QueryEngine: NewAthenaQueryEngine(clients.Athena, logger),
		Exporter:    NewDynamoDBExporter(clients.DynamoDB, clients.STS, logger),
		Invoker:     NewLambdaInvoker(clients.Lambda, logger),
	}
}
