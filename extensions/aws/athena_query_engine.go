// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

// AthenaQueryEngine runs the audit query with Athena.
// States are QUEUED, RUNNING, SUCCEEDED, FAILED and CANCELLED.
type AthenaQueryEngine struct {
	client AthenaAPI
	logger log.Logger
}

var _ engine.QueryEngine = (*AthenaQueryEngine)(nil)

func NewAthenaQueryEngine(client AthenaAPI, logger log.Logger) *AthenaQueryEngine {
	return &AthenaQueryEngine{client: client, logger: logger}
}

func (a *AthenaQueryEngine) StartExecution(
	ctx context.Context, query, database, outputLocation string,
) (engine.QueryHandle, error) {
	out, err := a.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:           aws.String(query),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{Database: aws.String(database)},
		ResultConfiguration:   &athenatypes.ResultConfiguration{OutputLocation: aws.String(outputLocation)},
	})
	if err != nil {
		return "", err
	}
	id := aws.ToString(out.QueryExecutionId)
	if id == "" {
		return "", fmt.Errorf("athena returned no query execution id")
	}
	return engine.QueryHandle(id), nil
}

func (a *AthenaQueryEngine) FetchState(ctx context.Context, handle engine.QueryHandle) (engine.ExecutionState, error) {
	out, err := a.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(handle.String()),
	})
	if err != nil {
		logStateCheckError(a.logger, err, tag.QueryId(handle.String()))
		return "", err
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return "", fmt.Errorf("query execution %v has no status", handle)
	}
	status := out.QueryExecution.Status
	if reason := aws.ToString(status.StateChangeReason); reason != "" {
		a.logger.Info("query state changed", tag.QueryId(handle.String()),
			tag.State(string(status.State)), tag.Message(reason))
	}
	return engine.ExecutionState(status.State), nil
}
