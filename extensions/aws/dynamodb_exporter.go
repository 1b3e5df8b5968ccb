// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
)

// DynamoDBExporter starts a point in time export of a table into S3, in DYNAMODB_JSON format.
// The table ARN is built from the account of the caller identity.
type DynamoDBExporter struct {
	ddb    DynamoDBExportAPI
	sts    STSAPI
	logger log.Logger
}

var _ engine.SnapshotExporter = (*DynamoDBExporter)(nil)

func NewDynamoDBExporter(ddb DynamoDBExportAPI, stsClient STSAPI, logger log.Logger) *DynamoDBExporter {
	return &DynamoDBExporter{ddb: ddb, sts: stsClient, logger: logger}
}

func (e *DynamoDBExporter) ExportTable(ctx context.Context, req engine.ExportRequest) (engine.ExportHandle, error) {
	identity, err := e.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	region := req.Region
	if region == "" {
		region = config.DefaultRegion
	}
	prefix := req.Prefix
	if prefix == "" {
		prefix = config.DefaultExportPrefix
	}
	tableArn := TableArn(region, aws.ToString(identity.Account), req.TableName)

	out, err := e.ddb.ExportTableToPointInTime(ctx, &dynamodb.ExportTableToPointInTimeInput{
		TableArn:     aws.String(tableArn),
		S3Bucket:     aws.String(req.Bucket),
		S3Prefix:     aws.String(prefix),
		ExportFormat: ddbtypes.ExportFormatDynamodbJson,
	})
	if err != nil {
		return "", err
	}
	if out.ExportDescription == nil || out.ExportDescription.ExportArn == nil {
		return "", fmt.Errorf("export of %v returned no export arn", tableArn)
	}
	e.logger.Debug("export requested", tag.Table(tableArn), tag.ExportStatus(string(out.ExportDescription.ExportStatus)))
	return engine.ExportHandle(aws.ToString(out.ExportDescription.ExportArn)), nil
}

func TableArn(region, accountId, table string) string {
	return fmt.Sprintf("arn:aws:dynamodb:%v:%v:table/%v", region, accountId, table)
}
