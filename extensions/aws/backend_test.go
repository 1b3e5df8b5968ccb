// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/engine"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGlue struct {
	startErr error
	getErr   error
	state    gluetypes.CrawlerState
	started  []string
}

func (f *fakeGlue) StartCrawler(_ context.Context, in *glue.StartCrawlerInput, _ ...func(*glue.Options)) (*glue.StartCrawlerOutput, error) {
	f.started = append(f.started, aws.ToString(in.Name))
	return &glue.StartCrawlerOutput{}, f.startErr
}

func (f *fakeGlue) GetCrawler(_ context.Context, in *glue.GetCrawlerInput, _ ...func(*glue.Options)) (*glue.GetCrawlerOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &glue.GetCrawlerOutput{Crawler: &gluetypes.Crawler{Name: in.Name, State: f.state}}, nil
}

type fakeAthena struct {
	started *athena.StartQueryExecutionInput
	state   athenatypes.QueryExecutionState
	getErr  error
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.started = in
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q-123")}, nil
}

func (f *fakeAthena) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: &athenatypes.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status:           &athenatypes.QueryExecutionStatus{State: f.state},
	}}, nil
}

type fakeDynamoDB struct {
	exportInput *dynamodb.ExportTableToPointInTimeInput
	exportErr   error
	batches     []*dynamodb.BatchWriteItemInput
	batchErrs   []error
}

func (f *fakeDynamoDB) ExportTableToPointInTime(_ context.Context, in *dynamodb.ExportTableToPointInTimeInput, _ ...func(*dynamodb.Options)) (*dynamodb.ExportTableToPointInTimeOutput, error) {
	f.exportInput = in
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &dynamodb.ExportTableToPointInTimeOutput{ExportDescription: &ddbtypes.ExportDescription{
		ExportArn:    aws.String(aws.ToString(in.TableArn) + "/export/01"),
		ExportStatus: ddbtypes.ExportStatusInProgress,
	}}, nil
}

func (f *fakeDynamoDB) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches = append(f.batches, in)
	if len(f.batchErrs) > 0 {
		err := f.batchErrs[0]
		f.batchErrs = f.batchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

type fakeSTS struct{}

func (fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil
}

type fakeLambda struct {
	input  *lambda.InvokeInput
	output *lambda.InvokeOutput
}

func (f *fakeLambda) Invoke(_ context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.input = in
	return f.output, nil
}

func TestGlueCatalog(t *testing.T) {
	client := &fakeGlue{state: gluetypes.CrawlerStateReady}
	catalog := NewGlueCatalog(client, log.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, catalog.TriggerRefresh(ctx, "signals-crawler"))
	assert.Equal(t, []string{"signals-crawler"}, client.started)

	state, err := catalog.FetchState(ctx, "signals-crawler")
	require.NoError(t, err)
	assert.Equal(t, engine.StateReady, state)
}

func TestGlueCatalogCrawlerAlreadyRunning(t *testing.T) {
	client := &fakeGlue{startErr: &gluetypes.CrawlerRunningException{Message: aws.String("crawler is running")}}
	catalog := NewGlueCatalog(client, log.NewNopLogger())

	err := catalog.TriggerRefresh(context.Background(), "c")

	assert.ErrorIs(t, err, engine.ErrRefreshAlreadyRunning)
}

func TestGlueCatalogOtherRejection(t *testing.T) {
	rejection := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"}
	catalog := NewGlueCatalog(&fakeGlue{startErr: rejection}, log.NewNopLogger())

	err := catalog.TriggerRefresh(context.Background(), "c")

	assert.ErrorIs(t, err, rejection)
	assert.False(t, errors.Is(err, engine.ErrRefreshAlreadyRunning))
}

func TestAthenaQueryEngine(t *testing.T) {
	client := &fakeAthena{state: athenatypes.QueryExecutionStateCancelled}
	queries := NewAthenaQueryEngine(client, log.NewNopLogger())
	ctx := context.Background()

	handle, err := queries.StartExecution(ctx, "SELECT 1", "privacy_db", "s3://results/")
	require.NoError(t, err)
	assert.Equal(t, engine.QueryHandle("q-123"), handle)
	assert.Equal(t, "SELECT 1", aws.ToString(client.started.QueryString))
	assert.Equal(t, "privacy_db", aws.ToString(client.started.QueryExecutionContext.Database))
	assert.Equal(t, "s3://results/", aws.ToString(client.started.ResultConfiguration.OutputLocation))

	state, err := queries.FetchState(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, engine.StateCancelled, state)
}

func newObservedLogger() (log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return log.NewLogger(zap.New(core)), logs
}

func TestGlueCatalogFetchStateCrawlerNotFound(t *testing.T) {
	logger, logs := newObservedLogger()
	notFound := &smithy.GenericAPIError{Code: "EntityNotFoundException", Message: "crawler missing"}
	catalog := NewGlueCatalog(&fakeGlue{getErr: notFound}, logger)

	_, err := catalog.FetchState(context.Background(), "missing-crawler")

	assert.ErrorIs(t, err, notFound)
	entries := logs.FilterMessage("state check target does not exist").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "missing-crawler", entries[0].ContextMap()["crawler"])
}

func TestAthenaQueryEngineFetchStateErrors(t *testing.T) {
	tests := map[string]struct {
		err     error
		message string
		level   zapcore.Level
	}{
		"not found": {
			err:     &smithy.GenericAPIError{Code: "ResourceNotFoundException"},
			message: "state check target does not exist",
			level:   zapcore.ErrorLevel,
		},
		"timeout": {
			err:     fmt.Errorf("operation error Athena: GetQueryExecution, %w", context.DeadlineExceeded),
			message: "state check timed out",
			level:   zapcore.WarnLevel,
		},
		"throttled": {
			err:     &smithy.GenericAPIError{Code: "ThrottlingException"},
			message: "state check throttled after sdk retries",
			level:   zapcore.WarnLevel,
		},
		"other": {
			err:     &smithy.GenericAPIError{Code: "InvalidRequestException"},
			message: "state check failed",
			level:   zapcore.WarnLevel,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			logger, logs := newObservedLogger()
			queries := NewAthenaQueryEngine(&fakeAthena{getErr: tt.err}, logger)

			_, err := queries.FetchState(context.Background(), "q-404")

			assert.ErrorIs(t, err, tt.err)
			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, "q-404", entries[0].ContextMap()["query_id"])
		})
	}
}

func TestDynamoDBExporter(t *testing.T) {
	ddb := &fakeDynamoDB{}
	exporter := NewDynamoDBExporter(ddb, fakeSTS{}, log.NewNopLogger())

	handle, err := exporter.ExportTable(context.Background(), engine.ExportRequest{
		TableName: "signals", Bucket: "lake", Region: "eu-west-1",
	})

	require.NoError(t, err)
	assert.Equal(t, engine.ExportHandle("arn:aws:dynamodb:eu-west-1:123456789012:table/signals/export/01"), handle)
	assert.Equal(t, "arn:aws:dynamodb:eu-west-1:123456789012:table/signals", aws.ToString(ddb.exportInput.TableArn))
	assert.Equal(t, "lake", aws.ToString(ddb.exportInput.S3Bucket))
	assert.Equal(t, "exports/", aws.ToString(ddb.exportInput.S3Prefix))
	assert.Equal(t, ddbtypes.ExportFormatDynamodbJson, ddb.exportInput.ExportFormat)
}

func TestDynamoDBExporterRejected(t *testing.T) {
	ddb := &fakeDynamoDB{exportErr: &smithy.GenericAPIError{Code: "PointInTimeRecoveryUnavailableException"}}
	exporter := NewDynamoDBExporter(ddb, fakeSTS{}, log.NewNopLogger())

	_, err := exporter.ExportTable(context.Background(), engine.ExportRequest{TableName: "signals", Bucket: "lake"})

	assert.Error(t, err)
	assert.Equal(t, "arn:aws:dynamodb:us-east-1:123456789012:table/signals", aws.ToString(ddb.exportInput.TableArn))
}

func TestLambdaInvoker(t *testing.T) {
	client := &fakeLambda{output: &lambda.InvokeOutput{StatusCode: 202}}
	invoker := NewLambdaInvoker(client, log.NewNopLogger())
	payload := engine.InvocationPayload{Type: engine.InvocationTypeSnapshotComplete, ExportArn: "arn:export"}

	require.NoError(t, invoker.Invoke(context.Background(), "auditor", payload))

	assert.Equal(t, "auditor", aws.ToString(client.input.FunctionName))
	assert.Equal(t, lambdatypes.InvocationTypeEvent, client.input.InvocationType)
	assert.JSONEq(t, `{"type":"SNAPSHOT_COMPLETE","export_arn":"arn:export"}`, string(client.input.Payload))
	var decoded engine.InvocationPayload
	require.NoError(t, json.Unmarshal(client.input.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestLambdaInvokerFunctionError(t *testing.T) {
	client := &fakeLambda{output: &lambda.InvokeOutput{StatusCode: 200, FunctionError: aws.String("Unhandled")}}
	invoker := NewLambdaInvoker(client, log.NewNopLogger())

	err := invoker.Invoke(context.Background(), "auditor", engine.InvocationPayload{})

	assert.ErrorContains(t, err, "Unhandled")
}

func TestErrorChecker(t *testing.T) {
	throttled := fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "ThrottlingException"})
	notFound := &smithy.GenericAPIError{Code: "ResourceNotFoundException"}

	assert.True(t, ErrorChecker.IsThrottlingError(throttled))
	assert.False(t, ErrorChecker.IsThrottlingError(notFound))
	assert.True(t, ErrorChecker.IsNotFoundError(notFound))
	assert.False(t, ErrorChecker.IsNotFoundError(errors.New("plain")))
	assert.True(t, ErrorChecker.IsTimeoutError(fmt.Errorf("call: %w", context.DeadlineExceeded)))
}

func TestNewBackendWiresEveryCollaborator(t *testing.T) {
	backend := NewBackend(&Clients{
		Glue:     &fakeGlue{},
		Athena:   &fakeAthena{},
		DynamoDB: &fakeDynamoDB{},
		STS:      fakeSTS{},
		Lambda:   &fakeLambda{},
	}, log.NewNopLogger())

	assert.IsType(t, &GlueCatalog{}, backend.Catalog)
	assert.IsType(t, &AthenaQueryEngine{}, backend.QueryEngine)
	assert.IsType(t, &DynamoDBExporter{}, backend.Exporter)
	assert.IsType(t, &LambdaInvoker{}, backend.Invoker)
}
