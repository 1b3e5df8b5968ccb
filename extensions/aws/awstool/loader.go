// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package awstool

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/engine"
	awsext "github.com/xcherryio/auditflow/extensions/aws"
)

// MaxBatchSize is the BatchWriteItem limit
const MaxBatchSize = 25

var signalActions = []string{"opt_in", "opt_out", "preference_update"}

type (
	// Loader writes synthetic privacy signal records, for benchmarking discovery and the audit query
	Loader struct {
		client     awsext.DynamoDBWriteAPI
		timeSource clock.TimeSource
		logger     log.Logger
		rand       *rand.Rand
		// retry policy of a throttled or partially processed batch
		retry config.PollPolicy
	}

	LoadResult struct {
		Loaded   int
		Duration time.Duration
	}
)

func NewLoader(client awsext.DynamoDBWriteAPI, timeSource clock.TimeSource, logger log.Logger, seed int64) *Loader {
	return &Loader{
		client:     client,
		timeSource: timeSource,
		logger:     logger,
		rand:       rand.New(rand.NewSource(seed)),
		retry: config.PollPolicy{
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2,
			MaxAttempts:   8,
		},
	}
}

// Load writes count records in batches. It stops at the first batch that cannot be written
// and returns what was loaded so far.
func (l *Loader) Load(ctx context.Context, table string, count, batchSize int) (LoadResult, error) {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		return LoadResult{}, fmt.Errorf("batch size must be in [1, %v], got %v", MaxBatchSize, batchSize)
	}
	logger := l.logger.WithTags(tag.Table(table))
	logger.Info("data load started", tag.Count(count))

	start := l.timeSource.Now()
	result := LoadResult{}
	for result.Loaded < count {
		size := batchSize
		if remaining := count - result.Loaded; remaining < size {
			size = remaining
		}
		requests := make([]ddbtypes.WriteRequest, 0, size)
		for i := 0; i < size; i++ {
			requests = append(requests, ddbtypes.WriteRequest{
				PutRequest: &ddbtypes.PutRequest{Item: l.NewMockRecord()},
			})
		}
		if err := l.writeBatch(ctx, table, requests); err != nil {
			result.Duration = l.timeSource.Now().Sub(start)
			logger.Error("batch write failed", tag.Count(result.Loaded), tag.Error(err))
			return result, err
		}
		result.Loaded += size
		if result.Loaded%100 == 0 {
			logger.Info("records ingested", tag.Count(result.Loaded))
		}
	}
	result.Duration = l.timeSource.Now().Sub(start)
	logger.Info("data load completed", tag.Count(result.Loaded), tag.Duration(result.Duration))
	return result, nil
}

func (l *Loader) writeBatch(ctx context.Context, table string, requests []ddbtypes.WriteRequest) error {
	for attempt := 1; ; attempt++ {
		out, err := l.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]ddbtypes.WriteRequest{table: requests},
		})
		retryable := err != nil && awsext.ErrorChecker.IsThrottlingError(err)
		if err != nil && !retryable {
			return err
		}
		if err == nil {
			requests = out.UnprocessedItems[table]
			if len(requests) == 0 {
				return nil
			}
		}
		if attempt >= l.retry.MaxAttempts {
			return fmt.Errorf("batch not fully written after %v attempts: %w", attempt, engine.ErrPollTimeout)
		}
		if err := l.timeSource.Sleep(ctx, engine.GetNextBackoff(attempt, l.retry)); err != nil {
			return err
		}
	}
}

// NewMockRecord returns a synthetic privacy signal
func (l *Loader) NewMockRecord() map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"user_id":   &ddbtypes.AttributeValueMemberS{Value: uuid.NewString()},
		"timestamp": &ddbtypes.AttributeValueMemberS{Value: l.timeSource.Now().UTC().Format("2006-01-02T15:04:05Z")},
		"action":    &ddbtypes.AttributeValueMemberS{Value: signalActions[l.rand.Intn(len(signalActions))]},
		"source":    &ddbtypes.AttributeValueMemberS{Value: "mission_critical_load_test"},
		"is_mock":   &ddbtypes.AttributeValueMemberBOOL{Value: true},
	}
}
