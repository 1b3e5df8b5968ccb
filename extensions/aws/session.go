// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/xcherryio/auditflow/config"
)

// LoadSDKConfig resolves credentials the default way (env, shared config, role).
// Retries of a single call are left to the sdk retryer.
func LoadSDKConfig(ctx context.Context, cfg config.AWSConfig, region string) (aws.Config, error) {
	if cfg.Region != "" {
		region = cfg.Region
	}
	if region == "" {
		region = config.DefaultRegion
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.RetryMode != "" {
		retryMode, err := aws.ParseRetryMode(cfg.RetryMode)
		if err != nil {
			return aws.Config{}, fmt.Errorf("invalid aws.retryMode: %w", err)
		}
		opts = append(opts, awsconfig.WithRetryMode(retryMode))
	}
	if cfg.RetryMaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.RetryMaxAttempts))
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.EndpointURL))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// NewClients builds every client used by the backend and the tools
func NewClients(sdkCfg aws.Config) *Clients {
	return &Clients{
		Glue:     glue.NewFromConfig(sdkCfg),
		Athena:   athena.NewFromConfig(sdkCfg),
		DynamoDB: dynamodb.NewFromConfig(sdkCfg),
		STS:      sts.NewFromConfig(sdkCfg),
		Lambda:   lambda.NewFromConfig(sdkCfg),
	}
}
