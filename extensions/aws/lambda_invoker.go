// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

// LambdaInvoker hands the payload to a function with the Event invocation type,
// so the call returns once the invocation is queued
type LambdaInvoker struct {
	client LambdaAPI
	logger log.Logger
}

var _ engine.Invoker = (*LambdaInvoker)(nil)

func NewLambdaInvoker(client LambdaAPI, logger log.Logger) *LambdaInvoker {
	return &LambdaInvoker{client: client, logger: logger}
}

func (l *LambdaInvoker) Invoke(ctx context.Context, target string, payload engine.InvocationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	out, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(target),
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        body,
	})
	if err != nil {
		return err
	}
	if out.FunctionError != nil {
		return fmt.Errorf("invoke %v: function error %v", target, aws.ToString(out.FunctionError))
	}
	if out.StatusCode >= 300 {
		return fmt.Errorf("invoke %v: unexpected status code %v", target, out.StatusCode)
	}
	l.logger.Debug("function invoked", tag.Target(target), tag.StatusCode(int(out.StatusCode)))
	return nil
}
