// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"github.com/xcherryio/auditflow/client"
	"github.com/xcherryio/auditflow/engine"
	"github.com/xcherryio/auditflow/extensions"
	"github.com/xcherryio/auditflow/service/api"
)

const (
	flagApiEndpoint   = "api-endpoint"
	flagAsyncEndpoint = "async-endpoint"
	flagTimeout       = "timeout"
	flagBucket        = "bucket"
	flagEvent         = "event"
	flagExportArn     = "export-arn"
	flagExportStatus  = "export-status"
	flagRequestId     = "request-id"
)

func buildCLIOptions(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "auditctl"
	app.Usage = "command line tool for the auditflow server"
	app.Writer = out

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagApiEndpoint,
			Value:   client.DefaultApiEndpoint,
			Usage:   "endpoint of the api service",
			EnvVars: []string{"AUDITFLOW_API_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    flagAsyncEndpoint,
			Value:   client.DefaultAsyncEndpoint,
			Usage:   "endpoint of the async service",
			EnvVars: []string{"AUDITFLOW_ASYNC_ENDPOINT"},
		},
		&cli.DurationFlag{
			Name:  flagTimeout,
			Value: client.DefaultTimeout,
			Usage: "timeout of a single request",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "snapshot-start",
			Usage: "start exporting the table to the snapshot bucket",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: extensions.CLIOptTable, Usage: "overrides the configured table"},
				&cli.StringFlag{Name: flagBucket, Usage: "overrides the configured bucket"},
				&cli.StringFlag{Name: extensions.CLIOptRegion, Usage: "overrides the configured region"},
			},
			Action: func(c *cli.Context) error {
				result, err := newClient(c).StartSnapshot(c.Context, api.SnapshotStartRequest{
					TableName:  c.String(extensions.CLIOptTable),
					BucketName: c.String(flagBucket),
					Region:     c.String(extensions.CLIOptRegion),
				})
				return printResult(c, result, err)
			},
		},
		{
			Name:  "export-completed",
			Usage: "deliver an export status change event",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagEvent, Usage: "the raw event json, takes precedence over the other flags"},
				&cli.StringFlag{Name: flagExportArn, Usage: "arn of the export"},
				&cli.StringFlag{Name: flagExportStatus, Value: "COMPLETED", Usage: "status of the export"},
			},
			Action: func(c *cli.Context) error {
				event, err := parseEvent(c)
				if err != nil {
					return err
				}
				result, err := newClient(c).ExportCompleted(c.Context, event)
				return printResult(c, result, err)
			},
		},
		{
			Name:  "audit",
			Usage: "run an opt-out audit and wait for its result",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagRequestId, Usage: "correlation id, generated by the server if empty"},
			},
			Action: func(c *cli.Context) error {
				result, err := newClient(c).RunAudit(c.Context, c.String(flagRequestId))
				var respErr *client.ResponseError
				if errors.As(err, &respErr) {
					// a failed audit still has a body worth printing
					_ = printJson(c, result)
				}
				return printResult(c, result, err)
			},
		},
		{
			Name:  "invoke",
			Usage: "queue an opt-out audit on the async service",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagExportArn, Usage: "arn of the export, informational"},
			},
			Action: func(c *cli.Context) error {
				taskId, err := newClient(c).InvokeAudit(c.Context, engine.InvocationPayload{
					Type:      engine.InvocationTypeSnapshotComplete,
					ExportArn: c.String(flagExportArn),
				})
				return printResult(c, map[string]string{"task_id": taskId}, err)
			},
		},
	}
	return app
}

func newClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String(flagApiEndpoint), c.String(flagAsyncEndpoint), c.Duration(flagTimeout))
}

func parseEvent(c *cli.Context) (engine.ExportCompletionEvent, error) {
	var event engine.ExportCompletionEvent
	if raw := c.String(flagEvent); raw != "" {
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return event, fmt.Errorf("invalid --%v: %w", flagEvent, err)
		}
		return event, nil
	}
	event.Detail.ExportArn = c.String(flagExportArn)
	event.Detail.ExportStatus = c.String(flagExportStatus)
	return event, nil
}

func printResult(c *cli.Context, result any, err error) error {
	if err != nil {
		return err
	}
	return printJson(c, result)
}

func printJson(c *cli.Context, v any) error {
	encoder := json.NewEncoder(c.App.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
