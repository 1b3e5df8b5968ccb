// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package awstool

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/urfave/cli/v2"
	"github.com/xcherryio/auditflow/common/clock"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/config"
	"github.com/xcherryio/auditflow/extensions"
	awsext "github.com/xcherryio/auditflow/extensions/aws"
)

const DefaultTable = "privacy-signal-analyzer-logs-dev"
const DefaultCount = 1000

// BuildCLIOptions builds the options for cli
func BuildCLIOptions() *cli.App {
	app := cli.NewApp()

	app.Name = "auditflow data load tool"
	app.Usage = "ingests synthetic privacy signals into a DynamoDB table"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  extensions.CLIOptRegion,
			Value: config.DefaultRegion,
			Usage: "aws region of the table",
		},
		&cli.StringFlag{
			Name:  extensions.CLIOptEndpointURL,
			Usage: "optional endpoint override, e.g. http://localhost:4566 for localstack",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "load",
			Usage: "writes synthetic records in batches",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    extensions.CLIOptTable,
					Aliases: []string{"t"},
					Value:   DefaultTable,
					Usage:   "target DynamoDB table name",
				},
				&cli.IntFlag{
					Name:    extensions.CLIOptCount,
					Aliases: []string{"c"},
					Value:   DefaultCount,
					Usage:   "total synthetic record count",
				},
				&cli.IntFlag{
					Name:  extensions.CLIOptBatchSize,
					Value: MaxBatchSize,
					Usage: "records per BatchWriteItem call",
				},
			},
			Action: loadByCli,
		},
	}

	return app
}

func loadByCli(c *cli.Context) error {
	logger := log.NewDevelopmentLogger()

	sdkCfg, err := awsext.LoadSDKConfig(c.Context, config.AWSConfig{
		EndpointURL: c.String(extensions.CLIOptEndpointURL),
		RetryMode:   "adaptive",
	}, c.String(extensions.CLIOptRegion))
	if err != nil {
		return err
	}

	loader := NewLoader(dynamodb.NewFromConfig(sdkCfg), clock.NewRealTimeSource(), logger, time.Now().UnixNano())
	result, err := loader.Load(c.Context, c.String(extensions.CLIOptTable), c.Int(extensions.CLIOptCount), c.Int(extensions.CLIOptBatchSize))
	fmt.Printf("Final Count: %v records\nDuration: %.2fs\n", result.Loaded, result.Duration.Seconds())
	if secs := result.Duration.Seconds(); secs > 0 {
		fmt.Printf("Throughput: %.2f items/sec\n", float64(result.Loaded)/secs)
	}
	return err
}
