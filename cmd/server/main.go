// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/xcherryio/auditflow/cmd/server/bootstrap"

	_ "github.com/xcherryio/auditflow/extensions/aws"    // import aws extension
	_ "github.com/xcherryio/auditflow/extensions/memory" // import memory extension
)

func main() {
	app := &cli.App{
		Name:  "auditflow server",
		Usage: "start the auditflow server",
		Action: func(c *cli.Context) error {
			bootstrap.StartAuditFlowServerCli(c)
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  bootstrap.FlagConfig,
				Value: "./config/development-aws.yaml",
				Usage: "the config to start auditflow server",
			},
			&cli.StringFlag{
				Name: bootstrap.FlagService,
				Value: fmt.Sprintf("%v,%v,%v",
					bootstrap.ApiServiceName, bootstrap.AsyncServiceName, bootstrap.SchedulerServiceName),
				Usage: "the services to start, separated by comma",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
