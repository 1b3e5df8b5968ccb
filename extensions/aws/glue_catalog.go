// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

// GlueCatalog refreshes the catalog with a Glue crawler. The crawler state
// (READY, RUNNING, STOPPING) is reported as is.
type GlueCatalog struct {
	client GlueAPI
	logger log.Logger
}

var _ engine.MetadataCatalog = (*GlueCatalog)(nil)

func NewGlueCatalog(client GlueAPI, logger log.Logger) *GlueCatalog {
	return &GlueCatalog{client: client, logger: logger}
}

func (c *GlueCatalog) TriggerRefresh(ctx context.Context, crawlerName string) error {
	_, err := c.client.StartCrawler(ctx, &glue.StartCrawlerInput{Name: aws.String(crawlerName)})
	if err == nil {
		c.logger.Info("crawler started", tag.Crawler(crawlerName))
		return nil
	}
	var running *gluetypes.CrawlerRunningException
	if errors.As(err, &running) {
		return fmt.Errorf("%w: %v", engine.ErrRefreshAlreadyRunning, err)
	}
	if ErrorChecker.IsThrottlingError(err) {
		c.logger.Warn("crawler start throttled", tag.Crawler(crawlerName), tag.Error(err))
	}
	return err
}

func (c *GlueCatalog) FetchState(ctx context.Context, crawlerName string) (engine.ExecutionState, error) {
	out, err := c.client.GetCrawler(ctx, &glue.GetCrawlerInput{Name: aws.String(crawlerName)})
	if err != nil {
		logStateCheckError(c.logger, err, tag.Crawler(crawlerName))
		return "", err
	}
	if out.Crawler == nil {
		return "", fmt.Errorf("crawler %v not found in response", crawlerName)
	}
	return engine.ExecutionState(out.Crawler.State), nil
}
