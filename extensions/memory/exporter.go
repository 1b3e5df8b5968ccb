// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
	"github.com/xcherryio/auditflow/engine"
)

const fakeAccountId = "000000000000"

// Exporter records the export requests and hands out fake export ARNs
type Exporter struct {
	sync.Mutex
	region  string
	logger  log.Logger
	exports []engine.ExportRequest
}

var _ engine.SnapshotExporter = (*Exporter)(nil)

func newExporter(region string, logger log.Logger) *Exporter {
	return &Exporter{region: region, logger: logger}
}

func (e *Exporter) ExportTable(_ context.Context, req engine.ExportRequest) (engine.ExportHandle, error) {
	region := req.Region
	if region == "" {
		region = e.region
	}
	arn := fmt.Sprintf("arn:aws:dynamodb:%v:%v:table/%v/export/%v", region, fakeAccountId, req.TableName, uuid.NewString())

	e.Lock()
	defer e.Unlock()
	e.exports = append(e.exports, req)
	e.logger.Debug("memory export started", tag.ExportArn(arn))
	return engine.ExportHandle(arn), nil
}

func (e *Exporter) Exports() []engine.ExportRequest {
	e.Lock()
	defer e.Unlock()
	return append([]engine.ExportRequest(nil), e.exports...)
}
