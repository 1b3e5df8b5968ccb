// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"github.com/xcherryio/auditflow/common/log/tag"
)

// Logger is our abstraction for logging
// Usage examples:
//
//	import "github.com/xcherryio/auditflow/common/log/tag"
//	1) logger = logger.WithTags(
//	        tag.Crawler("privacy-crawler"),
//	        tag.Phase("DISCOVERING"))
//	   logger.Info("hello world")
//	2) logger.Info("hello world",
//	        tag.QueryId("q-123"),
//	        tag.State("RUNNING"))
//	Note: msg should be static, it is not recommended to use fmt.Sprintf() for msg.
//	      Anything dynamic should be tagged.
type Logger interface {
	Debug(msg string, tags ...tag.Tag)
	Info(msg string, tags ...tag.Tag)
	Warn(msg string, tags ...tag.Tag)
	Error(msg string, tags ...tag.Tag)
	Fatal(msg string, tags ...tag.Tag)
	WithTags(tags ...tag.Tag) Logger
}
