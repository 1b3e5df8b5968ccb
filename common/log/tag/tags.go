// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package tag

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const LoggingCallAtKey = "logging-call-at"

// Tag is the interface for logging system
type Tag struct {
	// keep this field private
	field zap.Field
}

// Field returns a zap field
func (t *Tag) Field() zap.Field {
	return t.field
}

func newStringTag(key string, value string) Tag {
	return Tag{
		field: zap.String(key, value),
	}
}

func newInt(key string, value int) Tag {
	return Tag{
		field: zap.Int(key, value),
	}
}

func newBoolTag(key string, value bool) Tag {
	return Tag{
		field: zap.Bool(key, value),
	}
}

func newTimeTag(key string, value time.Time) Tag {
	return Tag{
		field: zap.Time(key, value),
	}
}

func newObjectTag(key string, value interface{}) Tag {
	return Tag{
		field: zap.String(key, fmt.Sprintf("%v", value)),
	}
}

func newErrorTag(key string, value error) Tag {
	//NOTE zap already chosen "error" as key
	return Tag{
		field: zap.Error(value),
	}
}

func newFloat64(key string, value float64) Tag {
	return Tag{
		field: zap.Float64(key, value),
	}
}

func newDurationTag(key string, value time.Duration) Tag {
	return Tag{
		field: zap.Duration(key, value),
	}
}

// TAGS

func Error(err error) Tag {
	return newErrorTag("error", err)
}

func Service(sv string) Tag {
	return newStringTag("service", sv)
}

func Message(msg string) Tag {
	return newStringTag("message", msg)
}

func StatusCode(status int) Tag {
	return newInt("status", status)
}

func AnyToStr(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

func Value(v interface{}) Tag {
	return newObjectTag("value", v)
}

func ID(v string) Tag {
	return newStringTag("ID", v)
}

func Key(v string) Tag {
	return newStringTag("Key", v)
}

func DefaultValue(v interface{}) Tag {
	return newObjectTag("default-value", v)
}

// Label is the descriptive name of a poll loop, e.g. "Crawler privacy-crawler"
func Label(v string) Tag {
	return newStringTag("label", v)
}

func State(v string) Tag {
	return newStringTag("state", v)
}

func Attempt(v int) Tag {
	return newInt("attempt", v)
}

func Attempts(v int) Tag {
	return newInt("attempts", v)
}

func NextWait(v time.Duration) Tag {
	return newDurationTag("next_wait", v)
}

func Duration(v time.Duration) Tag {
	return newDurationTag("duration", v)
}

func BackoffFactor(v float64) Tag {
	return newFloat64("backoff_factor", v)
}

func Crawler(v string) Tag {
	return newStringTag("crawler", v)
}

func Database(v string) Tag {
	return newStringTag("database", v)
}

func Table(v string) Tag {
	return newStringTag("table", v)
}

func Bucket(v string) Tag {
	return newStringTag("bucket", v)
}

func Region(v string) Tag {
	return newStringTag("region", v)
}

func QueryId(v string) Tag {
	return newStringTag("query_id", v)
}

func ExportArn(v string) Tag {
	return newStringTag("export_arn", v)
}

func ExportStatus(v string) Tag {
	return newStringTag("export_status", v)
}

func Target(v string) Tag {
	return newStringTag("target", v)
}

func Phase(v string) Tag {
	return newStringTag("phase", v)
}

func RequestId(v string) Tag {
	return newStringTag("request_id", v)
}

func TaskId(v string) Tag {
	return newStringTag("task_id", v)
}

func Channel(v string) Tag {
	return newStringTag("channel", v)
}

func Count(v int) Tag {
	return newInt("count", v)
}

func Timestamp(v time.Time) Tag {
	return newTimeTag("timestamp", v)
}

func Accepted(v bool) Tag {
	return newBoolTag("accepted", v)
}
