// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package httperror

import (
	"fmt"
	"net/http"

	"github.com/xcherryio/auditflow/common/log"
	"github.com/xcherryio/auditflow/common/log/tag"
)

// CheckHttpResponseAndError returns a non nil error when the call failed or the status is not 2xx
func CheckHttpResponseAndError(err error, httpResp *http.Response, logger log.Logger) error {
	status := 0
	if httpResp != nil {
		status = httpResp.StatusCode
	}
	logger.Debug("check http response and error", tag.Error(err), tag.StatusCode(status))

	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected http status %v", status)
	}
	return nil
}
