// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package urlautofix

import (
	"os"
	"strings"
)

// AutofixEnvKey names the host that replaces localhost in dispatch urls,
// e.g. host.docker.internal when the server runs in a container
const AutofixEnvKey = "AUTO_FIX_LOCALHOST_URL"

type FixUrlFunc func(url string) string

var urlFixer FixUrlFunc = DefaultFixUrlFunc

func SetUrlFixer(fixer FixUrlFunc) {
	urlFixer = fixer
}

func FixUrl(url string) string {
	return urlFixer(url)
}

func DefaultFixUrlFunc(url string) string {
	autofixHost := os.Getenv(AutofixEnvKey)
	if autofixHost != "" {
		url = strings.Replace(url, "localhost", autofixHost, 1)
		url = strings.Replace(url, "127.0.0.1", autofixHost, 1)
	}

	return url
}
