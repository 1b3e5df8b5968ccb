// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package urlautofix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFixUrlFunc(t *testing.T) {
	t.Setenv(AutofixEnvKey, "")
	assert.Equal(t, "http://localhost:8802/x", DefaultFixUrlFunc("http://localhost:8802/x"))

	t.Setenv(AutofixEnvKey, "host.docker.internal")
	assert.Equal(t, "http://host.docker.internal:8802/x", DefaultFixUrlFunc("http://localhost:8802/x"))
	assert.Equal(t, "http://host.docker.internal:8802/x", DefaultFixUrlFunc("http://127.0.0.1:8802/x"))
}
