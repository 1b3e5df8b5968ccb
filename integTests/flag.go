// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package integTests

import "flag"

var useLocalServer = flag.Bool("useLocalServer", false,
	"run integ test against local server")

var apiEndpoint = flag.String("apiEndpoint", "http://localhost:18801",
	"endpoint of the api service")

var asyncEndpoint = flag.String("asyncEndpoint", "http://localhost:18701",
	"endpoint of the async service")
