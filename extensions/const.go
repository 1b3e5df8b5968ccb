// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package extensions

const (
	// CLIOptRegion is the cli option for region
	CLIOptRegion = "region"
	// CLIOptEndpointURL is the cli option for overriding the service endpoint
	CLIOptEndpointURL = "endpoint-url"
	// CLIOptTable is the cli option for the table name
	CLIOptTable = "table"
	// CLIOptCount is the cli option for the number of records
	CLIOptCount     = "count"
	CLIOptBatchSize = "batch-size"
)
