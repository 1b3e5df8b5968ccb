// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import "fmt"

// BuildOptOutAuditQuery counts the opt-out records of the audited table
func BuildOptOutAuditQuery(database, table string) string {
	return fmt.Sprintf(
		`SELECT count(*) as total_opt_outs FROM "%v"."%v" WHERE action = 'opt_out';`, database, table)
}
