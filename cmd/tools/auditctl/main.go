// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"
	"os"
)

func main() {
	app := buildCLIOptions(os.Stdout)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
