// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Command canvio is the Canvio command line client.
package main

import "github.com/canvio/canvio/internal/cli"

func main() {
	cli.Execute()
}
