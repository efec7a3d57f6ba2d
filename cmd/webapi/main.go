package main

import (
	"fmt"
	"os"

	"github.com/samvad-hq/webapi/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webapi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := cli.NewRootCommand(cli.BuildInfo{Version: version, BuildTime: buildTime})
	return root.Execute()
}
