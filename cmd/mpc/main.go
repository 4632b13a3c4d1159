// Command mpc runs one party of a secure multi-party computation.
package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
)

// Automatically set through -ldflags
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "mpc",
		Version: version,
		Usage:   "secure multi-party computation party",
		Flags:   []cli.Flag{verboseFlag},
		Commands: []*cli.Command{
			sumCmd,
			tinyTablesCmd,
			otServeCmd,
			otBenchCmd,
			rpcCmd,
			genConfigCmd,
		},
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("mpc %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	return app
}
