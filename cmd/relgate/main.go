// Command relgate is the CLI entrypoint: a thin wrapper around
// internal/cli's root command, delegating everything past argument
// parsing to internal/.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/relgate/relgate/internal/cli"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	return cli.New().Run(context.Background(), args)
}
