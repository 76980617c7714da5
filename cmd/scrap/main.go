// Package main provides the scrap CLI entrypoint.
//
// Usage:
//
//	scrap [--prompt <text>] [options]     interactive chat
//	scrap <command> [options] [args]
//
// Exit codes:
//   - 0: success
//   - 1: query or command error
//   - 2: configuration error
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/cli/cmd"
)

// commit is set via ldflags at build time.
var commit = "unknown"

// Indirections for tests.
var (
	osExit           = os.Exit
	stderr io.Writer = os.Stderr
)

func main() {
	app := cmd.NewApp(commit)
	app.ExitErrHandler = exitErrHandler

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already exited for every error it saw.
		osExit(1)
	}
}

// exitErrHandler prints err and exits, preserving codes from cli.Exit.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is "exit status N"; those carry no message.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(stderr, msg)
		}
		osExit(code)
		return
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	osExit(1)
}
