// Package cmd provides the CLI commands of the scrap binary.
package cmd

import "github.com/urfave/cli/v2"

// Exit codes.
const (
	exitSuccess     = 0
	exitError       = 1
	exitConfigError = 2
)

// Global flags, read from any subcommand through the context lineage.
var (
	// ConfigFlag overrides the config file location.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config file (default ~/.you_scraper/config.yaml)",
		EnvVars: []string{"SCRAP_CONFIG"},
	}

	// PlainFlag disables rich rendering, colors and the spinner.
	PlainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Print answers as plain text",
	}

	// VerboseFlag lowers the log level to debug.
	VerboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log at debug level",
	}

	// LogStderrFlag sends logs to stderr instead of the log file.
	LogStderrFlag = &cli.BoolFlag{
		Name:  "log-stderr",
		Usage: "Write logs to stderr instead of ~/.you_scraper/scrap.log",
	}
)

// Query flags.
var (
	// PageFlag selects the result page.
	PageFlag = &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"pa"},
		Usage:   "Number of the page",
	}

	// ResultsFlag sets the result count.
	ResultsFlag = &cli.IntFlag{
		Name:    "results",
		Aliases: []string{"r"},
		Usage:   "Results count",
	}
)

// FormatFlag selects structured output format: json, table, yaml.
var FormatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Usage:   "Output format: json, table, yaml",
}

// GlobalFlags returns the flags registered on the app.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		PlainFlag,
		VerboseFlag,
		LogStderrFlag,
	}
}

// QueryFlags returns the flags of commands that send queries.
func QueryFlags() []cli.Flag {
	return []cli.Flag{
		PageFlag,
		ResultsFlag,
	}
}

// ReadOnlyFlags returns the flags of commands that print structured output.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
	}
}

// PromptFlag sends an initial prompt before the chat loop starts.
var PromptFlag = &cli.StringFlag{
	Name:    "prompt",
	Aliases: []string{"p"},
	Usage:   "Initial prompt",
}

// ChatFlags returns the flags of the interactive chat.
func ChatFlags() []cli.Flag {
	return append([]cli.Flag{PromptFlag}, QueryFlags()...)
}
