package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/types"
)

// NewApp builds the scrap CLI. Without a subcommand it starts the
// interactive chat.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "scrap",
		Usage:   "You.com Scraper - Interactive Chat Mode",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:   append(GlobalFlags(), ChatFlags()...),
		Action:  ChatAction,
		Commands: []*cli.Command{
			AskCommand(),
			HistoryCommand(),
			ExportCommand(),
			ArchiveCommand(),
			ConfigCommand(),
			DebugCommand(),
			VersionCommand(commit),
		},
	}
}
