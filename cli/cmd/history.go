package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/archive"
	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/history"
)

// HistoryRow is one line of the history listing.
type HistoryRow struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
}

// ArchiveRow is one line of the archive listing.
type ArchiveRow struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	QueryID   string    `json:"query_id"`
	Prompt    string    `json:"prompt"`
	Segments  []string  `json:"segments"`
	Done      bool      `json:"done"`
}

// HistoryCommand returns the history listing command.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show conversation history",
		Flags: append(ReadOnlyFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of entries to show",
				Value:   history.DefaultLimit,
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Do not shorten responses in table output",
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	store := history.Open(e.historyPath(), e.cfg.MaxHistory, e.logger)
	entries := store.Get(c.Int("limit"))
	rows := make([]HistoryRow, len(entries))
	for i, en := range entries {
		rows[i] = HistoryRow{Timestamp: en.Timestamp, Prompt: en.Prompt, Response: en.Response}
		if !c.Bool("full") && r.Format() == render.FormatTable {
			rows[i].Response = shorten(en.Response, 60)
		}
	}
	return r.Render(rows)
}

// ExportCommand returns the history export command.
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export conversation history to a file",
		ArgsUsage: "[txt|md|json|yaml|msgpack|html|pdf]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to write the export to",
				Value: ".",
			},
		},
		Action: exportAction,
	}
}

func exportAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	name := e.cfg.ExportFormat
	if c.NArg() > 0 {
		name = c.Args().First()
	}
	format, err := history.ParseFormat(name)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	store := history.Open(e.historyPath(), e.cfg.MaxHistory, e.logger)
	path, err := history.ExportFile(c.String("dir"), store.Get(0), format, time.Now())
	if errors.Is(err, history.ErrEmpty) {
		return cli.Exit("No conversation history to export.", exitError)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	_, err = fmt.Fprintf(c.App.Writer, "Conversation exported to %s\n", path)
	return err
}

// ArchiveCommand returns the archive listing command.
func ArchiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Show archived answers from the configured archive",
		Flags: append(ReadOnlyFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of records to show (0 for all)",
				Value:   history.DefaultLimit,
			},
			&cli.StringFlag{
				Name:  "day",
				Usage: "Only show records of this UTC day (YYYY-MM-DD)",
			},
		),
		Action: archiveAction,
	}
}

func archiveAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	a, err := buildArchive(c.Context, e)
	if err != nil {
		return cli.Exit(fmt.Sprintf("open archive: %v", err), exitConfigError)
	}
	if a == nil {
		return cli.Exit("no archive configured (set archive.backend in the config file)", exitConfigError)
	}

	var recs []archive.Record
	if day := c.String("day"); day != "" {
		t, perr := time.Parse(time.DateOnly, day)
		if perr != nil {
			return cli.Exit(fmt.Sprintf("invalid --day %q: want YYYY-MM-DD", day), exitError)
		}
		recs, err = a.Day(c.Context, t)
	} else {
		recs, err = a.Recent(c.Context, c.Int("limit"))
	}
	if err != nil && !errors.Is(err, archive.ErrNoEntries) {
		return fmt.Errorf("read archive: %w", err)
	}

	rows := make([]ArchiveRow, len(recs))
	for i, rec := range recs {
		rows[i] = ArchiveRow{
			Timestamp: rec.Timestamp,
			SessionID: rec.SessionID,
			QueryID:   rec.QueryID,
			Prompt:    rec.Prompt,
			Segments:  rec.Segments,
			Done:      rec.Done,
		}
	}
	return r.Render(rows)
}

// shorten cuts s to n runes, marking the cut with "...".
func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
