package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/client"
	"github.com/ousax/scrap/pipeline"
	"github.com/ousax/scrap/stream"
)

// EventRow is one decoded block of a response body.
type EventRow struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Payload string `json:"payload,omitempty"`
}

// DebugCommand returns the debug command with subcommands.
// Debug commands are diagnostic tools that never record history.
func DebugCommand() *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Diagnostic tools (url, fetch, events)",
		Subcommands: []*cli.Command{
			{
				Name:      "url",
				Usage:     "Print the request URL for a prompt",
				ArgsUsage: "<prompt...>",
				Flags:     QueryFlags(),
				Action:    debugURLAction,
			},
			{
				Name:      "fetch",
				Usage:     "Print the raw response body for a prompt",
				ArgsUsage: "<prompt...>",
				Flags:     QueryFlags(),
				Action:    debugFetchAction,
			},
			{
				Name:      "events",
				Usage:     "Print the decoded events of the response for a prompt",
				ArgsUsage: "<prompt...>",
				Flags:     append(QueryFlags(), ReadOnlyFlags()...),
				Action:    debugEventsAction,
			},
		},
	}
}

// debugClient builds a client and query from the context.
func debugClient(c *cli.Context, e *env) (*client.Client, client.Query, error) {
	prompt := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return nil, client.Query{}, cli.Exit("prompt required", exitError)
	}
	cl, err := client.New(client.Config{
		Endpoint:    e.cfg.Endpoint,
		Timeout:     e.cfg.Timeout.Duration,
		MinInterval: e.cfg.MinInterval.Duration,
	})
	if err != nil {
		return nil, client.Query{}, cli.Exit(fmt.Sprintf("invalid client config: %v", err), exitConfigError)
	}
	page, count := queryParams(c, e.cfg)
	return cl, client.Query{Prompt: prompt, Page: page, Count: count}, nil
}

func debugURLAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cl, q, err := debugClient(c, e)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	_, err = fmt.Fprintln(c.App.Writer, cl.URL(q))
	return err
}

func debugFetchAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	cl, q, err := debugClient(c, e)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	resp, err := cl.Search(c.Context, q)
	if err != nil {
		return cli.Exit(pipeline.Error(err), exitError)
	}
	_, err = fmt.Fprint(c.App.Writer, resp.Body)
	return err
}

func debugEventsAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	cl, q, err := debugClient(c, e)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	resp, err := cl.Search(c.Context, q)
	if err != nil {
		return cli.Exit(pipeline.Error(err), exitError)
	}

	var rows []EventRow
	events := stream.Decode(resp.Body, stream.WithCollector(e.collector), stream.WithLogger(e.logger))
	for ev := range events {
		rows = append(rows, EventRow{Index: len(rows), Type: string(ev.Type), Payload: ev.Payload})
	}
	return r.Render(rows)
}
