package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/pipeline"
)

// AskCommand returns the one-shot query command.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one prompt and print the answer",
		ArgsUsage: "<prompt...>",
		Flags: append(QueryFlags(),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the accumulated answer text without rendering",
			},
		),
		Action: askAction,
	}
}

func askAction(c *cli.Context) error {
	prompt := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return cli.Exit("prompt required", exitError)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, c, e)
	if err != nil {
		return err
	}
	defer s.Close()

	ans, err := s.Ask(ctx, prompt)
	if err != nil {
		return cli.Exit(pipeline.Error(err), exitError)
	}

	if c.Bool("raw") {
		_, err = fmt.Fprintln(c.App.Writer, ans.Text)
	} else {
		_, err = fmt.Fprintln(c.App.Writer, ans.Rendered)
	}
	return err
}
