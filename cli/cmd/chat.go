package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/cli/tui"
	"github.com/ousax/scrap/commands"
	"github.com/ousax/scrap/pipeline"
)

// Chat messages.
const (
	answerHeader = "YOU.COM:"
	inputHint    = "Enter your prompt (or /help for commands):"
	emptyPrompt  = "Please enter a valid prompt."
	goodbye      = "Thank you for using YOU.COM SCRAPER. Goodbye!"
)

// lineReader returns the next input line. It returns io.EOF or
// tui.ErrInterrupted when the user leaves.
type lineReader func(ctx context.Context) (string, error)

// chat is one interactive session.
type chat struct {
	c          *cli.Context
	env        *env
	session    *session
	dispatcher *commands.Dispatcher
	out        io.Writer
	styles     render.Styles
	read       lineReader
}

// ChatAction runs the interactive chat. It is the app's default action.
func ChatAction(c *cli.Context) error {
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

	ch := &chat{
		c:       c,
		env:     e,
		session: s,
		out:     c.App.Writer,
		styles:  render.ThemeOrDefault(e.cfg.Theme).Styles(),
	}
	ch.dispatcher = commands.New(commands.Env{
		Config:     e.cfg,
		ConfigPath: e.cfgPath,
		History:    s.history,
		Collector:  e.collector,
		Logger:     e.logger,
		OnTheme:    ch.setTheme,
	})
	if in, ok := c.App.Reader.(*os.File); ok && tui.Interactive(in, os.Stdout) {
		ch.read = ch.readPrompt
	} else {
		ch.read = scanLines(c.App.Reader)
	}

	fmt.Fprintln(ch.out, tui.Banner(render.ThemeOrDefault(e.cfg.Theme), e.cfg.BannerFont))

	if p := c.String("prompt"); p != "" {
		ch.ask(ctx, p)
	}
	return ch.loop(ctx)
}

// loop reads lines until the user exits.
func (ch *chat) loop(ctx context.Context) error {
	for {
		fmt.Fprintln(ch.out, "\n"+ch.styles.Success.Render(inputHint))
		line, err := ch.read(ctx)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, tui.ErrInterrupted), ctx.Err() != nil:
			fmt.Fprintln(ch.out, "\n"+ch.styles.Secondary.Render(goodbye))
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			fmt.Fprintln(ch.out, ch.styles.Warning.Render(emptyPrompt))
		case commands.IsCommand(line):
			out, err := ch.dispatcher.Dispatch(line)
			if errors.Is(err, commands.ErrExit) {
				fmt.Fprintln(ch.out, ch.styles.Secondary.Render(goodbye))
				return nil
			}
			if err != nil {
				fmt.Fprintln(ch.out, ch.styles.Error.Render(pipeline.Error(err)))
				continue
			}
			fmt.Fprintln(ch.out, out)
		default:
			ch.ask(ctx, line)
		}
	}
}

// ask runs one query and prints the answer or a single error line.
func (ch *chat) ask(ctx context.Context, prompt string) {
	ans, err := ch.session.Ask(ctx, prompt)
	if err != nil {
		fmt.Fprintln(ch.out, ch.styles.Error.Render(pipeline.Error(err)))
		return
	}
	fmt.Fprintln(ch.out, "\n"+ch.styles.Info.Render(answerHeader))
	fmt.Fprintln(ch.out, ans.Rendered)
}

// setTheme rebuilds the renderer after /theme or /reset.
func (ch *chat) setTheme(theme render.Theme) {
	ch.styles = theme.Styles()
	r, err := newAnswerRenderer(ch.c, ch.env, theme)
	if err != nil {
		ch.env.logger.Warn("theme change not applied to answers", map[string]any{"error": err.Error()})
		return
	}
	ch.session.SetRenderer(r)
}

func (ch *chat) readPrompt(ctx context.Context) (string, error) {
	return tui.ReadLine(ctx, tui.PromptConfig{
		Theme:        ch.session.Renderer().Theme(),
		AutoComplete: ch.env.cfg.AutoCompletion,
		Commands:     ch.dispatcher.Names(),
		History:      ch.session.history.Prompts(),
	})
}

// scanLines reads plain lines from r, for non-terminal input.
func scanLines(r io.Reader) lineReader {
	sc := bufio.NewScanner(r)
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return sc.Text(), nil
	}
}
