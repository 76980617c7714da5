package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ousax/scrap/cli/config"
	"github.com/ousax/scrap/cli/render"
)

// ConfigCommand returns the config command with subcommands.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show current settings",
				Flags:  ReadOnlyFlags(),
				Action: configShowAction,
			},
			{
				Name:      "set",
				Usage:     "Change a setting (" + strings.Join(config.Keys(), ", ") + ")",
				ArgsUsage: "<key> <value>",
				Action:    configSetAction,
			},
			{
				Name:   "reset",
				Usage:  "Reset configuration to defaults",
				Action: configResetAction,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPathAction,
			},
		},
	}
}

func configShowAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	return r.Render(e.cfg.Settings())
}

func configSetAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: config set <key> <value>", exitError)
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	key, value := c.Args().Get(0), c.Args().Get(1)
	if key == "theme" {
		if _, ok := render.LookupTheme(value); !ok {
			return cli.Exit(fmt.Sprintf("Unknown theme: %s. Available themes: %s",
				value, strings.Join(render.ThemeNames(), ", ")), exitConfigError)
		}
	}
	if err := e.cfg.Set(key, value); err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}
	if err := e.cfg.Save(e.cfgPath); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s set to %s\n", key, value)
	return err
}

func configResetAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	e.cfg.Reset()
	if err := e.cfg.Save(e.cfgPath); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, "Configuration reset to defaults.")
	return err
}

func configPathAction(c *cli.Context) error {
	_, err := fmt.Fprintln(c.App.Writer, config.ResolvePath(c.String("config")))
	return err
}
