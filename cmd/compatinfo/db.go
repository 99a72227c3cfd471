package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))
)

func labeled(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func initCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Install a copy of the reference database and print its path",
		Before: a.requireDatabase,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "create the database file without the bundled references",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			empty := cmd.Bool("empty") || a.cfg.Database.Empty

			if _, err := a.env.Init(ctx, empty); err != nil {
				return err
			}

			path, _ := a.env.Path()
			a.logger.Info("reference database installed", zap.String("path", path), zap.Bool("empty", empty))

			_, err := fmt.Fprintln(cmd.Root().Writer, path)

			return err
		},
	}
}

func pathCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:   "path",
		Usage:  "Print the path of the reference database, installing it if needed",
		Before: a.requireDatabase,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := a.env.Init(ctx, a.cfg.Database.Empty); err != nil {
				return err
			}

			path, _ := a.env.Path()
			_, err := fmt.Fprintln(cmd.Root().Writer, path)

			return err
		},
	}
}

func versionCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Print the build of the reference database",
		Before: a.requireDatabase,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v, err := a.env.Version(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.Root().Writer, "%s\n%s\n%s\n",
				labeled("Build string", v.BuildString),
				labeled("Build date", v.BuildDate),
				labeled("Build version", v.BuildVersion),
			)

			return err
		},
	}
}

func checkCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check that this platform can host the reference database",
		Action: func(_ context.Context, cmd *cli.Command) error {
			err := a.checkRequirements()
			if err != nil {
				_, _ = fmt.Fprintln(cmd.Root().ErrWriter, errorStyle.Render(err.Error()))
				return cli.Exit("", 1)
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, successStyle.Render("All requirements are satisfied."))

			return err
		},
	}
}
