// Command ttdmap inspects, migrates, converts, creates and serves games.
//
// Settings, the NewGRF catalog and the listen address can also be given in
// the environment or in a .env file in the working directory:
//
//	TTDMAP_SETTINGS=settings.yaml
//	TTDMAP_GRF_CATALOG=grfs.yaml
//	TTDMAP_ADDR=:8080
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("reading .env", "err", err)
	}
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("ttdmap failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ttdmap",
		Usage: "work with tile map savegames",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "YAML file with game settings",
				Sources: cli.EnvVars("TTDMAP_SETTINGS"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "YAML catalog of the NewGRFs available locally",
				Sources: cli.EnvVars("TTDMAP_GRF_CATALOG"),
			},
			&cli.BoolFlag{
				Name:  "editor",
				Usage: "load games without towns, as the scenario editor does",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			infoCommand(),
			migrateCommand(),
			convertCommand(),
			newCommand(),
			serveCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cmd.String("log-level")))); err != nil {
		return ctx, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return ctx, nil
}
