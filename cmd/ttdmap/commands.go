package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"ttdmap/afterload"
	"ttdmap/api"
	"ttdmap/game"
	"ttdmap/newgrf"
	"ttdmap/savegame"
	"ttdmap/settings"
	"ttdmap/ttd"
)

func compressionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "compression",
		Usage: "none, zlib, zstd or lz4",
		Value: "zstd",
	}
}

// format of a savegame file on disk.
type format string

const (
	formatNative format = "native"
	formatTTD    format = "ttd"
)

func formatOf(flag, path string) (format, error) {
	switch format(flag) {
	case formatNative, formatTTD:
		return format(flag), nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q", flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sv1", ".ss1":
		return formatTTD, nil
	}
	return formatNative, nil
}

func loadOptions(cmd *cli.Command) (afterload.Options, error) {
	opts := afterload.Options{Logger: slog.Default(), Editor: cmd.Bool("editor")}
	if path := cmd.String("catalog"); path != "" {
		cat, err := newgrf.LoadCatalog(path)
		if err != nil {
			return opts, fmt.Errorf("catalog: %w", err)
		}
		opts.Catalog = cat
	}
	return opts, nil
}

func gameSettings(cmd *cli.Command) (settings.GameSettings, error) {
	if path := cmd.String("settings"); path != "" {
		return settings.LoadFile(path)
	}
	return settings.Default(), nil
}

// loadWorld reads and migrates a game in either format.
func loadWorld(cmd *cli.Command, path string, f format) (*game.World, error) {
	opts, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	if f == formatNative {
		return afterload.Load(in, opts)
	}
	old, err := ttd.Load(in)
	if err != nil {
		return nil, err
	}
	snap, dropped := old.Snapshot()
	if dropped > 0 {
		opts.Logger.Warn("tiles without a counterpart replaced by grass", "tiles", dropped)
	}
	return afterload.LoadSnapshot(snap, opts)
}

func saveWorld(w *game.World, path string, f format, comp string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeWorld(out, w, f, comp, path); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeWorld(out io.Writer, w *game.World, f format, comp, path string) error {
	if f == formatTTD {
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		old, err := ttd.FromWorld(w, title)
		if err != nil {
			return err
		}
		return old.Save(out)
	}
	c, err := savegame.ParseCompression(comp)
	if err != nil {
		return err
	}
	return savegame.Write(out, savegame.Encode(w), c)
}

func parseTown(spec string) (name string, x, y uint, err error) {
	name, at, ok := strings.Cut(spec, "@")
	if !ok || name == "" {
		return "", 0, 0, fmt.Errorf("town %q: want NAME@X,Y", spec)
	}
	if _, err := fmt.Sscanf(at, "%d,%d", &x, &y); err != nil {
		return "", 0, 0, fmt.Errorf("town %q: %w", spec, err)
	}
	return name, x, y, nil
}

func args(cmd *cli.Command, n int) error {
	if cmd.Args().Len() != n {
		return fmt.Errorf("%s needs %d argument(s): %s", cmd.Name, n, cmd.ArgsUsage)
	}
	return nil
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print the header of a savegame and check whether it loads",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := args(cmd, 1); err != nil {
				return err
			}
			path := cmd.Args().First()
			in, err := os.Open(path)
			if err != nil {
				return err
			}
			snap, err := savegame.Read(in)
			in.Close()
			if err != nil {
				return err
			}
			out := cmd.Root().Writer
			fmt.Fprintf(out, "version   %v\n", snap.Version)
			fmt.Fprintf(out, "id        %v\n", snap.ID)
			fmt.Fprintf(out, "map       %dx%d\n", snap.SizeX(), snap.SizeY())
			fmt.Fprintf(out, "towns     %d\n", len(snap.Towns))
			fmt.Fprintf(out, "stations  %d\n", len(snap.Stations))
			fmt.Fprintf(out, "vehicles  %d\n", len(snap.Vehicles))

			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			from := snap.Version
			w, err := afterload.LoadSnapshot(snap, opts)
			if err != nil {
				return fmt.Errorf("does not load: %w", err)
			}
			fmt.Fprintf(out, "migrated  %v -> %v\n", from, savegame.Current)
			fmt.Fprintf(out, "date      %v\n", w.Date)
			for _, g := range w.GRFs {
				fmt.Fprintf(out, "newgrf    %s %-10s %s\n", newgrf.GRFIDString(g.Ident.GRFID), g.Status, g.Filename)
			}
			if w.LastError != "" {
				fmt.Fprintf(out, "warning   %s\n", w.LastError)
			}
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "load a savegame of any version and write it at the current version",
		ArgsUsage: "IN OUT",
		Flags:     []cli.Flag{compressionFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := args(cmd, 2); err != nil {
				return err
			}
			w, err := loadWorld(cmd, cmd.Args().Get(0), formatNative)
			if err != nil {
				return err
			}
			return saveWorld(w, cmd.Args().Get(1), formatNative, cmd.String("compression"))
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert between native and original TTD savegames",
		ArgsUsage: "IN OUT",
		Flags: []cli.Flag{
			compressionFlag(),
			&cli.StringFlag{Name: "from", Usage: "native or ttd, by default guessed from the extension"},
			&cli.StringFlag{Name: "to", Usage: "native or ttd, by default guessed from the extension"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := args(cmd, 2); err != nil {
				return err
			}
			in, out := cmd.Args().Get(0), cmd.Args().Get(1)
			from, err := formatOf(cmd.String("from"), in)
			if err != nil {
				return err
			}
			to, err := formatOf(cmd.String("to"), out)
			if err != nil {
				return err
			}
			w, err := loadWorld(cmd, in, from)
			if err != nil {
				return err
			}
			slog.Info("converting", "from", from, "to", to, "game", w.ID)
			return saveWorld(w, out, to, cmd.String("compression"))
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "write an empty game",
		ArgsUsage: "OUT",
		Flags: []cli.Flag{
			compressionFlag(),
			&cli.IntFlag{Name: "log-x", Usage: "the map is 2^log-x tiles wide", Value: 8},
			&cli.IntFlag{Name: "log-y", Usage: "the map is 2^log-y tiles high", Value: 8},
			&cli.StringSliceFlag{Name: "company", Usage: "add a company with this name"},
			&cli.StringSliceFlag{Name: "town", Usage: "add a town, given as NAME@X,Y"},
			&cli.IntFlag{Name: "money", Usage: "starting money of each company", Value: 100000},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := args(cmd, 1); err != nil {
				return err
			}
			s, err := gameSettings(cmd)
			if err != nil {
				return err
			}
			w, err := game.New(s, uint(cmd.Int("log-x")), uint(cmd.Int("log-y")))
			if err != nil {
				return err
			}
			for _, spec := range cmd.StringSlice("town") {
				name, x, y, err := parseTown(spec)
				if err != nil {
					return err
				}
				if x > w.Map.MaxX() || y > w.Map.MaxY() {
					return fmt.Errorf("town %s: %d,%d is outside the map", name, x, y)
				}
				if _, err := w.NewTown(w.Map.XY(x, y), name); err != nil {
					return err
				}
			}
			for _, name := range cmd.StringSlice("company") {
				if _, err := w.NewCompany(name, game.Money(cmd.Int("money"))); err != nil {
					return err
				}
			}
			return saveWorld(w, cmd.Args().First(), formatNative, cmd.String("compression"))
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve a game over HTTP and websocket",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Sources: cli.EnvVars("TTDMAP_ADDR")},
			&cli.BoolFlag{Name: "network", Usage: "refuse games whose NewGRFs do not match the catalog exactly"},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	if err := args(cmd, 1); err != nil {
		return err
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	opts.Networking = cmd.Bool("network")
	in, err := os.Open(cmd.Args().First())
	if err != nil {
		return err
	}
	w, err := afterload.Load(in, opts)
	in.Close()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.Default().With("component", "api")
	hub := api.NewHub(log)
	exec := api.NewExecutor(w, hub, log)
	go hub.Run(ctx)
	go exec.Run(ctx)

	srv := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           api.NewServer(exec, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("serving", "addr", srv.Addr, "game", w.ID)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
