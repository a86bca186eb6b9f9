package afterload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ttdmap/game"
	"ttdmap/newgrf"
	"ttdmap/savegame"
	"ttdmap/tile"
)

var (
	ErrNoTownInScenario = errors.New("afterload: no town in scenario")
	ErrNewGRFMismatch   = errors.New("afterload: NewGRF configuration does not match the server")
)

type Options struct {
	// Catalog lists the packages available locally. Nil means none.
	Catalog *newgrf.Catalog
	// Networking refuses games whose package list does not match exactly.
	Networking bool
	// Editor loads the game for the scenario editor, where towns are optional.
	Editor bool
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Load reads a savegame of any supported version and returns the migrated
// world.
func Load(r io.Reader, opts Options) (*game.World, error) {
	s, err := savegame.Read(r)
	if err != nil {
		return nil, err
	}
	return LoadSnapshot(s, opts)
}

// LoadSnapshot migrates s in place and builds its world. Every decision to
// refuse a game is taken here; a refused game returns no world at all.
// Missing packages only pause the game and leave a message in LastError.
func LoadSnapshot(s *savegame.Snapshot, opts Options) (*game.World, error) {
	log := opts.logger().With("game", s.ID.String())
	from := s.Version

	cat := opts.Catalog
	if cat == nil {
		cat = newgrf.NewCatalog()
	}
	compat := newgrf.IsGoodGRFConfigList(s.GRFs, cat)
	if compat != newgrf.AllGood && opts.Networking {
		return nil, fmt.Errorf("%w: %v", ErrNewGRFMismatch, compat)
	}

	var w *game.World
	err := guard(s.GRFs, func() error {
		n, err := Migrate(s, log)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("migrated savegame", "from", from.String(), "to", s.Version.String(), "steps", n)
		}
		if w, err = savegame.Decode(s); err != nil {
			return err
		}
		rebuild(w)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !opts.Editor && w.Towns.Len() == 0 {
		return nil, ErrNoTownInScenario
	}

	switch compat {
	case newgrf.CompatibleFound:
		for _, g := range s.GRFs.Compatible() {
			log.Warn("loaded compatible NewGRF", "grfid", newgrf.GRFIDString(g.Ident.GRFID),
				"saved_md5", g.OrigMD5.String(), "md5", g.Ident.MD5.String())
		}
	case newgrf.NotFound:
		missing := s.GRFs.Missing()
		for _, g := range missing {
			log.Warn("NewGRF not found", "grfid", newgrf.GRFIDString(g.Ident.GRFID),
				"md5", g.Ident.MD5.String(), "file", g.Filename)
		}
		w.Paused = true
		w.LastError = fmt.Sprintf("%d NewGRF(s) of this game are missing; the game may crash or misbehave", len(missing))
	}
	return w, nil
}

// rebuild recomputes state derived from the map.
func rebuild(w *game.World) {
	w.RebuildAvailableTypes()
	updateRoadTowns(w)
	w.RebuildInfrastructure()
}

// updateRoadTowns points company roads without a valid town at the nearest one.
func updateRoadTowns(w *game.World) {
	for t := range w.Map.All() {
		r, ok := w.Map.Road(t)
		if !ok || r.Kind == tile.RoadTileDepot || r.Owner == tile.OwnerTown {
			continue
		}
		if w.Towns.Valid(r.Town) {
			continue
		}
		r.Town, _ = w.CalcClosestTownFromTile(t, ^uint(0))
	}
}
