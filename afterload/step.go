// Package afterload brings a savegame of any supported version up to date and
// turns it into a playable world. Migrations are an ordered list of steps,
// each gated on the version the game was saved with.
package afterload

import (
	"fmt"
	"log/slog"
	"slices"

	"ttdmap/game"
	"ttdmap/savegame"
)

// Step rewrites a snapshot from the layout before Before to the layout at
// Before. It runs only for games saved with a version older than Before.
type Step struct {
	Name   string
	Before savegame.Version
	Apply  func(c *Context) error
}

// Context is what a step works on.
type Context struct {
	S *savegame.Snapshot
	// From is the version the game was saved with.
	From savegame.Version
	Log  *slog.Logger
}

// random draws from the saved generator so a migrated game replays the same.
func (c *Context) random() uint32 {
	r := game.Random{State: c.S.Date.Random}
	v := r.Next()
	c.S.Date.Random = r.State
	return v
}

// checkOrder panics when a step's threshold is lower than the one before it.
// Steps sharing a threshold run in list order.
func checkOrder(steps []Step) []Step {
	for i := 1; i < len(steps); i++ {
		if steps[i].Before.Before(steps[i-1].Before) {
			panic(fmt.Sprintf("afterload: step %q (%v) listed after %q (%v)",
				steps[i].Name, steps[i].Before, steps[i-1].Name, steps[i-1].Before))
		}
	}
	return steps
}

// Steps returns the migration list in the order it runs.
func Steps() []Step {
	return slices.Clone(steps)
}

// Migrate runs every step newer than the snapshot's version and raises it to
// savegame.Current. It returns how many steps ran.
func Migrate(s *savegame.Snapshot, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	if savegame.Current.Before(s.Version) {
		return 0, &savegame.VersionError{Got: s.Version}
	}
	c := &Context{S: s, From: s.Version, Log: log}
	n := 0
	for _, st := range steps {
		if !c.From.Before(st.Before) {
			continue
		}
		log.Debug("migrate", "step", st.Name, "before", st.Before.String())
		if err := st.Apply(c); err != nil {
			return n, fmt.Errorf("migrate %q: %w", st.Name, err)
		}
		n++
	}
	s.Version = savegame.Current
	return n, nil
}
