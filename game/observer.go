package game

import (
	"maps"
	"slices"

	"ttdmap/tile"
)

// LayoutObserver is told about every change of track bits or signals so that
// cached routes through the tile can be dropped.
type LayoutObserver interface {
	NotifyTrackLayoutChange(t tile.Index, track tile.Track)
}

// LayoutObserverFunc adapts a function to LayoutObserver.
type LayoutObserverFunc func(t tile.Index, track tile.Track)

func (f LayoutObserverFunc) NotifyTrackLayoutChange(t tile.Index, track tile.Track) {
	f(t, track)
}

func (w *World) AddObserver(o LayoutObserver) {
	w.observers = append(w.observers, o)
}

// NotifyTrackLayoutChange forwards the change to every observer, in
// registration order.
func (w *World) NotifyTrackLayoutChange(t tile.Index, track tile.Track) {
	for _, o := range w.observers {
		o.NotifyTrackLayoutChange(t, track)
	}
}

func (w *World) MarkTileDirty(t tile.Index) {
	w.dirty[t] = struct{}{}
}

// TakeDirty returns the dirty tiles in ascending order and resets the set.
func (w *World) TakeDirty() []tile.Index {
	if len(w.dirty) == 0 {
		return nil
	}
	ts := slices.Sorted(maps.Keys(w.dirty))
	clear(w.dirty)
	return ts
}

// SignalUpdate is a pending signal recomputation for one track of a tile.
type SignalUpdate struct {
	Tile  tile.Index
	Track tile.Track
	Owner tile.Owner
}

// AddTrackToSignalBuffer queues the signal block through t for an update.
func (w *World) AddTrackToSignalBuffer(t tile.Index, track tile.Track, owner tile.Owner) {
	w.signals = append(w.signals, SignalUpdate{Tile: t, Track: track, Owner: owner})
}

// UpdateSignalsInBuffer drains the signal buffer. Block state is not simulated;
// signals on queued tiles are reset to green and the updates are returned.
func (w *World) UpdateSignalsInBuffer() []SignalUpdate {
	out := w.signals
	w.signals = nil
	for _, u := range out {
		r, ok := w.Map.PlainRail(u.Tile)
		if !ok || !r.HasSignals() {
			continue
		}
		r.SignalStates = r.SignalPresent
		w.MarkTileDirty(u.Tile)
	}
	return out
}
