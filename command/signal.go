package command

import (
	"math/bits"

	"ttdmap/game"
	"ttdmap/tile"
)

// cmdBuildSingleSignal puts a signal on track p1 (bits 0-2) of t. Bit 4
// selects semaphores and bits 5-7 the signal type; an existing signal is
// converted.
func cmdBuildSingleSignal(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	track := tile.Track(p1 & 0x7)
	variant := tile.SignalVariant((p1 >> 4) & 0x1)
	typ := tile.SignalType((p1 >> 5) & 0x7)
	if !track.IsValid() || typ > tile.SignalPBSOneway {
		return Fail(ErrCommandFailed)
	}
	r, ok := w.Map.PlainRail(t)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	if !r.Tracks.Has(track) {
		return Fail(ErrNoRailroadTrack)
	}
	if err := checkTileOwnership(w, t); err != nil {
		return Fail(err)
	}
	if tile.TracksOverlap(r.Tracks) {
		return Fail(ErrNoSuitableRailroadTrack)
	}
	if err := ensureNoTrainOnTrack(w, t, track); err != nil {
		return Fail(err)
	}

	cost := NewCost(ExpenseConstruction, 0)
	switch {
	case !r.HasSignalOnTrack(track):
		cost.AddCost(w.Prices[game.PriceBuildSignals])
	case r.SignalVariant != variant:
		cost.AddCost(w.Prices[game.PriceBuildSignals] + w.Prices[game.PriceClearSignals])
	case r.SignalType != typ:
	default:
		return Fail(ErrAlreadyBuilt)
	}

	if exec(flags) {
		slots := tile.SignalOnTrack(track)
		if co := w.Company(r.Owner); co != nil {
			co.Infra.Signal += uint32(bits.OnesCount8(slots &^ r.SignalPresent))
		}
		r.SignalPresent |= slots
		r.SignalStates |= slots
		r.SignalType = typ
		r.SignalVariant = variant
		w.MarkTileDirty(t)
		w.AddTrackToSignalBuffer(t, track, r.Owner)
		w.NotifyTrackLayoutChange(t, track)
	}
	return cost
}

// cmdRemoveSingleSignal takes the signal off track p1 (bits 0-2) of t.
func cmdRemoveSingleSignal(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	track := tile.Track(p1 & 0x7)
	if !track.IsValid() {
		return Fail(ErrCommandFailed)
	}
	r, ok := w.Map.PlainRail(t)
	if !ok || !r.Tracks.Has(track) {
		return Fail(ErrNoRailroadTrack)
	}
	if !r.HasSignalOnTrack(track) {
		return Fail(ErrNoSignals)
	}
	if w.CurrentCompany != tile.OwnerWater {
		if err := checkTileOwnership(w, t); err != nil {
			return Fail(err)
		}
	}

	if exec(flags) {
		slots := tile.SignalOnTrack(track)
		if co := w.Company(r.Owner); co != nil {
			co.Infra.Signal -= uint32(bits.OnesCount8(slots & r.SignalPresent))
		}
		r.SignalPresent &^= slots
		r.SignalStates &^= slots
		if r.SignalPresent == 0 {
			r.SignalStates = 0
			r.SignalType = tile.SignalNormal
			r.SignalVariant = tile.SignalElectric
		}
		w.MarkTileDirty(t)
		w.AddTrackToSignalBuffer(t, track, r.Owner)
		w.NotifyTrackLayoutChange(t, track)
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearSignals])
}
