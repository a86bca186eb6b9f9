package command

import (
	"ttdmap/game"
	"ttdmap/tile"
)

// cmdConvertRail converts every piece of rail in the rectangle between t and
// the tile p1 to rail type p2 (bits 0-5). Tiles of other owners are skipped.
func cmdConvertRail(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	rt := tile.RailType(p2 & 0x3F)
	end, ok := tileIndexParam(w, p1)
	if !ok || !validRailType(w, rt) {
		return Fail(ErrCommandFailed)
	}
	area := game.NewTileArea(m, t, end)
	cost := NewCost(ExpenseConstruction, 0)
	last := ErrNoSuitableRailroadTrack
	converted := false
	done := map[tile.Index]bool{}

	for cur := range m.Area(area.Tile, area.W, area.H) {
		if done[cur] {
			continue
		}
		var old tile.RailType
		var owner tile.Owner
		switch tc := m.At(cur).Content.(type) {
		case *tile.Rail:
			old, owner = tc.RailType, tc.Owner
		case *tile.Road:
			if tc.Kind != tile.RoadTileCrossing {
				continue
			}
			old, owner = tc.RailType, tc.RailOwner
		case *tile.Station:
			if !tc.IsRailStation() {
				continue
			}
			old, owner = tc.RailType, tc.Owner
		case *tile.TunnelBridge:
			if tc.Transport != tile.TransportRail {
				continue
			}
			old, owner = tc.RailType, tc.Owner
		default:
			continue
		}
		if old == rt {
			continue
		}
		if err := checkOwnership(w, owner); err != nil {
			last = err
			continue
		}

		if tb, ok := m.TunnelBridge(cur); ok {
			res := convertTunnelBridge(c, cur, tb, flags, rt, done)
			if res.Failed() {
				last = res.Err
				continue
			}
			cost.Add(res)
			converted = true
			continue
		}

		// Trains standing here must still run on the new type.
		if !w.IsCompatibleRail(rt, old) {
			var err error
			if r, ok := m.PlainRail(cur); ok {
				if w.HasTrainOnTrack(cur, r.Tracks) {
					err = ErrVehicleInTheWay
				}
			} else {
				err = ensureNoVehicleOnGround(w, cur)
			}
			if err != nil {
				last = err
				continue
			}
		}

		bits := m.RailTracks(cur)
		switch tc := m.At(cur).Content.(type) {
		case *tile.Rail:
			pieces := uint32(1)
			if !tc.Depot {
				pieces = game.TrackPieces(tc.Tracks)
				cost.AddCost(w.RailConvertCost(old, rt) * game.Money(tc.Tracks.Count()))
			} else {
				cost.AddCost(w.RailConvertCost(old, rt))
			}
			if exec(flags) {
				moveRailInfra(w, owner, old, rt, pieces)
				tc.RailType = rt
			}
		case *tile.Road:
			cost.AddCost(w.RailConvertCost(old, rt))
			if exec(flags) {
				moveRailInfra(w, owner, old, rt, game.LevelCrossingTrackBitFactor)
				tc.RailType = rt
			}
		case *tile.Station:
			cost.AddCost(w.RailConvertCost(old, rt))
			if exec(flags) {
				moveRailInfra(w, owner, old, rt, 1)
				tc.RailType = rt
			}
		}
		converted = true
		if exec(flags) {
			w.MarkTileDirty(cur)
			for _, track := range bits.Tracks() {
				w.AddTrackToSignalBuffer(cur, track, owner)
				w.NotifyTrackLayoutChange(cur, track)
			}
		}
	}

	if !converted {
		return Fail(last)
	}
	return cost
}

func convertTunnelBridge(c *Context, t tile.Index, tb *tile.TunnelBridge, flags Flags, rt tile.RailType, done map[tile.Index]bool) CommandCost {
	w := c.W
	m := w.Map
	other, n, ok := m.TunnelBridgeOtherEnd(t)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	done[t] = true
	done[other] = true
	old := tb.RailType
	if !w.IsCompatibleRail(rt, old) {
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		if err := ensureNoVehicleOnGround(w, other); err != nil {
			return Fail(err)
		}
	}
	length := game.Money(n) + 2
	cost := NewCost(ExpenseConstruction, length*w.RailConvertCost(old, rt))
	if exec(flags) {
		moveRailInfra(w, tb.Owner, old, rt, uint32(length)*game.TunnelBridgeTrackBitFactor)
		ob, _ := m.TunnelBridge(other)
		tb.RailType = rt
		ob.RailType = rt
		track := tile.DiagDirToDiagTrack(tb.Dir)
		for _, end := range []tile.Index{t, other} {
			w.MarkTileDirty(end)
			w.AddTrackToSignalBuffer(end, track, tb.Owner)
			w.NotifyTrackLayoutChange(end, track)
		}
	}
	return cost
}

func moveRailInfra(w *game.World, owner tile.Owner, from, to tile.RailType, pieces uint32) {
	if co := w.Company(owner); co != nil {
		co.Infra.Rail[from] -= pieces
		co.Infra.Rail[to] += pieces
	}
}
