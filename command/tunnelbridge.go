package command

import (
	"ttdmap/game"
	"ttdmap/tile"
)

// checkAllowRemoveTunnelBridge checks the current company may remove the
// tunnel or bridge starting at t.
func checkAllowRemoveTunnelBridge(c *Context, tb *tile.TunnelBridge) error {
	w := c.W
	cur := w.CurrentCompany
	if cur == tile.OwnerWater || scenarioEditor(w) {
		return nil
	}
	switch tb.Transport {
	case tile.TransportRoad:
		road, tram := cur, cur
		if tb.RoadType.IsValid() {
			road = tb.RoadOwner
		}
		if tb.TramType.IsValid() {
			tram = tb.TramOwner
		}
		if road == tile.OwnerTown && cur != tile.OwnerTown && !w.Settings.Construction.ExtraDynamite {
			return checkOwnership(w, tb.Owner)
		}
		if road == tile.OwnerNone || road == tile.OwnerTown {
			road = cur
		}
		if tram == tile.OwnerNone {
			tram = cur
		}
		if err := checkOwnership(w, road); err != nil {
			return err
		}
		return checkOwnership(w, tram)
	case tile.TransportWater:
		if tb.Owner == tile.OwnerNone {
			return nil
		}
	}
	return checkOwnership(w, tb.Owner)
}

// clearTunnelBridge removes both heads of the tunnel or bridge at t.
func clearTunnelBridge(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	m := w.Map
	tb, _ := m.TunnelBridge(t)
	if err := checkAllowRemoveTunnelBridge(c, tb); err != nil {
		return Fail(err)
	}
	end, n, ok := m.TunnelBridgeOtherEnd(t)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	for _, at := range []tile.Index{t, end} {
		if err := ensureNoVehicleOnGround(w, at); err != nil {
			return Fail(err)
		}
	}

	if tb.Owner == tile.OwnerTown && !scenarioEditor(w) {
		town, _ := w.ClosestTownFromTile(t, ^uint(0))
		if err := checkforTownRating(c, town, game.TunnelBridgeRemove, flags); err != nil {
			return Fail(err)
		}
		changeTownRating(c, town, game.RatingTunnelBridgeDownStep, game.RatingTunnelBridgeMinimum, flags)
	}

	length := uint32(n) + 2
	price := w.Prices[game.PriceClearBridge]
	if !tb.Bridge {
		price = w.Prices[game.PriceClearTunnel]
	}
	if exec(flags) {
		pieces := length * game.TunnelBridgeTrackBitFactor
		owner, dir := tb.Owner, tb.Dir
		switch tb.Transport {
		case tile.TransportRail:
			if co := w.Company(owner); co != nil {
				co.Infra.Rail[tb.RailType] -= pieces
			}
		case tile.TransportRoad:
			if co := w.Company(tb.RoadOwner); co != nil && tb.RoadType.IsValid() {
				co.Infra.Road[tb.RoadType] -= pieces
			}
			if co := w.Company(tb.TramOwner); co != nil && tb.TramType.IsValid() {
				co.Infra.Road[tb.TramType] -= pieces
			}
		case tile.TransportWater:
			if co := w.Company(owner); co != nil {
				co.Infra.Water -= pieces
			}
		}
		rail := tb.Transport == tile.TransportRail
		doClearSquare(c, t)
		doClearSquare(c, end)
		if rail {
			track := tile.DiagDirToDiagTrack(dir)
			for _, at := range []tile.Index{t, end} {
				w.AddTrackToSignalBuffer(at, track, owner)
				w.NotifyTrackLayoutChange(at, track)
			}
		}
	}
	return NewCost(ExpenseConstruction, price*game.Money(length))
}

type tunnelBridgeTile struct{}

func (tunnelBridgeTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	tb, _ := c.W.Map.TunnelBridge(t)
	if flags&Auto != 0 {
		if tb.Bridge {
			return Fail(ErrMustDemolishBridgeFirst)
		}
		return Fail(ErrMustDemolishTunnelFirst)
	}
	return clearTunnelBridge(c, t, flags)
}

// bridgeRampSlope returns the surface a bridge ramp on tileh stands on, and
// whether a ramp of the axis fits there at all.
func bridgeRampSlope(tileh tile.Slope, z int, dir tile.DiagDirection) (tile.Slope, int, bool) {
	axis := dir.Axis()
	f := tile.FoundationNone
	straight := tileh == tile.SlopeFlat ||
		(axis == tile.AxisX && (tileh == tile.SlopeNE || tileh == tile.SlopeSW)) ||
		(axis == tile.AxisY && (tileh == tile.SlopeNW || tileh == tile.SlopeSE))
	switch {
	case straight:
	case tileh.IsSteep() || tileh.IsThreeCornersRaised():
		f = tile.FoundationInclinedX + tile.Foundation(axis)
	default:
		f = tile.FoundationLeveled
	}
	s, dz := tile.ApplyFoundation(f, tileh)
	// The ramp must rise towards the bridge.
	valid := tile.InclinedSlope(dir.Reverse())
	return s, z + dz, s == tile.SlopeFlat || s == valid
}

func (tunnelBridgeTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	w := c.W
	tb, _ := w.Map.TunnelBridge(t)
	s := w.Settings.Construction
	if s.BuildOnSlopes && s.Autoslope && tb.Bridge && tb.Transport != tile.TransportWater {
		tilehOld, zOld := w.Map.Slope(t)
		sOld, zOld, _ := bridgeRampSlope(tilehOld, zOld, tb.Dir)
		sNew, zn, ok := bridgeRampSlope(tilehNew, zNew, tb.Dir)
		if ok && sOld == sNew && zOld == zn {
			return NewCost(ExpenseConstruction, w.Prices[game.PriceBuildFoundation])
		}
	}
	return landscapeClear(c, t, flags)
}
