package command

import (
	"ttdmap/game"
	"ttdmap/tile"
)

// depotSlope prices the foundation of a depot facing dir on t.
func depotSlope(c *Context, t tile.Index, dir tile.DiagDirection) CommandCost {
	tileh, _ := c.W.Map.Slope(t)
	if tileh == tile.SlopeFlat {
		return NewCost(ExpenseConstruction, 0)
	}
	if !c.W.Settings.Construction.BuildOnSlopes || !canBuildDepotByTileh(dir, tileh) {
		return Fail(ErrFlatLandRequired)
	}
	return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
}

// cmdBuildTrainDepot builds a depot of rail type p1 (bits 0-5) facing p2
// (bits 0-1) on t.
func cmdBuildTrainDepot(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	rt := tile.RailType(p1 & 0x3F)
	dir := tile.DiagDirection(p2 & 0x3)
	if !validRailType(w, rt) {
		return Fail(ErrCommandFailed)
	}
	cost := depotSlope(c, t, dir)
	if cost.Failed() {
		return cost
	}
	cl := landscapeClear(c, t, flags)
	if cl.Failed() {
		return cl
	}
	cost.Add(cl)

	if exec(flags) {
		w.Map.MakeRailDepot(t, w.CurrentCompany, dir, rt)
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Rail[rt]++
		}
		w.MarkTileDirty(t)
		track := tile.DiagDirToDiagTrack(dir)
		w.AddTrackToSignalBuffer(t, track, w.CurrentCompany)
		w.NotifyTrackLayoutChange(t, track)
	}
	cost.AddCost(w.Prices[game.PriceBuildDepotTrain])
	cost.AddCost(w.RailBuildCost(rt))
	return cost
}

func removeTrainDepot(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	r, _ := w.Map.Rail(t)
	if w.CurrentCompany != tile.OwnerWater {
		if err := checkTileOwnership(w, t); err != nil {
			return Fail(err)
		}
	}
	if err := ensureNoVehicleOnGround(w, t); err != nil {
		return Fail(err)
	}
	if exec(flags) {
		owner := r.Owner
		track := tile.DiagDirToDiagTrack(r.DepotDir)
		if co := w.Company(owner); co != nil {
			co.Infra.Rail[r.RailType]--
		}
		doClearSquare(c, t)
		w.AddTrackToSignalBuffer(t, track, owner)
		w.NotifyTrackLayoutChange(t, track)
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearDepotTrain])
}

// cmdBuildRoadDepot builds a depot facing p1 bits 0-1 for road type p1 bits
// 2-7 on t.
func cmdBuildRoadDepot(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	dir := tile.DiagDirection(p1 & 0x3)
	rt := tile.RoadType((p1 >> 2) & 0x3F)
	if !validRoadType(w, rt) {
		return Fail(ErrCommandFailed)
	}
	cost := depotSlope(c, t, dir)
	if cost.Failed() {
		return cost
	}
	cl := landscapeClear(c, t, flags)
	if cl.Failed() {
		return cl
	}
	cost.Add(cl)

	if exec(flags) {
		town, _ := w.ClosestTownFromTile(t, ^uint(0))
		w.Map.MakeRoadDepot(t, w.CurrentCompany, dir, rt, town)
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Road[rt] += 2
		}
		w.MarkTileDirty(t)
	}
	cost.AddCost(w.Prices[game.PriceBuildDepotRoad])
	return cost
}

func removeRoadDepot(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	r, _ := w.Map.Road(t)
	if w.CurrentCompany != tile.OwnerWater {
		if err := checkTileOwnership(w, t); err != nil {
			return Fail(err)
		}
	}
	if err := ensureNoVehicleOnGround(w, t); err != nil {
		return Fail(err)
	}
	if exec(flags) {
		if co := w.Company(r.Owner); co != nil {
			co.Infra.Road[r.RoadType] -= 2
		}
		doClearSquare(c, t)
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearDepotRoad])
}
