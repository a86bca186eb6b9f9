package command

import (
	"math"

	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/tile"
)

func validRoadType(w *game.World, rt tile.RoadType) bool {
	if !rt.IsValid() || w.RoadType(rt) == nil {
		return false
	}
	if co := w.Company(w.CurrentCompany); co != nil {
		return co.HasRoadType(rt)
	}
	return true
}

func otherRTT(rtt tile.RoadTramType) tile.RoadTramType {
	if rtt == tile.RTTRoad {
		return tile.RTTTram
	}
	return tile.RTTRoad
}

// roadTypeOf returns the road or tram type of a road tile.
func roadTypeOf(r *tile.Road, rtt tile.RoadTramType) tile.RoadType {
	if rtt == tile.RTTTram {
		return r.TramType
	}
	return r.RoadType
}

// invalidRoadOnLeveled lists the pieces that cannot share a leveled
// foundation on each slope.
var invalidRoadOnLeveled = [15]tile.RoadBits{
	tile.SlopeFlat: tile.RoadNone,
	tile.SlopeW:    tile.RoadNE | tile.RoadSE,
	tile.SlopeS:    tile.RoadNE | tile.RoadNW,
	tile.SlopeSW:   tile.RoadNE,
	tile.SlopeE:    tile.RoadNW | tile.RoadSW,
	tile.SlopeEW:   tile.RoadNone,
	tile.SlopeSE:   tile.RoadNW,
	tile.SlopeWSE:  tile.RoadNone,
	tile.SlopeN:    tile.RoadSE | tile.RoadSW,
	tile.SlopeNW:   tile.RoadSE,
	tile.SlopeNS:   tile.RoadNone,
	tile.SlopeENW:  tile.RoadNone,
	tile.SlopeNE:   tile.RoadSW,
	tile.SlopeSEN:  tile.RoadNone,
	tile.SlopeNWS:  tile.RoadNone,
}

// invalidRoadUphill lists the straight roads that cannot run over each slope.
var invalidRoadUphill = [15]tile.RoadBits{
	tile.SlopeFlat: tile.RoadNone,
	tile.SlopeW:    tile.RoadNone,
	tile.SlopeS:    tile.RoadNone,
	tile.SlopeSW:   tile.RoadY,
	tile.SlopeE:    tile.RoadNone,
	tile.SlopeEW:   tile.RoadAll,
	tile.SlopeSE:   tile.RoadX,
	tile.SlopeWSE:  tile.RoadAll,
	tile.SlopeN:    tile.RoadNone,
	tile.SlopeNW:   tile.RoadX,
	tile.SlopeNS:   tile.RoadAll,
	tile.SlopeENW:  tile.RoadAll,
	tile.SlopeNE:   tile.RoadY,
	tile.SlopeSEN:  tile.RoadAll,
	tile.SlopeNWS:  tile.RoadAll,
}

// roadSlope drops the pieces already built and checks the rest against the
// slope. Pieces running uphill are completed to a straight road; the final
// set is returned with the foundation cost.
func roadSlope(c *Context, tileh tile.Slope, pieces, existing, other tile.RoadBits) (tile.RoadBits, CommandCost) {
	pieces &^= existing
	if pieces == tile.RoadNone {
		return pieces, Fail(ErrAlreadyBuilt)
	}
	if tileh == tile.SlopeFlat {
		return pieces, NewCost(ExpenseConstruction, 0)
	}
	if tileh.IsSteep() {
		tileh = tile.SlopeWithOneCornerRaised(tileh.HighestCorner())
	}
	onSlopes := c.W.Settings.Construction.BuildOnSlopes
	foundation := NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])

	all := existing | pieces
	if onSlopes && invalidRoadOnLeveled[tileh]&(other|all) == tile.RoadNone {
		if other|existing == tile.RoadNone {
			return pieces, foundation
		}
		return pieces, NewCost(ExpenseConstruction, 0)
	}

	pieces |= tile.MirrorRoadBits(pieces)
	all = existing | pieces
	if tile.IsStraightRoad(all) && (other == all || other == tile.RoadNone) && invalidRoadUphill[tileh]&(other|all) == tile.RoadNone {
		if !tileh.IsOneCornerRaised() {
			return pieces, NewCost(ExpenseConstruction, 0)
		}
		if onSlopes {
			if other|existing == tile.RoadNone {
				return pieces, foundation
			}
			return pieces, NewCost(ExpenseConstruction, 0)
		}
	}
	return pieces, Fail(ErrLandSlopedInWrongDirection)
}

// cmdBuildRoad builds the pieces p1 (bits 0-3) of road type p1 (bits 4-9) on t.
func cmdBuildRoad(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	pieces := tile.RoadBits(p1 & 0xF)
	rt := tile.RoadType((p1 >> 4) & 0x3F)
	if pieces == tile.RoadNone || !validRoadType(w, rt) {
		return Fail(ErrCommandFailed)
	}
	rtt := w.RoadType(rt).RTT()
	tileh, _ := m.Slope(t)
	cost := NewCost(ExpenseConstruction, 0)

	var existing, other tile.RoadBits
	var road *tile.Road
	doClear := false
	switch tc := m.At(t).Content.(type) {
	case *tile.Road:
		switch tc.Kind {
		case tile.RoadTileNormal:
			if tc.HasRoadType(rtt) {
				if roadTypeOf(tc, rtt) != rt {
					return Fail(ErrRoadTypeMismatch)
				}
				if tc.Roadworks != 0 {
					return Fail(ErrRoadWorksInProgress)
				}
				existing = tc.Bits(rtt)
				if existing&pieces == pieces {
					return Fail(ErrAlreadyBuilt)
				}
				if rtt == tile.RTTRoad && tc.OneWay != tile.DRDNone && !tile.IsStraightRoad(existing|pieces) {
					return Fail(ErrOnewayRoadsCantHaveJunction)
				}
			}
			other = tc.Bits(otherRTT(rtt))
			road = tc
		case tile.RoadTileCrossing:
			if pieces&^tc.CrossingRoadBits() != 0 {
				doClear = true
				break
			}
			if tc.HasRoadType(rtt) {
				return Fail(ErrAlreadyBuilt)
			}
			return addRoadTypeToCrossing(c, t, flags, tc, rt, rtt)
		case tile.RoadTileDepot:
			if tc.RoadType == rt && tile.DiagDirToRoadBits(tc.DepotDir)&pieces == pieces {
				return Fail(ErrAlreadyBuilt)
			}
			doClear = true
		}

	case *tile.Rail:
		if tc.Depot {
			doClear = true
			break
		}
		var roadAxis tile.Axis
		switch tc.Tracks {
		case tile.TrackBitX:
			roadAxis = tile.AxisY
		case tile.TrackBitY:
			roadAxis = tile.AxisX
		default:
			doClear = true
		}
		if doClear || pieces&^tile.AxisToRoadBits(roadAxis) != 0 {
			doClear = true
			break
		}
		return buildCrossingFromRail(c, t, flags, tc, roadAxis, rt, rtt)

	default:
		doClear = true
	}

	if doClear {
		cl := landscapeClear(c, t, flags)
		if cl.Failed() {
			return cl
		}
		cost.Add(cl)
	}

	pieces, sl := roadSlope(c, tileh, pieces, existing, other)
	if sl.Failed() {
		return sl
	}
	cost.Add(sl)
	n := game.Money(pieces.Count())
	cost.AddCost(n * w.RoadBuildCost(rt))

	if exec(flags) {
		if road == nil {
			town, _ := w.ClosestTownFromTile(t, math.MaxUint)
			roadRT, tramRT := rt, tile.InvalidRoadType
			roadOwner, tramOwner := w.CurrentCompany, tile.OwnerNone
			if rtt == tile.RTTTram {
				roadRT, tramRT = tile.InvalidRoadType, rt
				roadOwner, tramOwner = tile.OwnerNone, w.CurrentCompany
			}
			m.MakeRoadNormal(t, pieces, roadRT, tramRT, town, roadOwner, tramOwner)
		} else if rtt == tile.RTTTram {
			if !road.TramType.IsValid() {
				road.TramType, road.TramOwner = rt, w.CurrentCompany
			}
			road.TramBits |= pieces
		} else {
			if !road.RoadType.IsValid() {
				road.RoadType, road.Owner = rt, w.CurrentCompany
			}
			road.RoadBits |= pieces
		}
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Road[rt] += uint32(n)
		}
		w.MarkTileDirty(t)
	}
	return cost
}

func addRoadTypeToCrossing(c *Context, t tile.Index, flags Flags, r *tile.Road, rt tile.RoadType, rtt tile.RoadTramType) CommandCost {
	w := c.W
	if err := ensureNoVehicleOnGround(w, t); err != nil {
		return Fail(err)
	}
	cost := NewCost(ExpenseConstruction, 2*w.RoadBuildCost(rt))
	if exec(flags) {
		if rtt == tile.RTTTram {
			r.TramType, r.TramOwner = rt, w.CurrentCompany
		} else {
			r.RoadType, r.Owner = rt, w.CurrentCompany
		}
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Road[rt] += 2
		}
		w.MarkTileDirty(t)
	}
	return cost
}

// buildCrossingFromRail lays road across a single straight track.
func buildCrossingFromRail(c *Context, t tile.Index, flags Flags, r *tile.Rail, roadAxis tile.Axis, rt tile.RoadType, rtt tile.RoadTramType) CommandCost {
	w := c.W
	tileh, _ := w.Map.Slope(t)
	if !tile.IsValidLevelCrossingSlope(tileh) {
		return Fail(ErrLandSlopedInWrongDirection)
	}
	if r.HasSignals() {
		return Fail(ErrMustRemoveSignalsFirst)
	}
	if !w.Settings.Construction.CrossingWithCompetitor && r.Owner.IsCompany() && r.Owner != w.CurrentCompany {
		return Fail(ErrOwnedBy)
	}
	if err := ensureNoVehicleOnGround(w, t); err != nil {
		return Fail(err)
	}
	cost := NewCost(ExpenseConstruction, 2*w.RoadBuildCost(rt))
	if exec(flags) {
		town, _ := w.ClosestTownFromTile(t, math.MaxUint)
		roadRT, tramRT := rt, tile.InvalidRoadType
		roadOwner, tramOwner := w.CurrentCompany, tile.OwnerNone
		if rtt == tile.RTTTram {
			roadRT, tramRT = tile.InvalidRoadType, rt
			roadOwner, tramOwner = tile.OwnerNone, w.CurrentCompany
		}
		railOwner, railType := r.Owner, r.RailType
		w.Map.MakeRoadCrossing(t, roadOwner, tramOwner, railOwner, roadAxis, railType, roadRT, tramRT, town)
		if co := w.Company(railOwner); co != nil {
			co.Infra.Rail[railType] += game.LevelCrossingTrackBitFactor - 1
		}
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Road[rt] += 2
		}
		track := tile.AxisToTrack(roadAxis.Other())
		w.MarkTileDirty(t)
		w.AddTrackToSignalBuffer(t, track, railOwner)
		w.NotifyTrackLayoutChange(t, track)
	}
	return cost
}

func changeTownRating(c *Context, town pool.ID, delta, bound int, flags Flags) {
	c.W.ChangeTownRating(town, delta, bound, exec(flags) && flags&NoModifyTownRating == 0)
}

// checkforTownRating refuses when the current company's rating with the
// town is too low for a removal of the given kind.
func checkforTownRating(c *Context, town pool.ID, kind game.TownRatingCheck, flags Flags) error {
	if flags&NoTestTownRating != 0 || c.W.CheckTownRating(town, kind) {
		return nil
	}
	return ErrLocalAuthorityRefuses
}

// checkAllowRemoveRoad checks ownership of the pieces remove and charges the
// town's rating when they belong to it.
func checkAllowRemoveRoad(c *Context, t tile.Index, remove tile.RoadBits, owner tile.Owner, rtt tile.RoadTramType, flags Flags, townCheck bool) error {
	w := c.W
	if remove == tile.RoadNone || w.CurrentCompany == tile.OwnerWater {
		return nil
	}
	if w.CurrentCompany == tile.OwnerTown && !townCheck {
		return nil
	}
	if owner == tile.OwnerNone {
		return nil
	}
	if owner != tile.OwnerTown {
		return checkOwnership(w, owner)
	}
	if !townCheck {
		return nil
	}
	id, _ := w.ClosestTownFromTile(t, math.MaxUint)
	if !id.IsValid() {
		return nil
	}
	if err := checkforTownRating(c, id, game.RoadRemove, flags); err != nil {
		return err
	}

	// Cutting a road in the middle costs more than trimming a dead end.
	present := roadBitsAny(w.Map, t, rtt)
	var joined tile.RoadBits
	for d := tile.DiagDirNE; d < tile.DiagDirEnd; d++ {
		bit := tile.DiagDirToRoadBits(d)
		n, ok := w.Map.AddDiagDir(t, d)
		if present&bit != 0 && ok && roadBitsAny(w.Map, n, rtt)&tile.DiagDirToRoadBits(d.Reverse()) != 0 {
			joined |= bit
		}
	}
	delta := game.RatingRoadDownStepEdge
	if joined.Count() > 1 && joined&remove != 0 {
		if !w.Settings.Construction.ExtraDynamite {
			return ErrLocalAuthorityRefuses
		}
		delta = game.RatingRoadDownStepInner
	}
	changeTownRating(c, id, delta, game.RatingRoadMinimum, flags)
	return nil
}

// roadBitsAny returns the pieces of rtt on any tile that carries road.
func roadBitsAny(m *tile.Map, t tile.Index, rtt tile.RoadTramType) tile.RoadBits {
	switch c := m.At(t).Content.(type) {
	case *tile.Road:
		if !c.HasRoadType(rtt) {
			return tile.RoadNone
		}
		switch c.Kind {
		case tile.RoadTileNormal:
			return c.Bits(rtt)
		case tile.RoadTileCrossing:
			return c.CrossingRoadBits()
		case tile.RoadTileDepot:
			return tile.DiagDirToRoadBits(c.DepotDir)
		}
	case *tile.TunnelBridge:
		if c.Transport == tile.TransportRoad {
			return tile.DiagDirToRoadBits(c.Dir.Reverse())
		}
	case *tile.Station:
		if c.Kind == tile.StationBus || c.Kind == tile.StationTruck {
			if c.Gfx < 4 {
				return tile.DiagDirToRoadBits(tile.DiagDirection(c.Gfx))
			}
			return tile.AxisToRoadBits(tile.Axis(c.Gfx & 1))
		}
	}
	return tile.RoadNone
}

// cmdRemoveRoad removes the pieces p1 (bits 0-3) of the road or tram (p1
// bits 4-5) on t.
func cmdRemoveRoad(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	pieces := tile.RoadBits(p1 & 0xF)
	rtt := tile.RoadTramType((p1 >> 4) & 0x3)
	if pieces == tile.RoadNone || rtt > tile.RTTTram {
		return Fail(ErrCommandFailed)
	}
	return removeRoad(c, t, flags, pieces, rtt, true)
}

func removeRoad(c *Context, t tile.Index, flags Flags, pieces tile.RoadBits, rtt tile.RoadTramType, townCheck bool) CommandCost {
	w := c.W
	m := w.Map
	r, ok := m.Road(t)
	if !ok || !r.HasRoadType(rtt) {
		return Fail(ErrNoSuchRoad)
	}
	rt := roadTypeOf(r, rtt)

	switch r.Kind {
	case tile.RoadTileNormal:
		if r.Roadworks != 0 && w.CurrentCompany != tile.OwnerWater {
			return Fail(ErrRoadWorksInProgress)
		}
		present := r.Bits(rtt)
		tileh, _ := m.Slope(t)
		// Both halves of a sloped straight road go together.
		if tileh != tile.SlopeFlat && tile.IsStraightRoad(present) {
			pieces |= tile.MirrorRoadBits(pieces)
		}
		pieces &= present
		if pieces == tile.RoadNone {
			return Fail(ErrNoSuchRoad)
		}
		if err := checkAllowRemoveRoad(c, t, pieces, r.RoadOwner(rtt), rtt, flags, townCheck); err != nil {
			return Fail(err)
		}
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		n := game.Money(pieces.Count())
		if exec(flags) {
			if co := w.Company(r.RoadOwner(rtt)); co != nil {
				co.Infra.Road[rt] -= uint32(n)
			}
			left := present &^ pieces
			switch {
			case left != tile.RoadNone && rtt == tile.RTTTram:
				r.TramBits = left
			case left != tile.RoadNone:
				r.RoadBits = left
			case r.HasRoadType(otherRTT(rtt)) && rtt == tile.RTTTram:
				r.TramBits, r.TramType, r.TramOwner = tile.RoadNone, tile.InvalidRoadType, tile.OwnerNone
			case r.HasRoadType(otherRTT(rtt)):
				r.RoadBits, r.RoadType, r.Owner = tile.RoadNone, tile.InvalidRoadType, tile.OwnerNone
			default:
				doClearSquare(c, t)
			}
			w.MarkTileDirty(t)
		}
		return NewCost(ExpenseConstruction, n*w.RoadClearCost(rt))

	case tile.RoadTileCrossing:
		if pieces&^r.CrossingRoadBits() != 0 {
			return Fail(ErrCommandFailed)
		}
		if err := checkAllowRemoveRoad(c, t, r.CrossingRoadBits(), r.RoadOwner(rtt), rtt, flags, townCheck); err != nil {
			return Fail(err)
		}
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		if exec(flags) {
			if co := w.Company(r.RoadOwner(rtt)); co != nil {
				co.Infra.Road[rt] -= 2
			}
			if r.HasRoadType(otherRTT(rtt)) {
				if rtt == tile.RTTTram {
					r.TramType, r.TramOwner = tile.InvalidRoadType, tile.OwnerNone
				} else {
					r.RoadType, r.Owner = tile.InvalidRoadType, tile.OwnerNone
				}
			} else {
				// The rail stays behind as plain track.
				track := r.CrossingRailTrack()
				railOwner, railType := r.RailOwner, r.RailType
				if co := w.Company(railOwner); co != nil {
					co.Infra.Rail[railType] -= game.LevelCrossingTrackBitFactor - 1
				}
				m.MakeRailNormal(t, railOwner, track.Bits(), railType)
				w.AddTrackToSignalBuffer(t, track, railOwner)
				w.NotifyTrackLayoutChange(t, track)
			}
			w.MarkTileDirty(t)
		}
		return NewCost(ExpenseConstruction, 2*w.RoadClearCost(rt))
	}
	return Fail(ErrCommandFailed)
}

type roadTile struct{}

func (roadTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	r, _ := w.Map.Road(t)
	switch r.Kind {
	case tile.RoadTileNormal:
		all := r.RoadBits | r.TramBits
		// Lone road pieces may be bulldozed even in auto mode.
		if (all.Count() == 1 && r.TramBits == tile.RoadNone) || flags&Auto == 0 {
			cost := NewCost(ExpenseConstruction, 0)
			for _, rtt := range []tile.RoadTramType{tile.RTTRoad, tile.RTTTram} {
				if !r.HasRoadType(rtt) {
					continue
				}
				res := removeRoad(c, t, flags, r.Bits(rtt), rtt, true)
				if res.Failed() {
					return res
				}
				cost.Add(res)
			}
			return cost
		}
		return Fail(ErrMustRemoveRoadFirst)

	case tile.RoadTileCrossing:
		if flags&Auto != 0 {
			return Fail(ErrMustRemoveRoadFirst)
		}
		return clearCrossing(c, t, flags, r)
	}

	if flags&Auto != 0 {
		return Fail(ErrBuildingMustBeDemolished)
	}
	return removeRoadDepot(c, t, flags)
}

// clearCrossing removes road, tram and rail of a level crossing at once.
func clearCrossing(c *Context, t tile.Index, flags Flags, r *tile.Road) CommandCost {
	w := c.W
	cost := NewCost(ExpenseConstruction, 0)
	for _, rtt := range []tile.RoadTramType{tile.RTTTram, tile.RTTRoad} {
		if !r.HasRoadType(rtt) {
			continue
		}
		if err := checkAllowRemoveRoad(c, t, r.CrossingRoadBits(), r.RoadOwner(rtt), rtt, flags, true); err != nil {
			return Fail(err)
		}
		cost.AddCost(2 * w.RoadClearCost(roadTypeOf(r, rtt)))
	}
	if w.CurrentCompany != tile.OwnerWater {
		if err := checkOwnership(w, r.RailOwner); err != nil {
			return Fail(err)
		}
	}
	if flags&Bankrupt == 0 {
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
	}
	cost.AddCost(w.RailClearCost(r.RailType))

	if exec(flags) {
		for _, rtt := range []tile.RoadTramType{tile.RTTTram, tile.RTTRoad} {
			if co := w.Company(r.RoadOwner(rtt)); co != nil && r.HasRoadType(rtt) {
				co.Infra.Road[roadTypeOf(r, rtt)] -= 2
			}
		}
		if co := w.Company(r.RailOwner); co != nil {
			co.Infra.Rail[r.RailType] -= game.LevelCrossingTrackBitFactor
		}
		track, owner := r.CrossingRailTrack(), r.RailOwner
		doClearSquare(c, t)
		w.AddTrackToSignalBuffer(t, track, owner)
		w.NotifyTrackLayoutChange(t, track)
	}
	return cost
}

func (roadTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	r, _ := c.W.Map.Road(t)
	switch r.Kind {
	case tile.RoadTileCrossing:
		if autoslopeFoundation(c, t, zNew, tilehNew) && tile.IsValidLevelCrossingSlope(tilehNew) {
			return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
		}
	case tile.RoadTileDepot:
		if autoslopeEntranceEdge(c, t, zNew, tilehNew, r.DepotDir) {
			return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
		}
	default:
		all := r.RoadBits | r.TramBits
		if autoslopeFoundation(c, t, zNew, tilehNew) {
			if _, sl := roadSlope(c, tilehNew, all, tile.RoadNone, tile.RoadNone); sl.Succeeded() {
				return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
			}
		}
	}
	return landscapeClear(c, t, flags)
}
