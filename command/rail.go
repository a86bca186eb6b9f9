package command

import (
	"errors"

	"ttdmap/game"
	"ttdmap/tile"
)

func validRailType(w *game.World, rt tile.RailType) bool {
	if !rt.IsValid() || w.RailType(rt) == nil {
		return false
	}
	if co := w.Company(w.CurrentCompany); co != nil {
		return co.HasRailType(rt)
	}
	return true
}

// floodable reports tiles the sea can reach; rail there must keep to the
// raised half.
func floodable(m *tile.Map, t tile.Index) bool {
	switch c := m.At(t).Content.(type) {
	case *tile.Water:
		return c.Kind == tile.WaterTileCoast || c.Class != tile.WaterClassCanal
	case *tile.Rail:
		return c.Ground == tile.RailGroundWater
	}
	return m.WaterClassOf(t) == tile.WaterClassSea
}

// checkRailSlope tests whether bits can be added to existing on a tile of
// slope tileh and prices the extra foundation.
func checkRailSlope(c *Context, t tile.Index, tileh tile.Slope, bits, existing tile.TrackBits) CommandCost {
	if floodable(c.W.Map, t) && !tileh.IsSteep() && bits&^tile.ValidTracksOnLeveledFoundation(tileh) != 0 {
		return Fail(ErrCantBuildOnWater)
	}
	fNew := tile.RailFoundation(tileh, bits|existing)
	if fNew == tile.FoundationInvalid || (fNew != tile.FoundationNone && !c.W.Settings.Construction.BuildOnSlopes) {
		return Fail(ErrLandSlopedInWrongDirection)
	}
	fOld := tile.RailFoundation(tileh, existing)
	if fNew == fOld {
		return NewCost(ExpenseConstruction, 0)
	}
	return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
}

// checkTrackCombination tests adding bit to the tracks of a plain rail tile.
func checkTrackCombination(r *tile.Rail, bit tile.TrackBits, flags Flags) error {
	future := r.Tracks | bit
	if future == r.Tracks {
		return ErrAlreadyBuilt
	}
	if flags&NoRailOverlap == 0 && !r.HasSignals() {
		return nil
	}
	if future == tile.TrackBitHorz || future == tile.TrackBitVert {
		return nil
	}
	if flags&NoRailOverlap != 0 {
		return ErrImpossibleTrackCombination
	}
	return ErrMustRemoveSignalsFirst
}

// cmdBuildSingleRail builds track p2 (bits 0-2) of rail type p1 (bits 0-5) on t.
func cmdBuildSingleRail(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	rt := tile.RailType(p1 & 0x3F)
	track := tile.Track(p2 & 0x7)
	if !validRailType(w, rt) || !track.IsValid() {
		return Fail(ErrCommandFailed)
	}
	tileh, _ := m.Slope(t)
	bit := track.Bits()
	cost := NewCost(ExpenseConstruction, 0)

	built := false
	switch tc := m.At(t).Content.(type) {
	case *tile.Rail:
		if err := checkTileOwnership(w, t); err != nil {
			return Fail(err)
		}
		if tc.Depot {
			// With Auto this only reports why the depot is in the way.
			return landscapeClear(c, t, flags)
		}
		if !w.IsCompatibleRail(tc.RailType, rt) {
			return Fail(ErrImpossibleTrackCombination)
		}
		if err := checkTrackCombination(tc, bit, flags); err != nil {
			return Fail(err)
		}
		if err := ensureNoTrainOnTrack(w, t, track); err != nil {
			return Fail(err)
		}
		sl := checkRailSlope(c, t, tileh, bit, tc.Tracks)
		if sl.Failed() {
			return sl
		}
		cost.Add(sl)

		// Mixed types are only allowed when both are powered on one; the
		// tile is converted to the type powering the other.
		if tc.RailType != rt && !w.HasPowerOnRail(rt, tc.RailType) {
			if !w.HasPowerOnRail(tc.RailType, rt) {
				return Fail(ErrCommandFailed)
			}
			conv := c.do(t, uint32(t), uint32(rt), flags, CmdConvertRail, "")
			if conv.Failed() {
				return conv
			}
			cost.Add(conv)
		}
		if exec(flags) {
			co := w.Company(tc.Owner)
			if co != nil {
				co.Infra.Rail[tc.RailType] -= game.TrackPieces(tc.Tracks)
			}
			tc.Ground = tile.RailGroundBarren
			tc.Tracks |= bit
			if co != nil {
				co.Infra.Rail[tc.RailType] += game.TrackPieces(tc.Tracks)
			}
		}
		built = true

	case *tile.Road:
		if !tile.IsValidLevelCrossingSlope(tileh) {
			return Fail(ErrLandSlopedInWrongDirection)
		}
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		if tc.Kind == tile.RoadTileNormal {
			if tc.Roadworks != 0 {
				return Fail(ErrRoadWorksInProgress)
			}
			if tc.OneWay != tile.DRDNone {
				return Fail(ErrCrossingOnOnewayRoad)
			}
			road, tram := tc.RoadBits, tc.TramBits
			if (track == tile.TrackX || track == tile.TrackY) && (road|tram)&tile.AxisToRoadBits(tile.Axis(track)) == 0 {
				cc := buildCrossing(c, t, flags, tc, track, rt)
				if cc.Failed() {
					return cc
				}
				cost.Add(cc)
				built = true
			}
		} else if tc.Kind == tile.RoadTileCrossing && tc.CrossingRailTrack().Bits() == bit {
			return Fail(ErrAlreadyBuilt)
		}
	}

	if !built {
		waterGround := m.IsType(t, tile.TypeWater) && tileh.IsOneCornerRaised()
		sl := checkRailSlope(c, t, tileh, bit, tile.TrackBitNone)
		if sl.Failed() {
			return sl
		}
		cost.Add(sl)

		clearFlags := flags
		if !waterGround {
			clearFlags |= NoWater
		}
		cl := landscapeClear(c, t, clearFlags)
		if cl.Failed() {
			return cl
		}
		cost.Add(cl)
		if waterGround {
			cost.AddCost(-w.Prices[game.PriceClearWater])
			cost.AddCost(w.Prices[game.PriceClearRough])
		}
		if exec(flags) {
			m.MakeRailNormal(t, w.CurrentCompany, bit, rt)
			if waterGround {
				r, _ := m.Rail(t)
				r.Ground = tile.RailGroundWater
			}
			if co := w.Company(w.CurrentCompany); co != nil {
				co.Infra.Rail[rt]++
			}
		}
	}

	if exec(flags) {
		w.MarkTileDirty(t)
		w.AddTrackToSignalBuffer(t, track, w.CurrentCompany)
		w.NotifyTrackLayoutChange(t, track)
	}
	cost.AddCost(w.RailBuildCost(rt))
	return cost
}

// buildCrossing turns a straight road perpendicular to track into a level
// crossing.
func buildCrossing(c *Context, t tile.Index, flags Flags, r *tile.Road, track tile.Track, rt tile.RailType) CommandCost {
	w := c.W
	cost := NewCost(ExpenseConstruction, 0)
	roadOwner, tramOwner := r.Owner, r.TramOwner
	roadRT, tramRT := r.RoadType, r.TramType
	road, tram := r.RoadBits, r.TramBits

	// A lone tram end may only be crossed by its owner.
	if tramRT.IsValid() && tramOwner.IsCompany() && tram.Count() == 1 {
		if err := checkOwnership(w, tramOwner); err != nil {
			return Fail(err)
		}
	}

	if !w.Settings.Construction.CrossingWithCompetitor {
		if roadRT.IsValid() && roadOwner.IsCompany() && roadOwner != w.CurrentCompany {
			return Fail(ErrOwnedBy)
		}
		if tramRT.IsValid() && tramOwner.IsCompany() && tramOwner != w.CurrentCompany {
			return Fail(ErrOwnedBy)
		}
	}

	upgrade := false
	if !roadRT.IsValid() {
		// Crossings always carry road; a tram-only street gets plain road
		// owned by the tram owner.
		roadRT = tile.RoadTypeRoad
		roadOwner = tramOwner
		road = tile.RoadNone
		upgrade = true
	}
	newRoad, newTram := 0, 0
	if road != tile.RoadNone || upgrade {
		newRoad = 2 - road.Count()
	}
	if tramRT.IsValid() && tram != tile.RoadNone {
		newTram = 2 - tram.Count()
	}
	cost.AddCost(game.Money(newRoad) * w.RoadBuildCost(roadRT))
	if newTram > 0 {
		cost.AddCost(game.Money(newTram) * w.RoadBuildCost(tramRT))
	}

	if exec(flags) {
		axis := tile.AxisX
		if track == tile.TrackX {
			axis = tile.AxisY
		}
		town := r.Town
		w.Map.MakeRoadCrossing(t, roadOwner, tramOwner, w.CurrentCompany, axis, rt, roadRT, tramRT, town)
		if co := w.Company(w.CurrentCompany); co != nil {
			co.Infra.Rail[rt] += game.LevelCrossingTrackBitFactor
		}
		if co := w.Company(roadOwner); co != nil && newRoad > 0 {
			co.Infra.Road[roadRT] += uint32(newRoad)
		}
		if co := w.Company(tramOwner); co != nil && newTram > 0 {
			co.Infra.Road[tramRT] += uint32(newTram)
		}
	}
	return cost
}

// cmdRemoveSingleRail removes track p2 (bits 0-2) from t.
func cmdRemoveSingleRail(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	track := tile.Track(p2 & 0x7)
	if !track.IsValid() {
		return Fail(ErrCommandFailed)
	}
	bit := track.Bits()
	cost := NewCost(ExpenseConstruction, 0)
	owner := tile.InvalidOwner
	crossing := false

	switch tc := m.At(t).Content.(type) {
	case *tile.Road:
		if tc.Kind != tile.RoadTileCrossing || tc.CrossingRailTrack().Bits() != bit {
			return Fail(ErrNoRailroadTrack)
		}
		if w.CurrentCompany != tile.OwnerWater {
			if err := checkOwnership(w, tc.RailOwner); err != nil {
				return Fail(err)
			}
		}
		if flags&Bankrupt == 0 {
			if err := ensureNoVehicleOnGround(w, t); err != nil {
				return Fail(err)
			}
		}
		cost.AddCost(w.RailClearCost(tc.RailType))
		if exec(flags) {
			if co := w.Company(tc.RailOwner); co != nil {
				co.Infra.Rail[tc.RailType] -= game.LevelCrossingTrackBitFactor
			}
			owner = tc.RailOwner
			m.MakeRoadNormal(t, tc.CrossingRoadBits(), tc.RoadType, tc.TramType, tc.Town, tc.Owner, tc.TramOwner)
		}

	case *tile.Rail:
		if tc.Depot {
			return Fail(ErrNoRailroadTrack)
		}
		if w.CurrentCompany != tile.OwnerWater {
			if err := checkTileOwnership(w, t); err != nil {
				return Fail(err)
			}
		}
		if flags&Bankrupt == 0 {
			if err := ensureNoTrainOnTrack(w, t, track); err != nil {
				return Fail(err)
			}
		}
		present := tc.Tracks
		if present&bit == 0 {
			return Fail(ErrNoRailroadTrack)
		}
		crossing = present == tile.TrackBitCross
		cost.AddCost(w.RailClearCost(tc.RailType))

		if tc.HasSignalOnTrack(track) {
			sig := c.do(t, uint32(track), 0, flags, CmdRemoveSingleSignal, "")
			if sig.Failed() {
				return sig
			}
			cost.Add(sig)
		}

		if exec(flags) {
			owner = tc.Owner
			if co := w.Company(owner); co != nil {
				co.Infra.Rail[tc.RailType] -= game.TrackPieces(present)
				co.Infra.Rail[tc.RailType] += game.TrackPieces(present &^ bit)
			}
			present &^= bit
			if present == tile.TrackBitNone {
				tileh, _ := m.Slope(t)
				if tc.Ground == tile.RailGroundWater && tileh.IsOneCornerRaised() {
					m.MakeShore(t)
					w.MarkTileDirty(t)
				} else {
					doClearSquare(c, t)
				}
			} else {
				tc.Tracks = present
				tc.SignalPresent &^= tile.SignalOnTrack(track)
			}
		}

	default:
		return Fail(ErrNoRailroadTrack)
	}

	if exec(flags) {
		w.MarkTileDirty(t)
		if crossing {
			// Removing one half of a crossing changes how the other is reached.
			w.AddTrackToSignalBuffer(t, tile.TrackX, owner)
			w.AddTrackToSignalBuffer(t, tile.TrackY, owner)
			w.NotifyTrackLayoutChange(t, tile.TrackX)
			w.NotifyTrackLayoutChange(t, tile.TrackY)
		} else {
			w.AddTrackToSignalBuffer(t, track, owner)
			w.NotifyTrackLayoutChange(t, track)
		}
	}
	return cost
}

// railDrag walks from start to end along track, which must be straight
// along the line joining them.
func railDrag(m *tile.Map, start, end tile.Index, track tile.Track) ([]tile.Index, bool) {
	dx, dy := 0, 0
	switch track {
	case tile.TrackX:
		if m.Y(start) != m.Y(end) {
			return nil, false
		}
		dx = sign(int(m.X(end)) - int(m.X(start)))
	case tile.TrackY:
		if m.X(start) != m.X(end) {
			return nil, false
		}
		dy = sign(int(m.Y(end)) - int(m.Y(start)))
	default:
		if start != end {
			return nil, false
		}
	}
	tiles := []tile.Index{start}
	for cur := start; cur != end; {
		next, ok := m.AddXY(cur, dx, dy)
		if !ok {
			return nil, false
		}
		tiles = append(tiles, next)
		cur = next
	}
	return tiles, true
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// railroadTrack builds or removes a straight run of track from t to the tile
// p1; p2 carries the rail type (bits 0-5) and the track (bits 6-8).
func railroadTrack(c *Context, t tile.Index, flags Flags, p1, p2 uint32, remove bool) CommandCost {
	w := c.W
	end, ok := tileIndexParam(w, p1)
	rt := tile.RailType(p2 & 0x3F)
	track := tile.Track((p2 >> 6) & 0x7)
	if !ok || !track.IsValid() || (!remove && !validRailType(w, rt)) {
		return Fail(ErrCommandFailed)
	}
	tiles, ok := railDrag(w.Map, t, end, track)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	total := NewCost(ExpenseConstruction, 0)
	var last error
	had := false
	for _, cur := range tiles {
		var res CommandCost
		if remove {
			res = c.do(cur, 0, uint32(track), flags, CmdRemoveSingleRail, "")
		} else {
			res = c.do(cur, uint32(rt), uint32(track), flags, CmdBuildSingleRail, "")
		}
		if res.Failed() {
			last = res.Err
			if !errors.Is(res.Err, ErrAlreadyBuilt) {
				break
			}
			continue
		}
		had = true
		total.Add(res)
	}
	if !had {
		if last == nil {
			last = ErrCommandFailed
		}
		return Fail(last)
	}
	return total
}

func cmdBuildRailroadTrack(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	return railroadTrack(c, t, flags, p1, p2, false)
}

func cmdRemoveRailroadTrack(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	return railroadTrack(c, t, flags, p1, p2, true)
}

type railTile struct{}

func (railTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	r, _ := w.Map.Rail(t)
	if flags&Auto != 0 {
		if r.Owner != w.CurrentCompany {
			return Fail(ErrOwnedBy)
		}
		if r.IsPlain() {
			return Fail(ErrMustRemoveRailroadTrack)
		}
		return Fail(ErrBuildingMustBeDemolished)
	}
	if r.Depot {
		return removeTrainDepot(c, t, flags)
	}

	cost := NewCost(ExpenseConstruction, 0)
	tileh, _ := w.Map.Slope(t)
	waterGround := r.Ground == tile.RailGroundWater && tileh.IsOneCornerRaised()
	for _, track := range r.Tracks.Tracks() {
		res := c.do(t, 0, uint32(track), flags, CmdRemoveSingleRail, "")
		if res.Failed() {
			return res
		}
		cost.Add(res)
	}
	// Rail on a shore leaves the water behind unless a company pays for it.
	if waterGround && flags&Bankrupt == 0 && w.CurrentCompany.IsCompany() {
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		if exec(flags) {
			doClearSquare(c, t)
		}
		cost.AddCost(w.Prices[game.PriceClearWater])
	}
	return cost
}

// halfTrackAllowedCorner is the corner a lone half track never rests on; it
// may change height freely.
var halfTrackAllowedCorner = map[tile.TrackBits]tile.Corner{
	tile.TrackBitRight: tile.CornerW,
	tile.TrackBitUpper: tile.CornerS,
	tile.TrackBitLeft:  tile.CornerE,
	tile.TrackBitLower: tile.CornerN,
}

// autoslopeRail checks whether the tracks of a rail tile keep their height
// when the tile changes from tilehOld at zOld to tilehNew at zNew.
func autoslopeRail(c *Context, t tile.Index, flags Flags, zOld int, tilehOld tile.Slope, zNew int, tilehNew tile.Slope, bits tile.TrackBits) CommandCost {
	s := c.W.Settings.Construction
	if !s.BuildOnSlopes || !s.Autoslope {
		return Fail(ErrBuildingMustBeDemolished)
	}
	if checkRailSlope(c, t, tilehNew, bits, tile.TrackBitNone).Failed() {
		return Fail(ErrBuildingMustBeDemolished)
	}
	tilehOldF, zOldF := tile.ApplyFoundation(tile.RailFoundation(tilehOld, bits), tilehOld)
	tilehNewF, zNewF := tile.ApplyFoundation(tile.RailFoundation(tilehNew, bits), tilehNew)
	zOld += zOldF
	zNew += zNewF

	if corner, ok := halfTrackAllowedCorner[bits]; ok {
		// Single corner tracks only need their own corner to stay put.
		track := corner.Opposite()
		if zOld+tilehOldF.ZInCorner(track) != zNew+tilehNewF.ZInCorner(track) {
			return Fail(ErrBuildingMustBeDemolished)
		}
	} else if zOld != zNew || tilehOldF != tilehNewF {
		return Fail(ErrBuildingMustBeDemolished)
	}

	cost := NewCost(ExpenseConstruction, 0)
	if tile.RailFoundation(tilehNew, bits) != tile.FoundationNone {
		cost.AddCost(c.W.Prices[game.PriceBuildFoundation])
	}
	return cost
}

func (railTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	w := c.W
	r, _ := w.Map.Rail(t)
	tilehOld, zOld := w.Map.Slope(t)
	if r.IsPlain() {
		// A lone half track only rests on three corners; the fourth may move.
		if corner, ok := halfTrackAllowedCorner[r.Tracks]; ok && zOld == zNew {
			moved := (tilehOld ^ tilehNew) &^ tile.SlopeSteep
			if moved == tile.SlopeWithOneCornerRaised(corner) && !tilehOld.IsSteep() && !tilehNew.IsSteep() {
				cost := NewCost(ExpenseConstruction, 0)
				if r.Ground == tile.RailGroundWater {
					cost.AddCost(w.Prices[game.PriceClearWater])
				}
				if exec(flags) {
					r.Ground = tile.RailGroundBarren
				}
				return cost
			}
		}
		if res := autoslopeRail(c, t, flags, zOld, tilehOld, zNew, tilehNew, r.Tracks); res.Succeeded() {
			return res
		}
	} else if autoslopeEntranceEdge(c, t, zNew, tilehNew, r.DepotDir) {
		return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
	}
	return landscapeClear(c, t, flags)
}
