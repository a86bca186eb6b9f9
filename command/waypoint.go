package command

import (
	"unicode/utf8"

	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/tile"
)

// MaxStationNameChars bounds custom station and waypoint names.
const MaxStationNameChars = 32

// waypointReuseDistance is the Manhattan distance within which a deleted
// waypoint of the same owner is brought back instead of a new one.
const waypointReuseDistance = 8

// axisForNewWaypoint returns the axis a waypoint on t would take, or
// tile.InvalidAxis when t carries no single straight track.
func axisForNewWaypoint(m *tile.Map, t tile.Index) tile.Axis {
	if wp, ok := m.Waypoint(t); ok {
		return wp.Axis()
	}
	r, ok := m.PlainRail(t)
	if !ok {
		return tile.InvalidAxis
	}
	switch r.Tracks {
	case tile.TrackBitX:
		return tile.AxisX
	case tile.TrackBitY:
		return tile.AxisY
	}
	return tile.InvalidAxis
}

// validWaypointTile checks that t can carry a waypoint along axis. est
// collects the one existing waypoint the new tiles may join.
func validWaypointTile(c *Context, t tile.Index, axis tile.Axis, est *pool.ID) error {
	w := c.W
	m := w.Map
	if st, ok := m.Station(t); ok {
		if st.Kind != tile.StationWaypoint {
			return stationTile{}.clear(c, t, Auto).Err
		}
		switch {
		case !est.IsValid():
			*est = st.Station
		case *est != st.Station:
			return ErrAdjoinsMoreThanOneWaypoint
		}
	}
	if axisForNewWaypoint(m, t) != axis {
		return ErrNoSuitableRailroadTrack
	}
	if err := checkTileOwnership(w, t); err != nil {
		return err
	}
	if err := ensureNoVehicleOnGround(w, t); err != nil {
		return err
	}
	tileh, _ := m.Slope(t)
	along := tile.Slope(0x3 << axis)
	if tileh != tile.SlopeFlat && (!w.Settings.Construction.BuildOnSlopes || tileh.IsSteep() || tileh&along == 0 || tileh&^along == 0) {
		return ErrFlatLandRequired
	}
	return nil
}

// findDeletedWaypointCloseTo returns the closest unused waypoint of owner
// within waypointReuseDistance of t.
func findDeletedWaypointCloseTo(w *game.World, t tile.Index, owner tile.Owner) (pool.ID, *game.Station) {
	best, bestID := (*game.Station)(nil), pool.None
	thres := uint(waypointReuseDistance)
	for id, st := range w.Stations.All() {
		if !st.Waypoint || st.InUse() || st.Owner != owner {
			continue
		}
		if d := w.Map.DistanceManhattan(t, st.XY); d < thres {
			thres, best, bestID = d, st, id
		}
	}
	return bestID, best
}

// cmdBuildTrainWaypoint converts a line of straight track into a waypoint.
// p1 bit 0 is the track axis and bits 8-15 the number of parallel tracks;
// p2 bits 0-7 select the custom graphics.
func cmdBuildTrainWaypoint(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	axis := tile.Axis(p1 & 1)
	count := uint((p1 >> 8) & 0xFF)
	specIndex := uint8(p2 & 0xFF)
	if count == 0 || count > uint(w.Settings.Station.StationSpread) {
		return Fail(ErrCommandFailed)
	}
	dx, dy := tile.DiagDirOffset(tile.AxisToDiagDir(axis.Other()))
	tiles := make([]tile.Index, 0, count)
	for i := range int(count) {
		at, ok := m.AddXY(t, dx*i, dy*i)
		if !ok {
			return Fail(ErrCommandFailed)
		}
		tiles = append(tiles, at)
	}

	est := pool.None
	for _, at := range tiles {
		if err := validWaypointTile(c, at, axis, &est); err != nil {
			return Fail(err)
		}
	}

	var wp *game.Station
	wpID := est
	if est.IsValid() {
		var err error
		if wp, err = w.Stations.Get(est); err != nil {
			return Fail(ErrCommandFailed)
		}
	} else {
		wpID, wp = findDeletedWaypointCloseTo(w, tiles[len(tiles)/2], w.CurrentCompany)
	}
	if wp != nil {
		if wp.Owner != w.CurrentCompany {
			return Fail(ErrTooCloseToOtherWaypoint)
		}
	} else if w.Stations.Len() >= w.Stations.Limit() {
		return Fail(ErrTooManyStations)
	}

	if exec(flags) {
		if wp == nil {
			town, _ := w.ClosestTownFromTile(t, ^uint(0))
			id, err := w.Stations.Alloc(game.Station{Waypoint: true, XY: t, Town: town, Facilities: game.FacilWaypoint})
			if err != nil {
				panic(err)
			}
			wpID = id
			wp, _ = w.Stations.Get(id)
		} else if !wp.InUse() {
			wp.XY = t
		}
		wp.Owner = m.Owner(t)
		wp.DeleteCtr = 0
		wp.Facilities |= game.FacilTrain
		wp.BuildDate = w.Date
		wp.SpecIndex = specIndex
		co := w.Company(wp.Owner)
		track := tile.AxisToTrack(axis)
		for _, at := range tiles {
			var rt tile.RailType
			switch tc := m.At(at).Content.(type) {
			case *tile.Rail:
				rt = tc.RailType
				if co != nil {
					co.Infra.Station++
				}
			case *tile.Station:
				rt = tc.RailType
			}
			m.MakeRailWaypoint(at, wp.Owner, wpID, axis, 0, rt)
			wp.Rect.Add(m, at)
			wp.TrainArea.Add(m, at)
			w.MarkTileDirty(at)
			w.NotifyTrackLayoutChange(at, track)
		}
	}
	return NewCost(ExpenseConstruction, game.Money(count)*w.Prices[game.PriceBuildWaypointRail])
}

// cmdRemoveFromRailWaypoint removes the waypoint tiles in the rectangle
// between t and the tile p1. With p2 bit 0 the track is left in place.
func cmdRemoveFromRailWaypoint(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	end, ok := tileIndexParam(c.W, p1)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	area := game.NewTileArea(c.W.Map, t, end)
	return removeFromRailBaseStation(c, area, flags, game.PriceClearWaypointRail, p2&1 != 0, true)
}

// removeFromRailBaseStation removes the rail station or waypoint tiles of
// area, charging price per tile.
func removeFromRailBaseStation(c *Context, area game.TileArea, flags Flags, price game.Price, keepRail, waypoints bool) CommandCost {
	w := c.W
	m := w.Map
	cost := NewCost(ExpenseConstruction, 0)
	var lastErr error
	quantity := 0
	affected := map[pool.ID]*game.Station{}

	for at := range m.Area(area.Tile, area.W, area.H) {
		st, ok := m.Station(at)
		if !ok || !st.IsRailStation() || (st.Kind == tile.StationWaypoint) != waypoints {
			continue
		}
		if err := ensureNoVehicleOnGround(w, at); err != nil {
			lastErr = err
			continue
		}
		id, base, err := w.StationByTile(at)
		if err != nil {
			continue
		}
		if w.CurrentCompany != tile.OwnerWater {
			if err := checkOwnership(w, base.Owner); err != nil {
				lastErr = err
				continue
			}
		}
		quantity++
		if keepRail {
			// The track stays, so its steel is not refunded.
			cost.AddCost(-w.Prices[game.PriceClearRail])
		}
		if exec(flags) {
			track := st.Track()
			owner := st.Owner
			rt := st.RailType
			doClearSquare(c, at)
			co := w.Company(owner)
			if keepRail {
				m.MakeRailNormal(at, owner, track.Bits(), rt)
			} else if co != nil {
				co.Infra.Rail[rt]--
			}
			if co != nil {
				co.Infra.Station--
			}
			w.AddTrackToSignalBuffer(at, track, owner)
			w.NotifyTrackLayoutChange(at, track)
			affected[id] = base
		}
	}
	if quantity == 0 {
		if lastErr != nil {
			return Fail(lastErr)
		}
		return Fail(ErrThereIsNoStation)
	}

	if len(affected) > 0 {
		w.RecomputeStationRects()
		for _, st := range affected {
			if st.TrainArea.Empty() {
				st.Facilities &^= game.FacilTrain
			}
			if !st.InUse() {
				st.DeleteCtr = game.WaypointDeleteGrace
			}
		}
	}
	cost.AddCost(game.Money(quantity) * w.Prices[price])
	return cost
}

// cmdRenameWaypoint names waypoint p1 after text; an empty text restores
// the default name.
func cmdRenameWaypoint(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	_, wp, ok := stationParam(w, p1)
	if !ok || !wp.Waypoint {
		return Fail(ErrCommandFailed)
	}
	if wp.Owner != tile.OwnerNone {
		if err := checkOwnership(w, wp.Owner); err != nil {
			return Fail(err)
		}
	}
	if text != "" {
		if utf8.RuneCountInString(text) >= MaxStationNameChars {
			return Fail(ErrCommandFailed)
		}
		for _, other := range w.Stations.All() {
			if other.Waypoint && other.Name == text {
				return Fail(ErrNameMustBeUnique)
			}
		}
	}
	if exec(flags) {
		wp.Name = text
	}
	return NewCost(ExpenseConstruction, 0)
}

type stationTile struct{}

func (stationTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	st, _ := c.W.Map.Station(t)
	one := game.TileArea{Tile: t, W: 1, H: 1}
	switch st.Kind {
	case tile.StationRail:
		if flags&Auto != 0 {
			return Fail(ErrMustDemolishRailroad)
		}
		return removeFromRailBaseStation(c, one, flags, game.PriceClearStationRail, false, false)
	case tile.StationWaypoint:
		if flags&Auto != 0 {
			return Fail(ErrBuildingMustBeDemolished)
		}
		return removeFromRailBaseStation(c, one, flags, game.PriceClearWaypointRail, false, true)
	}
	return Fail(ErrMustDemolishStationFirst)
}

func (stationTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	w := c.W
	st, _ := w.Map.Station(t)
	if autoslopeFoundation(c, t, zNew, tilehNew) {
		switch st.Kind {
		case tile.StationRail, tile.StationWaypoint:
			dir := tile.AxisToDiagDir(st.Axis())
			edge := func(d tile.DiagDirection) bool {
				return tilehNew == tile.SlopeFlat || canBuildDepotByTileh(d, tilehNew)
			}
			if edge(dir) && edge(dir.Reverse()) {
				return NewCost(ExpenseConstruction, w.Prices[game.PriceBuildFoundation])
			}
		case tile.StationAirport:
			return NewCost(ExpenseConstruction, w.Prices[game.PriceBuildFoundation])
		}
	}
	return landscapeClear(c, t, flags)
}
