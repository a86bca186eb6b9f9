package afterload

import (
	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/settings"
	"ttdmap/tile"
)

var steps = checkOrder([]Step{
	{"station rectangles", savegame.V(2), stationRects},
	{"town owner", savegame.V(2, 1), townOwner},
	{"exclusive rights", savegame.V(4, 1), exclusiveRights},
	{"currency", savegame.V(4, 2), currency},
	{"water owner", savegame.V(4, 3), waterOwner},
	{"town index", savegame.V(6, 1), townIndex},
	{"forbid 90 degrees", savegame.V(6, 1), forbid90},
	{"date fraction", savegame.V(11, 1), dateFraction},
	{"electric rail", savegame.V(24), electricRail},
	{"date epoch", savegame.V(31), dateEpoch},
	{"farm fields", savegame.V(32), farmFields},
	{"rail and road nibbles", savegame.V(48), railRoadNibbles},
	{"house stage", savegame.V(53), houseStage},
	{"difficulty levels", savegame.V(58), difficultyLevels},
	{"road kind", savegame.V(61), roadKind61},
	{"signal states", savegame.V(64), signalStates},
	{"canal owner", savegame.V(82), canalOwner},
	{"water class", savegame.V(86), waterClass},
	{"void border", savegame.V(87), voidBorder},
	{"headquarters", savegame.V(112), headquarters},
	{"clear snow and tree ground", savegame.V(135), snowAndTrees},
	{"object bits", savegame.V(144), objectBits},
	{"date fraction overflow", savegame.V(147), dateFractionOverflow},
	{"industry animation", savegame.V(147), industryAnimation},
	{"object pool", savegame.V(147), objectPool},
	{"object colours", savegame.V(148), objectColours},
	{"rail type plane", savegame.V(200), railTypePlane},
	{"road types", savegame.V(214), roadTypes},
	{"waypoint specs", savegame.V(215), waypointSpecs},
	{"named difficulty", savegame.V(215), namedDifficulty},
})

func growArea(s *savegame.Snapshot, a *savegame.AreaRecord, t uint32) {
	if a.W == 0 || a.H == 0 {
		*a = savegame.AreaRecord{Tile: t, W: 1, H: 1}
		return
	}
	x, y := s.X(t), s.Y(t)
	sx, sy := s.X(a.Tile), s.Y(a.Tile)
	ex, ey := sx+uint(a.W)-1, sy+uint(a.H)-1
	sx, sy = min(sx, x), min(sy, y)
	ex, ey = max(ex, x), max(ey, y)
	*a = savegame.AreaRecord{Tile: s.XY(sx, sy), W: uint16(ex - sx + 1), H: uint16(ey - sy + 1)}
}

func stationRects(c *Context) error {
	s := c.S
	byIndex := make(map[uint32]*savegame.StationRecord, len(s.Stations))
	for i := range s.Stations {
		st := &s.Stations[i]
		st.Rect, st.TrainArea = savegame.AreaRecord{}, savegame.AreaRecord{}
		byIndex[st.Index] = st
	}
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeStation) {
			continue
		}
		st := byIndex[uint32(s.Planes.M2[t])]
		if st == nil {
			return tileErr(t, "missing station %d", s.Planes.M2[t])
		}
		growArea(s, &st.Rect, t)
		if isRailStation(s, t) {
			growArea(s, &st.TrainArea, t)
		}
	}
	return nil
}

// Roads and tunnels built by towns carried a flag in m1; crossings kept
// theirs in m3, which held the road owner.
func townOwner(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeRoad):
			if oldRoadKind(s, t) == roadKindCrossing && p.M3[t]&0x80 != 0 {
				p.M3[t] = uint8(tile.OwnerTown)
			}
		case isType(s, t, tile.TypeTunnelBridge):
		default:
			continue
		}
		if p.M1[t]&0x80 != 0 {
			s.SetOwner(t, uint8(tile.OwnerTown))
			p.M1[t] &^= 0x80
		}
	}
	return nil
}

func exclusiveRights(c *Context) error {
	for i := range c.S.Towns {
		c.S.Towns[i].ExclusiveCompany = uint8(tile.InvalidOwner)
		c.S.Towns[i].ExclusiveCounter = 0
	}
	return nil
}

func currency(c *Context) error {
	l := &c.S.Settings.Locale
	l.Currency = settings.CurrencyFromOld(l.Currency)
	c.S.Settings.Station.ModifiedCatchment = false
	return nil
}

func waterOwner(c *Context) error {
	s := c.S
	for t := range allTiles(s) {
		if isType(s, t, tile.TypeWater) && s.Owner(t) >= tile.MaxCompanies {
			s.SetOwner(t, uint8(tile.OwnerWater))
		}
	}
	return nil
}

// Houses kept their type in m2 and roads some of their bits; m2 now holds
// the town index instead.
func townIndex(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeHouse):
			town := closestTown(s, t)
			if town == savegame.NoIndex {
				return tileErr(t, "house without any town")
			}
			p.M4[t] = uint8(p.M2[t])
			p.M2[t] = uint16(town)
		case isType(s, t, tile.TypeRoad):
			p.M4[t] |= uint8(p.M2[t] << 4)
			owner := s.Owner(t)
			if oldRoadKind(s, t) == roadKindCrossing {
				owner = p.M3[t]
			}
			p.M2[t] = savegame.NoIndex
			if owner == uint8(tile.OwnerTown) {
				p.M2[t] = uint16(closestTown(s, t))
			}
		}
	}
	return nil
}

func forbid90(c *Context) error {
	c.S.Settings.Pathfinder.Forbid90Deg = false
	return nil
}

func dateFraction(c *Context) error {
	c.S.Date.DateFract /= 885
	return nil
}

// Electrified rail was inserted right after normal rail, so rail types above
// it move up by one, on tiles and on train engines alike. Plain rail is only
// electrified when some engine runs on electric rail in the new numbering.
func electricRail(c *Context) error {
	s := c.S
	minRail := tile.RailTypeElectric
	for i := range s.Vehicles {
		veh := &s.Vehicles[i]
		if game.VehicleType(veh.Type) != game.VehTrain {
			continue
		}
		if tile.RailType(veh.EngineRailType) >= tile.RailTypeElectric {
			veh.EngineRailType++
		}
		if tile.RailType(veh.EngineRailType) == tile.RailTypeElectric {
			minRail = tile.RailTypeRail
		}
	}
	p := &s.Planes
	upgrade := func(nibble uint8) uint8 {
		if tile.RailType(nibble&0xF) >= minRail {
			return nibble&^0xF | (nibble+1)&0xF
		}
		return nibble
	}
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeRoad) && oldRoadKind(s, t) == roadKindCrossing:
			p.M4[t] = upgrade(p.M4[t])
		case carriesRail(s, t):
			p.M3[t] = upgrade(p.M3[t])
		}
	}
	return nil
}

func dateEpoch(c *Context) error {
	c.S.Date.Date += game.DaysTillOriginalBaseYear
	for i := range c.S.Stations {
		c.S.Stations[i].BuildDate += game.DaysTillOriginalBaseYear
	}
	return nil
}

// Farm fields are rebuilt by their industry; old ones become full grass.
func farmFields(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeClear) || tile.ClearGround(p.M5[t]>>2&7) != tile.ClearFields {
			continue
		}
		p.M1[t] = uint8(tile.OwnerNone)
		p.M2[t] = savegame.NoIndex
		p.M3[t], p.M4[t], p.M6[t], p.M7[t] = 0, 0, 0, 0
		p.M5[t] = uint8(tile.ClearGrass)<<2 | 3
	}
	return nil
}

// Rail ground moves from m2 into m4 so m2 can hold signal types. Depots lose
// their old subtype flags. Road swaps its m3 and m4.
func railRoadNibbles(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeRailway):
			if railKind(s, t) == railKindDepot {
				if p.M5[t]&0x04 != 0 {
					p.M5[t] &^= 0x24
				}
				continue
			}
			ground := p.M2[t] & 0xF
			p.M2[t] = p.M2[t]&^0xF | uint16(p.M4[t]&0xF)
			p.M4[t] = p.M4[t]&^0xF | uint8(ground)
		case isType(s, t, tile.TypeRoad):
			p.M3[t], p.M4[t] = p.M4[t], p.M3[t]
		}
	}
	return nil
}

// Houses kept their construction stage in the top bits of m3, where 3 meant
// completed. Completed houses stored their construction year in m5, which
// becomes their age.
func houseStage(c *Context) error {
	s := c.S
	p := &s.Planes
	year := int(game.Date(s.Date.Date).Year())
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeHouse) {
			continue
		}
		stage := p.M3[t] >> 6
		if stage != 3 {
			p.M3[t] = stage
			continue
		}
		p.M1[t] = 0
		p.M3[t] = 0x80 | 3
		p.M5[t] = uint8(tile.Clamp(year-(int(p.M5[t])+game.OriginalBaseYear), 0, 0xFF))
	}
	return nil
}

func difficultyLevels(c *Context) error {
	d := &c.S.OldDifficulty
	if d[3] > 0 {
		d[3]++
	}
	d[2]++
	return nil
}

// The road tile kind moves from bits 4-5 of m5 to the top bits, and every
// road learns that it carries road rather than tram.
func roadKind61(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeRoad):
			p.M5[t] = p.M5[t]&0x0F | oldRoadKind(s, t)<<6
			p.M7[t] |= 0x40
		case isTunnelBridge(s, t, tile.TransportRoad):
			p.M7[t] |= 0x40
		}
	}
	return nil
}

// Signal states move from the high nibble of m2 to m4. The variant of the
// second signal pair starts as a copy of the first.
func signalStates(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeRailway) || railKind(s, t) != railKindSignals {
			continue
		}
		p.M4[t] = p.M4[t]&0x0F | uint8(p.M2[t]&0xF0)
		p.M2[t] = p.M2[t]&^0xFF | p.M2[t]&0x0F | (p.M2[t]&0x0F)<<4
	}
	return nil
}

// Canals above sea level that claim to belong to the water are nobody's.
func canalOwner(c *Context) error {
	s := c.S
	for t := range allTiles(s) {
		if isType(s, t, tile.TypeWater) && waterKind(s, t) == waterKindClear &&
			s.Owner(t) == uint8(tile.OwnerWater) && s.Planes.Height[t] != 0 &&
			tile.WaterClass(s.WaterClass(t)) != tile.WaterClassRiver {
			s.SetOwner(t, uint8(tile.OwnerNone))
		}
	}
	return nil
}

// The map grew a void border on its south and east edges. Water left on the
// inner edge is sea.
func voidBorder(c *Context) error {
	s := c.S
	maxX, maxY := s.SizeX()-1, s.SizeY()-1
	for t := range allTiles(s) {
		x, y := s.X(t), s.Y(t)
		if x == maxX || y == maxY {
			makeVoid(s, t)
			continue
		}
		if x != 0 && y != 0 && x != maxX-1 && y != maxY-1 {
			continue
		}
		if isType(s, t, tile.TypeWater) || isStationKind(s, t, tile.StationBuoy) {
			s.SetWaterClass(t, uint8(tile.WaterClassSea))
		}
	}
	return nil
}

func snowAndTrees(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeClear):
			if tile.ClearGround(p.M5[t]>>2&7) == tile.ClearSnow {
				p.M5[t] = p.M5[t]&^0x1C | uint8(tile.ClearGrass)<<2
				p.M3[t] |= 0x10
			} else {
				p.M3[t] &^= 0x10
			}
		case isType(s, t, tile.TypeTrees):
			density := p.M2[t] >> 6 & 3
			ground := p.M2[t] >> 4 & 3
			p.M2[t] = p.M2[t]&^0xFF | ground<<6 | density<<4 | p.M2[t]&0xF
		}
	}
	return nil
}

func dateFractionOverflow(c *Context) error {
	if c.S.Date.DateFract > game.DayTicks {
		c.S.Date.DateFract /= 885
	}
	return nil
}

// Industry animation state trades places with the random bits.
func industryAnimation(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if isType(s, t, tile.TypeIndustry) {
			p.M3[t], p.M7[t] = p.M7[t], p.M3[t]
		}
	}
	return nil
}

// Rail types outgrew the low nibble of m3 and moved to m8.
func railTypePlane(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		switch {
		case carriesRail(s, t):
			rt := uint16(p.M3[t] & 0xF)
			if isType(s, t, tile.TypeRailway) || isCrossing(s, t) {
				p.M8[t] = p.M8[t]&^0x3F | rt
			} else {
				p.M8[t] = rt
			}
			p.M3[t] &^= 0xF
		case isType(s, t, tile.TypeStation):
			p.M8[t] = uint16(tile.InvalidRailType)
		}
	}
	return nil
}

// Roads used to be either road or tram by two flags in m7. They now carry a
// road type and a tram type; crossings move their road owner into m7 first.
func roadTypes(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeRoad) && !isTunnelBridge(s, t, tile.TransportRoad) {
			continue
		}
		if isCrossing(s, t) {
			p.M7[t] = p.M7[t]&^0x1F | p.M4[t]&0x1F
		}
		road, tram := tile.InvalidRoadType, tile.InvalidRoadType
		if p.M7[t]&0x40 != 0 {
			road = tile.RoadTypeRoad
		}
		if p.M7[t]&0x80 != 0 {
			tram = tile.RoadTypeTram
		} else {
			p.M3[t] |= 0xF0
		}
		p.M4[t] = uint8(road)
		p.M8[t] = p.M8[t]&^(0x3F<<6) | uint16(tram)<<6
		p.M7[t] &^= 0xC0
	}
	return nil
}

// Waypoint graphics were named by their slot in the game's package list.
// They now name the package by its GRF ID plus the index within it.
func waypointSpecs(c *Context) error {
	s := c.S
	for i := range s.Stations {
		st := &s.Stations[i]
		slot, local := int(st.OldSpec>>8), uint8(st.OldSpec)
		st.OldSpec = 0
		if slot == 0 {
			continue
		}
		if slot > len(s.GRFs) {
			c.Log.Warn("waypoint graphics refer to a missing package", "station", st.Index, "slot", slot)
			st.SpecGRFID, st.SpecIndex = 0, 0
			continue
		}
		st.SpecGRFID, st.SpecIndex = s.GRFs[slot-1].Ident.GRFID, local
	}
	return nil
}

func namedDifficulty(c *Context) error {
	c.S.Settings.Difficulty.ApplyOldDifficulty(c.S.OldDifficulty)
	return nil
}
