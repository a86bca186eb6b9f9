package afterload

import (
	"ttdmap/savegame"
	"ttdmap/tile"
)

// waterClass gives every water tile a class. Plain water knows it from its
// owner; depots from the owner they were built over; locks, docks and buoys
// look at the water around them.
func waterClass(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeWater) || tile.WaterClass(s.WaterClass(t)) == tile.WaterClassRiver {
			continue
		}
		switch waterKind(s, t) {
		case waterKindClear:
			if s.Owner(t) == uint8(tile.OwnerWater) {
				s.SetWaterClass(t, uint8(tile.WaterClassSea))
				p.M4[t] = 0
			} else {
				s.SetWaterClass(t, uint8(tile.WaterClassCanal))
				p.M4[t] = uint8(c.random())
			}
		case waterKindDepot:
			wc := tile.WaterClassCanal
			if p.M4[t] == uint8(tile.OwnerWater) {
				wc = tile.WaterClassSea
			}
			s.SetWaterClass(t, uint8(wc))
			p.M4[t] = 0
		}
	}
	for t := range allTiles(s) {
		switch {
		case isType(s, t, tile.TypeWater) && waterKind(s, t) == waterKindLock,
			isStationKind(s, t, tile.StationDock),
			isStationKind(s, t, tile.StationBuoy):
			s.SetWaterClass(t, uint8(classFromSurroundings(s, t)))
		}
	}
	return nil
}

func classFromSurroundings(s *savegame.Snapshot, t uint32) tile.WaterClass {
	x, y := s.X(t), s.Y(t)
	if x == 0 || y == 0 || x == s.SizeX()-2 || y == s.SizeY()-2 {
		return tile.WaterClassSea
	}
	var water, canal, river bool
	for n := range neighbours(s, t) {
		switch {
		case isType(s, n, tile.TypeWater):
			switch kind := waterKind(s, n); {
			case kind == waterKindCoast:
				water = true
			case kind != waterKindLock:
				switch tile.WaterClass(s.WaterClass(n)) {
				case tile.WaterClassSea:
					water = true
				case tile.WaterClassCanal:
					canal = true
				case tile.WaterClassRiver:
					river = true
				}
			}
		case isType(s, n, tile.TypeRailway):
			water = water || tile.RailGround(s.Planes.M4[n]&0xF) == tile.RailGroundWater
		case isType(s, n, tile.TypeTrees):
			water = water || tile.TreeGround(s.Planes.M2[n]>>4&3) == tile.TreeGroundShore
		}
	}
	switch {
	case river && !canal:
		return tile.WaterClassRiver
	case canal || !water:
		return tile.WaterClassCanal
	}
	return tile.WaterClassSea
}
