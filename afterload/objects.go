package afterload

import (
	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/tile"
)

// Headquarters were flagged by bit 7 of m5 with their section below it.
func headquarters(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if isType(s, t, tile.TypeObject) && p.M5[t]&0x80 != 0 {
			p.M3[t] = p.M5[t] & 0x1F
			p.M5[t] = uint8(game.ObjectHQ)
		}
	}
	return nil
}

// Object tiles get their offset from the northern tile in m3 and the
// headquarters size in m6.
func objectBits(c *Context) error {
	s := c.S
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeObject) {
			continue
		}
		if game.ObjectType(p.M5[t]) == game.ObjectHQ {
			size := p.M3[t] >> 2 & 7
			p.M6[t] = p.M6[t]&^0x3C | size<<2
			p.M3[t] = p.M3[t]>>1&1 | (p.M3[t]&1)<<4
		} else {
			p.M6[t] &^= 0x3C
			p.M3[t] = 0
		}
		p.M4[t], p.M7[t] = 0, 0
	}
	return nil
}

// objectPool creates a record for every object on the map. Northern tiles
// found the object; the others copy its index through their offset.
func objectPool(c *Context) error {
	s := c.S
	if len(s.Objects) > 0 {
		return nil
	}
	p := &s.Planes
	for t := range allTiles(s) {
		if !isType(s, t, tile.TypeObject) {
			continue
		}
		offset := p.M3[t]
		p.M3[t] = p.M6[t] >> 2 & 0xF
		p.M6[t] &^= 0x3C

		if offset != 0 {
			dx, dy := uint(offset&0xF), uint(offset>>4)
			x, y := s.X(t), s.Y(t)
			if dx > x || dy > y {
				return tileErr(t, "object offset %#x leaves the map", offset)
			}
			north := s.XY(x-dx, y-dy)
			if !isType(s, north, tile.TypeObject) {
				return tileErr(t, "object offset %#x points at tile %d", offset, north)
			}
			p.M2[t], p.M5[t] = p.M2[north], p.M5[north]
			continue
		}

		typ := game.ObjectType(p.M5[t])
		size := uint16(1)
		if typ == game.ObjectHQ {
			size = 2
		}
		rec := savegame.ObjectRecord{
			Index:     uint32(len(s.Objects)),
			Type:      uint16(typ),
			Location:  savegame.AreaRecord{Tile: t, W: size, H: size},
			Town:      closestTown(s, t),
			BuildDate: s.Date.Date,
		}
		if typ == game.ObjectStatue {
			rec.Town = uint32(p.M2[t])
		}
		s.Objects = append(s.Objects, rec)
		p.M2[t] = uint16(rec.Index)
		p.M5[t] = uint8(rec.Index >> 16)
	}
	return nil
}

// closestTown returns the index of the town nearest to t, or NoIndex.
func closestTown(s *savegame.Snapshot, t uint32) uint32 {
	best, bestD := uint32(savegame.NoIndex), ^uint(0)
	for _, town := range s.Towns {
		if d := manhattan(s, t, town.XY); d < bestD {
			best, bestD = town.Index, d
		}
	}
	return best
}

// Objects take the colour of the company owning them.
func objectColours(c *Context) error {
	s := c.S
	for i := range s.Objects {
		o := &s.Objects[i]
		owner := s.Owner(o.Location.Tile)
		if owner < tile.MaxCompanies && s.Companies[owner] != nil {
			o.Colour = s.Companies[owner].Colour
		} else {
			o.Colour = uint8(c.random()) & 0xF
		}
	}
	return nil
}
