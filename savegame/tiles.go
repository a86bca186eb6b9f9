package savegame

import (
	"ttdmap/pool"
	"ttdmap/tile"
)

// Road kinds in bits 6-7 of m5.
const (
	roadKindNormal   = 0
	roadKindCrossing = 1
	roadKindDepot    = 2
)

// Rail kinds in bits 6-7 of m5.
const (
	railKindPlain   = 0
	railKindSignals = 1
	railKindDepot   = 3
)

// Water kinds in bits 4-7 of m5.
const (
	waterKindClear = 0
	waterKindCoast = 1
	waterKindLock  = 2
	waterKindDepot = 8
)

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func index16(id pool.ID) uint16 {
	if !id.IsValid() {
		return NoIndex
	}
	return uint16(id.Index)
}

// Tram owners only have four bits; anything but a company reads back as no owner.
func tramOwner4(o tile.Owner) uint8 {
	if o.IsCompany() {
		return uint8(o)
	}
	return 0xF
}

func tramOwnerFrom4(v uint8) tile.Owner {
	if v == 0xF {
		return tile.OwnerNone
	}
	return tile.Owner(v)
}

// packTiles stores every tile of m in p, which must match the map size.
func packTiles(m *tile.Map, p *Planes) {
	for t := range m.All() {
		i := int(t)
		tl := m.At(t)
		p.Type[i] = uint8(tl.Content.Type())<<4 | uint8(tl.Zone)&3
		p.Height[i] = tl.Height
		p.M1[i], p.M2[i], p.M3[i], p.M4[i] = 0, 0, 0, 0
		p.M5[i], p.M6[i], p.M7[i], p.M8[i] = 0, 0, 0, 0

		switch c := tl.Content.(type) {
		case *tile.Clear:
			p.M1[i] = uint8(tile.OwnerNone)
			p.M2[i] = index16(c.Industry)
			p.M3[i] = b2u(c.Snow)<<4 | c.FieldType&0xF
			p.M5[i] = c.Counter<<5 | uint8(c.Ground)<<2 | c.Density&3
		case *tile.Rail:
			p.M1[i] = uint8(c.Owner)
			sig := uint16(c.SignalType)&7 | uint16(c.SignalVariant)<<3
			p.M2[i] = sig | sig<<4
			p.M3[i] = c.SignalPresent << 4
			p.M4[i] = c.SignalStates<<4 | uint8(c.Ground)&0xF
			switch {
			case c.Depot:
				p.M5[i] = railKindDepot<<6 | uint8(c.DepotDir)&3
			case c.SignalPresent != 0:
				p.M5[i] = railKindSignals<<6 | uint8(c.Tracks)&0x3F
			default:
				p.M5[i] = railKindPlain<<6 | uint8(c.Tracks)&0x3F
			}
			p.M8[i] = uint16(c.RailType) & 0x3F
		case *tile.Road:
			p.M2[i] = index16(c.Town)
			p.M3[i] = tramOwner4(c.TramOwner)<<4 | uint8(c.TramBits)&0xF
			p.M4[i] = uint8(c.RoadType) & 0x3F
			p.M6[i] = uint8(c.Roadside) << 3
			p.M7[i] = b2u(c.Snow) << 5
			p.M8[i] = uint16(c.TramType&0x3F) << 6
			switch c.Kind {
			case tile.RoadTileNormal:
				p.M1[i] = uint8(c.Owner)
				p.M5[i] = roadKindNormal<<6 | uint8(c.OneWay)<<4 | uint8(c.RoadBits)&0xF
				p.M7[i] |= c.Roadworks & 0xF
			case tile.RoadTileCrossing:
				p.M1[i] = uint8(c.RailOwner)
				p.M5[i] = roadKindCrossing<<6 | b2u(c.Barred)<<5 | uint8(c.Axis)&1
				p.M7[i] |= uint8(c.Owner) & 0x1F
				p.M8[i] |= uint16(c.RailType) & 0x3F
			case tile.RoadTileDepot:
				p.M1[i] = uint8(c.Owner)
				p.M5[i] = roadKindDepot<<6 | uint8(c.DepotDir)&3
			}
		case *tile.House:
			p.M1[i] = c.Random
			p.M2[i] = index16(c.Town)
			p.M3[i] = b2u(c.Completed)<<7 | uint8(c.HouseType>>8&1)<<6 | c.Stage&3
			p.M4[i] = uint8(c.HouseType)
			p.M5[i] = c.Age
			p.M7[i] = c.Animation
		case *tile.Trees:
			p.M1[i] = uint8(tile.OwnerNone)
			p.M2[i] = uint16(c.Ground)<<6 | uint16(c.Density&3)<<4 | uint16(c.Counter&0xF)
			p.M3[i] = uint8(c.TreeType)
			p.M5[i] = (c.Count-1)<<6 | c.Growth&7
		case *tile.Station:
			p.M1[i] = uint8(c.Owner) | uint8(c.WaterClass)<<5
			p.M2[i] = index16(c.Station)
			p.M3[i] = c.Random
			p.M4[i] = c.SpecIndex
			p.M5[i] = c.Gfx
			p.M6[i] = uint8(c.Kind) << 3
			p.M7[i] = c.Animation
			p.M8[i] = uint16(c.RailType)
		case *tile.Water:
			p.M1[i] = uint8(c.Owner) | uint8(c.Class)<<5
			p.M4[i] = c.Random
			switch c.Kind {
			case tile.WaterTileClear:
				p.M5[i] = waterKindClear << 4
			case tile.WaterTileCoast:
				p.M5[i] = waterKindCoast << 4
			case tile.WaterTileLock:
				p.M5[i] = waterKindLock<<4 | uint8(c.Part)<<2 | uint8(c.Dir)&3
			case tile.WaterTileDepot:
				p.M5[i] = waterKindDepot<<4 | uint8(c.DepotAxis)<<1 | c.DepotPart&1
			}
		case *tile.Void:
		case *tile.Industry:
			p.M1[i] = b2u(c.Completed)<<7 | uint8(c.WaterClass)<<5 | (c.Stage&3)<<2 | c.Counter&3
			p.M2[i] = index16(c.Industry)
			p.M3[i] = c.Random
			p.M5[i] = uint8(c.Gfx)
			p.M6[i] = uint8(c.Gfx>>8&1) << 2
			p.M7[i] = c.Animation
		case *tile.TunnelBridge:
			p.M1[i] = uint8(c.Owner)
			p.M3[i] = tramOwner4(c.TramOwner) << 4
			p.M5[i] = b2u(c.Bridge)<<7 | uint8(c.Transport)<<2 | uint8(c.Dir)&3
			p.M6[i] = (c.BridgeType & 0xF) << 2
			p.M7[i] = b2u(c.Snow)<<5 | uint8(c.RoadOwner)&0x1F
			if c.Transport == tile.TransportRoad {
				p.M4[i] = uint8(c.RoadType) & 0x3F
				p.M8[i] = uint16(c.TramType&0x3F) << 6
			} else {
				p.M8[i] = uint16(c.RailType)
			}
		case *tile.Object:
			p.M1[i] = uint8(c.Owner) | uint8(c.WaterClass)<<5
			p.M2[i] = uint16(c.Object.Index)
			p.M3[i] = c.Random
			p.M5[i] = uint8(c.Object.Index >> 16)
			p.M7[i] = c.Animation
		}
	}
}

// resolver turns a stored pool index into a live ID.
type resolver func(index uint32) (pool.ID, bool)

type tileRefs struct {
	towns, stations, industries, objects resolver
}

func (r resolver) ref16(v uint16, optional bool) (pool.ID, bool) {
	if v == NoIndex && optional {
		return pool.None, true
	}
	return r(uint32(v))
}

// unpackTiles builds the typed map from the current-version planes.
func unpackTiles(s *Snapshot, refs tileRefs) (*tile.Map, error) {
	m, err := tile.NewMap(s.LogX, s.LogY)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	p := &s.Planes
	for t := range m.All() {
		i := int(t)
		tl := m.At(t)
		tl.Height = p.Height[i]
		tl.Zone = tile.TropicZone(p.Type[i] & 3)
		if tl.Height > tile.MaxHeight {
			return nil, corrupt("tile %d: height %d", t, tl.Height)
		}
		owner := tile.Owner(p.M1[i] & 0x1F)
		wc := tile.WaterClass(p.M1[i] >> 5 & 3)
		typ := tile.Type(p.Type[i] >> 4)
		var ok bool

		switch typ {
		case tile.TypeClear:
			c := &tile.Clear{
				Ground:    tile.ClearGround(p.M5[i] >> 2 & 7),
				Density:   p.M5[i] & 3,
				Counter:   p.M5[i] >> 5,
				Snow:      p.M3[i]&0x10 != 0,
				FieldType: p.M3[i] & 0xF,
			}
			ok = true
			if c.Ground == tile.ClearFields {
				c.Industry, ok = refs.industries.ref16(p.M2[i], true)
			}
			tl.Content = c
		case tile.TypeRailway:
			sig := p.M2[i]
			c := &tile.Rail{
				Owner:         owner,
				RailType:      tile.RailType(p.M8[i] & 0x3F),
				Ground:        tile.RailGround(p.M4[i] & 0xF),
				SignalPresent: p.M3[i] >> 4,
				SignalStates:  p.M4[i] >> 4,
				SignalType:    tile.SignalType(sig & 7),
				SignalVariant: tile.SignalVariant(sig >> 3 & 1),
			}
			switch p.M5[i] >> 6 {
			case railKindPlain, railKindSignals:
				c.Tracks = tile.TrackBits(p.M5[i] & 0x3F)
			case railKindDepot:
				c.Depot = true
				c.DepotDir = tile.DiagDirection(p.M5[i] & 3)
			default:
				return nil, corrupt("tile %d: rail kind %d", t, p.M5[i]>>6)
			}
			tl.Content, ok = c, true
		case tile.TypeRoad:
			c := &tile.Road{
				TramOwner: tramOwnerFrom4(p.M3[i] >> 4),
				TramBits:  tile.RoadBits(p.M3[i] & 0xF),
				RoadType:  tile.RoadType(p.M4[i] & 0x3F),
				TramType:  tile.RoadType(p.M8[i] >> 6 & 0x3F),
				Roadside:  tile.Roadside(p.M6[i] >> 3 & 7),
				Snow:      p.M7[i]&0x20 != 0,
				RailType:  tile.InvalidRailType,
			}
			switch p.M5[i] >> 6 {
			case roadKindNormal:
				c.Kind = tile.RoadTileNormal
				c.Owner = owner
				c.OneWay = tile.DisallowedRoadDirections(p.M5[i] >> 4 & 3)
				c.RoadBits = tile.RoadBits(p.M5[i] & 0xF)
				c.Roadworks = p.M7[i] & 0xF
			case roadKindCrossing:
				c.Kind = tile.RoadTileCrossing
				c.RailOwner = owner
				c.Owner = tile.Owner(p.M7[i] & 0x1F)
				c.RailType = tile.RailType(p.M8[i] & 0x3F)
				c.Axis = tile.Axis(p.M5[i] & 1)
				c.Barred = p.M5[i]&0x20 != 0
			case roadKindDepot:
				c.Kind = tile.RoadTileDepot
				c.Owner = owner
				c.DepotDir = tile.DiagDirection(p.M5[i] & 3)
			default:
				return nil, corrupt("tile %d: road kind %d", t, p.M5[i]>>6)
			}
			// Roads of towns that are gone lose their town; loaders
			// reassign the nearest one.
			c.Town, _ = refs.towns.ref16(p.M2[i], true)
			tl.Content, ok = c, true
		case tile.TypeHouse:
			c := &tile.House{
				Random:    p.M1[i],
				Completed: p.M3[i]&0x80 != 0,
				HouseType: uint16(p.M3[i]>>6&1)<<8 | uint16(p.M4[i]),
				Stage:     p.M3[i] & 3,
				Age:       p.M5[i],
				Animation: p.M7[i],
			}
			c.Town, ok = refs.towns.ref16(p.M2[i], false)
			tl.Content = c
		case tile.TypeTrees:
			tl.Content = &tile.Trees{
				TreeType: tile.TreeType(p.M3[i]),
				Count:    p.M5[i]>>6 + 1,
				Growth:   p.M5[i] & 7,
				Ground:   tile.TreeGround(p.M2[i] >> 6 & 7),
				Density:  uint8(p.M2[i] >> 4 & 3),
				Counter:  uint8(p.M2[i] & 0xF),
			}
			ok = true
		case tile.TypeStation:
			c := &tile.Station{
				Owner:      owner,
				WaterClass: wc,
				Random:     p.M3[i],
				SpecIndex:  p.M4[i],
				Gfx:        p.M5[i],
				Kind:       tile.StationType(p.M6[i] >> 3 & 7),
				Animation:  p.M7[i],
				RailType:   tile.RailType(p.M8[i]),
			}
			c.Station, ok = refs.stations.ref16(p.M2[i], false)
			tl.Content = c
		case tile.TypeWater:
			c := &tile.Water{Owner: owner, Class: wc, Random: p.M4[i]}
			switch p.M5[i] >> 4 {
			case waterKindClear:
				c.Kind = tile.WaterTileClear
			case waterKindCoast:
				c.Kind = tile.WaterTileCoast
			case waterKindLock:
				c.Kind = tile.WaterTileLock
				c.Part = tile.LockPart(p.M5[i] >> 2 & 3)
				c.Dir = tile.DiagDirection(p.M5[i] & 3)
			case waterKindDepot:
				c.Kind = tile.WaterTileDepot
				c.DepotPart = p.M5[i] & 1
				c.DepotAxis = tile.Axis(p.M5[i] >> 1 & 1)
			default:
				return nil, corrupt("tile %d: water kind %d", t, p.M5[i]>>4)
			}
			tl.Content, ok = c, true
		case tile.TypeVoid:
			tl.Content, ok = &tile.Void{}, true
		case tile.TypeIndustry:
			c := &tile.Industry{
				Completed:  p.M1[i]&0x80 != 0,
				WaterClass: wc,
				Stage:      p.M1[i] >> 2 & 3,
				Counter:    p.M1[i] & 3,
				Random:     p.M3[i],
				Gfx:        uint16(p.M6[i]>>2&1)<<8 | uint16(p.M5[i]),
				Animation:  p.M7[i],
			}
			c.Industry, ok = refs.industries.ref16(p.M2[i], false)
			tl.Content = c
		case tile.TypeTunnelBridge:
			c := &tile.TunnelBridge{
				Owner:      owner,
				Bridge:     p.M5[i]&0x80 != 0,
				Transport:  tile.TransportType(p.M5[i] >> 2 & 3),
				Dir:        tile.DiagDirection(p.M5[i] & 3),
				TramOwner:  tramOwnerFrom4(p.M3[i] >> 4),
				RoadOwner:  tile.Owner(p.M7[i] & 0x1F),
				BridgeType: p.M6[i] >> 2 & 0xF,
				Snow:       p.M7[i]&0x20 != 0,
				RailType:   tile.InvalidRailType,
				RoadType:   tile.InvalidRoadType,
				TramType:   tile.InvalidRoadType,
			}
			switch c.Transport {
			case tile.TransportRail:
				c.RailType = tile.RailType(p.M8[i])
			case tile.TransportRoad:
				c.RoadType = tile.RoadType(p.M4[i] & 0x3F)
				c.TramType = tile.RoadType(p.M8[i] >> 6 & 0x3F)
			default:
				return nil, corrupt("tile %d: tunnel or bridge transport %d", t, c.Transport)
			}
			tl.Content, ok = c, true
		case tile.TypeObject:
			c := &tile.Object{
				Owner:      owner,
				WaterClass: wc,
				Random:     p.M3[i],
				Animation:  p.M7[i],
			}
			c.Object, ok = refs.objects(uint32(p.M5[i])<<16 | uint32(p.M2[i]))
			tl.Content = c
		default:
			return nil, corrupt("tile %d: type %d", t, typ)
		}
		if !ok {
			return nil, corrupt("tile %d: %v references a missing pool entry", t, typ)
		}
	}
	return m, nil
}
