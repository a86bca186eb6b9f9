package game

import "ttdmap/tile"

// Infrastructure counts the pieces a company owns, for maintenance.
type Infrastructure struct {
	Rail    [tile.RailTypeEnd]uint32
	Road    [tile.RoadTypeEnd]uint32
	Signal  uint32
	Water   uint32
	Station uint32
	Airport uint32
}

func (i *Infrastructure) RailTotal() uint32 {
	var n uint32
	for _, v := range i.Rail {
		n += v
	}
	return n
}

type Company struct {
	Name   string
	Money  Money
	Colour uint8
	// HQ is the northern tile of the headquarters or tile.InvalidIndex.
	HQ             tile.Index
	AvailRailTypes uint64
	AvailRoadTypes uint64
	Infra          Infrastructure
	// Value is the company value used to price moving the headquarters.
	Value     Money
	Bankrupt  bool
	TreeLimit uint32
}

func (c *Company) HasRailType(rt tile.RailType) bool {
	return c.AvailRailTypes&(1<<rt) != 0
}

func (c *Company) HasRoadType(rt tile.RoadType) bool {
	return c.AvailRoadTypes&(1<<rt) != 0
}

func (w *World) defaultAvailableRailTypes() uint64 {
	var m uint64
	for i := range w.RailTypes {
		m |= 1 << i
	}
	return m
}

// RebuildAvailableTypes derives the rail and road types each company may
// build from what exists on the map.
func (w *World) RebuildAvailableTypes() {
	for _, c := range w.CompaniesAll() {
		c.AvailRailTypes = w.defaultAvailableRailTypes()
		c.AvailRoadTypes = 1<<tile.RoadTypeRoad | 1<<tile.RoadTypeTram
	}
	for t := range w.Map.All() {
		switch c := w.Map.At(t).Content.(type) {
		case *tile.Rail:
			if co := w.Company(c.Owner); co != nil {
				co.AvailRailTypes |= 1 << c.RailType
			}
		case *tile.Road:
			if co := w.Company(c.Owner); co != nil && c.RoadType.IsValid() {
				co.AvailRoadTypes |= 1 << c.RoadType
			}
			if co := w.Company(c.TramOwner); co != nil && c.TramType.IsValid() {
				co.AvailRoadTypes |= 1 << c.TramType
			}
		}
	}
}

// LevelCrossingTrackBitFactor is how many track pieces a crossing counts as.
const LevelCrossingTrackBitFactor = 2

// TunnelBridgeTrackBitFactor is how many pieces each tile of a tunnel or bridge counts as.
const TunnelBridgeTrackBitFactor = 4

// TrackPieces is the infrastructure count of a rail tile: overlapping tracks
// count quadratically.
func TrackPieces(bits tile.TrackBits) uint32 {
	n := uint32(bits.Count())
	if tile.TracksOverlap(bits) {
		n *= n
	}
	return n
}

// RebuildInfrastructure recounts every company's infrastructure from the map.
func (w *World) RebuildInfrastructure() {
	for _, c := range w.CompaniesAll() {
		c.Infra = Infrastructure{}
	}
	for t := range w.Map.All() {
		switch c := w.Map.At(t).Content.(type) {
		case *tile.Rail:
			co := w.Company(c.Owner)
			if co == nil {
				continue
			}
			if c.Depot {
				co.Infra.Rail[c.RailType]++
				continue
			}
			co.Infra.Rail[c.RailType] += TrackPieces(c.Tracks)
			co.Infra.Signal += uint32(popcount4(c.SignalPresent))
		case *tile.Road:
			switch c.Kind {
			case tile.RoadTileCrossing:
				if co := w.Company(c.RailOwner); co != nil {
					co.Infra.Rail[c.RailType] += LevelCrossingTrackBitFactor
				}
				if co := w.Company(c.Owner); co != nil && c.RoadType.IsValid() {
					co.Infra.Road[c.RoadType] += 2
				}
				if co := w.Company(c.TramOwner); co != nil && c.TramType.IsValid() {
					co.Infra.Road[c.TramType] += 2
				}
			case tile.RoadTileNormal:
				if co := w.Company(c.Owner); co != nil && c.RoadType.IsValid() {
					co.Infra.Road[c.RoadType] += uint32(c.RoadBits.Count())
				}
				if co := w.Company(c.TramOwner); co != nil && c.TramType.IsValid() {
					co.Infra.Road[c.TramType] += uint32(c.TramBits.Count())
				}
			case tile.RoadTileDepot:
				if co := w.Company(c.Owner); co != nil {
					co.Infra.Road[c.RoadType] += 2
				}
			}
		case *tile.Station:
			co := w.Company(c.Owner)
			if co == nil {
				continue
			}
			co.Infra.Station++
			if c.IsRailStation() {
				co.Infra.Rail[c.RailType]++
			}
		case *tile.Water:
			if co := w.Company(c.Owner); co != nil {
				co.Infra.Water += WaterPieces(c)
			}
		case *tile.TunnelBridge:
			other, n, ok := w.Map.TunnelBridgeOtherEnd(t)
			if !ok || other < t {
				continue
			}
			pieces := (uint32(n) + 2) * TunnelBridgeTrackBitFactor
			switch c.Transport {
			case tile.TransportRail:
				if co := w.Company(c.Owner); co != nil {
					co.Infra.Rail[c.RailType] += pieces
				}
			case tile.TransportRoad:
				if co := w.Company(c.RoadOwner); co != nil && c.RoadType.IsValid() {
					co.Infra.Road[c.RoadType] += pieces
				}
				if co := w.Company(c.TramOwner); co != nil && c.TramType.IsValid() {
					co.Infra.Road[c.TramType] += pieces
				}
			}
		}
	}
}

// WaterPieces is the infrastructure count of a water tile.
func WaterPieces(c *tile.Water) uint32 {
	if c.Class == tile.WaterClassCanal || c.Kind == tile.WaterTileLock {
		return 1
	}
	return 0
}

func popcount4(b uint8) int {
	n := 0
	for i := range 4 {
		if b&(1<<i) != 0 {
			n++
		}
	}
	return n
}
