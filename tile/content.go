package tile

import (
	"fmt"

	"ttdmap/pool"
)

// Type is the tag selecting which content variant a tile holds.
type Type uint8

const (
	TypeClear Type = iota
	TypeRailway
	TypeRoad
	TypeHouse
	TypeTrees
	TypeStation
	TypeWater
	TypeVoid
	TypeIndustry
	TypeTunnelBridge
	TypeObject
	TypeEnd
)

var typeNames = [TypeEnd]string{"clear", "railway", "road", "house", "trees", "station", "water", "void", "industry", "tunnelbridge", "object"}

func (t Type) String() string {
	if t < TypeEnd {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Content is implemented only by the variant structs of this package.
type Content interface {
	Type() Type
	clone() Content
}

// CloneContent copies c so that it can leave the goroutine owning the map.
func CloneContent(c Content) Content { return c.clone() }

type ClearGround uint8

const (
	ClearGrass ClearGround = iota
	ClearRough
	ClearRocks
	ClearFields
	ClearSnow
	ClearDesert
)

type Clear struct {
	Ground  ClearGround
	Density uint8
	Counter uint8
	Snow    bool
	// Farm fields only.
	FieldType uint8
	Industry  pool.ID
}

type RailGround uint8

const (
	RailGroundBarren    RailGround = 0
	RailGroundGrass     RailGround = 1
	RailGroundFenceNW   RailGround = 2
	RailGroundIceDesert RailGround = 12
	RailGroundWater     RailGround = 13
	RailGroundHalfSnow  RailGround = 14
)

type SignalType uint8

const (
	SignalNormal SignalType = iota
	SignalEntry
	SignalExit
	SignalCombo
	SignalPBS
	SignalPBSOneway
)

type SignalVariant uint8

const (
	SignalElectric SignalVariant = iota
	SignalSemaphore
)

type Rail struct {
	Owner    Owner
	RailType RailType
	Ground   RailGround
	Tracks   TrackBits
	// Signal slots present and their states, one bit per slot.
	SignalPresent uint8
	SignalStates  uint8
	SignalType    SignalType
	SignalVariant SignalVariant
	Depot         bool
	DepotDir      DiagDirection
}

func (r *Rail) HasSignals() bool {
	return !r.Depot && r.SignalPresent != 0
}

func (r *Rail) HasSignalOnTrack(t Track) bool {
	return r.SignalPresent&SignalOnTrack(t) != 0
}

func (r *Rail) IsPlain() bool {
	return !r.Depot
}

type RoadTileKind uint8

const (
	RoadTileNormal RoadTileKind = iota
	RoadTileCrossing
	RoadTileDepot
)

type Road struct {
	Kind      RoadTileKind
	Owner     Owner
	TramOwner Owner
	RoadType  RoadType
	TramType  RoadType
	RoadBits  RoadBits
	TramBits  RoadBits
	OneWay    DisallowedRoadDirections
	Roadside  Roadside
	Roadworks uint8
	Snow      bool
	Town      pool.ID

	// Level crossings.
	RailOwner Owner
	RailType  RailType
	Axis      Axis
	Barred    bool

	DepotDir DiagDirection
}

// Bits returns the road or tram pieces of a normal road tile.
func (r *Road) Bits(rtt RoadTramType) RoadBits {
	if rtt == RTTTram {
		return r.TramBits
	}
	return r.RoadBits
}

func (r *Road) HasRoadType(rtt RoadTramType) bool {
	if rtt == RTTTram {
		return r.TramType.IsValid()
	}
	return r.RoadType.IsValid()
}

// RoadOwner returns the owner of the road or tram half of the tile.
func (r *Road) RoadOwner(rtt RoadTramType) Owner {
	if rtt == RTTTram {
		return r.TramOwner
	}
	return r.Owner
}

// CrossingRoadBits are the road pieces of a level crossing.
func (r *Road) CrossingRoadBits() RoadBits {
	return AxisToRoadBits(r.Axis)
}

// CrossingRailTrack is the track crossing the road.
func (r *Road) CrossingRailTrack() Track {
	return AxisToTrack(r.Axis.Other())
}

type House struct {
	Town      pool.ID
	HouseType uint16
	Stage     uint8
	Age       uint8
	Random    uint8
	Animation uint8
	Completed bool
}

type TreeType uint8

const (
	TreeTemperate   TreeType = 0
	TreeSubArctic   TreeType = 12
	TreeRainforest  TreeType = 20
	TreeCactus      TreeType = 27
	TreeSubTropical TreeType = 28
	TreeToyland     TreeType = 32
	InvalidTreeType TreeType = 0xFF
)

const (
	TreeCountTemperate  = 12
	TreeCountSubArctic  = 8
	TreeCountRainforest = 18
	TreeCountToyland    = 9
)

type TreeGround uint8

const (
	TreeGroundGrass TreeGround = iota
	TreeGroundRough
	TreeGroundSnowDesert
	TreeGroundShore
	TreeGroundRoughSnow
)

const TreeGrowthMax = 6

type Trees struct {
	TreeType TreeType
	Count    uint8
	Growth   uint8
	Ground   TreeGround
	Density  uint8
	Counter  uint8
}

type StationType uint8

const (
	StationRail StationType = iota
	StationAirport
	StationTruck
	StationBus
	StationOilrig
	StationDock
	StationBuoy
	StationWaypoint
)

type WaterClass uint8

const (
	WaterClassSea WaterClass = iota
	WaterClassCanal
	WaterClassRiver
	WaterClassInvalid
)

type Station struct {
	Owner      Owner
	Station    pool.ID
	Kind       StationType
	Gfx        uint8
	RailType   RailType
	SpecIndex  uint8
	Random     uint8
	Animation  uint8
	WaterClass WaterClass
}

func (s *Station) IsRailStation() bool {
	return s.Kind == StationRail || s.Kind == StationWaypoint
}

// Axis of a rail station or waypoint tile.
func (s *Station) Axis() Axis {
	return Axis(s.Gfx & 1)
}

func (s *Station) Track() Track {
	return AxisToTrack(s.Axis())
}

type WaterTileKind uint8

const (
	WaterTileClear WaterTileKind = iota
	WaterTileCoast
	WaterTileLock
	WaterTileDepot
)

type LockPart uint8

const (
	LockMiddle LockPart = iota
	LockLower
	LockUpper
)

type Water struct {
	Kind   WaterTileKind
	Class  WaterClass
	Owner  Owner
	Random uint8
	Dir    DiagDirection
	Part   LockPart
	// Depots only: the second tile of a depot.
	DepotPart uint8
	DepotAxis Axis
}

type Void struct{}

type Industry struct {
	Industry   pool.ID
	Gfx        uint16
	Completed  bool
	Stage      uint8
	Counter    uint8
	Random     uint8
	Animation  uint8
	WaterClass WaterClass
}

type TransportType uint8

const (
	TransportRail TransportType = iota
	TransportRoad
	TransportWater
)

type TunnelBridge struct {
	Owner      Owner
	Bridge     bool
	Transport  TransportType
	Dir        DiagDirection
	RailType   RailType
	RoadType   RoadType
	TramType   RoadType
	RoadOwner  Owner
	TramOwner  Owner
	BridgeType uint8
	Snow       bool
}

type Object struct {
	Owner      Owner
	Object     pool.ID
	Random     uint8
	Animation  uint8
	WaterClass WaterClass
}

func (*Clear) Type() Type        { return TypeClear }
func (*Rail) Type() Type         { return TypeRailway }
func (*Road) Type() Type         { return TypeRoad }
func (*House) Type() Type        { return TypeHouse }
func (*Trees) Type() Type        { return TypeTrees }
func (*Station) Type() Type      { return TypeStation }
func (*Water) Type() Type        { return TypeWater }
func (*Void) Type() Type         { return TypeVoid }
func (*Industry) Type() Type     { return TypeIndustry }
func (*TunnelBridge) Type() Type { return TypeTunnelBridge }
func (*Object) Type() Type       { return TypeObject }

func (c *Clear) clone() Content        { v := *c; return &v }
func (c *Rail) clone() Content         { v := *c; return &v }
func (c *Road) clone() Content         { v := *c; return &v }
func (c *House) clone() Content        { v := *c; return &v }
func (c *Trees) clone() Content        { v := *c; return &v }
func (c *Station) clone() Content      { v := *c; return &v }
func (c *Water) clone() Content        { v := *c; return &v }
func (c *Void) clone() Content         { return &Void{} }
func (c *Industry) clone() Content     { v := *c; return &v }
func (c *TunnelBridge) clone() Content { v := *c; return &v }
func (c *Object) clone() Content       { v := *c; return &v }

func (r *Rail) owner() Owner         { return r.Owner }
func (r *Station) owner() Owner      { return r.Owner }
func (r *Water) owner() Owner        { return r.Owner }
func (r *TunnelBridge) owner() Owner { return r.Owner }
func (r *Object) owner() Owner       { return r.Owner }

func (r *Road) owner() Owner {
	if r.Kind == RoadTileCrossing {
		return r.RailOwner
	}
	return r.Owner
}

func (h *House) owner() Owner    { return OwnerTown }
func (i *Industry) owner() Owner { return OwnerNone }

func as[T Content](m *Map, t Index) (T, bool) {
	v, ok := m.At(t).Content.(T)
	return v, ok
}

func (m *Map) Clear(t Index) (*Clear, bool)               { return as[*Clear](m, t) }
func (m *Map) Rail(t Index) (*Rail, bool)                 { return as[*Rail](m, t) }
func (m *Map) Road(t Index) (*Road, bool)                 { return as[*Road](m, t) }
func (m *Map) House(t Index) (*House, bool)               { return as[*House](m, t) }
func (m *Map) Trees(t Index) (*Trees, bool)               { return as[*Trees](m, t) }
func (m *Map) Station(t Index) (*Station, bool)           { return as[*Station](m, t) }
func (m *Map) Water(t Index) (*Water, bool)               { return as[*Water](m, t) }
func (m *Map) Industry(t Index) (*Industry, bool)         { return as[*Industry](m, t) }
func (m *Map) TunnelBridge(t Index) (*TunnelBridge, bool) { return as[*TunnelBridge](m, t) }
func (m *Map) Object(t Index) (*Object, bool)             { return as[*Object](m, t) }

// PlainRail returns the rail tile at t unless it is missing or a depot.
func (m *Map) PlainRail(t Index) (*Rail, bool) {
	r, ok := m.Rail(t)
	if !ok || r.Depot {
		return nil, false
	}
	return r, true
}

func (m *Map) IsLevelCrossing(t Index) bool {
	r, ok := m.Road(t)
	return ok && r.Kind == RoadTileCrossing
}

// Waypoint returns the station content of a rail waypoint tile.
func (m *Map) Waypoint(t Index) (*Station, bool) {
	s, ok := m.Station(t)
	if !ok || s.Kind != StationWaypoint {
		return nil, false
	}
	return s, true
}

// RailTracks returns the rail track bits on any tile that carries track.
func (m *Map) RailTracks(t Index) TrackBits {
	switch c := m.At(t).Content.(type) {
	case *Rail:
		if c.Depot {
			return AxisToTrackBits(c.DepotDir.Axis())
		}
		return c.Tracks
	case *Road:
		if c.Kind == RoadTileCrossing {
			return c.CrossingRailTrack().Bits()
		}
	case *Station:
		if c.IsRailStation() {
			return c.Track().Bits()
		}
	case *TunnelBridge:
		if c.Transport == TransportRail {
			return AxisToTrackBits(c.Dir.Axis())
		}
	}
	return TrackBitNone
}

// WaterClassOf returns the water class under a tile, WaterClassInvalid for dry land.
func (m *Map) WaterClassOf(t Index) WaterClass {
	switch c := m.At(t).Content.(type) {
	case *Water:
		return c.Class
	case *Station:
		return c.WaterClass
	case *Industry:
		return c.WaterClass
	case *Object:
		return c.WaterClass
	}
	return WaterClassInvalid
}

func (m *Map) IsWaterTile(t Index) bool {
	w, ok := m.Water(t)
	return ok && w.Kind == WaterTileClear
}

func (m *Map) IsCoast(t Index) bool {
	w, ok := m.Water(t)
	return ok && w.Kind == WaterTileCoast
}

// IsSea reports open sea, the only water that floods neighbours.
func (m *Map) IsSea(t Index) bool {
	w, ok := m.Water(t)
	return ok && w.Kind == WaterTileClear && w.Class == WaterClassSea
}
