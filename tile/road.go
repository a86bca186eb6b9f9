package tile

import "math/bits"

// RoadBits is a set of road pieces, one per tile edge.
type RoadBits uint8

const (
	RoadNone RoadBits = 0
	RoadNW   RoadBits = 0x1
	RoadSW   RoadBits = 0x2
	RoadSE   RoadBits = 0x4
	RoadNE   RoadBits = 0x8
	RoadX             = RoadSW | RoadNE
	RoadY             = RoadNW | RoadSE
	RoadAll           = RoadX | RoadY
)

var diagDirRoadBits = [DiagDirEnd]RoadBits{
	DiagDirNE: RoadNE,
	DiagDirSE: RoadSE,
	DiagDirSW: RoadSW,
	DiagDirNW: RoadNW,
}

func DiagDirToRoadBits(d DiagDirection) RoadBits {
	return diagDirRoadBits[d]
}

func ComplementRoadBits(r RoadBits) RoadBits {
	return r ^ RoadAll
}

func MirrorRoadBits(r RoadBits) RoadBits {
	return (r&0x3)<<2 | (r>>2)&0x3
}

func AxisToRoadBits(a Axis) RoadBits {
	if a == AxisX {
		return RoadX
	}
	return RoadY
}

func IsStraightRoad(r RoadBits) bool {
	return r == RoadX || r == RoadY
}

func (r RoadBits) Count() int {
	return bits.OnesCount8(uint8(r))
}

// RoadType indexes the road type catalog. Road and tram types share the space.
type RoadType uint8

const (
	RoadTypeRoad    RoadType = 0
	RoadTypeTram    RoadType = 1
	RoadTypeEnd     RoadType = 63
	InvalidRoadType RoadType = 0x3F
)

func (rt RoadType) IsValid() bool {
	return rt < RoadTypeEnd
}

type RoadTramType uint8

const (
	RTTRoad RoadTramType = iota
	RTTTram
)

type DisallowedRoadDirections uint8

const (
	DRDNone DisallowedRoadDirections = iota
	DRDSouthbound
	DRDNorthbound
	DRDBoth
)

type Roadside uint8

const (
	RoadsideBarren         Roadside = 0
	RoadsideGrass          Roadside = 1
	RoadsidePaved          Roadside = 2
	RoadsideStreetLights   Roadside = 3
	RoadsideTrees          Roadside = 5
	RoadsideGrassRoadWorks Roadside = 6
	RoadsidePavedRoadWorks Roadside = 7
)

type RailType uint8

const (
	RailTypeRail     RailType = 0
	RailTypeElectric RailType = 1
	RailTypeMonorail RailType = 2
	RailTypeMaglev   RailType = 3
	RailTypeEnd      RailType = 64
	InvalidRailType  RailType = 0xFF
)

func (rt RailType) IsValid() bool {
	return rt < RailTypeEnd
}
