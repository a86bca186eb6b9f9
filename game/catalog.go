package game

import (
	"ttdmap/tile"
)

// RailTypeInfo describes one rail type of the catalog.
type RailTypeInfo struct {
	Label string
	// Compatible lists the rail types trains of this type may drive on.
	Compatible uint64
	// Powered lists the rail types that power engines of this type.
	Powered        uint64
	CostMultiplier int64
	// Electrified marks types that need catenary.
	Electrified bool
}

func DefaultRailTypes() []RailTypeInfo {
	const (
		rail     = 1 << tile.RailTypeRail
		electric = 1 << tile.RailTypeElectric
		mono     = 1 << tile.RailTypeMonorail
		maglev   = 1 << tile.RailTypeMaglev
	)
	return []RailTypeInfo{
		tile.RailTypeRail:     {Label: "RAIL", Compatible: rail | electric, Powered: rail | electric, CostMultiplier: 8},
		tile.RailTypeElectric: {Label: "ELRL", Compatible: rail | electric, Powered: electric, CostMultiplier: 12, Electrified: true},
		tile.RailTypeMonorail: {Label: "MONO", Compatible: mono, Powered: mono, CostMultiplier: 16},
		tile.RailTypeMaglev:   {Label: "MGLV", Compatible: maglev, Powered: maglev, CostMultiplier: 24},
	}
}

// IsCompatibleRail reports whether track of type have accepts vehicles of type want.
func (w *World) IsCompatibleRail(have, want tile.RailType) bool {
	info := w.RailType(want)
	return info != nil && info.Compatible&(1<<have) != 0
}

// HasPowerOnRail reports whether engines of type engine are powered on track of type track.
func (w *World) HasPowerOnRail(engine, track tile.RailType) bool {
	info := w.RailType(engine)
	return info != nil && info.Powered&(1<<track) != 0
}

type RoadTypeInfo struct {
	Label          string
	Tram           bool
	CostMultiplier int64
}

func (r *RoadTypeInfo) RTT() tile.RoadTramType {
	if r.Tram {
		return tile.RTTTram
	}
	return tile.RTTRoad
}

func DefaultRoadTypes() []RoadTypeInfo {
	return []RoadTypeInfo{
		tile.RoadTypeRoad: {Label: "ROAD", CostMultiplier: 8},
		tile.RoadTypeTram: {Label: "ELRL", Tram: true, CostMultiplier: 16},
	}
}

type ObjectType uint16

const (
	ObjectTransmitter ObjectType = iota
	ObjectLighthouse
	ObjectStatue
	ObjectOwnedLand
	ObjectHQ
	ObjectNewGRFStart
	InvalidObjectType ObjectType = 0xFFFF
)

type ObjectFlags uint16

const (
	ObjectFlagOnlyInScenedit ObjectFlags = 1 << iota
	ObjectFlagCannotRemove
	ObjectFlagAutoremove
	ObjectFlagBuiltOnWater
	ObjectFlagClearIncome
	ObjectFlagHasNoFoundation
	ObjectFlagAnimation
	ObjectFlagOnlyInGame
	ObjectFlag2CC
	ObjectFlagNotOnLand
	ObjectFlagDrawWater
	ObjectFlagAllowUnderBridge
	ObjectFlagAnimStatic
	ObjectFlagNoHouses
)

// ObjectSpec is the static description of an object type.
type ObjectSpec struct {
	Name string
	// Size holds the x extent in the low nibble and y in the high nibble.
	Size       uint8
	Views      uint8
	Flags      ObjectFlags
	BuildPrice Price
	ClearPrice Price
	// Cost multipliers for the build and clear prices.
	BuildCostMult int64
	ClearCostMult int64
	Climates      uint8
	Enabled       bool
}

func (s *ObjectSpec) Width() uint  { return uint(s.Size & 0xF) }
func (s *ObjectSpec) Height() uint { return uint(s.Size >> 4) }

// SizeForView returns the footprint of the object rotated by view.
func (s *ObjectSpec) SizeForView(view uint8) (w, h uint) {
	if view&1 != 0 {
		return s.Height(), s.Width()
	}
	return s.Width(), s.Height()
}

func (s *ObjectSpec) BuildCost(p Prices) Money {
	return p[s.BuildPrice] * Money(s.BuildCostMult)
}

func (s *ObjectSpec) ClearCost(p Prices) Money {
	return p[s.ClearPrice] * Money(s.ClearCostMult)
}

const allClimates = 0xF

func DefaultObjectSpecs() []ObjectSpec {
	return []ObjectSpec{
		ObjectTransmitter: {Name: "transmitter", Size: 0x11, Views: 1, Flags: ObjectFlagCannotRemove | ObjectFlagOnlyInScenedit, BuildPrice: PriceBuildObject, ClearPrice: PriceClearObject, BuildCostMult: 0, ClearCostMult: 0, Climates: allClimates, Enabled: true},
		ObjectLighthouse:  {Name: "lighthouse", Size: 0x11, Views: 1, Flags: ObjectFlagCannotRemove | ObjectFlagOnlyInScenedit, BuildPrice: PriceBuildObject, ClearPrice: PriceClearObject, Climates: allClimates &^ (1 << 3), Enabled: true},
		ObjectStatue:      {Name: "statue", Size: 0x11, Views: 1, Flags: ObjectFlagCannotRemove | ObjectFlagOnlyInGame, BuildPrice: PriceBuildObject, ClearPrice: PriceClearObject, Climates: allClimates, Enabled: true},
		ObjectOwnedLand:   {Name: "owned land", Size: 0x11, Views: 1, Flags: ObjectFlagOnlyInGame | ObjectFlagClearIncome | ObjectFlagHasNoFoundation | ObjectFlagAllowUnderBridge, BuildPrice: PriceClearRough, ClearPrice: PriceClearRough, BuildCostMult: 10, ClearCostMult: 10, Climates: allClimates, Enabled: true},
		ObjectHQ:          {Name: "company headquarters", Size: 0x22, Views: 1, Flags: ObjectFlagCannotRemove | ObjectFlagOnlyInGame, BuildPrice: PriceBuildObject, ClearPrice: PriceClearObject, BuildCostMult: 8, ClearCostMult: 8, Climates: allClimates, Enabled: true},
		ObjectNewGRFStart: {Name: "small office", Size: 0x12, Views: 2, Flags: ObjectFlagAutoremove | ObjectFlagNoHouses, BuildPrice: PriceBuildObject, ClearPrice: PriceClearObject, BuildCostMult: 4, ClearCostMult: 2, Climates: allClimates, Enabled: true},
	}
}
