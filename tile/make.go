package tile

import "ttdmap/pool"

// The Make functions replace the whole content of a tile. Height is kept,
// every other field comes from the arguments or its zero value.

func (m *Map) set(t Index, c Content) {
	m.At(t).Content = c
}

func (m *Map) MakeClear(t Index, g ClearGround, density uint8) {
	m.set(t, &Clear{Ground: g, Density: density})
}

func (m *Map) MakeField(t Index, fieldType uint8, industry pool.ID) {
	m.set(t, &Clear{Ground: ClearFields, Density: 3, FieldType: fieldType, Industry: industry})
}

func (m *Map) MakeVoid(t Index) {
	tl := m.At(t)
	tl.Height = 0
	tl.Zone = TropicNormal
	tl.Content = &Void{}
}

func (m *Map) MakeRailNormal(t Index, o Owner, bits TrackBits, rt RailType) {
	m.set(t, &Rail{Owner: o, RailType: rt, Ground: RailGroundBarren, Tracks: bits})
}

func (m *Map) MakeRailDepot(t Index, o Owner, d DiagDirection, rt RailType) {
	m.set(t, &Rail{Owner: o, RailType: rt, Depot: true, DepotDir: d})
}

// MakeRoadNormal builds a plain road; bits are applied to each valid road type.
func (m *Map) MakeRoadNormal(t Index, bits RoadBits, roadRT, tramRT RoadType, town pool.ID, road, tram Owner) {
	r := &Road{
		Kind:      RoadTileNormal,
		Owner:     road,
		TramOwner: tram,
		RoadType:  roadRT,
		TramType:  tramRT,
		Town:      town,
		RailType:  InvalidRailType,
	}
	if roadRT.IsValid() {
		r.RoadBits = bits
	}
	if tramRT.IsValid() {
		r.TramBits = bits
	}
	m.set(t, r)
}

func (m *Map) MakeRoadCrossing(t Index, road, tram, rail Owner, roadAxis Axis, rat RailType, roadRT, tramRT RoadType, town pool.ID) {
	m.set(t, &Road{
		Kind:      RoadTileCrossing,
		Owner:     road,
		TramOwner: tram,
		RoadType:  roadRT,
		TramType:  tramRT,
		Town:      town,
		RailOwner: rail,
		RailType:  rat,
		Axis:      roadAxis,
	})
}

func (m *Map) MakeRoadDepot(t Index, o Owner, d DiagDirection, rt RoadType, town pool.ID) {
	m.set(t, &Road{
		Kind:      RoadTileDepot,
		Owner:     o,
		TramOwner: o,
		RoadType:  rt,
		TramType:  InvalidRoadType,
		Town:      town,
		RailType:  InvalidRailType,
		DepotDir:  d,
	})
}

func (m *Map) MakeHouse(t Index, town pool.ID, houseType uint16, stage, random uint8) {
	m.set(t, &House{Town: town, HouseType: houseType, Stage: stage, Random: random, Completed: stage == 3})
}

func (m *Map) MakeTree(t Index, tt TreeType, count, growth uint8, g TreeGround, density uint8) {
	m.set(t, &Trees{TreeType: tt, Count: Clamp(count, 1, 4), Growth: growth, Ground: g, Density: density})
}

func (m *Map) MakeStation(t Index, o Owner, sid pool.ID, kind StationType, gfx uint8, wc WaterClass) {
	m.set(t, &Station{Owner: o, Station: sid, Kind: kind, Gfx: gfx, RailType: InvalidRailType, WaterClass: wc})
}

func (m *Map) MakeRailStation(t Index, o Owner, sid pool.ID, a Axis, section uint8, rt RailType) {
	m.set(t, &Station{Owner: o, Station: sid, Kind: StationRail, Gfx: section&^1 | uint8(a), RailType: rt, WaterClass: WaterClassInvalid})
}

func (m *Map) MakeRailWaypoint(t Index, o Owner, sid pool.ID, a Axis, section uint8, rt RailType) {
	m.set(t, &Station{Owner: o, Station: sid, Kind: StationWaypoint, Gfx: section&^1 | uint8(a), RailType: rt, WaterClass: WaterClassInvalid})
}

func (m *Map) MakeBuoy(t Index, sid pool.ID, wc WaterClass) {
	m.MakeStation(t, OwnerNone, sid, StationBuoy, 0, wc)
}

func (m *Map) MakeWater(t Index, o Owner, wc WaterClass, random uint8) {
	m.set(t, &Water{Kind: WaterTileClear, Class: wc, Owner: o, Random: random})
}

func (m *Map) MakeSea(t Index) {
	m.MakeWater(t, OwnerWater, WaterClassSea, 0)
}

func (m *Map) MakeCanal(t Index, o Owner, random uint8) {
	m.MakeWater(t, o, WaterClassCanal, random)
}

func (m *Map) MakeRiver(t Index, random uint8) {
	m.MakeWater(t, OwnerWater, WaterClassRiver, random)
}

func (m *Map) MakeShore(t Index) {
	m.set(t, &Water{Kind: WaterTileCoast, Class: WaterClassSea, Owner: OwnerWater})
}

func (m *Map) MakeShipDepot(t Index, o Owner, a Axis, part uint8, wc WaterClass) {
	m.set(t, &Water{Kind: WaterTileDepot, Class: wc, Owner: o, DepotAxis: a, DepotPart: part})
}

// MakeLock builds the three tiles of a lock centred on t and facing d.
func (m *Map) MakeLock(t Index, o Owner, d DiagDirection, lower, upper, middle WaterClass) {
	dx, dy := DiagDirOffset(d)
	m.set(t, &Water{Kind: WaterTileLock, Class: middle, Owner: o, Dir: d, Part: LockMiddle})
	if lt, ok := m.AddXY(t, -dx, -dy); ok {
		m.set(lt, &Water{Kind: WaterTileLock, Class: lower, Owner: o, Dir: d, Part: LockLower})
	}
	if ut, ok := m.AddXY(t, dx, dy); ok {
		m.set(ut, &Water{Kind: WaterTileLock, Class: upper, Owner: o, Dir: d, Part: LockUpper})
	}
}

func (m *Map) MakeIndustry(t Index, ind pool.ID, gfx uint16, random uint8, wc WaterClass) {
	m.set(t, &Industry{Industry: ind, Gfx: gfx, Random: random, WaterClass: wc})
}

func (m *Map) MakeRailTunnel(t Index, o Owner, d DiagDirection, rt RailType) {
	m.set(t, &TunnelBridge{Owner: o, Transport: TransportRail, Dir: d, RailType: rt, RoadType: InvalidRoadType, TramType: InvalidRoadType})
}

func (m *Map) MakeRoadTunnel(t Index, o Owner, d DiagDirection, roadRT, tramRT RoadType) {
	m.set(t, &TunnelBridge{Owner: o, Transport: TransportRoad, Dir: d, RailType: InvalidRailType, RoadType: roadRT, TramType: tramRT, RoadOwner: o, TramOwner: o})
}

func (m *Map) MakeRailBridgeRamp(t Index, o Owner, bridgeType uint8, d DiagDirection, rt RailType) {
	m.set(t, &TunnelBridge{Owner: o, Bridge: true, Transport: TransportRail, Dir: d, RailType: rt, RoadType: InvalidRoadType, TramType: InvalidRoadType, BridgeType: bridgeType})
}

func (m *Map) MakeRoadBridgeRamp(t Index, o, road, tram Owner, bridgeType uint8, d DiagDirection, roadRT, tramRT RoadType) {
	m.set(t, &TunnelBridge{Owner: o, Bridge: true, Transport: TransportRoad, Dir: d, RailType: InvalidRailType, RoadType: roadRT, TramType: tramRT, RoadOwner: road, TramOwner: tram, BridgeType: bridgeType})
}

func (m *Map) MakeObject(t Index, o Owner, id pool.ID, wc WaterClass, random uint8) {
	m.set(t, &Object{Owner: o, Object: id, WaterClass: wc, Random: random})
}

// MakeUnmovable is the historic name of an object tile for the built-in
// structures (transmitter, lighthouse, statue, owned land, headquarters).
func (m *Map) MakeUnmovable(t Index, o Owner, id pool.ID) {
	m.MakeObject(t, o, id, WaterClassInvalid, 0)
}
