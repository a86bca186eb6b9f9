package afterload

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/game"
	"ttdmap/newgrf"
	"ttdmap/savegame"
	"ttdmap/tile"
)

type planeBytes struct{ M2, M3, M4, M5, M6, M7, M8 uint16 }

func planesAt(s *savegame.Snapshot, t uint32) planeBytes {
	p := &s.Planes
	return planeBytes{p.M2[t], uint16(p.M3[t]), uint16(p.M4[t]), uint16(p.M5[t]), uint16(p.M6[t]), uint16(p.M7[t]), p.M8[t]}
}

func TestRailRoadNibbles(t *testing.T) {
	s := oldSnapshot(savegame.V(47))
	p := &s.Planes
	rail := setTile(s, 1, 1, tile.TypeRailway, 0)
	p.M2[rail], p.M4[rail] = 0x0035, 0x72
	depot := setTile(s, 2, 1, tile.TypeRailway, 0)
	p.M5[depot] = railKindDepot<<6 | 0x24 | 0x01
	p.M2[depot], p.M4[depot] = 0x0035, 0x72
	plainDepot := setTile(s, 3, 1, tile.TypeRailway, 0)
	p.M5[plainDepot] = railKindDepot<<6 | 0x20 | 0x01
	road := setTile(s, 4, 1, tile.TypeRoad, 0)
	p.M3[road], p.M4[road] = 0x11, 0x22
	grass := setTile(s, 5, 1, tile.TypeClear, uint8(tile.OwnerNone))
	p.M3[grass], p.M4[grass] = 0x11, 0x22

	if err := railRoadNibbles(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := map[string]planeBytes{}
	for name, at := range map[string]uint32{"rail": rail, "depot": depot, "plain depot": plainDepot, "road": road, "grass": grass} {
		got[name] = planesAt(s, at)
	}
	want := map[string]planeBytes{
		"rail":        {M2: 0x0032, M4: 0x75},
		"depot":       {M2: 0x0035, M4: 0x72, M5: railKindDepot<<6 | 0x01},
		"plain depot": {M5: railKindDepot<<6 | 0x21},
		"road":        {M3: 0x22, M4: 0x11},
		"grass":       {M3: 0x11, M4: 0x22},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planes (-want +got):\n%s", diff)
	}
}

func TestSignalStates(t *testing.T) {
	s := oldSnapshot(savegame.V(63))
	p := &s.Planes
	signals := setTile(s, 1, 1, tile.TypeRailway, 0)
	p.M5[signals] = railKindSignals<<6 | 0x01
	p.M2[signals], p.M4[signals] = 0x01A3, 0x5C
	plain := setTile(s, 2, 1, tile.TypeRailway, 0)
	p.M5[plain] = 0x01
	p.M2[plain], p.M4[plain] = 0x00A3, 0x5C

	if err := signalStates(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := []planeBytes{planesAt(s, signals), planesAt(s, plain)}
	want := []planeBytes{
		{M2: 0x0133, M4: 0xAC, M5: railKindSignals<<6 | 0x01},
		{M2: 0x00A3, M4: 0x5C, M5: 0x01},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planes (-want +got):\n%s", diff)
	}
}

func TestWaterClass(t *testing.T) {
	s := oldSnapshot(savegame.V(85))
	s.Date.Random = [2]uint32{0x1234, 0x5678}
	p := &s.Planes
	sea := setTile(s, 10, 10, tile.TypeWater, uint8(tile.OwnerWater))
	p.M4[sea] = 0x33
	canal := setTile(s, 20, 20, tile.TypeWater, 1)
	river := setTile(s, 40, 40, tile.TypeWater, uint8(tile.OwnerNone))
	s.SetWaterClass(river, uint8(tile.WaterClassRiver))
	p.M4[river] = 0x44
	depot := setTile(s, 30, 30, tile.TypeWater, 1)
	p.M5[depot] = waterKindDepot << 4
	p.M4[depot] = uint8(tile.OwnerWater)
	canalLock := setTile(s, 21, 20, tile.TypeWater, 1)
	p.M5[canalLock] = waterKindLock << 4
	riverLock := setTile(s, 41, 40, tile.TypeWater, 1)
	p.M5[riverLock] = waterKindLock << 4
	dock := setTile(s, 11, 10, tile.TypeStation, 1)
	p.M6[dock] = uint8(tile.StationDock) << 3
	s.SetWaterClass(dock, uint8(tile.WaterClassCanal))
	buoy := setTile(s, 0, 5, tile.TypeStation, uint8(tile.OwnerNone))
	p.M6[buoy] = uint8(tile.StationBuoy) << 3
	s.SetWaterClass(buoy, uint8(tile.WaterClassCanal))

	r := game.Random{State: s.Date.Random}
	canalRandom := uint8(r.Next())

	if err := waterClass(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	type water struct {
		Class tile.WaterClass
		M4    uint8
	}
	got := map[string]water{}
	tiles := map[string]uint32{
		"sea": sea, "canal": canal, "river": river, "depot": depot,
		"canal lock": canalLock, "river lock": riverLock, "dock": dock, "buoy": buoy,
	}
	for name, at := range tiles {
		got[name] = water{tile.WaterClass(s.WaterClass(at)), p.M4[at]}
	}
	want := map[string]water{
		"sea":        {tile.WaterClassSea, 0},
		"canal":      {tile.WaterClassCanal, canalRandom},
		"river":      {tile.WaterClassRiver, 0x44},
		"depot":      {tile.WaterClassSea, 0},
		"canal lock": {tile.WaterClassCanal, 0},
		"river lock": {tile.WaterClassRiver, 0},
		"dock":       {tile.WaterClassSea, 0},
		"buoy":       {tile.WaterClassSea, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("water classes (-want +got):\n%s", diff)
	}
	if s.Date.Random != r.State {
		t.Errorf("random state = %v, want %v", s.Date.Random, r.State)
	}
}

func TestVoidBorder(t *testing.T) {
	s := oldSnapshot(savegame.V(86))
	p := &s.Planes
	east := setTile(s, 63, 5, tile.TypeClear, uint8(tile.OwnerNone))
	p.M2[east] = 5
	p.Height[east] = 2
	south := setTile(s, 5, 63, tile.TypeRailway, 0)
	p.M3[south] = 0x0F
	inner := setTile(s, 62, 10, tile.TypeWater, 1)
	s.SetWaterClass(inner, uint8(tile.WaterClassCanal))
	north := setTile(s, 0, 10, tile.TypeWater, 1)
	s.SetWaterClass(north, uint8(tile.WaterClassCanal))
	inland := setTile(s, 10, 10, tile.TypeWater, 1)
	s.SetWaterClass(inland, uint8(tile.WaterClassCanal))
	buoy := setTile(s, 10, 62, tile.TypeStation, uint8(tile.OwnerNone))
	p.M6[buoy] = uint8(tile.StationBuoy) << 3
	s.SetWaterClass(buoy, uint8(tile.WaterClassCanal))

	if err := voidBorder(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	voids := 0
	for at := range allTiles(s) {
		if isType(s, at, tile.TypeVoid) {
			voids++
		}
	}
	if voids != 64+64-1 {
		t.Errorf("%d void tiles, want %d", voids, 64+64-1)
	}
	for _, at := range []uint32{east, south} {
		if !isType(s, at, tile.TypeVoid) || p.M2[at] != 0 || p.M3[at] != 0 || p.Height[at] != 0 {
			t.Errorf("tile %d not cleared to void: %+v", at, planesAt(s, at))
		}
	}
	got := map[string]tile.WaterClass{}
	for name, at := range map[string]uint32{"inner edge": inner, "north edge": north, "inland": inland, "buoy": buoy} {
		got[name] = tile.WaterClass(s.WaterClass(at))
	}
	want := map[string]tile.WaterClass{
		"inner edge": tile.WaterClassSea,
		"north edge": tile.WaterClassSea,
		"inland":     tile.WaterClassCanal,
		"buoy":       tile.WaterClassSea,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("water classes (-want +got):\n%s", diff)
	}
}

func TestHeadquarters(t *testing.T) {
	s := oldSnapshot(savegame.V(111))
	p := &s.Planes
	hq := setTile(s, 1, 1, tile.TypeObject, 0)
	p.M5[hq] = 0x80 | 0x05
	mast := setTile(s, 2, 1, tile.TypeObject, uint8(tile.OwnerNone))
	p.M5[mast] = uint8(game.ObjectTransmitter)
	p.M3[mast] = 0x07

	if err := headquarters(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := []planeBytes{planesAt(s, hq), planesAt(s, mast)}
	want := []planeBytes{
		{M3: 0x05, M5: uint16(game.ObjectHQ)},
		{M3: 0x07, M5: uint16(game.ObjectTransmitter)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planes (-want +got):\n%s", diff)
	}
}

func TestObjectBits(t *testing.T) {
	s := oldSnapshot(savegame.V(143))
	p := &s.Planes
	hq := setTile(s, 1, 1, tile.TypeObject, 0)
	p.M5[hq] = uint8(game.ObjectHQ)
	// size 2, section x=1 y=1
	p.M3[hq] = 2<<2 | 0x03
	p.M4[hq], p.M6[hq], p.M7[hq] = 0x55, 0xC3, 0x66
	mast := setTile(s, 2, 1, tile.TypeObject, uint8(tile.OwnerNone))
	p.M5[mast] = uint8(game.ObjectTransmitter)
	p.M3[mast] = 0x0B
	p.M4[mast], p.M6[mast], p.M7[mast] = 0x55, 0xFF, 0x66

	if err := objectBits(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := []planeBytes{planesAt(s, hq), planesAt(s, mast)}
	want := []planeBytes{
		{M3: 0x11, M5: uint16(game.ObjectHQ), M6: 0xCB},
		{M5: uint16(game.ObjectTransmitter), M6: 0xC3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planes (-want +got):\n%s", diff)
	}
}

func TestObjectPool(t *testing.T) {
	s := oldSnapshot(savegame.V(146))
	s.Date.Date = 1000
	s.Towns = []savegame.TownRecord{{Index: 4, XY: s.XY(20, 20)}}
	p := &s.Planes
	var hq []uint32
	for _, off := range []uint8{0x00, 0x01, 0x10, 0x11} {
		at := setTile(s, 10+uint(off&0xF), 10+uint(off>>4), tile.TypeObject, 0)
		p.M3[at] = off
		p.M5[at] = uint8(game.ObjectHQ)
		p.M6[at] = 0xC0 | 2<<2
		hq = append(hq, at)
	}
	statue := setTile(s, 30, 30, tile.TypeObject, 0)
	p.M5[statue] = uint8(game.ObjectStatue)
	p.M2[statue] = 4

	if err := objectPool(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	want := []savegame.ObjectRecord{
		{Index: 0, Type: uint16(game.ObjectHQ), Location: savegame.AreaRecord{Tile: hq[0], W: 2, H: 2}, Town: 4, BuildDate: 1000},
		{Index: 1, Type: uint16(game.ObjectStatue), Location: savegame.AreaRecord{Tile: statue, W: 1, H: 1}, Town: 4, BuildDate: 1000},
	}
	if diff := cmp.Diff(want, s.Objects); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}
	for _, at := range hq {
		if diff := cmp.Diff(planeBytes{M3: 2, M6: 0xC0}, planesAt(s, at)); diff != "" {
			t.Errorf("hq tile %d (-want +got):\n%s", at, diff)
		}
	}
	if diff := cmp.Diff(planeBytes{M2: 1}, planesAt(s, statue)); diff != "" {
		t.Errorf("statue tile (-want +got):\n%s", diff)
	}

	// A game that already has objects is left as is.
	before := planesAt(s, statue)
	if err := objectPool(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	if len(s.Objects) != 2 || planesAt(s, statue) != before {
		t.Error("second run changed the pool")
	}
}

func TestObjectPoolBadOffset(t *testing.T) {
	s := oldSnapshot(savegame.V(146))
	stray := setTile(s, 0, 3, tile.TypeObject, 0)
	s.Planes.M3[stray] = 0x01
	if err := objectPool(&Context{S: s}); !errors.Is(err, savegame.ErrCorrupt) {
		t.Errorf("offset off the map: err = %v, want %v", err, savegame.ErrCorrupt)
	}

	s = oldSnapshot(savegame.V(146))
	stray = setTile(s, 5, 5, tile.TypeObject, 0)
	s.Planes.M3[stray] = 0x11
	if err := objectPool(&Context{S: s}); !errors.Is(err, savegame.ErrCorrupt) {
		t.Errorf("offset onto grass: err = %v, want %v", err, savegame.ErrCorrupt)
	}
}

func TestRailTypePlane(t *testing.T) {
	s := oldSnapshot(savegame.V(199))
	p := &s.Planes
	rail := setTile(s, 1, 1, tile.TypeRailway, 0)
	p.M3[rail], p.M8[rail] = 0x52, 0xFFC0
	crossing := setTile(s, 2, 1, tile.TypeRoad, 0)
	p.M5[crossing] = roadKindCrossing << 6
	p.M3[crossing] = 0x03
	station := setTile(s, 3, 1, tile.TypeStation, 0)
	p.M6[station] = uint8(tile.StationRail) << 3
	p.M3[station], p.M8[station] = 0x21, 0xFF00
	bus := setTile(s, 4, 1, tile.TypeStation, 0)
	p.M6[bus] = uint8(tile.StationBus) << 3
	p.M3[bus] = 0x21
	tunnel := setTile(s, 5, 1, tile.TypeTunnelBridge, 0)
	p.M5[tunnel] = uint8(tile.TransportRail) << 2
	p.M3[tunnel], p.M8[tunnel] = 0x02, 0xFF00
	road := setTile(s, 6, 1, tile.TypeRoad, 0)
	p.M3[road] = 0x03

	if err := railTypePlane(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	type rt struct {
		M3 uint8
		M8 uint16
	}
	got := map[string]rt{}
	for name, at := range map[string]uint32{"rail": rail, "crossing": crossing, "station": station, "bus": bus, "tunnel": tunnel, "road": road} {
		got[name] = rt{p.M3[at], p.M8[at]}
	}
	want := map[string]rt{
		"rail":     {0x50, 0xFFC2},
		"crossing": {0x00, 0x0003},
		"station":  {0x20, 0x0001},
		"bus":      {0x21, uint16(tile.InvalidRailType)},
		"tunnel":   {0x00, 0x0002},
		"road":     {0x03, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("m3/m8 (-want +got):\n%s", diff)
	}
}

func TestRoadTypes(t *testing.T) {
	s := oldSnapshot(savegame.V(213))
	p := &s.Planes
	road := setTile(s, 1, 1, tile.TypeRoad, 0)
	p.M3[road], p.M4[road], p.M7[road] = 0x12, 0x34, 0x40|0x05
	tram := setTile(s, 2, 1, tile.TypeRoad, 0)
	p.M3[tram], p.M7[tram] = 0x12, 0x80
	crossing := setTile(s, 3, 1, tile.TypeRoad, 0)
	p.M5[crossing] = roadKindCrossing << 6
	p.M4[crossing], p.M7[crossing], p.M8[crossing] = 0x03, 0x40, 0x0001
	tunnel := setTile(s, 4, 1, tile.TypeTunnelBridge, 0)
	p.M5[tunnel] = uint8(tile.TransportRoad) << 2
	p.M7[tunnel] = 0xC0
	rail := setTile(s, 5, 1, tile.TypeRailway, 0)
	p.M3[rail], p.M4[rail], p.M7[rail] = 0x12, 0x34, 0x40

	if err := roadTypes(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	noTram := uint16(tile.InvalidRoadType) << 6
	got := map[string]planeBytes{}
	for name, at := range map[string]uint32{"road": road, "tram": tram, "crossing": crossing, "tunnel": tunnel, "rail": rail} {
		got[name] = planesAt(s, at)
	}
	want := map[string]planeBytes{
		"road":     {M3: 0xF2, M4: uint16(tile.RoadTypeRoad), M7: 0x05, M8: noTram},
		"tram":     {M3: 0x12, M4: uint16(tile.InvalidRoadType), M8: uint16(tile.RoadTypeTram) << 6},
		"crossing": {M3: 0xF0, M4: uint16(tile.RoadTypeRoad), M5: roadKindCrossing << 6, M7: 0x03, M8: noTram | 0x0001},
		"tunnel":   {M4: uint16(tile.RoadTypeRoad), M5: uint16(tile.TransportRoad) << 2, M8: uint16(tile.RoadTypeTram) << 6},
		"rail":     {M3: 0x12, M4: 0x34, M7: 0x40},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planes (-want +got):\n%s", diff)
	}
}

func TestWaypointSpecs(t *testing.T) {
	s := oldSnapshot(savegame.V(214))
	s.GRFs = newgrf.List{
		{Ident: newgrf.Identity{GRFID: 0xAABBCCDD}},
		{Ident: newgrf.Identity{GRFID: 0x11223344}},
	}
	s.Stations = []savegame.StationRecord{
		{Index: 0, Waypoint: true, OldSpec: 2<<8 | 5},
		{Index: 1, Waypoint: true},
		{Index: 2, Waypoint: true, OldSpec: 3<<8 | 1},
	}
	var logs bytes.Buffer
	c := &Context{S: s, Log: slog.New(slog.NewTextHandler(&logs, nil))}

	if err := waypointSpecs(c); err != nil {
		t.Fatal(err)
	}
	type spec struct {
		Old   uint16
		GRFID uint32
		Index uint8
	}
	var got []spec
	for _, st := range s.Stations {
		got = append(got, spec{st.OldSpec, st.SpecGRFID, st.SpecIndex})
	}
	want := []spec{{0, 0x11223344, 5}, {0, 0, 0}, {0, 0, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("specs (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "missing package") {
		t.Errorf("no warning for the missing package, log:\n%s", logs.String())
	}
}
