package savegame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/game"
	"ttdmap/newgrf"
	"ttdmap/pool"
	"ttdmap/settings"
	"ttdmap/tile"
)

func TestGamma(t *testing.T) {
	for _, tc := range []struct {
		v    uint32
		size int
	}{
		{0, 1}, {0x7F, 1}, {0x80, 2}, {0x3FFF, 2}, {0x4000, 3},
		{0x1FFFFF, 3}, {0x200000, 4}, {0xFFFFFFF, 4}, {0x10000000, 5}, {0xFFFFFFFF, 5},
	} {
		b := appendGamma(nil, tc.v)
		if len(b) != tc.size {
			t.Errorf("gamma(%#x) is %d bytes, want %d", tc.v, len(b), tc.size)
		}
		got, err := readGamma(bytes.NewReader(b))
		if err != nil || got != tc.v {
			t.Errorf("readGamma(%x) = %#x, %v; want %#x", b, got, err, tc.v)
		}
	}
	if _, err := readGamma(bytes.NewReader([]byte{0xF8})); !errors.Is(err, ErrCorrupt) {
		t.Errorf("bad prefix: got %v, want ErrCorrupt", err)
	}
}

type rangedRecord struct {
	Skip  int      `sl:"-"`
	Tile  uint32   `sl:"u16@0-6;u32@6-"`
	Delta int16    `sl:"i8"`
	Since uint8    `sl:"u8@10-"`
	Until uint8    `sl:"u8@0-10"`
	Name  string   `sl:"str"`
	List  []uint16 `sl:"u16"`
	Flag  bool     `sl:"bool"`
}

func TestCodecVersionRanges(t *testing.T) {
	in := rangedRecord{Skip: 9, Tile: 0x1234, Delta: -3, Since: 7, Until: 8, Name: "Xy", List: []uint16{1, 0x203}, Flag: true}
	for _, tc := range []struct {
		ver  uint16
		want []byte
		out  rangedRecord
	}{
		{
			ver:  5,
			want: []byte{0x12, 0x34, 0xFD, 8, 2, 'X', 'y', 2, 0, 1, 2, 3, 1},
			out:  rangedRecord{Tile: 0x1234, Delta: -3, Until: 8, Name: "Xy", List: []uint16{1, 0x203}, Flag: true},
		},
		{
			ver:  10,
			want: []byte{0, 0, 0x12, 0x34, 0xFD, 7, 2, 'X', 'y', 2, 0, 1, 2, 3, 1},
			out:  rangedRecord{Tile: 0x1234, Delta: -3, Since: 7, Name: "Xy", List: []uint16{1, 0x203}, Flag: true},
		},
	} {
		b, err := marshal(&in, tc.ver)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.want, b); diff != "" {
			t.Errorf("version %d bytes (-want +got):\n%s", tc.ver, diff)
		}
		var out rangedRecord
		if err := unmarshal(b, &out, tc.ver); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.out, out); diff != "" {
			t.Errorf("version %d record (-want +got):\n%s", tc.ver, diff)
		}
	}

	var out rangedRecord
	if err := unmarshal([]byte{0, 0, 0x12}, &out, 10); !errors.Is(err, ErrCorrupt) {
		t.Errorf("short record: got %v, want ErrCorrupt", err)
	}
}

// buildWorld puts one tile of every kind on a small map.
func buildWorld(t *testing.T) *game.World {
	t.Helper()
	w, err := game.New(settings.Default(), 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	w.Settings.Locale.Currency = 4
	w.DateFract = 17
	w.GRFs = newgrf.List{{
		Ident:              newgrf.Identity{GRFID: 0x01020304, MD5: newgrf.MD5{1, 2, 3}},
		Filename:           "trains.grf",
		Flags:              newgrf.FlagStatic,
		Version:            7,
		MinLoadableVersion: 3,
		Params:             []uint32{1, 2},
	}}
	co, err := w.NewCompany("Rail Co", 123456)
	if err != nil {
		t.Fatal(err)
	}
	m := w.Map
	town, err := w.NewTown(m.XY(30, 30), "Tòwn")
	if err != nil {
		t.Fatal(err)
	}

	m.MakeRailNormal(m.XY(1, 1), co, tile.TrackBitX|tile.TrackBitY, tile.RailTypeMonorail)
	r, _ := m.Rail(m.XY(1, 1))
	r.SignalPresent, r.SignalStates = 0x3, 0x1
	r.SignalType, r.SignalVariant = tile.SignalPBS, tile.SignalSemaphore
	r.Ground = tile.RailGroundHalfSnow
	m.MakeRailDepot(m.XY(2, 1), co, tile.DiagDirNW, tile.RailTypeElectric)

	m.MakeRoadNormal(m.XY(3, 1), tile.RoadX, tile.RoadTypeRoad, tile.InvalidRoadType, town, tile.OwnerTown, tile.OwnerNone)
	rd, _ := m.Road(m.XY(3, 1))
	rd.Roadside, rd.Roadworks, rd.Snow, rd.OneWay = tile.RoadsidePaved, 3, true, tile.DRDNorthbound
	m.MakeRoadNormal(m.XY(4, 1), tile.RoadY, tile.InvalidRoadType, tile.RoadTypeTram, pool.None, tile.OwnerNone, co)
	m.MakeRoadCrossing(m.XY(5, 1), tile.OwnerTown, tile.OwnerNone, co, tile.AxisY, tile.RailTypeElectric, tile.RoadTypeRoad, tile.InvalidRoadType, town)
	cr, _ := m.Road(m.XY(5, 1))
	cr.Barred = true
	m.MakeRoadDepot(m.XY(6, 1), co, tile.DiagDirSE, tile.RoadTypeRoad, town)

	m.MakeHouse(m.XY(7, 1), town, 300, 3, 0xAB)
	h, _ := m.House(m.XY(7, 1))
	h.Age, h.Animation = 12, 5
	m.MakeTree(m.XY(8, 1), tile.TreeSubArctic, 3, 5, tile.TreeGroundRoughSnow, 2)
	tr, _ := m.Trees(m.XY(8, 1))
	tr.Counter = 9

	st, err := w.Stations.Alloc(game.Station{XY: m.XY(1, 3), Owner: co, Town: town, Name: "Central", Facilities: game.FacilTrain, BuildDate: w.Date})
	if err != nil {
		t.Fatal(err)
	}
	m.MakeRailStation(m.XY(1, 3), co, st, tile.AxisY, 2, tile.RailTypeRail)
	wp, err := w.Stations.Alloc(game.Station{Waypoint: true, XY: m.XY(2, 3), Owner: co, Facilities: game.FacilWaypoint | game.FacilTrain, SpecGRFID: 0x01020304, SpecIndex: 4})
	if err != nil {
		t.Fatal(err)
	}
	m.MakeRailWaypoint(m.XY(2, 3), co, wp, tile.AxisX, 0, tile.RailTypeRail)
	ws, _ := m.Station(m.XY(2, 3))
	ws.SpecIndex = 4
	buoy, err := w.Stations.Alloc(game.Station{XY: m.XY(3, 3), Owner: tile.OwnerNone})
	if err != nil {
		t.Fatal(err)
	}
	m.MakeBuoy(m.XY(3, 3), buoy, tile.WaterClassCanal)
	w.RecomputeStationRects()

	m.MakeCanal(m.XY(1, 5), co, 0x42)
	m.MakeRiver(m.XY(2, 5), 3)
	m.MakeShore(m.XY(3, 5))
	m.MakeLock(m.XY(6, 5), co, tile.DiagDirSE, tile.WaterClassCanal, tile.WaterClassRiver, tile.WaterClassCanal)
	m.MakeShipDepot(m.XY(8, 5), co, tile.AxisY, 1, tile.WaterClassSea)

	ind, err := w.Industries.Alloc(game.Industry{Type: 3, Location: game.TileArea{Tile: m.XY(1, 8), W: 1, H: 1}, Town: town, Owner: tile.OwnerNone})
	if err != nil {
		t.Fatal(err)
	}
	m.MakeIndustry(m.XY(1, 8), ind, 300, 0x77, tile.WaterClassInvalid)
	it, _ := m.Industry(m.XY(1, 8))
	it.Completed, it.Stage, it.Counter, it.Animation = true, 2, 1, 9
	m.MakeField(m.XY(2, 8), 5, ind)

	m.MakeRailBridgeRamp(m.XY(20, 5), co, 6, tile.DiagDirSW, tile.RailTypeRail)
	m.MakeRailBridgeRamp(m.XY(24, 5), co, 6, tile.DiagDirNE, tile.RailTypeRail)
	m.MakeRoadTunnel(m.XY(20, 10), co, tile.DiagDirSW, tile.RoadTypeRoad, tile.InvalidRoadType)
	m.MakeRoadTunnel(m.XY(22, 10), co, tile.DiagDirNE, tile.RoadTypeRoad, tile.InvalidRoadType)
	m.SetHeight(m.XY(40, 40), 5)

	if _, err := w.BuildObject(game.ObjectHQ, m.XY(10, 10), co, pool.None, 0); err != nil {
		t.Fatal(err)
	}
	w.Companies[co].HQ = m.XY(10, 10)
	if _, err := w.Vehicles.Alloc(game.Vehicle{Type: game.VehTrain, Owner: co, Tile: m.XY(1, 1), Track: tile.TrackBitX, EngineRailType: tile.RailTypeMonorail, Orders: []pool.ID{st, wp}}); err != nil {
		t.Fatal(err)
	}
	w.RebuildInfrastructure()
	return w
}

func entries[T any](p *pool.Pool[T]) map[pool.ID]T {
	out := map[pool.ID]T{}
	for id, v := range p.All() {
		out[id] = *v
	}
	return out
}

func diffWorlds(t *testing.T, want, got *game.World) {
	t.Helper()
	if want.ID != got.ID || want.Date != got.Date || want.DateFract != got.DateFract || want.Random != got.Random {
		t.Errorf("header = %v %v %d %v, want %v %v %d %v", got.ID, got.Date, got.DateFract, got.Random, want.ID, want.Date, want.DateFract, want.Random)
	}
	if diff := cmp.Diff(want.Settings, got.Settings); diff != "" {
		t.Errorf("settings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.GRFs, got.GRFs); diff != "" {
		t.Errorf("GRFs (-want +got):\n%s", diff)
	}
	for tl := range want.Map.All() {
		if diff := cmp.Diff(want.Map.At(tl), got.Map.At(tl)); diff != "" {
			t.Errorf("tile %d (%d,%d) (-want +got):\n%s", tl, want.Map.X(tl), want.Map.Y(tl), diff)
		}
	}
	if diff := cmp.Diff(entries(want.Towns), entries(got.Towns)); diff != "" {
		t.Errorf("towns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(entries(want.Stations), entries(got.Stations)); diff != "" {
		t.Errorf("stations (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(entries(want.Objects), entries(got.Objects)); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(entries(want.Industries), entries(got.Industries)); diff != "" {
		t.Errorf("industries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(entries(want.Vehicles), entries(got.Vehicles)); diff != "" {
		t.Errorf("vehicles (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Companies, got.Companies); diff != "" {
		t.Errorf("companies (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.ObjectCounts, got.ObjectCounts); diff != "" {
		t.Errorf("object counts (-want +got):\n%s", diff)
	}
}

func TestWorldRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressNone, CompressZlib, CompressZstd, CompressLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			want := buildWorld(t)
			var buf bytes.Buffer
			if err := Write(&buf, Encode(want), c); err != nil {
				t.Fatal(err)
			}
			if got := string(buf.Bytes()[:4]); got != c.Tag() {
				t.Errorf("tag = %q, want %q", got, c.Tag())
			}
			snap, err := Read(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if snap.Version != Current {
				t.Errorf("version = %v, want %v", snap.Version, Current)
			}
			got, err := Decode(snap)
			if err != nil {
				t.Fatal(err)
			}
			diffWorlds(t, want, got)
		})
	}
}

func TestOldVersionLayout(t *testing.T) {
	s := NewSnapshot(V(5), 6, 6)
	s.Date.Date = 3000
	s.OldDifficulty[2] = 3
	s.Towns = []TownRecord{{Index: 2, XY: 0x0F0F, Name: "Old", Population: 500, ExclusiveCompany: 0xFF}}
	s.Stations = []StationRecord{{Index: 0, XY: 0x0101, Town: 2, OldSpec: 0x0103, Rect: AreaRecord{Tile: 9, W: 1, H: 1}}}
	s.Objects = []ObjectRecord{{Index: 0}}
	s.Planes.M8[0] = 7

	var buf bytes.Buffer
	if err := Write(&buf, s, CompressNone); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != V(5) {
		t.Errorf("version = %v", got.Version)
	}
	if got.Date.Date != 3000 || got.OldDifficulty[2] != 3 {
		t.Errorf("date %d difficulty %v", got.Date.Date, got.OldDifficulty)
	}
	wantTowns := []TownRecord{{Index: 2, XY: 0x0F0F, Name: "Old", Population: 500, ExclusiveCompany: 0xFF}}
	if diff := cmp.Diff(wantTowns, got.Towns); diff != "" {
		t.Errorf("towns (-want +got):\n%s", diff)
	}
	// Objects and m8 are not stored before 147 and 200.
	wantStations := []StationRecord{{Index: 0, XY: 0x0101, Town: 2, OldSpec: 0x0103, Rect: AreaRecord{Tile: 9, W: 1, H: 1}}}
	if diff := cmp.Diff(wantStations, got.Stations); diff != "" {
		t.Errorf("stations (-want +got):\n%s", diff)
	}
	if len(got.Objects) != 0 || got.Planes.M8[0] != 0 {
		t.Errorf("objects %v, m8 %d survived an old layout", got.Objects, got.Planes.M8[0])
	}
	if _, err := Decode(got); err == nil {
		t.Error("Decode accepted an unmigrated snapshot")
	}
}

func header(tag string, major uint16) []byte {
	b := append([]byte(tag), 0, 0, 0, 0)
	binary.BigEndian.PutUint16(b[4:], major)
	return b
}

func TestReadErrors(t *testing.T) {
	unknownChunk := append(header("OTTN", Current.Major), "ABCD"...)
	unknownChunk = append(unknownChunk, 0, 0, 0, 0, 0)

	for _, tc := range []struct {
		name string
		data []byte
		want error
	}{
		{"unknown tag", header("OTTX", 1), ErrUnknownFormat},
		{"unknown chunk", unknownChunk, ErrCorrupt},
		{"truncated", header("OTTN", Current.Major), ErrCorrupt},
		{"missing map", append(header("OTTN", Current.Major), 0, 0, 0, 0), ErrCorrupt},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(bytes.NewReader(tc.data)); !errors.Is(err, tc.want) {
				t.Errorf("Read = %v, want %v", err, tc.want)
			}
		})
	}

	_, err := Read(bytes.NewReader(header("OTTZ", Current.Major+1)))
	var verr *VersionError
	if !errors.As(err, &verr) || verr.Got.Major != Current.Major+1 {
		t.Errorf("newer version: got %v, want *VersionError", err)
	}
}

func TestDecodeDanglingReference(t *testing.T) {
	w := buildWorld(t)
	s := Encode(w)
	s.Towns = nil
	for i := range s.Stations {
		s.Stations[i].Town = NoIndex
	}
	for i := range s.Objects {
		s.Objects[i].Town = NoIndex
	}
	for i := range s.Industries {
		s.Industries[i].Town = NoIndex
	}
	// The house still points at the town that is gone.
	if _, err := Decode(s); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode = %v, want ErrCorrupt", err)
	}
}

func TestParseCompression(t *testing.T) {
	for c := CompressNone; c <= CompressLZ4; c++ {
		got, err := ParseCompression(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCompression(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCompression("rar"); err == nil {
		t.Error("ParseCompression accepted rar")
	}
}

func TestCompressionFromTag(t *testing.T) {
	for c := CompressNone; c <= CompressLZ4; c++ {
		got, err := compressionFromTag(c.Tag())
		if err != nil || got != c {
			t.Errorf("compressionFromTag(%q) = %v, %v, want %v", c.Tag(), got, err, c)
		}
	}
	for _, tag := range []string{"OTTX", "ottz", "", "????"} {
		if _, err := compressionFromTag(tag); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("compressionFromTag(%q) err = %v, want %v", tag, err, ErrUnknownFormat)
		}
	}
}
