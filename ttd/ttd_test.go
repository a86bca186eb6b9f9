package ttd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/afterload"
	"ttdmap/game"
	"ttdmap/settings"
	"ttdmap/tile"
)

var allUnexported = cmp.AllowUnexported(Savegame{}, Town{}, Company{})

func testGame() *Savegame {
	s := New("test")
	s.Days = 42
	s.DayFract = 3
	s.Seed = 1 << 40
	s.Towns[0] = Town{X: 54, Y: 55, Population: 56, Name: "Town1"}
	s.Towns[3] = Town{X: 57, Y: 58, Population: 59, Name: "Zürich"}
	s.Companies[1] = Company{Name: "Company", NameParts: 65, Face: 66, ManagerName: "Manager", ManagerNameParts: 67}
	s.Zoom = 1
	s.Currency = 2
	s.Year, s.Month = 32, 3
	s.SmallAirports, s.Heliports = true, true
	s.DriveOnTheRightFixed = true
	s.CustomVehicleNames = true
	s.Difficulty = [DifficultyCount]uint16{2, 1, 1, 2, 300, 4, 1, 2, 1, 1, 2, 0, 1, 0, 1, 1, 1}
	s.LandscapeType = 1
	s.SnowLine = 53
	for t := range NumberOfTiles {
		s.Map.TypeHeight[t] = uint8(tile.TypeClear)<<4 | uint8(t%3)
		s.Map.M5[t] = uint8(t)
		s.Map.M3[t] = uint16(t)
	}
	s.Map.SetZone(5, 2)
	return s
}

func TestSaveAndLoad(t *testing.T) {
	want := testGame()
	var buf bytes.Buffer
	if err := want.Save(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got, allUnexported); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got.Towns[3].Name != "Zürich" || got.Map.Zone(5) != 2 {
		t.Errorf("town %q, zone %d", got.Towns[3].Name, got.Map.Zone(5))
	}
}

func TestChecksums(t *testing.T) {
	var buf bytes.Buffer
	if err := testGame().Save(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	title := bytes.Clone(data)
	title[0] ^= 1
	if _, err := Load(bytes.NewReader(title)); !errors.Is(err, ErrTitleChecksum) {
		t.Errorf("changed title: %v", err)
	}
	trailer := bytes.Clone(data)
	trailer[len(trailer)-1] ^= 1
	if _, err := Load(bytes.NewReader(trailer)); !errors.Is(err, ErrFileChecksum) {
		t.Errorf("changed checksum: %v", err)
	}
	if _, err := Load(bytes.NewReader(data[:len(data)/2])); err == nil {
		t.Error("loaded a truncated file")
	}
}

func TestDecompress(t *testing.T) {
	got, err := decompress(bytes.NewReader([]byte{0xFD, 42, 1, 3, 4}), 6)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{42, 42, 42, 42, 3, 4}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCompress(t *testing.T) {
	data := append(bytes.Repeat([]byte{7}, 300), 1, 2, 2, 3, 3, 3)
	data = append(data, bytes.Repeat([]byte{9, 8}, 100)...)
	packed := compress(data)
	if len(packed) >= len(data) {
		t.Errorf("compressed %d bytes to %d", len(data), len(packed))
	}
	got, err := decompress(bytes.NewReader(packed), len(data))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	s := New("a title that is much longer than the forty seven bytes TTD has")
	if err := s.Validate(); err == nil {
		t.Error("accepted a long title")
	}
	s = New("ok")
	s.Difficulty[4] = 0
	if err := s.Validate(); err == nil {
		t.Error("accepted a zero loan")
	}
}

func TestSnapshotFixes(t *testing.T) {
	s := New("fixes")
	m := s.Map
	rail, river, station := 300, 301, 302
	m.TypeHeight[rail] = uint8(tile.TypeRailway) << 4
	m.M5[rail] = 0x40 | 1
	m.M3[rail] = 0xA6 << 8
	m.TypeHeight[river] = uint8(tile.TypeWater) << 4
	m.M3[river] = 3
	m.TypeHeight[station] = uint8(tile.TypeStation) << 4
	m.M2[station] = 4

	snap, dropped := s.Snapshot()
	p := &snap.Planes
	if dropped != 1 {
		t.Errorf("dropped %d tiles", dropped)
	}
	if got := p.M4[rail]; got != 0x3 {
		t.Errorf("presignal m4 = %#x", got)
	}
	if snap.WaterClass(uint32(river)) != uint8(tile.WaterClassRiver) || snap.Owner(uint32(river)) != uint8(tile.OwnerWater) {
		t.Errorf("river m1 = %#x", p.M1[river])
	}
	if snap.TileType(uint32(station)) != uint8(tile.TypeClear) {
		t.Errorf("station became %d", snap.TileType(uint32(station)))
	}
	if snap.TileType(0) != uint8(tile.TypeWater) {
		t.Errorf("first tile is %d", snap.TileType(0))
	}
}

func TestFromWorldRoundTrip(t *testing.T) {
	w, err := game.New(settings.Default(), MapLog, MapLog)
	if err != nil {
		t.Fatal(err)
	}
	co, err := w.NewCompany("Rail Co", 50000)
	if err != nil {
		t.Fatal(err)
	}
	m := w.Map
	town, err := w.NewTown(m.XY(20, 20), "Ville")
	if err != nil {
		t.Fatal(err)
	}
	w.DateFract = 5

	var (
		road   = m.XY(20, 21)
		house  = m.XY(21, 21)
		trees  = m.XY(22, 21)
		rail   = m.XY(23, 21)
		sea    = m.XY(24, 21)
		river  = m.XY(25, 21)
		rough  = m.XY(26, 21)
		depot  = m.XY(27, 21)
		coast  = m.XY(28, 21)
		houses = m.XY(29, 21)
	)
	m.MakeRoadNormal(road, tile.RoadY, tile.RoadTypeRoad, tile.InvalidRoadType, town, tile.OwnerTown, tile.OwnerNone)
	m.MakeHouse(house, town, 7, 3, 0)
	m.MakeHouse(houses, town, 9, 1, 0)
	m.MakeTree(trees, tile.TreeTemperate+2, 3, 4, tile.TreeGroundRough, 2)
	m.MakeRailNormal(rail, co, tile.TrackBitX, tile.RailTypeMonorail)
	m.MakeSea(sea)
	m.MakeRiver(river, 0)
	m.MakeClear(rough, tile.ClearRough, 2)
	m.MakeRailDepot(depot, co, tile.DiagDirSE, tile.RailTypeRail)
	m.MakeShore(coast)

	s, err := FromWorld(w, "round trip")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	snap, dropped := loaded.Snapshot()
	if dropped != 0 {
		t.Errorf("dropped %d tiles", dropped)
	}
	got, err := afterload.LoadSnapshot(snap, afterload.Options{})
	if err != nil {
		t.Fatal(err)
	}

	if got.Date != w.Date || got.DateFract != w.DateFract {
		t.Errorf("date %v+%d, want %v+%d", got.Date, got.DateFract, w.Date, w.DateFract)
	}
	if got.Companies[co] == nil || got.Companies[co].Name != "Rail Co" {
		t.Errorf("company %+v", got.Companies[co])
	}
	if got.Towns.Len() != 1 {
		t.Fatalf("%d towns", got.Towns.Len())
	}
	if diff := cmp.Diff(w.Settings.Difficulty, got.Settings.Difficulty); diff != "" {
		t.Errorf("difficulty (-want +got):\n%s", diff)
	}

	for _, same := range []tile.Index{house, houses, trees, rail, sea, rough, depot, coast} {
		if diff := cmp.Diff(w.Map.At(same), got.Map.At(same)); diff != "" {
			t.Errorf("tile %d,%d (-want +got):\n%s", m.X(same), m.Y(same), diff)
		}
	}
	if wt, ok := got.Map.Water(river); !ok || wt.Class != tile.WaterClassRiver || wt.Owner != tile.OwnerWater {
		t.Errorf("river = %+v", wt)
	}
	r, ok := got.Map.Road(road)
	if !ok {
		t.Fatalf("road became %v", got.Map.Type(road))
	}
	_, gotTown, _ := got.Towns.ByIndex(r.Town.Index)
	if r.RoadBits != tile.RoadY || r.Owner != tile.OwnerTown || r.RoadType != tile.RoadTypeRoad || gotTown == nil {
		t.Errorf("road = %+v", r)
	}
}

func TestFromWorldUnsupported(t *testing.T) {
	w, err := game.New(settings.Default(), 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromWorld(w, "small"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("64x64 map: %v", err)
	}

	w, err = game.New(settings.Default(), MapLog, MapLog)
	if err != nil {
		t.Fatal(err)
	}
	w.Map.MakeCanal(w.Map.XY(3, 3), 0, 0)
	if _, err := FromWorld(w, "canal"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("canal: %v", err)
	}
}
