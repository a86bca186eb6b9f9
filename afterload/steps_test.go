package afterload

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/tile"
)

func oldSnapshot(v savegame.Version) *savegame.Snapshot {
	s := savegame.NewSnapshot(v, 6, 6)
	for t := range allTiles(s) {
		s.SetTileType(t, uint8(tile.TypeClear))
	}
	return s
}

func setTile(s *savegame.Snapshot, x, y uint, tt tile.Type, owner uint8) uint32 {
	t := s.XY(x, y)
	s.SetTileType(t, uint8(tt))
	s.SetOwner(t, owner)
	return t
}

func TestElectricRail(t *testing.T) {
	tests := []struct {
		name string
		// engine rail types in the old numbering
		engines []uint8
		want    []uint8
	}{
		{"no trains", nil, nil},
		{"steam train", []uint8{0}, []uint8{0}},
		{"monorail train", []uint8{1}, []uint8{2}},
		{"mixed trains", []uint8{0, 1, 2}, []uint8{0, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := oldSnapshot(savegame.V(23))
			p := &s.Planes
			rail := setTile(s, 1, 1, tile.TypeRailway, 0)
			p.M3[rail] = 0x50
			mono := setTile(s, 2, 1, tile.TypeRailway, 0)
			p.M3[mono] = 0x51
			crossing := setTile(s, 3, 1, tile.TypeRoad, uint8(tile.OwnerTown))
			p.M5[crossing] = roadKindCrossing << 4
			p.M4[crossing] = 0x02
			for _, rt := range tt.engines {
				s.Vehicles = append(s.Vehicles, savegame.VehicleRecord{
					Type:           uint8(game.VehTrain),
					EngineRailType: rt,
				})
			}
			// road vehicles carry no rail type
			s.Vehicles = append(s.Vehicles, savegame.VehicleRecord{Type: uint8(game.VehRoad), EngineRailType: 1})

			if err := electricRail(&Context{S: s}); err != nil {
				t.Fatal(err)
			}
			got := [3]uint8{p.M3[rail] & 0xF, p.M3[mono] & 0xF, p.M4[crossing] & 0xF}
			if diff := cmp.Diff([3]uint8{0, 2, 3}, got); diff != "" {
				t.Errorf("tile rail types (-want +got):\n%s", diff)
			}
			if p.M3[rail]&0xF0 != 0x50 || p.M3[mono]&0xF0 != 0x50 {
				t.Errorf("high nibbles changed: %#x %#x", p.M3[rail], p.M3[mono])
			}
			var engines []uint8
			for _, veh := range s.Vehicles {
				if game.VehicleType(veh.Type) == game.VehTrain {
					engines = append(engines, veh.EngineRailType)
				}
			}
			if diff := cmp.Diff(tt.want, engines); diff != "" {
				t.Errorf("engine rail types (-want +got):\n%s", diff)
			}
			if last := s.Vehicles[len(s.Vehicles)-1]; last.EngineRailType != 1 {
				t.Errorf("road vehicle rail type changed to %d", last.EngineRailType)
			}
		})
	}
}

func TestTownIndex(t *testing.T) {
	s := oldSnapshot(savegame.V(6))
	s.Towns = []savegame.TownRecord{
		{Index: 3, XY: s.XY(10, 10)},
		{Index: 5, XY: s.XY(40, 40)},
	}
	p := &s.Planes
	house := setTile(s, 12, 10, tile.TypeHouse, 0)
	p.M2[house] = 0x1A
	townRoad := setTile(s, 38, 40, tile.TypeRoad, uint8(tile.OwnerTown))
	p.M2[townRoad] = 0x5
	ownRoad := setTile(s, 11, 10, tile.TypeRoad, 1)
	p.M2[ownRoad] = 0x3
	crossing := setTile(s, 9, 10, tile.TypeRoad, 1)
	p.M5[crossing] = roadKindCrossing << 4
	p.M3[crossing] = uint8(tile.OwnerTown)

	if err := townIndex(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	type fields struct{ M2, M4 uint16 }
	got := map[string]fields{}
	for name, tl := range map[string]uint32{"house": house, "town road": townRoad, "own road": ownRoad, "crossing": crossing} {
		got[name] = fields{p.M2[tl], uint16(p.M4[tl])}
	}
	want := map[string]fields{
		"house":     {3, 0x1A},
		"town road": {5, 0x50},
		"own road":  {savegame.NoIndex, 0x30},
		"crossing":  {3, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("m2/m4 (-want +got):\n%s", diff)
	}

	s.Towns = nil
	if err := townIndex(&Context{S: s}); err == nil {
		t.Error("house without towns accepted")
	}
}

func TestHouseStage(t *testing.T) {
	s := oldSnapshot(savegame.V(52))
	s.Date.Date = int32(game.ConvertYMDToDate(1960, 1, 1))
	p := &s.Planes
	done := setTile(s, 5, 5, tile.TypeHouse, 0)
	p.M1[done] = 0x1F
	p.M3[done] = 3<<6 | 0x05
	p.M5[done] = 30
	building := setTile(s, 6, 5, tile.TypeHouse, 0)
	p.M3[building] = 1<<6 | 0x07
	p.M5[building] = 2
	ancient := setTile(s, 7, 5, tile.TypeHouse, 0)
	p.M3[ancient] = 3 << 6
	p.M5[ancient] = 0

	if err := houseStage(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := [][3]uint8{
		{p.M1[done], p.M3[done], p.M5[done]},
		{p.M1[building], p.M3[building], p.M5[building]},
		{p.M1[ancient], p.M3[ancient], p.M5[ancient]},
	}
	want := [][3]uint8{
		{0, 0x83, 10},
		{0, 1, 2},
		{0, 0x83, 40},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("m1/m3/m5 (-want +got):\n%s", diff)
	}
}

func TestRoadKind61(t *testing.T) {
	s := oldSnapshot(savegame.V(60))
	p := &s.Planes
	normal := setTile(s, 1, 1, tile.TypeRoad, 0)
	p.M5[normal] = 0x0A
	crossing := setTile(s, 2, 1, tile.TypeRoad, 0)
	p.M5[crossing] = roadKindCrossing<<4 | 0x01
	depot := setTile(s, 3, 1, tile.TypeRoad, 0)
	p.M5[depot] = roadKindDepot<<4 | 0x02
	tunnel := setTile(s, 4, 1, tile.TypeTunnelBridge, 0)
	p.M5[tunnel] = uint8(tile.TransportRoad) << 2
	railTunnel := setTile(s, 5, 1, tile.TypeTunnelBridge, 0)
	p.M5[railTunnel] = uint8(tile.TransportRail) << 2

	if err := roadKind61(&Context{S: s}); err != nil {
		t.Fatal(err)
	}
	got := [][2]uint8{
		{p.M5[normal], p.M7[normal]},
		{p.M5[crossing], p.M7[crossing]},
		{p.M5[depot], p.M7[depot]},
		{p.M5[tunnel], p.M7[tunnel]},
		{p.M5[railTunnel], p.M7[railTunnel]},
	}
	want := [][2]uint8{
		{0x0A, 0x40},
		{roadKindCrossing<<6 | 0x01, 0x40},
		{roadKindDepot<<6 | 0x02, 0x40},
		{uint8(tile.TransportRoad) << 2, 0x40},
		{uint8(tile.TransportRail) << 2, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("m5/m7 (-want +got):\n%s", diff)
	}
}

func TestMigrateRunsOnlyNewerSteps(t *testing.T) {
	s := oldSnapshot(savegame.V(60))
	s.Towns = []savegame.TownRecord{{Index: 0, XY: s.XY(10, 10)}}
	s.Date.Date = int32(game.ConvertYMDToDate(1960, 1, 1))
	road := setTile(s, 1, 1, tile.TypeRoad, 0)
	s.Planes.M5[road] = 0x05

	n, err := Migrate(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 0
	for _, st := range Steps() {
		if savegame.V(60).Before(st.Before) {
			want++
		}
	}
	if n != want {
		t.Errorf("ran %d steps, want %d", n, want)
	}
	if s.Version != savegame.Current {
		t.Errorf("version = %v", s.Version)
	}
	// The road flag set at 61 becomes a road type at 214.
	if got := tile.RoadType(s.Planes.M4[road]); got != tile.RoadTypeRoad {
		t.Errorf("road type = %v, want plain road", got)
	}
}
