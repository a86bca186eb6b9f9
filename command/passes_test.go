package command

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/game"
	"ttdmap/tile"
)

// variedWorld lays out a bit of everything two companies can build.
func variedWorld(t *testing.T) *game.World {
	t.Helper()
	w, _ := newTestWorld(t)
	m := w.Map
	if _, err := w.NewTown(m.XY(40, 40), "Town"); err != nil {
		t.Fatal(err)
	}
	rival, err := w.NewCompany("rival", 1_000_000)
	if err != nil {
		t.Fatal(err)
	}
	rail := uint32(tile.RailTypeRail)
	road := uint32(tile.RoadTypeRoad)
	steps := []struct {
		owner  tile.Owner
		at     tile.Index
		p1, p2 uint32
		id     ID
	}{
		{0, m.XY(10, 10), uint32(m.XY(14, 10)), rail | uint32(tile.TrackX)<<6, CmdBuildRailroadTrack},
		{0, m.XY(12, 8), uint32(m.XY(12, 12)), rail | uint32(tile.TrackY)<<6, CmdBuildRailroadTrack},
		{0, m.XY(11, 10), uint32(tile.TrackX), 0, CmdBuildSingleSignal},
		{0, m.XY(14, 10), uint32(tile.AxisX) | 1<<8, 0, CmdBuildTrainWaypoint},
		{0, m.XY(16, 10), uint32(tile.RoadY) | road<<4, 0, CmdBuildRoad},
		{0, m.XY(16, 10), rail, uint32(tile.TrackX), CmdBuildSingleRail},
		{0, m.XY(18, 12), rail, uint32(tile.DiagDirNE), CmdBuildTrainDepot},
		{0, m.XY(20, 12), uint32(tile.DiagDirSE) | road<<2, 0, CmdBuildRoadDepot},
		{0, m.XY(22, 14), uint32(m.XY(24, 16)), uint32(tile.InvalidTreeType), CmdPlantTree},
		{0, m.XY(26, 10), uint32(m.XY(27, 11)), 0, CmdPurchaseLandArea},
		{0, m.XY(10, 20), 0, 0, CmdBuildCompanyHQ},
		{0, m.XY(20, 20), uint32(m.XY(22, 20)), uint32(tile.WaterClassCanal), CmdBuildCanal},
		{0, m.XY(24, 24), uint32(tile.SlopeN), 1, CmdTerraformLand},
		{0, m.XY(28, 20), uint32(game.ObjectNewGRFStart), 0, CmdBuildObject},
		{rival, m.XY(30, 30), uint32(m.XY(33, 30)), rail | uint32(tile.TrackX)<<6, CmdBuildRailroadTrack},
		{rival, m.XY(32, 28), uint32(tile.RoadY) | road<<4, 0, CmdBuildRoad},
		{rival, m.XY(30, 32), uint32(m.XY(31, 33)), 0, CmdPurchaseLandArea},
		{rival, m.XY(34, 24), 0, 0, CmdBuildCompanyHQ},
	}
	for _, s := range steps {
		w.CurrentCompany = s.owner
		if res := DoCommand(w, s.at, s.p1, s.p2, Exec, s.id, ""); res.Failed() {
			t.Logf("setting up %v on %d: %v", s.id, s.at, res.Err)
		}
	}
	w.CurrentCompany = 0
	return w
}

type worldState struct {
	Tiles     []tile.Tile
	Companies []game.Company
	Towns     []game.Town
	Objects   []game.Object
	Stations  []game.Station
	Random    game.Random
}

func stateOf(w *game.World) worldState {
	s := worldState{Random: w.Random}
	m := w.Map.Clone()
	for at := range m.All() {
		s.Tiles = append(s.Tiles, *m.At(at))
	}
	for _, co := range w.CompaniesAll() {
		s.Companies = append(s.Companies, *co)
	}
	for _, v := range w.Towns.All() {
		s.Towns = append(s.Towns, *v)
	}
	for _, v := range w.Objects.All() {
		s.Objects = append(s.Objects, *v)
	}
	for _, v := range w.Stations.All() {
		s.Stations = append(s.Stations, *v)
	}
	return s
}

func randomParam(rng *rand.Rand, m *tile.Map) uint32 {
	switch rng.Intn(5) {
	case 0:
		return uint32(rng.Intn(8))
	case 1:
		return uint32(m.XY(uint(5+rng.Intn(32)), uint(5+rng.Intn(32))))
	case 2:
		// road bits and road type
		return uint32(rng.Intn(16)) | uint32(rng.Intn(2))<<4
	case 3:
		// rail type and track
		return uint32(rng.Intn(4)) | uint32(rng.Intn(6))<<6
	default:
		return uint32(game.ObjectTransmitter) + uint32(rng.Intn(int(game.ObjectNewGRFStart-game.ObjectTransmitter)+1))
	}
}

func execute(w *game.World, at tile.Index, p1, p2 uint32, id ID) (res CommandCost, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exec panicked: %v", r)
		}
	}()
	return DoCommand(w, at, p1, p2, Exec, id, ""), nil
}

func TestTestPassMatchesExecPass(t *testing.T) {
	w := variedWorld(t)
	m := w.Map
	rng := rand.New(rand.NewSource(1))
	ran := map[ID]int{}
	for i := 0; i < 4000; i++ {
		id := ID(rng.Intn(int(CmdEnd)))
		at := m.XY(uint(5+rng.Intn(32)), uint(5+rng.Intn(32)))
		p1, p2 := randomParam(rng, m), randomParam(rng, m)
		w.CurrentCompany = tile.Owner(rng.Intn(2))
		for _, co := range w.CompaniesAll() {
			co.Money = 10_000_000
		}
		call := fmt.Sprintf("%v tile=%d p1=%#x p2=%#x company=%d", id, at, p1, p2, w.CurrentCompany)

		before := stateOf(w)
		test := DoCommand(w, at, p1, p2, 0, id, "")
		if diff := cmp.Diff(before, stateOf(w)); diff != "" {
			t.Fatalf("%s: test pass changed the world (-before +after):\n%s", call, diff)
		}
		if test.Failed() {
			continue
		}
		res, err := execute(w, at, p1, p2, id)
		if err != nil {
			t.Fatalf("%s: %v", call, err)
		}
		if res.Failed() || res.Cost != test.Cost {
			t.Fatalf("%s: exec %v, test %v", call, res, test)
		}
		ran[id]++
	}
	for _, id := range []ID{CmdBuildSingleRail, CmdBuildRoad, CmdLandscapeClear, CmdPurchaseLandArea} {
		if ran[id] == 0 {
			t.Errorf("%v never succeeded", id)
		}
	}
}
