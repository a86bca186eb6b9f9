package command

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ttdmap/game"
	"ttdmap/tile"
)

func TestRemoveRoad(t *testing.T) {
	w, _ := newTestWorld(t)
	at := w.Map.XY(10, 10)
	co := w.Company(w.CurrentCompany)
	before := co.Infra.Road[tile.RoadTypeRoad]
	mustDo(t, w, at, uint32(tile.RoadX)|uint32(tile.RoadTypeRoad)<<4, 0, CmdBuildRoad)

	tests := []struct {
		name   string
		pieces tile.RoadBits
		left   tile.RoadBits
	}{
		{"south-west half", tile.RoadSW, tile.RoadNE},
		{"last piece", tile.RoadNE, tile.RoadNone},
	}
	for _, tt := range tests {
		res := mustDo(t, w, at, uint32(tt.pieces)|uint32(tile.RTTRoad)<<4, 0, CmdRemoveRoad)
		if want := w.RoadClearCost(tile.RoadTypeRoad); res.Cost != want {
			t.Errorf("%s: cost = %d, want %d", tt.name, res.Cost, want)
		}
		if tt.left == tile.RoadNone {
			if !w.Map.IsType(at, tile.TypeClear) {
				t.Errorf("%s: tile = %v, want clear", tt.name, w.Map.Type(at))
			}
			continue
		}
		if r, ok := w.Map.Road(at); !ok || r.RoadBits != tt.left {
			t.Errorf("%s: tile = %+v, want road bits %v", tt.name, w.Map.At(at).Content, tt.left)
		}
	}
	if got := co.Infra.Road[tile.RoadTypeRoad]; got != before {
		t.Errorf("road infrastructure = %d, want %d", got, before)
	}

	res := DoCommand(w, at, uint32(tile.RoadNE), 0, Exec, CmdRemoveRoad, "")
	if !errors.Is(res.Err, ErrNoSuchRoad) {
		t.Errorf("removing from bare land err = %v, want ErrNoSuchRoad", res.Err)
	}
}

func TestBuildTrainDepot(t *testing.T) {
	w, rec := newTestWorld(t)
	at := w.Map.XY(10, 10)
	co := w.Company(w.CurrentCompany)

	res := mustDo(t, w, at, uint32(tile.RailTypeRail), uint32(tile.DiagDirNE), CmdBuildTrainDepot)
	if want := w.Prices[game.PriceBuildDepotTrain] + w.RailBuildCost(tile.RailTypeRail); res.Cost != want {
		t.Errorf("cost = %d, want %d", res.Cost, want)
	}
	r, ok := w.Map.Rail(at)
	if !ok || !r.Depot || r.DepotDir != tile.DiagDirNE || r.Owner != w.CurrentCompany {
		t.Fatalf("tile = %+v, want a depot facing north-east", w.Map.At(at).Content)
	}
	if co.Infra.Rail[tile.RailTypeRail] != 1 {
		t.Errorf("rail infrastructure = %d, want 1", co.Infra.Rail[tile.RailTypeRail])
	}
	track := tile.DiagDirToDiagTrack(tile.DiagDirNE)
	if diff := cmp.Diff([]notification{{at, track}}, rec.got); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	res = DoCommand(w, at, uint32(tile.RailTypeRail), uint32(tile.DiagDirSW), Exec|Auto, CmdBuildTrainDepot, "")
	if res.Succeeded() {
		t.Error("second depot built over the first with Auto")
	}
	if res := mustDo(t, w, at, 0, 0, CmdLandscapeClear); res.Cost != w.Prices[game.PriceClearDepotTrain] {
		t.Errorf("clear cost = %d, want %d", res.Cost, w.Prices[game.PriceClearDepotTrain])
	}
	if !w.Map.IsType(at, tile.TypeClear) || co.Infra.Rail[tile.RailTypeRail] != 0 {
		t.Errorf("after clearing: tile %v, rail infrastructure %d", w.Map.Type(at), co.Infra.Rail[tile.RailTypeRail])
	}
}

func TestRailOverDepot(t *testing.T) {
	w, _ := newTestWorld(t)
	at := w.Map.XY(10, 10)
	mustDo(t, w, at, uint32(tile.RailTypeRail), uint32(tile.DiagDirNE), CmdBuildTrainDepot)

	res := DoCommand(w, at, uint32(tile.RailTypeRail), uint32(tile.TrackX), Exec|Auto, CmdBuildSingleRail, "")
	if !errors.Is(res.Err, ErrBuildingMustBeDemolished) {
		t.Errorf("with Auto err = %v, want ErrBuildingMustBeDemolished", res.Err)
	}
	if r, ok := w.Map.Rail(at); !ok || !r.Depot {
		t.Fatalf("tile = %+v, want the depot kept", w.Map.At(at).Content)
	}

	res = mustDo(t, w, at, uint32(tile.RailTypeRail), uint32(tile.TrackX), CmdBuildSingleRail)
	if res.Cost != w.Prices[game.PriceClearDepotTrain] {
		t.Errorf("cost = %d, want the depot clearing cost %d", res.Cost, w.Prices[game.PriceClearDepotTrain])
	}
	if !w.Map.IsType(at, tile.TypeClear) {
		t.Errorf("tile = %v, want the depot cleared", w.Map.Type(at))
	}
}

func TestBuildRoadDepot(t *testing.T) {
	w, _ := newTestWorld(t)
	at := w.Map.XY(10, 10)
	co := w.Company(w.CurrentCompany)

	res := mustDo(t, w, at, uint32(tile.DiagDirSE)|uint32(tile.RoadTypeRoad)<<2, 0, CmdBuildRoadDepot)
	if res.Cost != w.Prices[game.PriceBuildDepotRoad] {
		t.Errorf("cost = %d, want %d", res.Cost, w.Prices[game.PriceBuildDepotRoad])
	}
	r, ok := w.Map.Road(at)
	if !ok || r.Kind != tile.RoadTileDepot || r.DepotDir != tile.DiagDirSE {
		t.Fatalf("tile = %+v, want a road depot facing south-east", w.Map.At(at).Content)
	}
	if co.Infra.Road[tile.RoadTypeRoad] != 2 {
		t.Errorf("road infrastructure = %d, want 2", co.Infra.Road[tile.RoadTypeRoad])
	}

	bad := DoCommand(w, w.Map.XY(12, 12), uint32(tile.DiagDirSE)|uint32(tile.InvalidRoadType)<<2, 0, Exec, CmdBuildRoadDepot, "")
	if !errors.Is(bad.Err, ErrCommandFailed) {
		t.Errorf("invalid road type err = %v, want ErrCommandFailed", bad.Err)
	}
}

func TestRemoveSingleSignal(t *testing.T) {
	w, rec := newTestWorld(t)
	at := w.Map.XY(10, 10)
	co := w.Company(w.CurrentCompany)
	mustDo(t, w, at, uint32(tile.RailTypeRail), uint32(tile.TrackX), CmdBuildSingleRail)
	mustDo(t, w, at, uint32(tile.TrackX), 0, CmdBuildSingleSignal)
	signals := co.Infra.Signal
	rec.got = nil

	res := mustDo(t, w, at, uint32(tile.TrackX), 0, CmdRemoveSingleSignal)
	if res.Cost != w.Prices[game.PriceClearSignals] {
		t.Errorf("cost = %d, want %d", res.Cost, w.Prices[game.PriceClearSignals])
	}
	r, _ := w.Map.PlainRail(at)
	if r.HasSignalOnTrack(tile.TrackX) || r.SignalPresent != 0 {
		t.Errorf("signals left: %+v", r)
	}
	if signals == 0 || co.Infra.Signal != 0 {
		t.Errorf("signal infrastructure %d -> %d, want it back to 0", signals, co.Infra.Signal)
	}
	if diff := cmp.Diff([]notification{{at, tile.TrackX}}, rec.got); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	for _, tt := range []struct {
		name  string
		at    tile.Index
		track tile.Track
		want  error
	}{
		{"no signal", at, tile.TrackX, ErrNoSignals},
		{"no such track", at, tile.TrackY, ErrNoRailroadTrack},
		{"bare land", w.Map.XY(20, 20), tile.TrackX, ErrNoRailroadTrack},
	} {
		res := DoCommand(w, tt.at, uint32(tt.track), 0, Exec, CmdRemoveSingleSignal, "")
		if !errors.Is(res.Err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, res.Err, tt.want)
		}
	}
}

func TestConvertRail(t *testing.T) {
	w, _ := newTestWorld(t)
	co := w.Company(w.CurrentCompany)
	co.AvailRailTypes |= 1 << tile.RailTypeElectric
	start, end := w.Map.XY(10, 10), w.Map.XY(11, 10)
	mustDo(t, w, start, uint32(end), uint32(tile.RailTypeRail)|uint32(tile.TrackX)<<6, CmdBuildRailroadTrack)

	res := mustDo(t, w, start, uint32(end), uint32(tile.RailTypeElectric), CmdConvertRail)
	if want := 2 * w.RailConvertCost(tile.RailTypeRail, tile.RailTypeElectric); res.Cost != want {
		t.Errorf("cost = %d, want %d", res.Cost, want)
	}
	for _, at := range []tile.Index{start, end} {
		if r, ok := w.Map.PlainRail(at); !ok || r.RailType != tile.RailTypeElectric {
			t.Errorf("tile %d = %+v, want electric rail", at, w.Map.At(at).Content)
		}
	}
	got := [2]uint32{co.Infra.Rail[tile.RailTypeRail], co.Infra.Rail[tile.RailTypeElectric]}
	if diff := cmp.Diff([2]uint32{0, 2}, got); diff != "" {
		t.Errorf("rail infrastructure rail/electric (-want +got):\n%s", diff)
	}

	res = DoCommand(w, start, uint32(end), uint32(tile.RailTypeElectric), Exec, CmdConvertRail, "")
	if res.Succeeded() {
		t.Error("converting to the same type succeeded")
	}
}

func TestRemoveRailroadTrack(t *testing.T) {
	w, rec := newTestWorld(t)
	start, end := w.Map.XY(10, 10), w.Map.XY(10, 12)
	p2 := uint32(tile.RailTypeRail) | uint32(tile.TrackY)<<6
	mustDo(t, w, start, uint32(end), p2, CmdBuildRailroadTrack)
	rec.got = nil

	res := mustDo(t, w, start, uint32(end), uint32(tile.TrackY)<<6, CmdRemoveRailroadTrack)
	if want := 3 * w.RailClearCost(tile.RailTypeRail); res.Cost != want {
		t.Errorf("cost = %d, want %d", res.Cost, want)
	}
	var want []notification
	for y := uint(10); y <= 12; y++ {
		at := w.Map.XY(10, y)
		if !w.Map.IsType(at, tile.TypeClear) {
			t.Errorf("tile 10,%d = %v, want clear", y, w.Map.Type(at))
		}
		want = append(want, notification{at, tile.TrackY})
	}
	if diff := cmp.Diff(want, rec.got); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	res = DoCommand(w, start, uint32(end), uint32(tile.TrackY)<<6, Exec, CmdRemoveRailroadTrack, "")
	if res.Succeeded() {
		t.Error("removing a removed track succeeded")
	}
	res = DoCommand(w, start, uint32(w.Map.XY(11, 12)), uint32(tile.TrackY)<<6, Exec, CmdRemoveRailroadTrack, "")
	if !errors.Is(res.Err, ErrCommandFailed) {
		t.Errorf("diagonal drag err = %v, want ErrCommandFailed", res.Err)
	}
}

func TestPurchaseLandOverOwnedLand(t *testing.T) {
	w, _ := newTestWorld(t)
	if _, err := w.NewTown(w.Map.XY(30, 30), "Town"); err != nil {
		t.Fatal(err)
	}
	owned := w.Map.XY(10, 10)
	mustDo(t, w, owned, uint32(owned), 0, CmdPurchaseLandArea)
	objects := w.Objects.Len()

	start, end := w.Map.XY(9, 10), w.Map.XY(11, 10)
	test := DoCommand(w, end, uint32(start), 0, 0, CmdPurchaseLandArea, "")
	if test.Failed() {
		t.Fatalf("test pass: %v", test.Err)
	}
	res := mustDo(t, w, end, uint32(start), 0, CmdPurchaseLandArea)
	if res.Cost != test.Cost || res.Cost != 800 {
		t.Errorf("exec cost = %d, test cost = %d, want 800 for the two new tiles", res.Cost, test.Cost)
	}
	if n := w.Objects.Len() - objects; n != 2 {
		t.Errorf("%d new objects, want 2", n)
	}
	for x := uint(9); x <= 11; x++ {
		if typ := w.ObjectTypeAt(w.Map.XY(x, 10)); typ != game.ObjectOwnedLand {
			t.Errorf("tile %d,10 = %v, want owned land", x, typ)
		}
	}
}

func TestFailedObjectLeavesTilesAlone(t *testing.T) {
	w, _ := newTestWorld(t)
	if _, err := w.NewTown(w.Map.XY(30, 30), "Town"); err != nil {
		t.Fatal(err)
	}
	at := w.Map.XY(10, 10)
	mustDo(t, w, at, uint32(at), 0, CmdPurchaseLandArea)
	objects := w.Objects.Len()

	res := cmdBuildObject(&Context{W: w}, at, Exec, uint32(game.ObjectOwnedLand), 0, "")
	if !errors.Is(res.Err, ErrYouAlreadyOwnIt) {
		t.Fatalf("err = %v, want ErrYouAlreadyOwnIt", res.Err)
	}
	if typ := w.ObjectTypeAt(at); typ != game.ObjectOwnedLand || w.Objects.Len() != objects {
		t.Errorf("tile = %v with %d objects, want the owned land untouched", typ, w.Objects.Len())
	}
}
