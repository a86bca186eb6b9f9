package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ttdmap/pool"
	"ttdmap/settings"
	"ttdmap/tile"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(settings.Default(), 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestDateRoundTrip(t *testing.T) {
	if got := ConvertYMDToDate(OriginalBaseYear, time.January, 1); got != DaysTillOriginalBaseYear {
		t.Errorf("1920-01-01 = %d, want %d", got, DaysTillOriginalBaseYear)
	}
	d := ConvertYMDToDate(1999, time.December, 31)
	if got := d.String(); got != "1999-12-31" {
		t.Errorf("String = %q", got)
	}
	if (d + 1).Year() != 2000 {
		t.Errorf("day after 1999-12-31 is in %d", (d + 1).Year())
	}
}

func TestRandomIsDeterministic(t *testing.T) {
	var a, b Random
	a.Seed(42)
	b.Seed(42)
	for i := range 100 {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
	for range 100 {
		if v := a.Range(10); v >= 10 {
			t.Fatalf("Range(10) = %d", v)
		}
	}
}

func TestWaypointGraceThenStaleTile(t *testing.T) {
	w := newTestWorld(t)
	o, err := w.NewCompany("test", 100000)
	if err != nil {
		t.Fatal(err)
	}
	tl := w.Map.XY(5, 5)
	id, err := w.Stations.Alloc(Station{Waypoint: true, XY: tl, Owner: o, Facilities: FacilWaypoint | FacilTrain})
	if err != nil {
		t.Fatal(err)
	}
	w.Map.MakeRailWaypoint(tl, o, id, tile.AxisX, 0, tile.RailTypeRail)
	vid, _ := w.Vehicles.Alloc(Vehicle{Type: VehTrain, Owner: o, Orders: []pool.ID{id, pool.None, id}})

	if _, st, err := w.WaypointByTile(tl); err != nil || st.XY != tl {
		t.Fatalf("WaypointByTile = %v, %v", st, err)
	}

	st, _ := w.Stations.Get(id)
	st.Facilities &^= FacilTrain
	st.DeleteCtr = WaypointDeleteGrace
	for day := 1; day < WaypointDeleteGrace; day++ {
		w.TickStations()
		if !w.Stations.Valid(id) {
			t.Fatalf("waypoint gone after %d days", day)
		}
	}
	w.TickStations()
	if w.Stations.Valid(id) {
		t.Fatal("waypoint survived the grace period")
	}
	v, _ := w.Vehicles.Get(vid)
	if diff := cmp.Diff([]pool.ID{pool.None}, v.Orders); diff != "" {
		t.Errorf("orders (-want +got):\n%s", diff)
	}

	// A new station reusing the slot must not be reachable through the old tile.
	if _, err := w.Stations.Alloc(Station{XY: w.Map.XY(1, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := w.StationByTile(tl); !errors.Is(err, pool.ErrStale) {
		t.Errorf("StationByTile on stale tile err = %v, want ErrStale", err)
	}
}

func TestByTileWrongKind(t *testing.T) {
	w := newTestWorld(t)
	tl := w.Map.XY(3, 3)
	if _, _, err := w.ObjectByTile(tl); !errors.Is(err, ErrNotOnTile) {
		t.Errorf("ObjectByTile err = %v", err)
	}
	if _, _, err := w.TownByTile(tl); !errors.Is(err, ErrNotOnTile) {
		t.Errorf("TownByTile err = %v", err)
	}
	if _, _, err := w.IndustryByTile(tl); !errors.Is(err, ErrNotOnTile) {
		t.Errorf("IndustryByTile err = %v", err)
	}
}

func TestBuildAndRemoveObject(t *testing.T) {
	w := newTestWorld(t)
	o, _ := w.NewCompany("test", 0)
	tl := w.Map.XY(10, 10)
	id, err := w.BuildObject(ObjectHQ, tl, o, pool.None, 0)
	if err != nil {
		t.Fatal(err)
	}
	for ot := range w.Map.Area(tl, 2, 2) {
		if got := w.ObjectTypeAt(ot); got != ObjectHQ {
			t.Errorf("tile %d type %d", ot, got)
		}
	}
	if w.ObjectCounts[ObjectHQ] != 1 {
		t.Errorf("count = %d", w.ObjectCounts[ObjectHQ])
	}
	if err := w.RemoveObject(id); err != nil {
		t.Fatal(err)
	}
	if !w.Map.IsType(tl, tile.TypeClear) || w.ObjectCounts[ObjectHQ] != 0 {
		t.Errorf("object not removed: %v, %d", w.Map.Type(tl), w.ObjectCounts[ObjectHQ])
	}
}

func TestChangeTownRatingBounds(t *testing.T) {
	w := newTestWorld(t)
	o, _ := w.NewCompany("test", 0)
	w.CurrentCompany = o
	id, _ := w.NewTown(w.Map.XY(20, 20), "Town")
	town, _ := w.Towns.Get(id)

	w.ChangeTownRating(id, RatingTreeDownStep, RatingTreeMinimum, false)
	if town.Rating(o) != RatingInitial {
		t.Errorf("test mode changed rating to %d", town.Rating(o))
	}
	for range 40 {
		w.ChangeTownRating(id, RatingRoadDownStepInner, RatingRoadMinimum, true)
	}
	if got := town.Rating(o); got != RatingRoadMinimum {
		t.Errorf("rating = %d, want %d", got, RatingRoadMinimum)
	}
	w.ChangeTownRating(id, RatingTreeUpStep, RatingTreeMaximum, true)
	if got := town.Rating(o); got != RatingRoadMinimum+RatingTreeUpStep {
		t.Errorf("rating = %d", got)
	}
	if w.CheckTownRating(id, RoadRemove) {
		t.Error("road removal allowed at minimum rating")
	}
}

func TestInfrastructureCountsOverlap(t *testing.T) {
	w := newTestWorld(t)
	o, _ := w.NewCompany("test", 0)
	w.Map.MakeRailNormal(w.Map.XY(2, 2), o, tile.TrackBitX, tile.RailTypeRail)
	w.Map.MakeRailNormal(w.Map.XY(3, 2), o, tile.TrackBitX|tile.TrackBitY, tile.RailTypeRail)
	w.Map.MakeRoadCrossing(w.Map.XY(4, 2), tile.OwnerNone, tile.OwnerNone, o, tile.AxisY, tile.RailTypeElectric, tile.RoadTypeRoad, tile.InvalidRoadType, pool.None)
	w.RebuildInfrastructure()
	c := w.Company(o)
	if c.Infra.Rail[tile.RailTypeRail] != 1+4 {
		t.Errorf("rail = %d, want 5", c.Infra.Rail[tile.RailTypeRail])
	}
	if c.Infra.Rail[tile.RailTypeElectric] != LevelCrossingTrackBitFactor {
		t.Errorf("elrail = %d", c.Infra.Rail[tile.RailTypeElectric])
	}
}

func TestObserversAndSignalBuffer(t *testing.T) {
	w := newTestWorld(t)
	type change struct {
		Tile  tile.Index
		Track tile.Track
	}
	var got []change
	w.AddObserver(LayoutObserverFunc(func(t tile.Index, tr tile.Track) {
		got = append(got, change{t, tr})
	}))
	w.NotifyTrackLayoutChange(7, tile.TrackX)
	w.NotifyTrackLayoutChange(9, tile.TrackY)
	if diff := cmp.Diff([]change{{7, tile.TrackX}, {9, tile.TrackY}}, got); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	w.MarkTileDirty(9)
	w.MarkTileDirty(3)
	w.MarkTileDirty(9)
	if diff := cmp.Diff([]tile.Index{3, 9}, w.TakeDirty()); diff != "" {
		t.Errorf("dirty (-want +got):\n%s", diff)
	}
	if w.TakeDirty() != nil {
		t.Error("dirty set not reset")
	}

	w.AddTrackToSignalBuffer(5, tile.TrackX, tile.OwnerNone)
	if n := len(w.UpdateSignalsInBuffer()); n != 1 {
		t.Errorf("drained %d updates", n)
	}
	if n := len(w.UpdateSignalsInBuffer()); n != 0 {
		t.Errorf("buffer not drained: %d", n)
	}
}
