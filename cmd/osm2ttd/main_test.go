package main

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/osm"

	"ttdmap/settings"
	"ttdmap/tile"
)

func TestBoxXY(t *testing.T) {
	b := newBox(46.0, 14.5, 0.1)
	tests := []struct {
		lat, lon float64
		x, y     uint
	}{
		{46.0, 14.5, 127, 127},
		{45.9501, 14.4501, 254, 254},
		{46.0499, 14.5499, 1, 1},
	}
	for _, tt := range tests {
		n := &osm.Node{Lat: tt.lat, Lon: tt.lon}
		if !b.contains(n) {
			t.Errorf("%v,%v not inside the box", tt.lat, tt.lon)
			continue
		}
		if x, y := b.xy(n); x != tt.x || y != tt.y {
			t.Errorf("xy(%v,%v) = %d,%d, want %d,%d", tt.lat, tt.lon, x, y, tt.x, tt.y)
		}
	}
	if b.contains(&osm.Node{Lat: 47, Lon: 14.5}) {
		t.Error("node north of the box is inside")
	}
}

func TestBuild(t *testing.T) {
	e := &extract{
		towns:     []townSite{{point{20, 20}, "Ljubljana"}},
		roads:     [][]point{{{10, 10}, {13, 10}, {13, 12}}},
		buildings: []point{{21, 21}, {10, 10}},
		trees:     []point{{30, 30}},
	}
	w, err := build(e, settings.Default(), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	m := w.Map

	want := map[[2]uint]tile.RoadBits{
		{10, 10}: tile.RoadSW,
		{11, 10}: tile.RoadX,
		{12, 10}: tile.RoadX,
		{13, 10}: tile.RoadNE | tile.RoadSE,
		{13, 11}: tile.RoadY,
		{13, 12}: tile.RoadNW,
	}
	got := map[[2]uint]tile.RoadBits{}
	for at := range want {
		if r, ok := m.Road(m.XY(at[0], at[1])); ok {
			got[at] = r.RoadBits
			if r.Owner != tile.OwnerTown {
				t.Errorf("road at %v owned by %v", at, r.Owner)
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("road bits (-want +got):\n%s", diff)
	}

	if _, ok := m.House(m.XY(21, 21)); !ok {
		t.Errorf("no house at 21,21: %v", m.At(m.XY(21, 21)).Content.Type())
	}
	_, town, _ := w.Towns.ByIndex(0)
	if town.NumHouses != 1 {
		t.Errorf("town has %d houses, want 1; the road tile must not become a house", town.NumHouses)
	}
	if _, ok := m.Trees(m.XY(30, 30)); !ok {
		t.Errorf("no trees at 30,30: %v", m.At(m.XY(30, 30)).Content.Type())
	}
}

func TestTitle(t *testing.T) {
	if got := title("/data/slovenia-latest.osm.pbf"); got != "slovenia-latest.osm" {
		t.Errorf("title = %q", got)
	}
}
