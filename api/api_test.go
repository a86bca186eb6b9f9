package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/settings"
	"ttdmap/tile"
)

type updates chan Update

func (u updates) Publish(up Update) { u <- up }

type fixture struct {
	w      *game.World
	exec   *Executor
	srv    *httptest.Server
	player tile.Owner
}

func newFixture(t *testing.T, pub Publisher, hub *Hub) *fixture {
	t.Helper()
	w, err := game.New(settings.Default(), 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.NewTown(w.Map.XY(20, 20), "Testville"); err != nil {
		t.Fatal(err)
	}
	o, err := w.NewCompany("test", 1_000_000)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if hub != nil {
		pub = hub
		go hub.Run(ctx)
	}
	exec := NewExecutor(w, pub, nil)
	go exec.Run(ctx)
	srv := httptest.NewServer(NewServer(exec, hub))
	t.Cleanup(srv.Close)
	return &fixture{w: w, exec: exec, srv: srv, player: o}
}

func (f *fixture) post(t *testing.T, req CommandRequest) (int, CommandResult) {
	t.Helper()
	body, _ := json.Marshal(req)
	resp, err := http.Post(f.srv.URL+"/api/commands", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var res CommandResult
	json.NewDecoder(resp.Body).Decode(&res)
	return resp.StatusCode, res
}

func (f *fixture) tile(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var v map[string]any
	json.NewDecoder(resp.Body).Decode(&v)
	return resp.StatusCode, v
}

func TestCommandTestThenExec(t *testing.T) {
	ups := make(updates, 8)
	f := newFixture(t, ups, nil)
	at := f.w.Map.XY(10, 10)
	req := CommandRequest{
		Command: "build_single_rail",
		Tile:    at,
		P1:      uint32(tile.RailTypeRail),
		P2:      uint32(tile.TrackX),
		Company: f.player,
	}

	status, res := f.post(t, req)
	if status != http.StatusOK || res.Cost != 100 || res.Error != "" {
		t.Fatalf("test pass = %d %+v", status, res)
	}
	if _, v := f.tile(t, "/api/tiles/10/10"); v["type"] != "clear" {
		t.Errorf("test pass changed the tile to %v", v["type"])
	}
	select {
	case u := <-ups:
		t.Errorf("test pass published %+v", u)
	default:
	}

	req.Exec = true
	if status, res = f.post(t, req); status != http.StatusOK || res.Cost != 100 {
		t.Fatalf("exec pass = %d %+v", status, res)
	}
	if _, v := f.tile(t, "/api/tiles/10/10"); v["type"] != "railway" || v["owner"] != f.player.String() {
		t.Errorf("tile after exec = %v", v)
	}
	select {
	case u := <-ups:
		if diff := cmp.Diff([]LayoutChange{{at, tile.TrackX}}, u.Layout); diff != "" {
			t.Errorf("layout changes (-want +got):\n%s", diff)
		}
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}

	status, res = f.post(t, req)
	if status != http.StatusUnprocessableEntity || res.Error == "" {
		t.Errorf("second build = %d %+v, want a refusal", status, res)
	}
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t, nil, nil)
	tests := []struct {
		name string
		req  CommandRequest
		want int
	}{
		{"unknown command", CommandRequest{Command: "launch_rocket"}, http.StatusBadRequest},
		{"missing company", CommandRequest{Command: "plant_tree", Company: 7}, http.StatusBadRequest},
		{"off the map", CommandRequest{Command: "build_road", Tile: 1 << 20, P1: uint32(tile.RoadX), Company: f.player}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := f.post(t, tt.req); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTileLookup(t *testing.T) {
	f := newFixture(t, nil, nil)
	status, v := f.tile(t, "/api/tiles/65")
	if status != http.StatusOK || v["x"] != float64(1) || v["y"] != float64(1) {
		t.Errorf("tile 65 = %d %v", status, v)
	}
	if status, _ := f.tile(t, "/api/tiles/64/1"); status != http.StatusNotFound {
		t.Errorf("tile outside the map = %d, want 404", status)
	}
	if _, v := f.tile(t, "/api/tiles/63/63"); v["type"] != "void" {
		t.Errorf("border tile type = %v", v["type"])
	}
}

func TestMapAndTowns(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, info := f.tile(t, "/api/map")
	if info["size_x"] != float64(64) || info["towns"] != float64(1) || info["id"] != f.w.ID.String() {
		t.Errorf("map = %v", info)
	}

	resp, err := http.Get(f.srv.URL + "/api/towns")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var towns []TownView
	if err := json.NewDecoder(resp.Body).Decode(&towns); err != nil {
		t.Fatal(err)
	}
	if len(towns) != 1 || towns[0].Name != "Testville" || towns[0].XY != f.w.Map.XY(20, 20) {
		t.Errorf("towns = %+v", towns)
	}
}

func TestSavegameDownload(t *testing.T) {
	f := newFixture(t, nil, nil)
	resp, err := http.Get(f.srv.URL + "/api/savegame?compression=lz4")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	snap, err := savegame.Read(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID != f.w.ID || snap.LogX != 6 || snap.Version != savegame.Current {
		t.Errorf("snapshot = id %v log %d version %d", snap.ID, snap.LogX, snap.Version)
	}

	bad, err := http.Get(f.srv.URL + "/api/savegame?compression=rar")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown compression = %d, want 400", bad.StatusCode)
	}
}

func TestWebsocketStream(t *testing.T) {
	f := newFixture(t, nil, NewHub(nil))
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Update
	if err := conn.ReadJSON(&hello); err != nil || hello.Event != "hello" {
		t.Fatalf("hello = %+v, %v", hello, err)
	}

	at := f.w.Map.XY(12, 12)
	req := CommandRequest{
		Command: "build_single_rail",
		Tile:    at,
		P1:      uint32(tile.RailTypeRail),
		P2:      uint32(tile.TrackY),
		Company: f.player,
		Exec:    true,
	}
	if status, res := f.post(t, req); status != http.StatusOK {
		t.Fatalf("build = %d %+v", status, res)
	}

	var u Update
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatal(err)
	}
	want := Update{Event: "changes", Dirty: u.Dirty, Layout: []LayoutChange{{at, tile.TrackY}}}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("update (-want +got):\n%s", diff)
	}
}

func TestExecutorRecoversFromPanic(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	err := f.exec.Do(ctx, func(*game.World) error { panic("boom") })
	if err == nil {
		t.Fatal("panic not reported")
	}
	if err := f.exec.Do(ctx, func(*game.World) error { return nil }); !errors.Is(err, ErrBroken) {
		t.Errorf("request after panic = %v, want the broken error", err)
	}
	status, _ := f.tile(t, "/api/map")
	if status != http.StatusServiceUnavailable {
		t.Errorf("map after panic = %d, want 503", status)
	}
}
