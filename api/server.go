package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/savegame"
	"ttdmap/tile"
)

type Server struct {
	exec   *Executor
	hub    *Hub
	router *mux.Router
}

func NewServer(exec *Executor, hub *Hub) *Server {
	s := &Server{exec: exec, hub: hub, router: mux.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/map", s.handleMap).Methods("GET")
	api.HandleFunc("/tiles/{index:[0-9]+}", s.handleTile).Methods("GET")
	api.HandleFunc("/tiles/{x:[0-9]+}/{y:[0-9]+}", s.handleTile).Methods("GET")
	api.HandleFunc("/towns", s.handleTowns).Methods("GET")
	api.HandleFunc("/companies", s.handleCompanies).Methods("GET")
	api.HandleFunc("/commands", s.handleCommand).Methods("POST")
	api.HandleFunc("/savegame", s.handleSavegame).Methods("GET")
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// errorStatus maps executor errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownCommand), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrStopped), errors.Is(err, ErrBroken):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

type MapInfo struct {
	ID        string          `json:"id"`
	SizeX     uint            `json:"size_x"`
	SizeY     uint            `json:"size_y"`
	Date      string          `json:"date"`
	Landscape string          `json:"landscape"`
	Towns     int             `json:"towns"`
	Paused    bool            `json:"paused"`
	LastError string          `json:"last_error,omitempty"`
	Packages  []PackageStatus `json:"packages,omitempty"`
}

type PackageStatus struct {
	GRFID    string `json:"grfid"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var info MapInfo
	err := s.exec.Do(r.Context(), func(g *game.World) error {
		info = MapInfo{
			ID:        g.ID.String(),
			SizeX:     g.Map.SizeX(),
			SizeY:     g.Map.SizeY(),
			Date:      g.Date.String(),
			Landscape: g.Landscape().String(),
			Towns:     g.Towns.Len(),
			Paused:    g.Paused,
			LastError: g.LastError,
		}
		for _, c := range g.GRFs {
			info.Packages = append(info.Packages, PackageStatus{
				GRFID:    fmt.Sprintf("%08X", c.Ident.GRFID),
				Filename: c.Filename,
				Status:   c.Status.String(),
			})
		}
		return nil
	})
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

type TileView struct {
	Index   tile.Index      `json:"index"`
	X       uint            `json:"x"`
	Y       uint            `json:"y"`
	Height  uint8           `json:"height"`
	Zone    tile.TropicZone `json:"zone"`
	Type    string          `json:"type"`
	Owner   string          `json:"owner"`
	Content tile.Content    `json:"content"`
}

func (s *Server) tileIndex(g *game.World, vars map[string]string) (tile.Index, error) {
	if v, ok := vars["index"]; ok {
		i, err := strconv.ParseUint(v, 10, 32)
		if err != nil || !g.Map.IsValid(tile.Index(i)) {
			return 0, fmt.Errorf("%w: tile %s", errNotFound, v)
		}
		return tile.Index(i), nil
	}
	x, errX := strconv.ParseUint(vars["x"], 10, 32)
	y, errY := strconv.ParseUint(vars["y"], 10, 32)
	if errX != nil || errY != nil || uint(x) > g.Map.MaxX() || uint(y) > g.Map.MaxY() {
		return 0, fmt.Errorf("%w: tile %s,%s", errNotFound, vars["x"], vars["y"])
	}
	return g.Map.XY(uint(x), uint(y)), nil
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var view TileView
	err := s.exec.Do(r.Context(), func(g *game.World) error {
		t, err := s.tileIndex(g, vars)
		if err != nil {
			return err
		}
		tl := g.Map.At(t)
		view = TileView{
			Index:   t,
			X:       g.Map.X(t),
			Y:       g.Map.Y(t),
			Height:  tl.Height,
			Zone:    tl.Zone,
			Type:    tl.Content.Type().String(),
			Owner:   g.Map.Owner(t).String(),
			Content: tile.CloneContent(tl.Content),
		}
		return nil
	})
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type TownView struct {
	ID         pool.ID    `json:"id"`
	Name       string     `json:"name"`
	XY         tile.Index `json:"xy"`
	Population uint32     `json:"population"`
	Houses     uint16     `json:"houses"`
}

func (s *Server) handleTowns(w http.ResponseWriter, r *http.Request) {
	var towns []TownView
	err := s.exec.Do(r.Context(), func(g *game.World) error {
		for id, t := range g.Towns.All() {
			towns = append(towns, TownView{id, t.Name, t.XY, t.Population, t.NumHouses})
		}
		return nil
	})
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, towns)
}

type CompanyView struct {
	Owner tile.Owner `json:"owner"`
	Name  string     `json:"name"`
	Money game.Money `json:"money"`
	HQ    tile.Index `json:"hq"`
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	var cos []CompanyView
	err := s.exec.Do(r.Context(), func(g *game.World) error {
		for o, c := range g.CompaniesAll() {
			cos = append(cos, CompanyView{o, c.Name, c.Money, c.HQ})
		}
		return nil
	})
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	respondJSON(w, http.StatusOK, cos)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	res, err := s.exec.Command(r.Context(), req)
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	status := http.StatusOK
	if res.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, res)
}

// handleSavegame encodes the game on the executor and compresses it after,
// so the world is only held for the encoding.
func (s *Server) handleSavegame(w http.ResponseWriter, r *http.Request) {
	comp := savegame.CompressZstd
	if v := r.URL.Query().Get("compression"); v != "" {
		c, err := savegame.ParseCompression(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		comp = c
	}
	var snap *savegame.Snapshot
	err := s.exec.Do(r.Context(), func(g *game.World) error {
		snap = savegame.Encode(g)
		return nil
	})
	if err != nil {
		respondError(w, errorStatus(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.ID.String()+".sav"))
	if err := savegame.Write(w, snap, comp); err != nil {
		s.exec.log.Error("write savegame", "err", err)
	}
}
