package game

import (
	"errors"
	"fmt"

	"ttdmap/pool"
	"ttdmap/tile"
)

// ErrNotOnTile is returned when a tile does not reference the entity kind asked for.
var ErrNotOnTile = errors.New("tile does not hold that entity")

type Facilities uint8

const (
	FacilTrain Facilities = 1 << iota
	FacilTruckStop
	FacilBusStop
	FacilAirport
	FacilDock
	FacilWaypoint Facilities = 1 << 7
)

// WaypointDeleteGrace is the number of days an unused waypoint survives.
const WaypointDeleteGrace = 8

// Station is a station or a waypoint; both share one pool.
type Station struct {
	Waypoint   bool
	XY         tile.Index
	Owner      tile.Owner
	Town       pool.ID
	Name       string
	TownCN     uint16
	Facilities Facilities
	BuildDate  Date
	// TrainArea covers every rail tile of the station.
	TrainArea TileArea
	// Rect covers every tile of the station.
	Rect TileArea
	// DeleteCtr counts days down to deletion once the station has no tiles.
	DeleteCtr uint8
	// Spec identifies the custom graphics, by GRF and local index.
	SpecGRFID uint32
	SpecIndex uint8
}

func (s *Station) InUse() bool {
	return s.Facilities&^FacilWaypoint != 0
}

// StationByTile resolves the station a station tile points at.
func (w *World) StationByTile(t tile.Index) (pool.ID, *Station, error) {
	c, ok := w.Map.Station(t)
	if !ok {
		return pool.None, nil, fmt.Errorf("tile %d: %w", t, ErrNotOnTile)
	}
	st, err := w.Stations.Get(c.Station)
	if err != nil {
		return pool.None, nil, err
	}
	return c.Station, st, nil
}

// WaypointByTile is StationByTile for rail waypoint tiles only.
func (w *World) WaypointByTile(t tile.Index) (pool.ID, *Station, error) {
	if _, ok := w.Map.Waypoint(t); !ok {
		return pool.None, nil, fmt.Errorf("tile %d: %w", t, ErrNotOnTile)
	}
	return w.StationByTile(t)
}

// TickStations runs the daily countdown of unused waypoints and deletes the
// ones whose grace period ran out.
func (w *World) TickStations() {
	var expired []pool.ID
	for id, st := range w.Stations.All() {
		if st.InUse() || st.DeleteCtr == 0 {
			continue
		}
		st.DeleteCtr--
		if st.DeleteCtr == 0 {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		w.DeleteStation(id)
	}
}

// DeleteStation frees a station and drops every vehicle order that targets it.
func (w *World) DeleteStation(id pool.ID) {
	for _, v := range w.Vehicles.All() {
		v.RemoveOrdersTo(id)
	}
	w.Stations.Free(id)
}

// RecomputeStationRects rebuilds Rect and TrainArea of all stations from the map.
func (w *World) RecomputeStationRects() {
	for _, st := range w.Stations.All() {
		st.Rect = TileArea{}
		st.TrainArea = TileArea{}
	}
	for t := range w.Map.All() {
		c, ok := w.Map.Station(t)
		if !ok {
			continue
		}
		st, err := w.Stations.Get(c.Station)
		if err != nil {
			continue
		}
		st.Rect.Add(w.Map, t)
		if c.IsRailStation() {
			st.TrainArea.Add(w.Map, t)
		}
	}
}
