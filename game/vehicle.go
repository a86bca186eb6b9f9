package game

import (
	"slices"

	"ttdmap/pool"
	"ttdmap/tile"
)

type VehicleType uint8

const (
	VehTrain VehicleType = iota
	VehRoad
	VehShip
	VehAircraft
	VehEffect
	VehDisaster
)

type Vehicle struct {
	Type  VehicleType
	Owner tile.Owner
	Tile  tile.Index
	// Track the vehicle occupies on Tile, for trains.
	Track tile.TrackBits
	// EngineRailType is the rail type the train engine was built for.
	EngineRailType tile.RailType
	InDepot        bool
	Orders         []pool.ID
	Crashed        bool
}

// RemoveOrdersTo drops orders whose destination is the given station.
func (v *Vehicle) RemoveOrdersTo(st pool.ID) {
	v.Orders = slices.DeleteFunc(v.Orders, func(o pool.ID) bool { return o == st })
}

// VehicleOnTile returns the first vehicle on t matching the filter.
func (w *World) VehicleOnTile(t tile.Index, match func(*Vehicle) bool) *Vehicle {
	for _, v := range w.Vehicles.All() {
		if v.Tile != t || v.Type == VehEffect || v.Type == VehDisaster {
			continue
		}
		if match == nil || match(v) {
			return v
		}
	}
	return nil
}

// HasVehicleOnGround reports road or rail vehicles on t, ignoring aircraft.
func (w *World) HasVehicleOnGround(t tile.Index) bool {
	return w.VehicleOnTile(t, func(v *Vehicle) bool {
		return v.Type != VehAircraft
	}) != nil
}

// HasTrainOnTrack reports a train whose track overlaps bits on t.
func (w *World) HasTrainOnTrack(t tile.Index, bits tile.TrackBits) bool {
	return w.VehicleOnTile(t, func(v *Vehicle) bool {
		return v.Type == VehTrain && !v.InDepot && (v.Track&bits != 0 || v.Track == 0)
	}) != nil
}
