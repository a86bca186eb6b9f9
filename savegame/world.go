package savegame

import (
	"fmt"

	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/tile"
)

func areaRecord(a game.TileArea) AreaRecord {
	return AreaRecord{Tile: uint32(a.Tile), W: uint16(a.W), H: uint16(a.H)}
}

func (a AreaRecord) area() game.TileArea {
	return game.TileArea{Tile: tile.Index(a.Tile), W: uint(a.W), H: uint(a.H)}
}

// Encode snapshots w at the current version.
func Encode(w *game.World) *Snapshot {
	s := NewSnapshot(Current, w.Map.LogX(), w.Map.LogY())
	s.ID = w.ID
	s.Date = DateRecord{Date: int32(w.Date), DateFract: w.DateFract, Random: w.Random.State}
	s.Settings = w.Settings
	s.OldDifficulty = w.Settings.Difficulty.OldDifficulty()
	s.GRFs = w.GRFs.Clone()
	packTiles(w.Map, &s.Planes)

	for id, t := range w.Towns.All() {
		s.Towns = append(s.Towns, TownRecord{
			Index:            id.Index,
			XY:               uint32(t.XY),
			Name:             t.Name,
			Population:       t.Population,
			NumHouses:        t.NumHouses,
			Ratings:          t.Ratings,
			HaveRatings:      t.HaveRatings,
			ExclusiveCompany: uint8(t.ExclusiveCompany),
			ExclusiveCounter: t.ExclusiveCounter,
			Statues:          t.Statues,
			SquaredRadius:    t.SquaredRadius,
		})
	}
	for id, st := range w.Stations.All() {
		s.Stations = append(s.Stations, StationRecord{
			Index:      id.Index,
			Waypoint:   st.Waypoint,
			XY:         uint32(st.XY),
			Owner:      uint8(st.Owner),
			Town:       uint32(index16(st.Town)),
			Name:       st.Name,
			TownCN:     st.TownCN,
			Facilities: uint8(st.Facilities),
			BuildDate:  int32(st.BuildDate),
			TrainArea:  areaRecord(st.TrainArea),
			Rect:       areaRecord(st.Rect),
			DeleteCtr:  st.DeleteCtr,
			SpecGRFID:  st.SpecGRFID,
			SpecIndex:  st.SpecIndex,
		})
	}
	for id, o := range w.Objects.All() {
		s.Objects = append(s.Objects, ObjectRecord{
			Index:     id.Index,
			Type:      uint16(o.Type),
			Location:  areaRecord(o.Location),
			Town:      uint32(index16(o.Town)),
			BuildDate: int32(o.BuildDate),
			Colour:    o.Colour,
			View:      o.View,
		})
	}
	for id, ind := range w.Industries.All() {
		s.Industries = append(s.Industries, IndustryRecord{
			Index:    id.Index,
			Type:     ind.Type,
			Location: areaRecord(ind.Location),
			Town:     uint32(index16(ind.Town)),
			Owner:    uint8(ind.Owner),
		})
	}
	for id, v := range w.Vehicles.All() {
		rec := VehicleRecord{
			Index:          id.Index,
			Type:           uint8(v.Type),
			Owner:          uint8(v.Owner),
			Tile:           uint32(v.Tile),
			Track:          uint8(v.Track),
			EngineRailType: uint8(v.EngineRailType),
			InDepot:        v.InDepot,
			Crashed:        v.Crashed,
		}
		for _, o := range v.Orders {
			rec.Orders = append(rec.Orders, o.Index)
		}
		s.Vehicles = append(s.Vehicles, rec)
	}
	for o, c := range w.CompaniesAll() {
		s.Companies[o] = &CompanyRecord{
			Name:           c.Name,
			Money:          int64(c.Money),
			Colour:         c.Colour,
			HQ:             uint32(c.HQ),
			AvailRailTypes: c.AvailRailTypes,
			AvailRoadTypes: c.AvailRoadTypes,
			Value:          int64(c.Value),
			Bankrupt:       c.Bankrupt,
			TreeLimit:      c.TreeLimit,
		}
	}
	return s
}

func poolResolver[T any](p *pool.Pool[T]) resolver {
	return func(index uint32) (pool.ID, bool) {
		id, _, ok := p.ByIndex(index)
		return id, ok
	}
}

// optionalRef resolves a 16 bit reference that may be NoIndex.
func optionalRef(r resolver, what string, owner uint32, index uint32) (pool.ID, error) {
	id, ok := r.ref16(uint16(index), true)
	if !ok || index > NoIndex {
		return pool.None, corrupt("%s %d: missing reference %d", what, owner, index)
	}
	return id, nil
}

// Decode builds a world from a snapshot at the current version. Pools keep
// their saved indices. Company infrastructure is recounted from the map.
func Decode(s *Snapshot) (*game.World, error) {
	if s.Version != Current {
		return nil, fmt.Errorf("savegame: snapshot at version %v must be migrated to %v first", s.Version, Current)
	}
	w := game.NewWithMap(s.Settings, nil)
	w.ID = s.ID
	w.Date = game.Date(s.Date.Date)
	w.DateFract = s.Date.DateFract
	w.Random.State = s.Date.Random
	w.GRFs = s.GRFs

	for _, r := range s.Towns {
		_, err := w.Towns.AllocAt(r.Index, game.Town{
			XY:               tile.Index(r.XY),
			Name:             r.Name,
			Population:       r.Population,
			NumHouses:        r.NumHouses,
			Ratings:          r.Ratings,
			HaveRatings:      r.HaveRatings,
			ExclusiveCompany: tile.Owner(r.ExclusiveCompany),
			ExclusiveCounter: r.ExclusiveCounter,
			Statues:          r.Statues,
			SquaredRadius:    r.SquaredRadius,
		})
		if err != nil {
			return nil, corrupt("town %d: %v", r.Index, err)
		}
	}
	towns := poolResolver(w.Towns)

	for _, r := range s.Stations {
		town, err := optionalRef(towns, "station", r.Index, r.Town)
		if err != nil {
			return nil, err
		}
		_, err = w.Stations.AllocAt(r.Index, game.Station{
			Waypoint:   r.Waypoint,
			XY:         tile.Index(r.XY),
			Owner:      tile.Owner(r.Owner),
			Town:       town,
			Name:       r.Name,
			TownCN:     r.TownCN,
			Facilities: game.Facilities(r.Facilities),
			BuildDate:  game.Date(r.BuildDate),
			TrainArea:  r.TrainArea.area(),
			Rect:       r.Rect.area(),
			DeleteCtr:  r.DeleteCtr,
			SpecGRFID:  r.SpecGRFID,
			SpecIndex:  r.SpecIndex,
		})
		if err != nil {
			return nil, corrupt("station %d: %v", r.Index, err)
		}
	}
	for _, r := range s.Objects {
		town, err := optionalRef(towns, "object", r.Index, r.Town)
		if err != nil {
			return nil, err
		}
		_, err = w.Objects.AllocAt(r.Index, game.Object{
			Type:      game.ObjectType(r.Type),
			Location:  r.Location.area(),
			Town:      town,
			BuildDate: game.Date(r.BuildDate),
			Colour:    r.Colour,
			View:      r.View,
		})
		if err != nil {
			return nil, corrupt("object %d: %v", r.Index, err)
		}
		w.ObjectCounts[game.ObjectType(r.Type)]++
	}
	for _, r := range s.Industries {
		town, err := optionalRef(towns, "industry", r.Index, r.Town)
		if err != nil {
			return nil, err
		}
		_, err = w.Industries.AllocAt(r.Index, game.Industry{
			Type:     r.Type,
			Location: r.Location.area(),
			Town:     town,
			Owner:    tile.Owner(r.Owner),
		})
		if err != nil {
			return nil, corrupt("industry %d: %v", r.Index, err)
		}
	}
	stations := poolResolver(w.Stations)
	for _, r := range s.Vehicles {
		v := game.Vehicle{
			Type:           game.VehicleType(r.Type),
			Owner:          tile.Owner(r.Owner),
			Tile:           tile.Index(r.Tile),
			Track:          tile.TrackBits(r.Track),
			EngineRailType: tile.RailType(r.EngineRailType),
			InDepot:        r.InDepot,
			Crashed:        r.Crashed,
		}
		for _, o := range r.Orders {
			id, ok := stations(o)
			if !ok {
				return nil, corrupt("vehicle %d: order to missing station %d", r.Index, o)
			}
			v.Orders = append(v.Orders, id)
		}
		if _, err := w.Vehicles.AllocAt(r.Index, v); err != nil {
			return nil, corrupt("vehicle %d: %v", r.Index, err)
		}
	}

	m, err := unpackTiles(s, tileRefs{
		towns:      towns,
		stations:   stations,
		industries: poolResolver(w.Industries),
		objects:    poolResolver(w.Objects),
	})
	if err != nil {
		return nil, err
	}
	w.Map = m

	for i, r := range s.Companies {
		if r == nil {
			continue
		}
		hq := tile.Index(r.HQ)
		if !m.IsValid(hq) {
			hq = tile.InvalidIndex
		}
		w.Companies[i] = &game.Company{
			Name:           r.Name,
			Money:          game.Money(r.Money),
			Colour:         r.Colour,
			HQ:             hq,
			AvailRailTypes: r.AvailRailTypes,
			AvailRoadTypes: r.AvailRoadTypes,
			Value:          game.Money(r.Value),
			Bankrupt:       r.Bankrupt,
			TreeLimit:      r.TreeLimit,
		}
	}
	w.RebuildInfrastructure()
	return w, nil
}
