// Package game owns the whole simulation state: the tile map, the entity
// pools, companies, settings and the static catalogs. A World has a single
// writer; other goroutines only ever see clones.
package game

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"ttdmap/newgrf"
	"ttdmap/pool"
	"ttdmap/settings"
	"ttdmap/tile"
)

const (
	MaxTowns      = 64000
	MaxStations   = 64000
	MaxObjects    = 1 << 20
	MaxIndustries = 64000
	MaxVehicles   = 1 << 20
)

type World struct {
	ID        uuid.UUID
	Map       *tile.Map
	Settings  settings.GameSettings
	Date      Date
	DateFract uint16
	Random    Random

	Towns      *pool.Pool[Town]
	Stations   *pool.Pool[Station]
	Objects    *pool.Pool[Object]
	Industries *pool.Pool[Industry]
	Vehicles   *pool.Pool[Vehicle]
	Companies  [tile.MaxCompanies]*Company

	// CurrentCompany is the company executing the running command.
	CurrentCompany tile.Owner
	// ObjectCounts tracks how many objects of each type exist.
	ObjectCounts map[ObjectType]int

	RailTypes   []RailTypeInfo
	RoadTypes   []RoadTypeInfo
	ObjectSpecs []ObjectSpec
	Prices      Prices

	GRFs   newgrf.List
	Paused bool

	observers []LayoutObserver
	dirty     map[tile.Index]struct{}
	signals   []SignalUpdate
	// LastError holds the warning shown to the player after loading.
	LastError string
}

// New creates a world with an empty map of 2^logX by 2^logY tiles.
func New(s settings.GameSettings, logX, logY uint) (*World, error) {
	m, err := tile.NewMap(logX, logY)
	if err != nil {
		return nil, err
	}
	w := NewWithMap(s, m)
	w.ID = uuid.New()
	w.Date = ConvertYMDToDate(1950, 1, 1)
	return w, nil
}

// NewWithMap wraps an existing map; loaders use it and fill the pools themselves.
func NewWithMap(s settings.GameSettings, m *tile.Map) *World {
	w := &World{
		Map:            m,
		Settings:       s,
		Towns:          pool.New[Town]("towns", MaxTowns),
		Stations:       pool.New[Station]("stations", MaxStations),
		Objects:        pool.New[Object]("objects", MaxObjects),
		Industries:     pool.New[Industry]("industries", MaxIndustries),
		Vehicles:       pool.New[Vehicle]("vehicles", MaxVehicles),
		ObjectCounts:   map[ObjectType]int{},
		RailTypes:      DefaultRailTypes(),
		RoadTypes:      DefaultRoadTypes(),
		ObjectSpecs:    DefaultObjectSpecs(),
		Prices:         BasePrices(),
		CurrentCompany: tile.OwnerNone,
		dirty:          map[tile.Index]struct{}{},
	}
	w.Random.Seed(s.GameCreation.Seed)
	return w
}

func (w *World) Landscape() settings.Landscape {
	return w.Settings.GameCreation.Landscape
}

// Company returns the company with the given owner value, or nil.
func (w *World) Company(o tile.Owner) *Company {
	if !o.IsCompany() {
		return nil
	}
	return w.Companies[o]
}

// NewCompany registers a company in the first free slot.
func (w *World) NewCompany(name string, money Money) (tile.Owner, error) {
	for i, c := range w.Companies {
		if c == nil {
			w.Companies[i] = &Company{
				Name:           name,
				Money:          money,
				Colour:         uint8(i) & 0xF,
				AvailRailTypes: w.defaultAvailableRailTypes(),
				AvailRoadTypes: 1<<tile.RoadTypeRoad | 1<<tile.RoadTypeTram,
				HQ:             tile.InvalidIndex,
			}
			return tile.Owner(i), nil
		}
	}
	return tile.InvalidOwner, fmt.Errorf("all %d company slots in use", tile.MaxCompanies)
}

// CompaniesAll iterates over existing companies.
func (w *World) CompaniesAll() iter.Seq2[tile.Owner, *Company] {
	return func(yield func(tile.Owner, *Company) bool) {
		for i, c := range w.Companies {
			if c != nil && !yield(tile.Owner(i), c) {
				return
			}
		}
	}
}

func (w *World) RailType(rt tile.RailType) *RailTypeInfo {
	if int(rt) >= len(w.RailTypes) {
		return nil
	}
	return &w.RailTypes[rt]
}

func (w *World) RoadType(rt tile.RoadType) *RoadTypeInfo {
	if int(rt) >= len(w.RoadTypes) {
		return nil
	}
	return &w.RoadTypes[rt]
}

func (w *World) ObjectSpec(t ObjectType) *ObjectSpec {
	if int(t) >= len(w.ObjectSpecs) {
		return nil
	}
	return &w.ObjectSpecs[t]
}

// Clone deep-copies the parts of the world readers need: map, settings and date.
func (w *World) Clone() *World {
	c := NewWithMap(w.Settings, w.Map.Clone())
	c.ID = w.ID
	c.Date = w.Date
	c.DateFract = w.DateFract
	return c
}
