package game

import (
	"fmt"
	"math"

	"ttdmap/pool"
	"ttdmap/tile"
)

const (
	RatingMinimum = -1000
	RatingMaximum = 1000
	RatingInitial = 500

	RatingTreeDownStep = -35
	RatingTreeMinimum  = RatingMinimum
	RatingTreeUpStep   = 7
	RatingTreeMaximum  = 220

	RatingRoadDownStepInner = -50
	RatingRoadDownStepEdge  = -18
	RatingRoadMinimum       = -100

	RatingTunnelBridgeDownStep = -250
	RatingTunnelBridgeMinimum  = 0

	RatingHouseMinimum = RatingMinimum
)

// DistLocalAuthority is how far a town's authority reaches for ratings.
const DistLocalAuthority = 20

type TownCouncilTolerance uint8

const (
	TownCouncilLenient TownCouncilTolerance = iota
	TownCouncilNeutral
	TownCouncilHostile
	TownCouncilPermissive
)

type TownRatingCheck uint8

const (
	RoadRemove TownRatingCheck = iota
	TunnelBridgeRemove
)

var neededRating = [2][4]int{
	RoadRemove:         {16, 64, 112, RatingMinimum},
	TunnelBridgeRemove: {144, 208, 400, RatingMinimum},
}

type Town struct {
	XY         tile.Index
	Name       string
	Population uint32
	NumHouses  uint16
	// Ratings and HaveRatings are per company.
	Ratings          [tile.MaxCompanies]int16
	HaveRatings      uint16
	ExclusiveCompany tile.Owner
	ExclusiveCounter uint8
	// Statues has a bit for each company with a statue in town.
	Statues uint16
	// Radius squared within which the town counts as local authority.
	SquaredRadius uint32
}

func (t *Town) Rating(c tile.Owner) int {
	if t.HaveRatings&(1<<c) == 0 {
		return RatingInitial
	}
	return int(t.Ratings[c])
}

// NewTown places a town with default ratings.
func (w *World) NewTown(xy tile.Index, name string) (pool.ID, error) {
	t := Town{XY: xy, Name: name, ExclusiveCompany: tile.InvalidOwner, SquaredRadius: 16 * 16}
	for i := range t.Ratings {
		t.Ratings[i] = RatingInitial
	}
	return w.Towns.Alloc(t)
}

// CalcClosestTownFromTile returns the nearest town within threshold tiles
// (Manhattan distance), or pool.None.
func (w *World) CalcClosestTownFromTile(t tile.Index, threshold uint) (pool.ID, *Town) {
	best := uint(math.MaxUint)
	var bestID pool.ID
	var bestTown *Town
	for id, town := range w.Towns.All() {
		d := w.Map.DistanceManhattan(t, town.XY)
		if d < best {
			best, bestID, bestTown = d, id, town
		}
	}
	if bestTown == nil || best >= threshold {
		return pool.None, nil
	}
	return bestID, bestTown
}

// ClosestTownFromTile is CalcClosestTownFromTile, except that town-owned
// roads and houses answer with the town they belong to.
func (w *World) ClosestTownFromTile(t tile.Index, threshold uint) (pool.ID, *Town) {
	switch c := w.Map.At(t).Content.(type) {
	case *tile.Road:
		if c.Kind == tile.RoadTileDepot {
			break
		}
		if tn, err := w.Towns.Get(c.Town); err == nil {
			if c.Owner == tile.OwnerTown || w.Map.DistanceManhattan(t, tn.XY) < threshold {
				return c.Town, tn
			}
			return pool.None, nil
		}
	case *tile.House:
		if tn, err := w.Towns.Get(c.Town); err == nil {
			return c.Town, tn
		}
	}
	return w.CalcClosestTownFromTile(t, threshold)
}

// LocalAuthorityTownFromTile finds the town whose authority covers t.
func (w *World) LocalAuthorityTownFromTile(t tile.Index) (pool.ID, *Town) {
	bestD := uint64(math.MaxUint64)
	var bestID pool.ID
	var best *Town
	for id, town := range w.Towns.All() {
		dx := uint64(tile.Delta(w.Map.X(t), w.Map.X(town.XY)))
		dy := uint64(tile.Delta(w.Map.Y(t), w.Map.Y(town.XY)))
		d := dx*dx + dy*dy
		if d < uint64(town.SquaredRadius) && d < bestD {
			bestD, bestID, best = d, id, town
		}
	}
	return bestID, best
}

// ChangeTownRating adds delta to the current company's rating with the town
// responsible for t, never crossing bound in the direction of the change.
func (w *World) ChangeTownRating(id pool.ID, delta, bound int, exec bool) {
	t, err := w.Towns.Get(id)
	if err != nil || !w.CurrentCompany.IsCompany() || !exec {
		return
	}
	c := w.CurrentCompany
	rating := t.Rating(c)
	if delta < 0 {
		if rating > bound {
			rating = max(rating+delta, bound)
		}
	} else {
		if rating < bound {
			rating = min(rating+delta, bound)
		}
	}
	t.Ratings[c] = int16(tile.Clamp(rating, RatingMinimum, RatingMaximum))
	t.HaveRatings |= 1 << c
}

// CheckTownRating reports whether the current company is allowed to do a
// removal of the given kind near the town.
func (w *World) CheckTownRating(id pool.ID, kind TownRatingCheck) bool {
	t, err := w.Towns.Get(id)
	if err != nil || !w.CurrentCompany.IsCompany() {
		return true
	}
	tol := TownCouncilTolerance(w.Settings.Difficulty.TownCouncilTolerance)
	if tol > TownCouncilPermissive {
		tol = TownCouncilPermissive
	}
	return t.Rating(w.CurrentCompany) >= neededRating[kind][tol]
}

// TownByTile resolves the town a road or house tile points at.
func (w *World) TownByTile(t tile.Index) (pool.ID, *Town, error) {
	var id pool.ID
	switch c := w.Map.At(t).Content.(type) {
	case *tile.Road:
		id = c.Town
	case *tile.House:
		id = c.Town
	default:
		return pool.None, nil, fmt.Errorf("tile %d: %w", t, ErrNotOnTile)
	}
	town, err := w.Towns.Get(id)
	if err != nil {
		return pool.None, nil, err
	}
	return id, town, nil
}
