package command

import (
	"math"

	"ttdmap/game"
	"ttdmap/settings"
	"ttdmap/tile"
)

var treeBase = [...]struct {
	base  tile.TreeType
	count uint8
}{
	settings.Temperate: {tile.TreeTemperate, tile.TreeCountTemperate},
	settings.Arctic:    {tile.TreeSubArctic, tile.TreeCountSubArctic},
	settings.Tropic:    {tile.TreeRainforest, tile.TreeCountRainforest},
	settings.Toyland:   {tile.TreeToyland, tile.TreeCountToyland},
}

func isTreeInside(tt, lo, hi tile.TreeType) bool {
	return tt >= lo && tt < hi
}

// randomTreeType picks a tree that grows on t in the current climate.
func randomTreeType(w *game.World, t tile.Index, seed uint32) tile.TreeType {
	switch w.Landscape() {
	case settings.Temperate:
		return tile.TreeTemperate + tile.TreeType(seed*tile.TreeCountTemperate>>8)
	case settings.Arctic:
		return tile.TreeSubArctic + tile.TreeType(seed*tile.TreeCountSubArctic>>8)
	case settings.Tropic:
		switch w.Map.At(t).Zone {
		case tile.TropicDesert:
			return tile.TreeCactus
		case tile.TropicRainforest:
			return tile.TreeRainforest + tile.TreeType(seed*uint32(tile.TreeCactus-tile.TreeRainforest)>>8)
		}
		return tile.TreeSubTropical + tile.TreeType(seed*uint32(tile.TreeToyland-tile.TreeSubTropical)>>8)
	}
	return tile.TreeToyland + tile.TreeType(seed*tile.TreeCountToyland>>8)
}

// wrongTerrain reports tropic trees planted outside their zone.
func wrongTerrain(w *game.World, t tile.Index, tt tile.TreeType) bool {
	if w.Landscape() != settings.Tropic || tt == tile.InvalidTreeType {
		return false
	}
	zone := w.Map.At(t).Zone
	switch {
	case tt == tile.TreeCactus:
		return zone != tile.TropicDesert
	case isTreeInside(tt, tile.TreeRainforest, tile.TreeCactus):
		return zone != tile.TropicRainforest
	case isTreeInside(tt, tile.TreeSubTropical, tile.TreeToyland):
		return zone != tile.TropicNormal
	}
	return false
}

// cmdPlantTree plants trees of type p2 (InvalidTreeType for a random one) on
// the rectangle between t and the tile p1.
func cmdPlantTree(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	start, ok := tileIndexParam(w, p1)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	tt := tile.TreeType(p2 & 0xFF)
	climate := treeBase[w.Landscape()]
	if tt != tile.InvalidTreeType && !isTreeInside(tt, climate.base, climate.base+tile.TreeType(climate.count)) {
		return Fail(ErrCommandFailed)
	}
	co := w.Company(w.CurrentCompany)
	limited := co != nil && w.Settings.Construction.TreePlaceLimit != 0
	limit := math.MaxInt32
	if limited {
		limit = int(co.TreeLimit)
	}

	cost := NewCost(ExpenseOther, 0)
	msg := ErrSiteUnsuitable
	area := game.NewTileArea(m, start, t)
	for cur := range m.Area(area.Tile, area.W, area.H) {
		switch tc := m.At(cur).Content.(type) {
		case *tile.Trees:
			if tc.Count == 4 {
				msg = ErrTreeAlreadyHere
				continue
			}
			limit--
			if limit < 1 {
				msg = ErrTreeLimitReached
				break
			}
			if exec(flags) {
				tc.Count++
				w.MarkTileDirty(cur)
				if limited {
					co.TreeLimit--
				}
			}
			// Adding to an existing tile costs double.
			cost.AddCost(w.Prices[game.PriceBuildTrees] * 2)

		case *tile.Water, *tile.Clear:
			tileh, _ := m.Slope(cur)
			if wt, ok := tc.(*tile.Water); ok && (wt.Kind != tile.WaterTileCoast || tileh.IsOneCornerRaised()) {
				msg = ErrCantBuildOnWater
				break
			}
			if wrongTerrain(w, cur, tt) {
				msg = ErrTreeWrongTerrain
				continue
			}
			limit--
			if limit < 1 {
				msg = ErrTreeLimitReached
				break
			}
			ground, density := tile.TreeGroundGrass, uint8(3)
			if cl, ok := tc.(*tile.Clear); ok {
				switch cl.Ground {
				case tile.ClearFields, tile.ClearRocks:
					res := landscapeClear(c, cur, flags)
					if res.Failed() {
						return res
					}
					cost.Add(res)
					density = 0
				case tile.ClearRough:
					ground = tile.TreeGroundRough
				case tile.ClearSnow, tile.ClearDesert:
					ground, density = tile.TreeGroundSnowDesert, cl.Density
				default:
					density = cl.Density
				}
			} else {
				ground = tile.TreeGroundShore
			}
			if co != nil {
				id, _ := w.ClosestTownFromTile(cur, game.DistLocalAuthority)
				changeTownRating(c, id, game.RatingTreeUpStep, game.RatingTreeMaximum, flags)
			}
			if exec(flags) {
				plant := tt
				if plant == tile.InvalidTreeType {
					plant = randomTreeType(w, cur, w.Random.Next()>>24)
				}
				m.MakeTree(cur, plant, 1, 0, ground, density)
				w.MarkTileDirty(cur)
				if limited {
					co.TreeLimit--
				}
			}
			cost.AddCost(w.Prices[game.PriceBuildTrees])

		default:
			msg = ErrSiteUnsuitable
		}
		if limit < 0 {
			break
		}
	}
	if cost.Cost == 0 {
		return Fail(msg)
	}
	return cost
}

type treesTile struct{}

func (treesTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	tr, _ := w.Map.Trees(t)
	if w.CurrentCompany.IsCompany() {
		id, _ := w.ClosestTownFromTile(t, game.DistLocalAuthority)
		changeTownRating(c, id, game.RatingTreeDownStep, game.RatingTreeMinimum, flags)
	}
	n := game.Money(tr.Count)
	// Rainforest is dense: each tree counts four times.
	if isTreeInside(tr.TreeType, tile.TreeRainforest, tile.TreeCactus) {
		n *= 4
	}
	if exec(flags) {
		doClearSquare(c, t)
	}
	return NewCost(ExpenseConstruction, n*w.Prices[game.PriceClearTrees])
}

func (treesTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	return landscapeClear(c, t, flags)
}
