package command

import (
	"ttdmap/game"
	"ttdmap/tile"
)

// houseRemoveRating is what demolishing a house costs in town rating.
const houseRemoveRating = 140

type houseTile struct{}

func (houseTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	if flags&Auto != 0 {
		return Fail(ErrBuildingMustBeDemolished)
	}
	id, town, err := w.TownByTile(t)
	if err != nil {
		return Fail(ErrCommandFailed)
	}
	if co := w.CurrentCompany; co.IsCompany() && flags&NoTestTownRating == 0 && town.Rating(co) < houseRemoveRating {
		return Fail(ErrLocalAuthorityRefuses)
	}
	changeTownRating(c, id, -houseRemoveRating, game.RatingHouseMinimum, flags)
	if exec(flags) {
		if town.NumHouses > 0 {
			town.NumHouses--
		}
		doClearSquare(c, t)
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearHouse])
}

func (houseTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	if autoslopeFoundation(c, t, zNew, tilehNew) {
		return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
	}
	return landscapeClear(c, t, flags)
}

type industryTile struct{}

// clear removes the whole industry. Only floods and the scenario editor
// may do that, and floods leave industries built in water alone.
func (industryTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	id, ind, err := w.IndustryByTile(t)
	if err != nil {
		return Fail(ErrCommandFailed)
	}
	water := w.CurrentCompany == tile.OwnerWater
	if flags&Auto != 0 {
		return Fail(ErrIndustryInTheWay)
	}
	if !water && !scenarioEditor(w) {
		return Fail(ErrCommandFailed)
	}
	if it, _ := w.Map.Industry(t); water && it.WaterClass != tile.WaterClassInvalid {
		return Fail(ErrCommandFailed)
	}
	if exec(flags) {
		area := ind.Location
		for at := range w.Map.Area(area.Tile, area.W, area.H) {
			it, ok := w.Map.Industry(at)
			if !ok || it.Industry != id {
				continue
			}
			if it.WaterClass != tile.WaterClassInvalid {
				makeWaterKeepingClass(w, at, it.WaterClass, tile.OwnerWater)
			} else {
				doClearSquare(c, at)
			}
		}
		w.Industries.Free(id)
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceBuildIndustry]>>4)
}

func (industryTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	tilehOld, _ := c.W.Map.Slope(t)
	if !tilehOld.IsSteep() && autoslopeFoundation(c, t, zNew, tilehNew) {
		return NewCost(ExpenseConstruction, c.W.Prices[game.PriceBuildFoundation])
	}
	return landscapeClear(c, t, flags)
}
