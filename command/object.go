package command

import (
	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/tile"
)

// cmdBuildObject builds an object of type p1 (bits 0-15) in view p2 (bits
// 0-7) with its northern tile at t.
func cmdBuildObject(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	typ := game.ObjectType(p1 & 0xFFFF)
	view := uint8(p2 & 0xFF)
	spec := w.ObjectSpec(typ)
	if spec == nil || !spec.Enabled || spec.Climates&(1<<w.Landscape()) == 0 {
		return Fail(ErrCommandFailed)
	}
	if spec.Flags&game.ObjectFlagOnlyInScenedit != 0 && !scenarioEditor(w) {
		return Fail(ErrCommandFailed)
	}
	if spec.Flags&game.ObjectFlagOnlyInGame != 0 && !w.CurrentCompany.IsCompany() {
		return Fail(ErrCommandFailed)
	}
	if typ == game.ObjectStatue || view >= spec.Views {
		return Fail(ErrCommandFailed)
	}
	if w.Objects.Len() >= w.Objects.Limit() {
		return Fail(ErrTooManyObjects)
	}
	if w.Towns.Len() == 0 {
		return Fail(ErrMustFoundTownFirst)
	}

	sx, sy := spec.SizeForView(view)
	if m.X(t)+sx > m.MaxX() || m.Y(t)+sy > m.MaxY() {
		return Fail(ErrTooCloseToEdge)
	}
	area := game.TileArea{Tile: t, W: sx, H: sy}
	cost := NewCost(ExpenseConstruction, 0)

	// Moving the headquarters may overlap the old site.
	ownHQ := func(at tile.Index) bool {
		o, ok := m.Object(at)
		return typ == game.ObjectHQ && ok && o.Owner == w.CurrentCompany && w.ObjectTypeAt(at) == game.ObjectHQ
	}
	// Nothing is cleared until every check has passed; the exec block below
	// repeats these clears for real.
	var clears []tile.Index
	onWater := spec.Flags&game.ObjectFlagBuiltOnWater != 0
	for at := range m.Area(area.Tile, area.W, area.H) {
		if onWater && m.IsWaterTile(at) {
			if err := ensureNoVehicleOnGround(w, at); err != nil {
				return Fail(err)
			}
			continue
		}
		if spec.Flags&game.ObjectFlagNotOnLand != 0 {
			return Fail(ErrMustBeBuiltOnWater)
		}
		if ownHQ(at) {
			continue
		}
		cl := landscapeClear(c, at, flags&^Exec)
		if cl.Failed() {
			return cl
		}
		cost.Add(cl)
		clears = append(clears, at)
	}

	// Owned land goes on any slope.
	if typ != game.ObjectOwnedLand {
		tileh, allowedZ := m.Slope(t)
		if tileh != tile.SlopeFlat {
			allowedZ++
		}
		for at := range m.Area(area.Tile, area.W, area.H) {
			res := checkBuildableTile(c, at, allowedZ, spec.Flags&game.ObjectFlagHasNoFoundation == 0)
			if res.Failed() {
				return res
			}
			cost.Add(res)
		}
	}

	oldHQ := tile.InvalidIndex
	switch typ {
	case game.ObjectTransmitter, game.ObjectLighthouse:
		if !m.IsFlat(t) {
			return Fail(ErrFlatLandRequired)
		}
	case game.ObjectOwnedLand:
		if o, ok := m.Object(t); ok && o.Owner == w.CurrentCompany && w.ObjectTypeAt(t) == game.ObjectOwnedLand {
			return Fail(ErrYouAlreadyOwnIt)
		}
	case game.ObjectHQ:
		co := w.Company(w.CurrentCompany)
		if co.HQ != tile.InvalidIndex {
			if co.HQ == t {
				return Fail(ErrAlreadyBuilt)
			}
			oldHQ = co.HQ
			old := clearOldHQ(c, oldHQ, flags&^Exec)
			if old.Failed() {
				return old
			}
			cost.Add(old)
		}
	}

	if exec(flags) {
		for _, at := range clears {
			landscapeClear(c, at, flags|NoModifyTownRating)
		}
		if oldHQ != tile.InvalidIndex {
			clearOldHQ(c, oldHQ, flags)
		}
		if typ == game.ObjectHQ {
			w.Company(w.CurrentCompany).HQ = t
		}
		owner := w.CurrentCompany
		if owner == tile.OwnerDeity {
			owner = tile.OwnerNone
		}
		if _, err := w.BuildObject(typ, t, owner, pool.None, view); err != nil {
			return Fail(ErrTooManyObjects)
		}
	}
	cost.AddCost(spec.BuildCost(w.Prices) * game.Money(sx*sy))
	return cost
}

// clearOldHQ removes the company's previous headquarters, which its owner
// cannot normally demolish.
func clearOldHQ(c *Context, at tile.Index, flags Flags) CommandCost {
	w := c.W
	cur := w.CurrentCompany
	w.CurrentCompany = tile.OwnerWater
	defer func() { w.CurrentCompany = cur }()
	return objectTile{}.clear(c, at, flags)
}

// checkBuildableTile requires t to level out at height allowedZ, charging a
// foundation when it is sloped.
func checkBuildableTile(c *Context, t tile.Index, allowedZ int, foundation bool) CommandCost {
	tileh, z := c.W.Map.Slope(t)
	cost := NewCost(ExpenseConstruction, 0)
	if tileh != tile.SlopeFlat {
		if !c.W.Settings.Construction.BuildOnSlopes || tileh.IsSteep() {
			return Fail(ErrFlatLandRequired)
		}
		if foundation {
			cost.AddCost(c.W.Prices[game.PriceBuildFoundation])
		}
	}
	if z+tileh.MaxZ() != allowedZ {
		return Fail(ErrLandSlopedInWrongDirection)
	}
	return cost
}

func cmdBuildCompanyHQ(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	if !c.W.CurrentCompany.IsCompany() {
		return Fail(ErrCommandFailed)
	}
	return c.do(t, uint32(game.ObjectHQ), 0, flags, CmdBuildObject, "")
}

// cmdPurchaseLandArea buys every tile of the rectangle between t and the
// tile p1 that can be bought.
func cmdPurchaseLandArea(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	start, ok := tileIndexParam(c.W, p1)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	return objectArea(c, start, t, func(at tile.Index) CommandCost {
		return c.do(at, uint32(game.ObjectOwnedLand), 0, flags, CmdBuildObject, "")
	})
}

// cmdSellLandArea sells the current company's owned land in the rectangle
// between t and the tile p1.
func cmdSellLandArea(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	start, ok := tileIndexParam(w, p1)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	return objectArea(c, start, t, func(at tile.Index) CommandCost {
		if w.ObjectTypeAt(at) != game.ObjectOwnedLand {
			return Fail(ErrCommandFailed)
		}
		if w.CurrentCompany != tile.OwnerWater {
			if err := checkTileOwnership(w, at); err != nil {
				return Fail(err)
			}
		}
		if err := ensureNoVehicleOnGround(w, at); err != nil {
			return Fail(err)
		}
		return objectTile{}.clear(c, at, flags)
	})
}

func objectArea(c *Context, a, b tile.Index, each func(tile.Index) CommandCost) CommandCost {
	m := c.W.Map
	area := game.NewTileArea(m, a, b)
	cost := NewCost(ExpenseConstruction, 0)
	last := Fail(ErrCommandFailed)
	had := false
	for at := range m.Area(area.Tile, area.W, area.H) {
		res := each(at)
		if res.Failed() {
			last = res
			continue
		}
		cost.Add(res)
		had = true
	}
	if !had {
		return last
	}
	return cost
}

type objectTile struct{}

func (objectTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	id, o, err := w.ObjectByTile(t)
	if err != nil {
		return Fail(ErrCommandFailed)
	}
	ot, _ := w.Map.Object(t)
	spec := w.ObjectSpec(o.Type)
	area := o.Location
	cost := NewCost(ExpenseConstruction, spec.ClearCost(w.Prices)*game.Money(area.W*area.H)/5)
	if spec.Flags&game.ObjectFlagClearIncome != 0 {
		cost.MultiplyCost(-1)
	}

	switch {
	case w.CurrentCompany == tile.OwnerTown:
		return Fail(ErrCommandFailed)
	case w.CurrentCompany == tile.OwnerWater:
		if spec.Flags&(game.ObjectFlagBuiltOnWater|game.ObjectFlagNotOnLand) != 0 {
			return Fail(ErrCommandFailed)
		}
	case flags&NoWater != 0 && ot.WaterClass != tile.WaterClassInvalid:
		return Fail(ErrCantBuildOnWater)
	case spec.Flags&game.ObjectFlagAutoremove == 0 && flags&Auto != 0:
		if o.Type == game.ObjectHQ {
			return Fail(ErrCompanyHQInTheWay)
		}
		return Fail(ErrObjectInTheWay)
	case ot.Owner == tile.OwnerNone:
		if spec.Flags&game.ObjectFlagCannotRemove != 0 {
			return Fail(ErrCommandFailed)
		}
	case ot.Owner != w.CurrentCompany:
		return Fail(ErrOwnedBy)
	case spec.Flags&game.ObjectFlagCannotRemove != 0 && spec.Flags&game.ObjectFlagAutoremove == 0:
		if o.Type == game.ObjectHQ {
			return Fail(ErrCompanyHQInTheWay)
		}
		return Fail(ErrCommandFailed)
	}

	switch o.Type {
	case game.ObjectHQ:
		co := w.Company(ot.Owner)
		if co == nil {
			break
		}
		// Moving costs a hundredth of the company value.
		cost = NewCost(ExpenseConstruction, co.Value/100)
		if exec(flags) {
			co.HQ = tile.InvalidIndex
		}
	case game.ObjectStatue:
		if town, err := w.Towns.Get(o.Town); err == nil && exec(flags) {
			town.Statues &^= 1 << ot.Owner
		}
	}

	c.clearedObjects = append(c.clearedObjects, clearedObject{first: t, area: area})
	if exec(flags) {
		w.RemoveObject(id)
	}
	return cost
}

func (objectTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	w := c.W
	switch typ := w.ObjectTypeAt(t); {
	case typ == game.ObjectOwnedLand:
		// Owned land stays owned.
		if checkTileOwnership(w, t) == nil {
			return NewCost(ExpenseConstruction, 0)
		}
	case typ != game.ObjectTransmitter && typ != game.ObjectLighthouse:
		if autoslopeFoundation(c, t, zNew, tilehNew) {
			return NewCost(ExpenseConstruction, w.Prices[game.PriceBuildFoundation])
		}
	}
	return landscapeClear(c, t, flags)
}
