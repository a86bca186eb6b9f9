package command

import (
	"ttdmap/game"
	"ttdmap/tile"
)

// cmdBuildCanal fills the rectangle between t and the tile p1 with water of
// class p2 (bits 0-1). Companies may only drag lines of canal; sea and river
// belong to the scenario editor.
func cmdBuildCanal(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	w := c.W
	m := w.Map
	wc := tile.WaterClass(p2 & 0x3)
	start, ok := tileIndexParam(w, p1)
	if !ok || wc == tile.WaterClassInvalid {
		return Fail(ErrCommandFailed)
	}
	editor := scenarioEditor(w)
	if wc != tile.WaterClassCanal && !editor {
		return Fail(ErrCommandFailed)
	}
	area := game.NewTileArea(m, t, start)
	if !editor && area.W != 1 && area.H != 1 {
		return Fail(ErrCommandFailed)
	}

	cost := NewCost(ExpenseConstruction, 0)
	for cur := range m.Area(area.Tile, area.W, area.H) {
		tileh, _ := m.Slope(cur)
		if tileh != tile.SlopeFlat && (wc != tile.WaterClassRiver || !tileh.IsInclined()) {
			return Fail(ErrFlatLandRequired)
		}
		water := m.IsWaterTile(cur)
		if water && (m.Owner(cur) != tile.OwnerWater || wc == tile.WaterClassSea) {
			continue
		}
		cl := landscapeClear(c, cur, flags)
		if cl.Failed() {
			return cl
		}
		if !water {
			cost.Add(cl)
		}
		if exec(flags) {
			random := uint8(w.Random.Next())
			switch {
			case wc == tile.WaterClassRiver:
				m.MakeRiver(cur, random)
				if editor {
					clearDesertAround(m, cur)
				}
			case wc == tile.WaterClassSea && m.Height(cur) == 0:
				m.MakeSea(cur)
			default:
				m.MakeCanal(cur, w.CurrentCompany, random)
				if co := w.Company(w.CurrentCompany); co != nil {
					co.Infra.Water++
				}
			}
			w.MarkTileDirty(cur)
		}
		cost.AddCost(w.Prices[game.PriceBuildCanal])
	}
	if cost.Cost == 0 {
		return Fail(ErrAlreadyBuilt)
	}
	return cost
}

// riverDesertDistance is how far from a new river the desert recedes.
const riverDesertDistance = 5

func clearDesertAround(m *tile.Map, t tile.Index) {
	for dy := -riverDesertDistance; dy <= riverDesertDistance; dy++ {
		for dx := -riverDesertDistance; dx <= riverDesertDistance; dx++ {
			at, ok := m.AddXY(t, dx, dy)
			if ok && m.At(at).Zone == tile.TropicDesert {
				m.At(at).Zone = tile.TropicNormal
			}
		}
	}
}

// rewater runs change on t and moves the owner's water infrastructure count
// along with it.
func rewater(w *game.World, t tile.Index, change func()) {
	if wt, ok := w.Map.Water(t); ok {
		if co := w.Company(wt.Owner); co != nil {
			co.Infra.Water -= game.WaterPieces(wt)
		}
	}
	change()
	if wt, ok := w.Map.Water(t); ok {
		if co := w.Company(wt.Owner); co != nil {
			co.Infra.Water += game.WaterPieces(wt)
		}
	}
}

// makeWaterKeepingClass puts back the water a structure of class wc stood in.
func makeWaterKeepingClass(w *game.World, t tile.Index, wc tile.WaterClass, o tile.Owner) {
	m := w.Map
	switch wc {
	case tile.WaterClassSea:
		m.MakeSea(t)
	case tile.WaterClassCanal:
		m.MakeCanal(t, o, uint8(w.Random.Next()))
	case tile.WaterClassRiver:
		m.MakeRiver(t, uint8(w.Random.Next()))
	default:
		m.MakeClear(t, tile.ClearGrass, 0)
	}
	w.MarkTileDirty(t)
}

func shipDepotOtherTile(m *tile.Map, t tile.Index, wt *tile.Water) (tile.Index, bool) {
	dx, dy := tile.DiagDirOffset(tile.AxisToDiagDir(wt.DepotAxis))
	if wt.DepotPart != 0 {
		dx, dy = -dx, -dy
	}
	return m.AddXY(t, dx, dy)
}

func removeShipDepot(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	wt, _ := w.Map.Water(t)
	if err := checkTileOwnership(w, t); err != nil {
		return Fail(err)
	}
	other, ok := shipDepotOtherTile(w.Map, t, wt)
	if !ok {
		return Fail(ErrCommandFailed)
	}
	if flags&Bankrupt == 0 {
		for _, at := range []tile.Index{t, other} {
			if err := ensureNoVehicleOnGround(w, at); err != nil {
				return Fail(err)
			}
		}
	}
	if exec(flags) {
		for _, at := range []tile.Index{t, other} {
			ot, ok := w.Map.Water(at)
			if !ok {
				continue
			}
			wc, o := ot.Class, ot.Owner
			rewater(w, at, func() { makeWaterKeepingClass(w, at, wc, o) })
		}
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearDepotShip])
}

// lockMiddle finds the middle tile of the lock t belongs to.
func lockMiddle(m *tile.Map, t tile.Index, wt *tile.Water) (tile.Index, bool) {
	dx, dy := tile.DiagDirOffset(wt.Dir)
	switch wt.Part {
	case tile.LockLower:
		return m.AddXY(t, dx, dy)
	case tile.LockUpper:
		return m.AddXY(t, -dx, -dy)
	}
	return t, true
}

func removeLock(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	m := w.Map
	wt, _ := m.Water(t)
	if wt.Owner != tile.OwnerNone {
		if err := checkTileOwnership(w, t); err != nil {
			return Fail(err)
		}
	}
	dx, dy := tile.DiagDirOffset(wt.Dir)
	ahead, ok1 := m.AddXY(t, dx, dy)
	behind, ok2 := m.AddXY(t, -dx, -dy)
	if !ok1 || !ok2 {
		return Fail(ErrCommandFailed)
	}
	for _, at := range []tile.Index{t, ahead, behind} {
		if err := ensureNoVehicleOnGround(w, at); err != nil {
			return Fail(err)
		}
	}
	if exec(flags) {
		middle := wt.Class
		rewater(w, t, func() {
			if middle == tile.WaterClassRiver {
				m.MakeRiver(t, uint8(w.Random.Next()))
			} else {
				doClearSquare(c, t)
			}
		})
		for _, at := range []tile.Index{ahead, behind} {
			ot, _ := m.Water(at)
			wc, o := ot.Class, ot.Owner
			rewater(w, at, func() { makeWaterKeepingClass(w, at, wc, o) })
		}
	}
	return NewCost(ExpenseConstruction, w.Prices[game.PriceClearLock])
}

type waterTile struct{}

func (waterTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	w := c.W
	m := w.Map
	wt, _ := m.Water(t)
	switch wt.Kind {
	case tile.WaterTileClear:
		if flags&NoWater != 0 {
			return Fail(ErrCantBuildOnWater)
		}
		price := w.Prices[game.PriceClearWater]
		if wt.Class == tile.WaterClassCanal {
			price = w.Prices[game.PriceClearCanal]
		}
		if !w.Settings.Construction.FreeformEdges {
			x, y := m.X(t), m.Y(t)
			if x < 1 || x >= m.MaxX()-1 || y < 1 || y >= m.MaxY()-1 {
				return Fail(ErrTooCloseToEdge)
			}
		}
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		if wt.Owner != tile.OwnerWater && wt.Owner != tile.OwnerNone {
			if err := checkTileOwnership(w, t); err != nil {
				return Fail(err)
			}
		}
		if exec(flags) {
			rewater(w, t, func() { doClearSquare(c, t) })
		}
		return NewCost(ExpenseConstruction, price)

	case tile.WaterTileCoast:
		if err := ensureNoVehicleOnGround(w, t); err != nil {
			return Fail(err)
		}
		tileh, _ := m.Slope(t)
		if exec(flags) {
			doClearSquare(c, t)
		}
		if tileh.IsOneCornerRaised() {
			return NewCost(ExpenseConstruction, w.Prices[game.PriceClearWater])
		}
		return NewCost(ExpenseConstruction, w.Prices[game.PriceClearRough])

	case tile.WaterTileLock:
		if flags&Auto != 0 {
			return Fail(ErrBuildingMustBeDemolished)
		}
		if w.CurrentCompany == tile.OwnerWater {
			return Fail(ErrCommandFailed)
		}
		middle, ok := lockMiddle(m, t, wt)
		if !ok {
			return Fail(ErrCommandFailed)
		}
		return removeLock(c, middle, flags)

	case tile.WaterTileDepot:
		if flags&Auto != 0 {
			return Fail(ErrBuildingMustBeDemolished)
		}
		return removeShipDepot(c, t, flags)
	}
	return Fail(ErrCommandFailed)
}

func (waterTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	if wt, _ := c.W.Map.Water(t); wt.Kind == tile.WaterTileClear && wt.Class == tile.WaterClassCanal {
		return Fail(ErrMustRemoveCanalFirst)
	}
	return landscapeClear(c, t, flags)
}
