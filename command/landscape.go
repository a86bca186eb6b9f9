package command

import (
	"maps"
	"slices"

	"ttdmap/game"
	"ttdmap/tile"
)

func cmdLandscapeClear(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	m := c.W.Map
	cost := NewCost(ExpenseConstruction, 0)
	doClear := false
	// Structures standing in water leave water behind; forcing a clear
	// removes that as well.
	if flags&ForceClearTile != 0 && !m.IsType(t, tile.TypeWater) {
		if wc := m.WaterClassOf(t); wc != tile.WaterClassInvalid {
			if flags&Auto != 0 && wc == tile.WaterClassCanal {
				return Fail(ErrMustRemoveCanalFirst)
			}
			doClear = true
			cost.AddCost(c.W.Prices[game.PriceClearWater])
		}
	}

	if coa := c.findClearedObject(t); coa != nil && coa.first != t {
		if flags&NoWater != 0 && m.WaterClassOf(t) != tile.WaterClassInvalid {
			return Fail(ErrCantBuildOnWater)
		}
	} else {
		cost.Add(behaviourAt(c, t).clear(c, t, flags))
	}
	if cost.Failed() {
		return cost
	}
	if exec(flags) && doClear {
		doClearSquare(c, t)
	}
	return cost
}

type clearTile struct{}

var clearPrice = [...]game.Price{
	tile.ClearGrass:  game.PriceClearGrass,
	tile.ClearRough:  game.PriceClearRough,
	tile.ClearRocks:  game.PriceClearRocks,
	tile.ClearFields: game.PriceClearFields,
	tile.ClearSnow:   game.PriceClearRough,
	tile.ClearDesert: game.PriceClearRough,
}

func (clearTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	cl, _ := c.W.Map.Clear(t)
	cost := NewCost(ExpenseConstruction, 0)
	if cl.Ground != tile.ClearGrass || cl.Density != 0 {
		cost.AddCost(c.W.Prices[clearPrice[cl.Ground]])
	}
	if exec(flags) {
		doClearSquare(c, t)
	}
	return cost
}

func (clearTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	return landscapeClear(c, t, flags)
}

// terraformer models the vertex heights while a terraform is planned.
type terraformer struct {
	w      *game.World
	height map[tile.Index]int
	dirty  map[tile.Index]struct{}
}

func (tf *terraformer) heightOf(t tile.Index) int {
	if h, ok := tf.height[t]; ok {
		return h
	}
	return tf.w.Map.Height(t)
}

// addDirtyAround marks the four tiles sharing the vertex t.
func (tf *terraformer) addDirtyAround(t tile.Index) {
	for _, d := range [][2]int{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}} {
		if n, ok := tf.w.Map.AddXY(t, d[0], d[1]); ok {
			tf.dirty[n] = struct{}{}
		}
	}
}

var terraformNeighbours = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func (tf *terraformer) setHeight(t tile.Index, height int) CommandCost {
	m := tf.w.Map
	if height < 0 {
		return Fail(ErrAlreadyAtSeaLevel)
	}
	if height > int(tf.w.Settings.Construction.MaxHeightLevel) {
		return Fail(ErrTooHigh)
	}
	if height == tf.heightOf(t) {
		return Fail(ErrCommandFailed)
	}
	x, y := m.X(t), m.Y(t)
	if !tf.w.Settings.Construction.FreeformEdges && (x <= 1 || y <= 1) {
		return Fail(ErrTooCloseToEdge)
	}
	if x == 0 || y == 0 || x >= m.MaxX()-1 || y >= m.MaxY()-1 {
		return Fail(ErrTooCloseToEdge)
	}
	tf.addDirtyAround(t)
	tf.height[t] = height

	cost := NewCost(ExpenseConstruction, tf.w.Prices[game.PriceTerraform])
	for _, d := range terraformNeighbours {
		n, ok := m.AddXY(t, d[0], d[1])
		if !ok {
			continue
		}
		r := tf.heightOf(n)
		diff := height - r
		if diff > 1 || diff < -1 {
			if diff < 0 {
				diff++
			} else {
				diff--
			}
			sub := tf.setHeight(n, r+diff)
			if sub.Failed() {
				return sub
			}
			cost.Add(sub)
		}
	}
	return cost
}

// cmdTerraformLand raises (p2 != 0) or lowers the corners p1 of tile t.
func cmdTerraformLand(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost {
	m := c.W.Map
	dir := -1
	if p2 != 0 {
		dir = 1
	}
	tf := &terraformer{w: c.W, height: map[tile.Index]int{}, dirty: map[tile.Index]struct{}{}}
	total := NewCost(ExpenseConstruction, 0)
	corners := tile.Slope(p1)
	for _, cv := range []struct {
		s      tile.Slope
		dx, dy int
	}{
		{tile.SlopeW, 1, 0},
		{tile.SlopeS, 1, 1},
		{tile.SlopeE, 0, 1},
		{tile.SlopeN, 0, 0},
	} {
		if corners&cv.s == 0 {
			continue
		}
		v, ok := m.AddXY(t, cv.dx, cv.dy)
		if !ok {
			continue
		}
		cost := tf.setHeight(v, m.Height(v)+dir)
		if cost.Failed() {
			return cost
		}
		total.Add(cost)
	}
	if len(tf.height) == 0 {
		return Fail(ErrCommandFailed)
	}

	dirty := slices.Sorted(maps.Keys(tf.dirty))
	for pass := range 2 {
		for _, dt := range dirty {
			if m.IsType(dt, tile.TypeVoid) {
				continue
			}
			zN := tf.heightOf(dt)
			zW := zN
			zS := zN
			zE := zN
			if v, ok := m.AddXY(dt, 1, 0); ok {
				zW = tf.heightOf(v)
			}
			if v, ok := m.AddXY(dt, 1, 1); ok {
				zS = tf.heightOf(v)
			}
			if v, ok := m.AddXY(dt, 0, 1); ok {
				zE = tf.heightOf(v)
			}
			tileh, zMin := tile.SlopeFromCorners(zN, zW, zS, zE)

			tileFlags := flags | Auto | ForceClearTile
			if pass == 0 {
				tileFlags &^= Exec
				tileFlags |= NoModifyTownRating
			}
			var cost CommandCost
			if coa := c.findClearedObject(dt); coa != nil && coa.first != dt {
				cost = landscapeClear(c, dt, tileFlags)
			} else {
				cost = behaviourAt(c, dt).terraform(c, dt, tileFlags, zMin, tileh)
			}
			if cost.Failed() {
				return cost
			}
			if pass == 1 {
				total.Add(cost)
			}
		}
	}

	if exec(flags) {
		for v, h := range tf.height {
			m.SetHeight(v, h)
		}
		for _, dt := range dirty {
			c.W.MarkTileDirty(dt)
		}
	}
	return total
}
