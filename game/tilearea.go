package game

import "ttdmap/tile"

// TileArea is a rectangle of tiles given by its northern corner and extent.
type TileArea struct {
	Tile tile.Index
	W, H uint
}

func (a TileArea) Empty() bool {
	return a.W == 0 || a.H == 0
}

func (a TileArea) Contains(m *tile.Map, t tile.Index) bool {
	if a.Empty() {
		return false
	}
	x, y := m.X(t), m.Y(t)
	ax, ay := m.X(a.Tile), m.Y(a.Tile)
	return x >= ax && x < ax+a.W && y >= ay && y < ay+a.H
}

// Add grows the area to cover t.
func (a *TileArea) Add(m *tile.Map, t tile.Index) {
	if a.Empty() {
		a.Tile, a.W, a.H = t, 1, 1
		return
	}
	x, y := m.X(t), m.Y(t)
	sx, sy := m.X(a.Tile), m.Y(a.Tile)
	ex, ey := sx+a.W-1, sy+a.H-1
	sx, sy = min(sx, x), min(sy, y)
	ex, ey = max(ex, x), max(ey, y)
	a.Tile = m.XY(sx, sy)
	a.W, a.H = ex-sx+1, ey-sy+1
}

// Expand grows the area by radius tiles on every side, clipped to the map.
func (a TileArea) Expand(m *tile.Map, radius uint) TileArea {
	x, y := m.X(a.Tile), m.Y(a.Tile)
	sx := x - min(x, radius)
	sy := y - min(y, radius)
	ex := min(x+a.W-1+radius, m.MaxX())
	ey := min(y+a.H-1+radius, m.MaxY())
	return TileArea{Tile: m.XY(sx, sy), W: ex - sx + 1, H: ey - sy + 1}
}

// NewTileArea spans the rectangle with corners a and b.
func NewTileArea(m *tile.Map, a, b tile.Index) TileArea {
	var ar TileArea
	ar.Add(m, a)
	ar.Add(m, b)
	return ar
}
