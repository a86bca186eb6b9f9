// Package tile holds the tile map: a flat array of tiles addressed by a linear
// index, where every tile carries exactly one typed content variant.
package tile

import (
	"fmt"
	"iter"
)

// Index is a linear tile index, y*SizeX + x.
type Index uint32

const InvalidIndex = ^Index(0)

const (
	MinMapSizeBits = 6
	MaxMapSizeBits = 12
	MaxHeight      = 15
)

type TropicZone uint8

const (
	TropicNormal TropicZone = iota
	TropicDesert
	TropicRainforest
)

// Tile is one cell of the map. Height is the height of the northern corner.
type Tile struct {
	Height  uint8
	Zone    TropicZone
	Content Content
}

type Map struct {
	logX, logY uint
	tiles      []Tile
}

// NewMap allocates a map of 2^logX by 2^logY tiles. Every inner tile is bare
// clear land at height 0, the southern and eastern border is void.
func NewMap(logX, logY uint) (*Map, error) {
	if logX < MinMapSizeBits || logX > MaxMapSizeBits || logY < MinMapSizeBits || logY > MaxMapSizeBits {
		return nil, fmt.Errorf("map size 2^%d x 2^%d out of range [%d, %d]", logX, logY, MinMapSizeBits, MaxMapSizeBits)
	}
	m := &Map{logX: logX, logY: logY, tiles: make([]Tile, 1<<(logX+logY))}
	for t := range m.All() {
		if m.IsInner(t) {
			m.MakeClear(t, ClearGrass, 0)
		} else {
			m.MakeVoid(t)
		}
	}
	return m, nil
}

func (m *Map) LogX() uint  { return m.logX }
func (m *Map) LogY() uint  { return m.logY }
func (m *Map) SizeX() uint { return 1 << m.logX }
func (m *Map) SizeY() uint { return 1 << m.logY }
func (m *Map) Size() uint  { return uint(len(m.tiles)) }
func (m *Map) MaxX() uint  { return m.SizeX() - 1 }
func (m *Map) MaxY() uint  { return m.SizeY() - 1 }

func (m *Map) XY(x, y uint) Index {
	return Index(y<<m.logX | x)
}

func (m *Map) X(t Index) uint {
	return uint(t) & m.MaxX()
}

func (m *Map) Y(t Index) uint {
	return uint(t) >> m.logX
}

func (m *Map) IsValid(t Index) bool {
	return uint(t) < m.Size()
}

// IsInner reports whether t is off the void border.
func (m *Map) IsInner(t Index) bool {
	return m.X(t) < m.MaxX() && m.Y(t) < m.MaxY()
}

// At returns the tile record. It panics on an index outside the map.
func (m *Map) At(t Index) *Tile {
	if !m.IsValid(t) {
		panic(fmt.Sprintf("tile %d outside %dx%d map", t, m.SizeX(), m.SizeY()))
	}
	return &m.tiles[t]
}

// Type returns the tag of the tile content.
func (m *Map) Type(t Index) Type {
	return m.At(t).Content.Type()
}

func (m *Map) IsType(t Index, tt Type) bool {
	return m.Type(t) == tt
}

// AddXY offsets t by (dx, dy) and reports whether the result is on the map.
func (m *Map) AddXY(t Index, dx, dy int) (Index, bool) {
	x := int(m.X(t)) + dx
	y := int(m.Y(t)) + dy
	if x < 0 || y < 0 || x > int(m.MaxX()) || y > int(m.MaxY()) {
		return InvalidIndex, false
	}
	return m.XY(uint(x), uint(y)), true
}

func (m *Map) AddDiagDir(t Index, d DiagDirection) (Index, bool) {
	off := diagDirOffsets[d]
	return m.AddXY(t, off.dx, off.dy)
}

func (m *Map) DistanceManhattan(a, b Index) uint {
	return Delta(m.X(a), m.X(b)) + Delta(m.Y(a), m.Y(b))
}

func (m *Map) DistanceMax(a, b Index) uint {
	return max(Delta(m.X(a), m.X(b)), Delta(m.Y(a), m.Y(b)))
}

// All iterates over every tile index in storage order.
func (m *Map) All() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		for i := range m.tiles {
			if !yield(Index(i)) {
				return
			}
		}
	}
}

// Area iterates the w x h rectangle whose northern corner is t, clipped to the map.
func (m *Map) Area(t Index, w, h uint) iter.Seq[Index] {
	return func(yield func(Index) bool) {
		x0, y0 := m.X(t), m.Y(t)
		for y := y0; y < y0+h && y <= m.MaxY(); y++ {
			for x := x0; x < x0+w && x <= m.MaxX(); x++ {
				if !yield(m.XY(x, y)) {
					return
				}
			}
		}
	}
}

func (m *Map) Height(t Index) int {
	return int(m.At(t).Height)
}

func (m *Map) SetHeight(t Index, h int) {
	m.At(t).Height = uint8(Clamp(h, 0, MaxHeight))
}

// Slope returns the slope of t and the height of its lowest corner.
func (m *Map) Slope(t Index) (Slope, int) {
	if !m.IsInner(t) {
		return SlopeFlat, m.Height(t)
	}
	n := m.Height(t)
	w := m.Height(t + 1)
	e := m.Height(t + Index(m.SizeX()))
	s := m.Height(t + Index(m.SizeX()) + 1)
	return SlopeFromCorners(n, w, s, e)
}

// SlopeFromCorners builds a slope from the four corner heights.
func SlopeFromCorners(n, w, s, e int) (Slope, int) {
	lo := min(n, w, s, e)
	hi := max(n, w, s, e)
	r := SlopeFlat
	if hi > lo+1 {
		r = SlopeSteep
	}
	if w > lo {
		r |= SlopeW
	}
	if s > lo {
		r |= SlopeS
	}
	if e > lo {
		r |= SlopeE
	}
	if n > lo {
		r |= SlopeN
	}
	return r, lo
}

func (m *Map) IsFlat(t Index) bool {
	s, _ := m.Slope(t)
	return s == SlopeFlat
}

// MaxZ is the height of the highest corner of t.
func (m *Map) MaxZ(t Index) int {
	s, z := m.Slope(t)
	return z + s.MaxZ()
}

// Owner returns the owner of tiles that have one and OwnerNone otherwise.
func (m *Map) Owner(t Index) Owner {
	if o, ok := m.At(t).Content.(owned); ok {
		return o.owner()
	}
	return OwnerNone
}

func (m *Map) IsOwner(t Index, o Owner) bool {
	return m.Owner(t) == o
}

// Clone returns a deep copy, used to hand read-only snapshots to other goroutines.
func (m *Map) Clone() *Map {
	c := &Map{logX: m.logX, logY: m.logY, tiles: make([]Tile, len(m.tiles))}
	for i, t := range m.tiles {
		c.tiles[i] = Tile{Height: t.Height, Zone: t.Zone, Content: t.Content.clone()}
	}
	return c
}
