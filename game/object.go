package game

import (
	"fmt"

	"ttdmap/pool"
	"ttdmap/tile"
)

type Object struct {
	Type      ObjectType
	Location  TileArea
	Town      pool.ID
	BuildDate Date
	Colour    uint8
	View      uint8
}

// ObjectByTile resolves the object an object tile points at.
func (w *World) ObjectByTile(t tile.Index) (pool.ID, *Object, error) {
	c, ok := w.Map.Object(t)
	if !ok {
		return pool.None, nil, fmt.Errorf("tile %d: %w", t, ErrNotOnTile)
	}
	o, err := w.Objects.Get(c.Object)
	if err != nil {
		return pool.None, nil, err
	}
	return c.Object, o, nil
}

// ObjectTypeAt returns the type of the object on t.
func (w *World) ObjectTypeAt(t tile.Index) ObjectType {
	_, o, err := w.ObjectByTile(t)
	if err != nil {
		return InvalidObjectType
	}
	return o.Type
}

// BuildObject allocates the object and stamps its tiles.
func (w *World) BuildObject(typ ObjectType, t tile.Index, owner tile.Owner, townID pool.ID, view uint8) (pool.ID, error) {
	spec := w.ObjectSpec(typ)
	if spec == nil {
		return pool.None, fmt.Errorf("unknown object type %d", typ)
	}
	sx, sy := spec.SizeForView(view)
	o := Object{
		Type:      typ,
		Location:  TileArea{Tile: t, W: sx, H: sy},
		Town:      townID,
		BuildDate: w.Date,
		View:      view,
	}
	if !townID.IsValid() {
		o.Town, _ = w.CalcClosestTownFromTile(t, ^uint(0))
	}
	if c := w.Company(owner); c != nil {
		o.Colour = c.Colour
	} else {
		o.Colour = uint8(w.Random.Next()) & 0xF
	}
	id, err := w.Objects.Alloc(o)
	if err != nil {
		return pool.None, err
	}
	for ot := range w.Map.Area(t, sx, sy) {
		wc := tile.WaterClassInvalid
		if spec.Flags&ObjectFlagBuiltOnWater != 0 {
			wc = w.Map.WaterClassOf(ot)
		}
		w.Map.MakeObject(ot, owner, id, wc, uint8(w.Random.Next()))
		w.MarkTileDirty(ot)
	}
	w.ObjectCounts[typ]++
	return id, nil
}

// RemoveObject clears the tiles of an object and frees it.
func (w *World) RemoveObject(id pool.ID) error {
	o, err := w.Objects.Get(id)
	if err != nil {
		return err
	}
	for t := range w.Map.Area(o.Location.Tile, o.Location.W, o.Location.H) {
		c, ok := w.Map.Object(t)
		if !ok || c.Object != id {
			continue
		}
		if c.WaterClass != tile.WaterClassInvalid {
			w.Map.MakeWater(t, tile.OwnerWater, c.WaterClass, 0)
		} else {
			w.Map.MakeClear(t, tile.ClearGrass, 0)
		}
		w.MarkTileDirty(t)
	}
	w.ObjectCounts[o.Type]--
	return w.Objects.Free(id)
}
