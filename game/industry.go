package game

import (
	"fmt"

	"ttdmap/pool"
	"ttdmap/tile"
)

type Industry struct {
	Type     uint8
	Location TileArea
	Town     pool.ID
	Owner    tile.Owner
}

func (w *World) IndustryByTile(t tile.Index) (pool.ID, *Industry, error) {
	c, ok := w.Map.Industry(t)
	if !ok {
		return pool.None, nil, fmt.Errorf("tile %d: %w", t, ErrNotOnTile)
	}
	ind, err := w.Industries.Get(c.Industry)
	if err != nil {
		return pool.None, nil, err
	}
	return c.Industry, ind, nil
}
