package command

import (
	"fmt"

	"ttdmap/tile"
)

// tileBehaviour is what every tile type must answer for the landscape commands.
type tileBehaviour interface {
	// clear demolishes the tile, leaving it bare or water.
	clear(c *Context, t tile.Index, flags Flags) CommandCost
	// terraform prices a change of the tile's slope to tilehNew at height
	// zNew, clearing the tile if it cannot survive the change.
	terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost
}

func behaviourOf(tt tile.Type) tileBehaviour {
	switch tt {
	case tile.TypeClear:
		return clearTile{}
	case tile.TypeRailway:
		return railTile{}
	case tile.TypeRoad:
		return roadTile{}
	case tile.TypeHouse:
		return houseTile{}
	case tile.TypeTrees:
		return treesTile{}
	case tile.TypeStation:
		return stationTile{}
	case tile.TypeWater:
		return waterTile{}
	case tile.TypeVoid:
		return voidTile{}
	case tile.TypeIndustry:
		return industryTile{}
	case tile.TypeTunnelBridge:
		return tunnelBridgeTile{}
	case tile.TypeObject:
		return objectTile{}
	}
	panic(fmt.Sprintf("no behaviour for tile type %v", tt))
}

func behaviourAt(c *Context, t tile.Index) tileBehaviour {
	return behaviourOf(c.W.Map.Type(t))
}

// landscapeClear is the terraform behaviour of tiles that never survive a
// change of slope.
func landscapeClear(c *Context, t tile.Index, flags Flags) CommandCost {
	return c.do(t, 0, 0, flags, CmdLandscapeClear, "")
}

// autoslopeFoundation checks whether a structure standing on a leveled
// foundation keeps its height when the ground below becomes tilehNew.
func autoslopeFoundation(c *Context, t tile.Index, zNew int, tilehNew tile.Slope) bool {
	s := c.W.Settings.Construction
	if !s.BuildOnSlopes || !s.Autoslope || tilehNew.IsSteep() {
		return false
	}
	return c.W.Map.MaxZ(t) == zNew+tilehNew.MaxZ()
}

// doClearSquare turns t into bare land, keeping its height.
func doClearSquare(c *Context, t tile.Index) {
	c.W.Map.MakeClear(t, tile.ClearGrass, 0)
	c.W.MarkTileDirty(t)
}

type voidTile struct{}

func (voidTile) clear(c *Context, t tile.Index, flags Flags) CommandCost {
	return Fail(ErrOffEdgeOfMap)
}

func (voidTile) terraform(c *Context, t tile.Index, flags Flags, zNew int, tilehNew tile.Slope) CommandCost {
	return Fail(ErrOffEdgeOfMap)
}

// autoslopeEntranceEdge checks whether a depot facing dir can stay when its
// tile becomes tilehNew at height zNew: the entrance edge must not move.
func autoslopeEntranceEdge(c *Context, t tile.Index, zNew int, tilehNew tile.Slope, dir tile.DiagDirection) bool {
	s := c.W.Settings.Construction
	if !s.BuildOnSlopes || !s.Autoslope {
		return false
	}
	tilehOld, zOld := c.W.Map.Slope(t)
	for _, corner := range entranceCorners(dir) {
		if zOld+tilehOld.ZInCorner(corner) != zNew+tilehNew.ZInCorner(corner) {
			return false
		}
	}
	return tilehNew == tile.SlopeFlat || canBuildDepotByTileh(dir, tilehNew)
}

func entranceCorners(dir tile.DiagDirection) [2]tile.Corner {
	switch dir {
	case tile.DiagDirNE:
		return [2]tile.Corner{tile.CornerN, tile.CornerE}
	case tile.DiagDirSE:
		return [2]tile.Corner{tile.CornerS, tile.CornerE}
	case tile.DiagDirSW:
		return [2]tile.Corner{tile.CornerS, tile.CornerW}
	}
	return [2]tile.Corner{tile.CornerN, tile.CornerW}
}

// canBuildDepotByTileh reports whether a depot facing dir fits on the sloped
// tile tileh: its entrance edge must be raised.
func canBuildDepotByTileh(dir tile.DiagDirection, tileh tile.Slope) bool {
	entrance := tile.InclinedSlope(dir)
	if tileh.IsSteep() {
		return tileh&entrance == entrance
	}
	return tileh&entrance != 0
}
