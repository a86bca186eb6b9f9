package afterload

import (
	"fmt"
	"iter"

	"ttdmap/savegame"
	"ttdmap/tile"
)

// Kinds packed in the top bits of m5, as laid out on disk.
const (
	railKindPlain   = 0
	railKindSignals = 1
	railKindDepot   = 3

	roadKindNormal   = 0
	roadKindCrossing = 1
	roadKindDepot    = 2

	waterKindClear = 0
	waterKindCoast = 1
	waterKindLock  = 2
	waterKindDepot = 8
)

func allTiles(s *savegame.Snapshot) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for t := range uint32(s.Planes.Len()) {
			if !yield(t) {
				return
			}
		}
	}
}

func isType(s *savegame.Snapshot, t uint32, tt tile.Type) bool {
	return s.TileType(t) == uint8(tt)
}

func railKind(s *savegame.Snapshot, t uint32) uint8  { return s.Planes.M5[t] >> 6 }
func roadKind(s *savegame.Snapshot, t uint32) uint8  { return s.Planes.M5[t] >> 6 }
func waterKind(s *savegame.Snapshot, t uint32) uint8 { return s.Planes.M5[t] >> 4 }

// oldRoadKind is the road tile kind of games before 61.
func oldRoadKind(s *savegame.Snapshot, t uint32) uint8 { return s.Planes.M5[t] >> 4 & 3 }

func isCrossing(s *savegame.Snapshot, t uint32) bool {
	return isType(s, t, tile.TypeRoad) && roadKind(s, t) == roadKindCrossing
}

func stationKind(s *savegame.Snapshot, t uint32) tile.StationType {
	return tile.StationType(s.Planes.M6[t] >> 3 & 7)
}

func isRailStation(s *savegame.Snapshot, t uint32) bool {
	if !isType(s, t, tile.TypeStation) {
		return false
	}
	k := stationKind(s, t)
	return k == tile.StationRail || k == tile.StationWaypoint
}

func isStationKind(s *savegame.Snapshot, t uint32, k tile.StationType) bool {
	return isType(s, t, tile.TypeStation) && stationKind(s, t) == k
}

func transport(s *savegame.Snapshot, t uint32) tile.TransportType {
	return tile.TransportType(s.Planes.M5[t] >> 2 & 3)
}

func isTunnelBridge(s *savegame.Snapshot, t uint32, tt tile.TransportType) bool {
	return isType(s, t, tile.TypeTunnelBridge) && transport(s, t) == tt
}

// carriesRail reports tiles whose rail type sits in the low nibble of m3
// before version 200.
func carriesRail(s *savegame.Snapshot, t uint32) bool {
	return isType(s, t, tile.TypeRailway) || isCrossing(s, t) ||
		isRailStation(s, t) || isTunnelBridge(s, t, tile.TransportRail)
}

func makeVoid(s *savegame.Snapshot, t uint32) {
	p := &s.Planes
	p.Type[t] = uint8(tile.TypeVoid) << 4
	p.Height[t] = 0
	p.M1[t], p.M2[t], p.M3[t], p.M4[t] = 0, 0, 0, 0
	p.M5[t], p.M6[t], p.M7[t], p.M8[t] = 0, 0, 0, 0
}

func manhattan(s *savegame.Snapshot, a, b uint32) uint {
	dx := int(s.X(a)) - int(s.X(b))
	dy := int(s.Y(a)) - int(s.Y(b))
	return uint(abs(dx) + abs(dy))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// neighbours yields the tiles next to t in the four diagonal directions.
func neighbours(s *savegame.Snapshot, t uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		x, y := int(s.X(t)), int(s.Y(t))
		for _, d := range [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= int(s.SizeX()) || ny >= int(s.SizeY()) {
				continue
			}
			if !yield(s.XY(uint(nx), uint(ny))) {
				return
			}
		}
	}
}

func tileErr(t uint32, format string, args ...any) error {
	return fmt.Errorf("%w: tile %d: %s", savegame.ErrCorrupt, t, fmt.Sprintf(format, args...))
}
