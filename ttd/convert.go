package ttd

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/settings"
	"ttdmap/tile"
)

// ErrUnsupported is returned by FromWorld for tiles TTD cannot hold.
var ErrUnsupported = errors.New("ttd: not representable")

// Snapshot returns the game as a savegame snapshot of version 0, the layout
// the migrations start from. Station and industry tiles become grass since
// their pools are not read; dropped counts them.
func (s *Savegame) Snapshot() (snap *savegame.Snapshot, dropped int) {
	snap = savegame.NewSnapshot(savegame.Version{}, MapLog, MapLog)
	snap.ID = uuid.New()
	snap.Date = savegame.DateRecord{
		Date:      int32(s.Days),
		DateFract: s.DayFract,
		Random:    [2]uint32{uint32(s.Seed), uint32(s.Seed >> 32)},
	}

	st := &snap.Settings
	st.GameCreation.Landscape = settings.Landscape(min(s.LandscapeType, uint8(settings.Toyland)))
	st.GameCreation.SnowLine = s.SnowLine
	st.GameCreation.MapX, st.GameCreation.MapY = MapLog, MapLog
	st.GameCreation.Seed = uint32(s.Seed)
	st.Locale.Currency = s.Currency
	st.Locale.Units = s.MeasurementSystem
	st.Difficulty.Level = s.DifficultyLevel
	// TTD has no town council tolerance; it stays lenient.
	copy(snap.OldDifficulty[:], s.Difficulty[:])

	for i := range s.Towns {
		t := &s.Towns[i]
		if !t.Used() {
			continue
		}
		snap.Towns = append(snap.Towns, savegame.TownRecord{
			Index:      uint32(i),
			XY:         uint32(t.Y)<<MapLog | uint32(t.X),
			Name:       t.Name,
			Population: uint32(t.Population),
		})
	}
	for i := range s.Companies {
		c := &s.Companies[i]
		if !c.Used() {
			continue
		}
		snap.Companies[i] = &savegame.CompanyRecord{Name: c.Name, HQ: math.MaxUint32}
	}

	r := game.Random{State: snap.Date.Random}
	for t := range NumberOfTiles {
		if s.importTile(&snap.Planes, t, &r) {
			dropped++
		}
	}
	// TTD can keep a buoy without a station on the first tile.
	makeSea(&snap.Planes, 0)
	return snap, dropped
}

func (s *Savegame) importTile(p *savegame.Planes, t int, r *game.Random) (dropped bool) {
	m := s.Map
	typ := tile.Type(m.TypeHeight[t] >> 4)
	p.Type[t] = uint8(typ)<<4 | m.Zone(t)
	p.Height[t] = m.TypeHeight[t] & 0xF
	p.M1[t] = m.Owner[t]
	p.M2[t] = uint16(m.M2[t])
	p.M3[t], p.M4[t] = uint8(m.M3[t]), uint8(m.M3[t]>>8)
	p.M5[t] = m.M5[t]

	switch typ {
	case tile.TypeStation, tile.TypeIndustry:
		p.Type[t] = uint8(tile.TypeClear)<<4 | m.Zone(t)
		p.M1[t] = uint8(tile.OwnerNone)
		p.M2[t], p.M3[t], p.M4[t] = 0, 0, 0
		p.M5[t] = uint8(tile.ClearGrass)<<2 | 3
		return true
	case tile.TypeRailway:
		// Presignals.
		if p.M5[t]>>6 == 1 && p.M4[t] != 0 {
			p.M4[t] = p.M4[t] >> 1 & 7
		}
		// The high nibble holds path reservations, which are rebuilt.
		p.M4[t] &= 0xF
	case tile.TypeWater:
		if p.M3[t]&3 == 3 {
			p.M1[t] = uint8(tile.OwnerWater) | uint8(tile.WaterClassRiver)<<5
			p.M2[t], p.M3[t], p.M5[t] = 0, 0, 0
			p.M4[t] = uint8(r.Next())
		}
	}
	return false
}

func makeSea(p *savegame.Planes, t int) {
	p.Type[t] = uint8(tile.TypeWater)<<4 | p.Type[t]&0xF
	p.M1[t] = uint8(tile.OwnerWater)
	p.M2[t], p.M3[t], p.M4[t], p.M5[t] = 0, 0, 0, 0
}

// Old rail type numbers, from before electrified rail.
var oldRailTypes = map[tile.RailType]uint8{
	tile.RailTypeRail:     0,
	tile.RailTypeMonorail: 1,
	tile.RailTypeMaglev:   2,
}

// FromWorld exports a 256x256 world. Only land, trees, plain track, rail
// and road depots, roads, houses, sea, rivers and coast can be stored.
func FromWorld(w *game.World, title string) (*Savegame, error) {
	m := w.Map
	if m.LogX() != MapLog || m.LogY() != MapLog {
		return nil, fmt.Errorf("%w: map is %dx%d, TTD maps are 256x256", ErrUnsupported, m.SizeX(), m.SizeY())
	}
	s := New(title)

	y, month, _ := w.Date.YMD()
	days := int(w.Date) - game.DaysTillOriginalBaseYear
	if days < 0 || days > math.MaxUint16 {
		return nil, fmt.Errorf("%w: date %v outside %d-%d", ErrUnsupported, w.Date, game.OriginalBaseYear, game.OriginalBaseYear+179)
	}
	s.Days = uint16(days)
	// TTD counts the day in 65536ths, about 885 per tick.
	s.DayFract = w.DateFract * 885
	s.Year = uint8(y - game.OriginalBaseYear)
	s.Month = uint8(month - time.January)
	s.Seed = uint64(w.Random.State[1])<<32 | uint64(w.Random.State[0])

	st := w.Settings
	s.LandscapeType = uint8(st.GameCreation.Landscape)
	s.SnowLine = st.GameCreation.SnowLine
	cur, ok := st.Locale.OldCurrency()
	if !ok {
		return nil, fmt.Errorf("%w: currency %d", ErrUnsupported, st.Locale.Currency)
	}
	s.Currency = cur
	s.MeasurementSystem = st.Locale.Units
	s.DifficultyLevel = st.Difficulty.Level
	old := st.Difficulty.OldDifficulty()
	copy(s.Difficulty[:], old[:DifficultyCount])
	// Town and industry counts start one lower.
	s.Difficulty[2] = max(s.Difficulty[2], 1) - 1
	if s.Difficulty[3] > 1 {
		s.Difficulty[3]--
	}
	if s.Difficulty[4] == 0 {
		s.Difficulty[4] = 300
	}

	for id, t := range w.Towns.All() {
		if id.Index >= NumTowns {
			return nil, fmt.Errorf("%w: town %d, TTD has %d town slots", ErrUnsupported, id.Index, NumTowns)
		}
		x, y := m.X(t.XY), m.Y(t.XY)
		if x == 0 && y == 0 {
			return nil, fmt.Errorf("%w: town %q on the first tile", ErrUnsupported, t.Name)
		}
		s.Towns[id.Index] = Town{X: uint8(x), Y: uint8(y), Population: uint16(min(t.Population, math.MaxUint16)), Name: t.Name}
	}
	for i, c := range w.Companies {
		if c == nil {
			continue
		}
		if i >= NumCompanies {
			return nil, fmt.Errorf("%w: company %d, TTD has %d", ErrUnsupported, i, NumCompanies)
		}
		s.Companies[i] = Company{Name: c.Name}
	}

	year := int(y)
	for t := range m.All() {
		if err := s.exportTile(int(t), m.At(t), year); err != nil {
			return nil, fmt.Errorf("tile %d,%d: %w", m.X(t), m.Y(t), err)
		}
	}
	return s, nil
}

func (s *Savegame) exportTile(i int, tl *tile.Tile, year int) error {
	m := s.Map
	typ := tl.Content.Type()
	m.TypeHeight[i] = uint8(typ)<<4 | tl.Height&0xF
	m.SetZone(i, uint8(tl.Zone))
	m.Owner[i], m.M2[i], m.M3[i], m.M5[i] = uint8(tile.OwnerNone), 0, 0, 0

	switch c := tl.Content.(type) {
	case *tile.Void:
	case *tile.Clear:
		ground := c.Ground
		switch {
		case c.Snow:
			ground = tile.ClearSnow
		case ground == tile.ClearFields:
			ground = tile.ClearGrass
		}
		m.M5[i] = uint8(ground)<<2 | c.Density&3
	case *tile.Trees:
		ground := c.Ground
		if ground == tile.TreeGroundRoughSnow {
			ground = tile.TreeGroundSnowDesert
		}
		m.M2[i] = c.Density&3<<6 | uint8(ground)&3<<4 | c.Counter&0xF
		m.M3[i] = uint16(c.TreeType)
		m.M5[i] = (max(c.Count, 1)-1)<<6 | c.Growth&7
	case *tile.Rail:
		if c.HasSignals() {
			return fmt.Errorf("%w: signals", ErrUnsupported)
		}
		rt, ok := oldRailTypes[c.RailType]
		if !ok {
			return fmt.Errorf("%w: rail type %d", ErrUnsupported, c.RailType)
		}
		m.Owner[i] = uint8(c.Owner)
		m.M3[i] = uint16(rt)
		if c.Depot {
			m.M5[i] = 0xC0 | uint8(c.DepotDir)&3
		} else {
			m.M2[i] = uint8(c.Ground) & 0xF
			m.M5[i] = uint8(c.Tracks) & 0x3F
		}
	case *tile.Road:
		if c.TramType.IsValid() || !c.RoadType.IsValid() {
			return fmt.Errorf("%w: tram", ErrUnsupported)
		}
		m.Owner[i] = uint8(c.Owner)
		switch c.Kind {
		case tile.RoadTileNormal:
			m.M5[i] = uint8(c.RoadBits) & 0xF
		case tile.RoadTileDepot:
			m.M5[i] = 0x20 | uint8(c.DepotDir)&3
		default:
			return fmt.Errorf("%w: level crossing", ErrUnsupported)
		}
	case *tile.House:
		if c.HouseType > 0xFF {
			return fmt.Errorf("%w: house type %d", ErrUnsupported, c.HouseType)
		}
		m.M2[i] = uint8(c.HouseType)
		if c.Completed {
			// Completed houses keep their construction year.
			m.M3[i] = 3 << 6
			m.M5[i] = uint8(tile.Clamp(year-int(c.Age)-game.OriginalBaseYear, 0, 0xFF))
		} else {
			m.M3[i] = uint16(min(c.Stage, 2)) << 6
			m.M5[i] = c.Age
		}
	case *tile.Water:
		switch {
		case c.Kind == tile.WaterTileCoast:
			m.Owner[i] = uint8(tile.OwnerWater)
			m.M5[i] = 0x10
		case c.Kind != tile.WaterTileClear:
			return fmt.Errorf("%w: locks and ship depots", ErrUnsupported)
		case c.Class == tile.WaterClassSea:
			m.Owner[i] = uint8(tile.OwnerWater)
		case c.Class == tile.WaterClassRiver:
			m.Owner[i] = uint8(tile.OwnerWater)
			m.M3[i] = 3
		default:
			return fmt.Errorf("%w: canals", ErrUnsupported)
		}
	default:
		return fmt.Errorf("%w: %v tiles", ErrUnsupported, typ)
	}
	return nil
}
