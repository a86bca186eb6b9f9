// Package ttd reads and writes savegames of the original Transport Tycoon
// Deluxe. Only the map arrays, towns, companies and game options are
// understood; every other region of the file is carried through unchanged.
package ttd

import (
	"errors"
)

const (
	// MapLog is the base 2 logarithm of the fixed 256x256 map.
	MapLog        = 8
	NumberOfTiles = 1 << (2 * MapLog)

	NumTowns        = 0x46
	NumCompanies    = 8
	NumStrings      = 0x1f4
	StringLength    = 0x20
	DifficultyCount = 17

	maxTitleLength    = 47     // 39 for TTO
	fileChecksumAdd   = 201100 // 105128 for TTO
	firstCustomTextID = 0x7c00 // values outside 0x7c00 - 0x7df4 name towns from the built-in generator
	townRestSize      = 0x5e - 6
	companyRestSize   = 0x3b2 - 16
)

var (
	ErrTitleChecksum = errors.New("ttd: title checksum mismatch")
	ErrFileChecksum  = errors.New("ttd: file checksum mismatch")
)

type Town struct {
	X, Y       uint8 // 0, 0 for an empty slot
	Population uint16
	Name       string

	nameID uint16
	rest   []byte
}

func (t *Town) Used() bool { return t.X != 0 || t.Y != 0 }

type Company struct {
	Name             string
	NameParts        uint32
	Face             uint32
	ManagerName      string
	ManagerNameParts uint32

	nameID, managerID uint16
	rest              []byte
}

func (c *Company) Used() bool { return c.nameID != 0 || c.Name != "" }

// Map holds the landscape arrays in file order.
type Map struct {
	Owner [NumberOfTiles]uint8 // L1
	M2    [NumberOfTiles]uint8 // L2
	// M3 is L3: the low byte became m3, the high byte m4.
	M3 [NumberOfTiles]uint16
	// Extra packs two bits per tile, the tropic zone in desert games.
	Extra      [NumberOfTiles / 4]uint8
	TypeHeight [NumberOfTiles]uint8 // L4: type << 4 | height
	M5         [NumberOfTiles]uint8 // L5
}

func (m *Map) Zone(t int) uint8 { return m.Extra[t/4] >> (t % 4 * 2) & 3 }

func (m *Map) SetZone(t int, z uint8) {
	shift := t % 4 * 2
	m.Extra[t/4] = m.Extra[t/4]&^(3<<shift) | (z&3)<<shift
}

type Savegame struct {
	Title    string
	Days     uint16
	DayFract uint16
	Seed     uint64

	Towns     [NumTowns]Town
	Companies [NumCompanies]Company
	Map       *Map

	NextProcessedTown uint32
	LandscapeCode     uint16

	MainViewX, MainViewY uint16
	Zoom                 uint16 // 0 = normal, 1 = intermediate, 2 = most zoomed out
	MaximumLoan          uint32 // multiple of 50000
	MaximumLoanInternal  uint32

	Player1Company, Player2Company uint8
	Currency                       uint8
	MeasurementSystem              uint8
	Year, Month                    uint8
	Inflation, CargoInflation      uint8
	InterestRate                   uint8

	SmallAirports, LargeAirports, Heliports bool
	DriveOnTheRight, DriveOnTheRightFixed   bool
	TownNameStyle                           uint8

	// Difficulty is the custom difficulty: competitors, their start time,
	// towns, industries, loan, interest, running costs, AI speed and
	// intelligence, breakdowns, subsidies, construction costs, terrain,
	// lakes, economy, train reversing and disasters, in that order.
	Difficulty      [DifficultyCount]uint16
	DifficultyLevel uint8
	LandscapeType   uint8
	SnowLine        uint8

	CustomVehicleNames, CustomVehicleNamesCanBeChanged bool

	// Checksum is the file checksum seen by the last Load or Save.
	Checksum uint32

	// Counters with no meaning outside TTD.
	animTicker, ageTicker, animTicker2, nextXY     uint16
	nextVehicleArray, aiTicks, recession, disaster uint16
	stationTick, companyTick, treeTicker           uint8

	opaque  [numBlocks][]byte
	strings [NumStrings][StringLength]byte
}

// New returns an empty temperate game with sensible loan settings.
func New(title string) *Savegame {
	s := &Savegame{
		Title:               title,
		Map:                 new(Map),
		MaximumLoan:         300000,
		MaximumLoanInternal: 300000,
		InterestRate:        2,
		SnowLine:            7,
	}
	s.Difficulty[4] = 300 // max initial loan in thousands
	s.Difficulty[5] = 2
	for t := range NumberOfTiles {
		s.Map.Owner[t] = 0x10
	}
	return s
}
