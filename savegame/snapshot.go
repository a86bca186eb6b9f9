package savegame

import (
	"github.com/google/uuid"

	"ttdmap/newgrf"
	"ttdmap/settings"
	"ttdmap/tile"
)

// Snapshot is a game as stored on disk: packed tile planes and flat pool
// records in the layout of Version. Migrations rewrite a snapshot in place
// until it reaches Current, then Decode turns it into a game.World.
type Snapshot struct {
	Version Version

	ID       uuid.UUID
	Date     DateRecord
	Settings settings.GameSettings
	// OldDifficulty is the indexed difficulty array of games before 215.
	OldDifficulty [settings.OldDifficultyCount]uint16
	GRFs          newgrf.List

	LogX, LogY uint
	Planes     Planes

	Towns      []TownRecord
	Stations   []StationRecord
	Objects    []ObjectRecord
	Industries []IndustryRecord
	Vehicles   []VehicleRecord
	// Companies is indexed by owner; nil entries are free slots.
	Companies [tile.MaxCompanies]*CompanyRecord
}

// Planes holds the per-tile fields, one slice entry per tile.
//
//	Type    tile type << 4 | tropic zone
//	Height  height of the northern corner
//	M1      owner in bits 0-4, water class in bits 5-6
//	M2..M8  type specific
type Planes struct {
	Type   []uint8
	Height []uint8
	M1     []uint8
	M2     []uint16
	M3     []uint8
	M4     []uint8
	M5     []uint8
	M6     []uint8
	M7     []uint8
	M8     []uint16
}

func NewPlanes(n int) Planes {
	return Planes{
		Type:   make([]uint8, n),
		Height: make([]uint8, n),
		M1:     make([]uint8, n),
		M2:     make([]uint16, n),
		M3:     make([]uint8, n),
		M4:     make([]uint8, n),
		M5:     make([]uint8, n),
		M6:     make([]uint8, n),
		M7:     make([]uint8, n),
		M8:     make([]uint16, n),
	}
}

func (p *Planes) Len() int { return len(p.Type) }

// NewSnapshot returns an empty snapshot of the given version and map size.
func NewSnapshot(v Version, logX, logY uint) *Snapshot {
	return &Snapshot{
		Version:  v,
		Settings: settings.Default(),
		LogX:     logX,
		LogY:     logY,
		Planes:   NewPlanes(1 << (logX + logY)),
	}
}

func (s *Snapshot) SizeX() uint         { return 1 << s.LogX }
func (s *Snapshot) SizeY() uint         { return 1 << s.LogY }
func (s *Snapshot) X(t uint32) uint     { return uint(t) & (s.SizeX() - 1) }
func (s *Snapshot) Y(t uint32) uint     { return uint(t) >> s.LogX }
func (s *Snapshot) XY(x, y uint) uint32 { return uint32(y<<s.LogX | x) }

// TileType returns the type tag of tile t.
func (s *Snapshot) TileType(t uint32) uint8 { return s.Planes.Type[t] >> 4 }

func (s *Snapshot) SetTileType(t uint32, typ uint8) {
	s.Planes.Type[t] = typ<<4 | s.Planes.Type[t]&0x0F
}

func (s *Snapshot) Owner(t uint32) uint8 { return s.Planes.M1[t] & 0x1F }

func (s *Snapshot) SetOwner(t uint32, o uint8) {
	s.Planes.M1[t] = s.Planes.M1[t]&^0x1F | o&0x1F
}

func (s *Snapshot) WaterClass(t uint32) uint8 { return s.Planes.M1[t] >> 5 & 3 }

func (s *Snapshot) SetWaterClass(t uint32, wc uint8) {
	s.Planes.M1[t] = s.Planes.M1[t]&^0x60 | (wc&3)<<5
}

type DateRecord struct {
	Date      int32     `sl:"u16@0-31;i32@31-"`
	DateFract uint16    `sl:"u16"`
	Random    [2]uint32 `sl:"u32"`
}

type metaRecord struct {
	ID uuid.UUID `sl:"u8@100-"`
}

// patsRecord carries the settings as a YAML document, so settings added
// later default to their value in settings.Default.
type patsRecord struct {
	Settings string `sl:"str"`
}

type optsRecord struct {
	Difficulty [settings.OldDifficultyCount]uint16 `sl:"u16"`
}

type mapRecord struct {
	SizeX uint32 `sl:"u32"`
	SizeY uint32 `sl:"u32"`
}

type grfRecord struct {
	Filename           string   `sl:"str"`
	GRFID              uint32   `sl:"u32"`
	MD5                [16]byte `sl:"u8"`
	Version            uint32   `sl:"u32@151-"`
	MinLoadableVersion uint32   `sl:"u32@151-"`
	Flags              uint8    `sl:"u8@101-"`
	Params             []uint32 `sl:"u32"`
}

// TownRecord and the other pool records carry their pool index outside the
// stored fields. Tile and pool references are bare indices.
type TownRecord struct {
	Index            uint32    `sl:"-"`
	XY               uint32    `sl:"u16@0-6;u32@6-"`
	Name             string    `sl:"str"`
	Population       uint32    `sl:"u16@0-9;u32@9-"`
	NumHouses        uint16    `sl:"u16"`
	Ratings          [15]int16 `sl:"i16"`
	HaveRatings      uint16    `sl:"u8@0-104;u16@104-"`
	ExclusiveCompany uint8     `sl:"u8@2-"`
	ExclusiveCounter uint8     `sl:"u8@2-"`
	Statues          uint16    `sl:"u8@0-104;u16@104-"`
	SquaredRadius    uint32    `sl:"u32"`
}

type AreaRecord struct {
	Tile uint32 `sl:"u16@0-6;u32@6-"`
	W    uint16 `sl:"u8@0-5;u16@5-"`
	H    uint16 `sl:"u8@0-5;u16@5-"`
}

type StationRecord struct {
	Index      uint32     `sl:"-"`
	Waypoint   bool       `sl:"bool"`
	XY         uint32     `sl:"u16@0-6;u32@6-"`
	Owner      uint8      `sl:"u8"`
	Town       uint32     `sl:"u16"`
	Name       string     `sl:"str"`
	TownCN     uint16     `sl:"u8@0-89;u16@89-"`
	Facilities uint8      `sl:"u8"`
	BuildDate  int32      `sl:"u16@0-31;i32@31-"`
	TrainArea  AreaRecord `sl:"struct"`
	Rect       AreaRecord `sl:"struct@2-"`
	DeleteCtr  uint8      `sl:"u8"`
	// OldSpec is the graphic id of games before 215: the 1-based slot of the
	// GRF in the game's list in the high byte, the local index in the low byte.
	OldSpec   uint16 `sl:"u16@0-215"`
	SpecGRFID uint32 `sl:"u32@215-"`
	SpecIndex uint8  `sl:"u8@215-"`
}

type ObjectRecord struct {
	Index     uint32     `sl:"-"`
	Type      uint16     `sl:"u16"`
	Location  AreaRecord `sl:"struct"`
	Town      uint32     `sl:"u16"`
	BuildDate int32      `sl:"i32"`
	Colour    uint8      `sl:"u8@148-"`
	View      uint8      `sl:"u8@155-"`
}

type IndustryRecord struct {
	Index    uint32     `sl:"-"`
	Type     uint8      `sl:"u8"`
	Location AreaRecord `sl:"struct"`
	Town     uint32     `sl:"u16"`
	Owner    uint8      `sl:"u8@2-"`
}

type VehicleRecord struct {
	Index          uint32   `sl:"-"`
	Type           uint8    `sl:"u8"`
	Owner          uint8    `sl:"u8"`
	Tile           uint32   `sl:"u16@0-6;u32@6-"`
	Track          uint8    `sl:"u8"`
	EngineRailType uint8    `sl:"u8"`
	InDepot        bool     `sl:"bool"`
	Crashed        bool     `sl:"bool"`
	Orders         []uint32 `sl:"u16@0-5;u32@5-"`
}

type CompanyRecord struct {
	Name           string `sl:"str"`
	Money          int64  `sl:"i32@0-1;i64@1-"`
	Colour         uint8  `sl:"u8"`
	HQ             uint32 `sl:"u16@0-6;u32@6-"`
	AvailRailTypes uint64 `sl:"u8@0-58;u64@58-"`
	AvailRoadTypes uint64 `sl:"u8@0-214;u64@214-"`
	Value          int64  `sl:"i64"`
	Bankrupt       bool   `sl:"bool"`
	TreeLimit      uint32 `sl:"u32@175-"`
}

// NoIndex marks an absent reference in 16 bit fields.
const NoIndex = 0xFFFF
