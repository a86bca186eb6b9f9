// Package settings holds the per-game settings and reads them from YAML.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Landscape uint8

const (
	Temperate Landscape = iota
	Arctic
	Tropic
	Toyland
)

func (l Landscape) String() string {
	switch l {
	case Temperate:
		return "temperate"
	case Arctic:
		return "arctic"
	case Tropic:
		return "tropic"
	case Toyland:
		return "toyland"
	}
	return fmt.Sprintf("landscape(%d)", uint8(l))
}

func (l Landscape) MarshalYAML() (any, error) {
	return l.String(), nil
}

func (l *Landscape) UnmarshalYAML(n *yaml.Node) error {
	for c := Temperate; c <= Toyland; c++ {
		if n.Value == c.String() {
			*l = c
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown landscape %q", n.Line, n.Value)
}

// Difficulty carries what older games stored as an indexed array.
type Difficulty struct {
	MaxNoCompetitors       uint8  `yaml:"max_no_competitors"`
	CompetitorStartTime    uint8  `yaml:"competitor_start_time"`
	NumberTowns            uint8  `yaml:"number_towns"`
	IndustryDensity        uint8  `yaml:"industry_density"`
	MaxLoan                uint32 `yaml:"max_loan"`
	InitialInterest        uint8  `yaml:"initial_interest"`
	VehicleCosts           uint8  `yaml:"vehicle_costs"`
	CompetitorSpeed        uint8  `yaml:"competitor_speed"`
	CompetitorIntelligence uint8  `yaml:"competitor_intelligence"`
	VehicleBreakdowns      uint8  `yaml:"vehicle_breakdowns"`
	SubsidyMultiplier      uint8  `yaml:"subsidy_multiplier"`
	ConstructionCost       uint8  `yaml:"construction_cost"`
	TerrainType            uint8  `yaml:"terrain_type"`
	QuantitySeaLakes       uint8  `yaml:"quantity_sea_lakes"`
	Economy                uint8  `yaml:"economy"`
	LineReverseMode        uint8  `yaml:"line_reverse_mode"`
	Disasters              uint8  `yaml:"disasters"`
	TownCouncilTolerance   uint8  `yaml:"town_council_tolerance"`
	Level                  uint8  `yaml:"level"`
}

type GameCreation struct {
	Landscape Landscape `yaml:"landscape"`
	SnowLine  uint8     `yaml:"snow_line"`
	MapX      uint      `yaml:"map_x"`
	MapY      uint      `yaml:"map_y"`
	Seed      uint32    `yaml:"seed"`
}

type Construction struct {
	BuildOnSlopes          bool   `yaml:"build_on_slopes"`
	Autoslope              bool   `yaml:"autoslope"`
	ExtraDynamite          bool   `yaml:"extra_dynamite"`
	FreeformEdges          bool   `yaml:"freeform_edges"`
	MaxBridgeLength        uint16 `yaml:"max_bridge_length"`
	MaxTunnelLength        uint16 `yaml:"max_tunnel_length"`
	TreePlaceLimit         uint16 `yaml:"tree_place_limit"`
	MaxHeightLevel         uint8  `yaml:"max_height_level"`
	CrossingWithCompetitor bool   `yaml:"crossing_with_competitor"`
}

type Station struct {
	StationSpread     uint8 `yaml:"station_spread"`
	ModifiedCatchment bool  `yaml:"modified_catchment"`
	NeverExpire       bool  `yaml:"never_expire_airports"`
}

type Pathfinder struct {
	Forbid90Deg bool `yaml:"forbid_90_deg"`
}

type Economy struct {
	TownLayout                uint8 `yaml:"town_layout"`
	ExclusiveRights           bool  `yaml:"exclusive_rights"`
	Inflation                 bool  `yaml:"inflation"`
	InfrastructureMaintenance bool  `yaml:"infrastructure_maintenance"`
}

type Locale struct {
	Currency uint8 `yaml:"currency"`
	Units    uint8 `yaml:"units"`
}

type Network struct {
	Server bool `yaml:"server"`
}

// GameSettings is everything a savegame persists about how the game plays.
type GameSettings struct {
	Difficulty   Difficulty   `yaml:"difficulty"`
	GameCreation GameCreation `yaml:"game_creation"`
	Construction Construction `yaml:"construction"`
	Station      Station      `yaml:"station"`
	Pathfinder   Pathfinder   `yaml:"pathfinder"`
	Economy      Economy      `yaml:"economy"`
	Locale       Locale       `yaml:"locale"`
	Network      Network      `yaml:"network"`
}

func Default() GameSettings {
	return GameSettings{
		Difficulty: Difficulty{
			MaxNoCompetitors:     0,
			CompetitorStartTime:  2,
			NumberTowns:          2,
			IndustryDensity:      4,
			MaxLoan:              300000,
			InitialInterest:      2,
			VehicleCosts:         0,
			CompetitorSpeed:      2,
			VehicleBreakdowns:    1,
			SubsidyMultiplier:    2,
			ConstructionCost:     0,
			TerrainType:          1,
			QuantitySeaLakes:     0,
			Economy:              0,
			LineReverseMode:      0,
			Disasters:            0,
			TownCouncilTolerance: 0,
			Level:                3,
		},
		GameCreation: GameCreation{
			Landscape: Temperate,
			SnowLine:  7,
			MapX:      8,
			MapY:      8,
		},
		Construction: Construction{
			BuildOnSlopes:          true,
			Autoslope:              true,
			ExtraDynamite:          true,
			FreeformEdges:          true,
			MaxBridgeLength:        64,
			MaxTunnelLength:        64,
			TreePlaceLimit:         0,
			MaxHeightLevel:         15,
			CrossingWithCompetitor: true,
		},
		Station: Station{
			StationSpread:     12,
			ModifiedCatchment: true,
		},
		Pathfinder: Pathfinder{Forbid90Deg: false},
		Economy:    Economy{ExclusiveRights: true, Inflation: false},
	}
}

// LoadFile overlays the YAML file at path on the defaults.
func LoadFile(path string) (GameSettings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, s.Validate()
}

func (s GameSettings) Validate() error {
	if s.GameCreation.Landscape > Toyland {
		return fmt.Errorf("landscape %d out of range", s.GameCreation.Landscape)
	}
	if s.Station.StationSpread == 0 || s.Station.StationSpread > 64 {
		return fmt.Errorf("station_spread %d out of range [1, 64]", s.Station.StationSpread)
	}
	if s.Construction.MaxHeightLevel == 0 || s.Construction.MaxHeightLevel > 15 {
		return fmt.Errorf("max_height_level %d out of range [1, 15]", s.Construction.MaxHeightLevel)
	}
	if s.Difficulty.Level > 3 {
		return fmt.Errorf("difficulty level %d out of range", s.Difficulty.Level)
	}
	return nil
}

func (s GameSettings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// OldDifficultyCount is the length of the indexed difficulty array of old games.
const OldDifficultyCount = 18

// ApplyOldDifficulty maps the historic difficulty array onto named fields.
// The loan was stored in thousands.
func (d *Difficulty) ApplyOldDifficulty(old [OldDifficultyCount]uint16) {
	d.MaxNoCompetitors = uint8(old[0])
	d.CompetitorStartTime = uint8(old[1])
	d.NumberTowns = uint8(old[2])
	d.IndustryDensity = uint8(old[3])
	d.MaxLoan = uint32(old[4]) * 1000
	d.InitialInterest = uint8(old[5])
	d.VehicleCosts = uint8(old[6])
	d.CompetitorSpeed = uint8(old[7])
	d.CompetitorIntelligence = uint8(old[8])
	d.VehicleBreakdowns = uint8(old[9])
	d.SubsidyMultiplier = uint8(old[10])
	d.ConstructionCost = uint8(old[11])
	d.TerrainType = uint8(old[12])
	d.QuantitySeaLakes = uint8(old[13])
	d.Economy = uint8(old[14])
	d.LineReverseMode = uint8(old[15])
	d.Disasters = uint8(old[16])
	d.TownCouncilTolerance = uint8(old[17])
}

// OldDifficulty is the inverse of ApplyOldDifficulty, used when writing old versions.
func (d Difficulty) OldDifficulty() [OldDifficultyCount]uint16 {
	return [OldDifficultyCount]uint16{
		uint16(d.MaxNoCompetitors), uint16(d.CompetitorStartTime), uint16(d.NumberTowns), uint16(d.IndustryDensity),
		uint16(d.MaxLoan / 1000), uint16(d.InitialInterest), uint16(d.VehicleCosts), uint16(d.CompetitorSpeed),
		uint16(d.CompetitorIntelligence), uint16(d.VehicleBreakdowns), uint16(d.SubsidyMultiplier), uint16(d.ConstructionCost),
		uint16(d.TerrainType), uint16(d.QuantitySeaLakes), uint16(d.Economy), uint16(d.LineReverseMode),
		uint16(d.Disasters), uint16(d.TownCouncilTolerance),
	}
}

// oldCurrencies maps the currency numbers of games before 4.2 to today's.
var oldCurrencies = [...]uint8{0, 1, 12, 8, 3, 10, 14, 19, 4, 5, 9, 11, 13, 6, 17, 16, 22, 21, 7, 15, 18, 2, 20}

// CurrencyFromOld renumbers a currency of an old game. Unknown numbers are
// kept.
func CurrencyFromOld(c uint8) uint8 {
	if int(c) < len(oldCurrencies) {
		return oldCurrencies[c]
	}
	return c
}

// OldCurrency is the inverse of CurrencyFromOld.
func (l Locale) OldCurrency() (uint8, bool) {
	for old, c := range oldCurrencies {
		if c == l.Currency {
			return uint8(old), true
		}
	}
	return 0, false
}
