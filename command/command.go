// Package command implements the game actions. Every action runs twice: a
// test pass that validates and prices it without touching the world, then an
// exec pass that must arrive at the same result while mutating it.
package command

import (
	"fmt"

	"ttdmap/game"
	"ttdmap/pool"
	"ttdmap/tile"
)

// Flags modify how a command validates and whether it mutates.
type Flags uint16

const (
	// Exec performs the mutation; without it the command only tests.
	Exec Flags = 1 << iota
	// Auto refuses to demolish anything that is not trivially removable.
	Auto
	QueryCost
	// NoWater refuses to build on water tiles.
	NoWater
	NoRailOverlap
	NoTestTownRating
	Bankrupt
	NoModifyTownRating
	ForceClearTile
)

type Expense uint8

const (
	ExpenseConstruction Expense = iota
	ExpenseNewVehicles
	ExpenseProperty
	ExpenseOther
)

// CommandCost is the result of a command: its price, or the reason it failed.
type CommandCost struct {
	Expense Expense
	Cost    game.Money
	Err     error
}

func NewCost(e Expense, m game.Money) CommandCost {
	return CommandCost{Expense: e, Cost: m}
}

func Fail(err error) CommandCost {
	return CommandCost{Err: err}
}

func (c CommandCost) Failed() bool    { return c.Err != nil }
func (c CommandCost) Succeeded() bool { return c.Err == nil }

func (c *CommandCost) AddCost(m game.Money) {
	c.Cost += m
}

// Add adds the cost of o and takes over its error if c has none yet.
func (c *CommandCost) Add(o CommandCost) {
	c.Cost += o.Cost
	if c.Err == nil && o.Err != nil {
		c.Err = o.Err
	}
}

func (c *CommandCost) MultiplyCost(f int) {
	c.Cost *= game.Money(f)
}

func (c CommandCost) String() string {
	if c.Failed() {
		return "failed: " + c.Err.Error()
	}
	return fmt.Sprintf("cost %d", c.Cost)
}

// ID selects the command to run.
type ID uint8

const (
	CmdBuildSingleRail ID = iota
	CmdRemoveSingleRail
	CmdBuildRailroadTrack
	CmdRemoveRailroadTrack
	CmdBuildTrainDepot
	CmdBuildSingleSignal
	CmdRemoveSingleSignal
	CmdConvertRail
	CmdBuildRoad
	CmdRemoveRoad
	CmdBuildRoadDepot
	CmdLandscapeClear
	CmdTerraformLand
	CmdPlantTree
	CmdBuildObject
	CmdBuildCompanyHQ
	CmdPurchaseLandArea
	CmdSellLandArea
	CmdBuildTrainWaypoint
	CmdRemoveFromRailWaypoint
	CmdRenameWaypoint
	CmdBuildCanal
	CmdEnd
)

var cmdNames = [CmdEnd]string{
	"build_single_rail", "remove_single_rail", "build_railroad_track", "remove_railroad_track",
	"build_train_depot", "build_single_signal", "remove_single_signal", "convert_rail",
	"build_road", "remove_road", "build_road_depot", "landscape_clear", "terraform_land",
	"plant_tree", "build_object", "build_company_hq", "purchase_land_area", "sell_land_area",
	"build_train_waypoint", "remove_from_rail_waypoint", "rename_waypoint", "build_canal",
}

func (id ID) String() string {
	if id < CmdEnd {
		return cmdNames[id]
	}
	return fmt.Sprintf("command(%d)", uint8(id))
}

// ParseID looks a command up by its name.
func ParseID(name string) (ID, bool) {
	for i, n := range cmdNames {
		if n == name {
			return ID(i), true
		}
	}
	return CmdEnd, false
}

// Proc is the implementation of one command.
type Proc func(c *Context, t tile.Index, flags Flags, p1, p2 uint32, text string) CommandCost

func (id ID) proc() Proc {
	switch id {
	case CmdBuildSingleRail:
		return cmdBuildSingleRail
	case CmdRemoveSingleRail:
		return cmdRemoveSingleRail
	case CmdBuildRailroadTrack:
		return cmdBuildRailroadTrack
	case CmdRemoveRailroadTrack:
		return cmdRemoveRailroadTrack
	case CmdBuildTrainDepot:
		return cmdBuildTrainDepot
	case CmdBuildSingleSignal:
		return cmdBuildSingleSignal
	case CmdRemoveSingleSignal:
		return cmdRemoveSingleSignal
	case CmdConvertRail:
		return cmdConvertRail
	case CmdBuildRoad:
		return cmdBuildRoad
	case CmdRemoveRoad:
		return cmdRemoveRoad
	case CmdBuildRoadDepot:
		return cmdBuildRoadDepot
	case CmdLandscapeClear:
		return cmdLandscapeClear
	case CmdTerraformLand:
		return cmdTerraformLand
	case CmdPlantTree:
		return cmdPlantTree
	case CmdBuildObject:
		return cmdBuildObject
	case CmdBuildCompanyHQ:
		return cmdBuildCompanyHQ
	case CmdPurchaseLandArea:
		return cmdPurchaseLandArea
	case CmdSellLandArea:
		return cmdSellLandArea
	case CmdBuildTrainWaypoint:
		return cmdBuildTrainWaypoint
	case CmdRemoveFromRailWaypoint:
		return cmdRemoveFromRailWaypoint
	case CmdRenameWaypoint:
		return cmdRenameWaypoint
	case CmdBuildCanal:
		return cmdBuildCanal
	}
	return nil
}

// Context carries one pass of a top-level command through its nested calls.
type Context struct {
	W *game.World
	// Objects already cleared by this pass, so that their other tiles are
	// not charged again.
	clearedObjects []clearedObject
}

type clearedObject struct {
	first tile.Index
	area  game.TileArea
}

func (c *Context) findClearedObject(t tile.Index) *clearedObject {
	for i := range c.clearedObjects {
		if c.clearedObjects[i].area.Contains(c.W.Map, t) {
			return &c.clearedObjects[i]
		}
	}
	return nil
}

// do runs a nested command within the current pass.
func (c *Context) do(t tile.Index, p1, p2 uint32, flags Flags, id ID, text string) CommandCost {
	return id.proc()(c, t, flags, p1, p2, text)
}

func run(w *game.World, id ID, t tile.Index, p1, p2 uint32, flags Flags, text string) CommandCost {
	c := &Context{W: w}
	return id.proc()(c, t, flags, p1, p2, text)
}

// DoCommand validates and prices a command and, with Exec, performs it and
// charges the current company. The exec pass must reproduce the test pass
// exactly; a difference is a bug in the command and panics.
func DoCommand(w *game.World, t tile.Index, p1, p2 uint32, flags Flags, id ID, text string) CommandCost {
	if id >= CmdEnd || !w.Map.IsValid(t) {
		return Fail(ErrCommandFailed)
	}
	test := run(w, id, t, p1, p2, flags&^Exec, text)
	if test.Failed() {
		return test
	}
	if flags&QueryCost == 0 {
		if err := checkCompanyHasMoney(w, test.Cost); err != nil {
			return Fail(err)
		}
	}
	if flags&Exec == 0 {
		return test
	}
	res := run(w, id, t, p1, p2, flags, text)
	if res.Failed() || res.Cost != test.Cost {
		panic(fmt.Sprintf("%v on tile %d: exec %v differs from test %v", id, t, res, test))
	}
	if co := w.Company(w.CurrentCompany); co != nil {
		co.Money -= res.Cost
	}
	return res
}

func checkCompanyHasMoney(w *game.World, cost game.Money) error {
	co := w.Company(w.CurrentCompany)
	if co == nil || cost <= 0 {
		return nil
	}
	if co.Money < cost {
		return ErrNotEnoughCash
	}
	return nil
}

func checkOwnership(w *game.World, o tile.Owner) error {
	if o == w.CurrentCompany {
		return nil
	}
	return ErrOwnedBy
}

func checkTileOwnership(w *game.World, t tile.Index) error {
	return checkOwnership(w, w.Map.Owner(t))
}

func ensureNoVehicleOnGround(w *game.World, t tile.Index) error {
	if w.HasVehicleOnGround(t) {
		return ErrVehicleInTheWay
	}
	return nil
}

func ensureNoTrainOnTrack(w *game.World, t tile.Index, track tile.Track) error {
	if w.HasTrainOnTrack(t, track.Bits()) {
		return ErrVehicleInTheWay
	}
	return nil
}

// tileIndexParam decodes a tile index carried in p1 or p2.
func tileIndexParam(w *game.World, p uint32) (tile.Index, bool) {
	t := tile.Index(p)
	return t, w.Map.IsValid(t)
}

// stationParam decodes a station index; the pool generation is not carried
// in command parameters.
func stationParam(w *game.World, p uint32) (pool.ID, *game.Station, bool) {
	return w.Stations.ByIndex(p)
}

// scenarioEditor reports whether the running command comes from the
// scenario editor rather than a company.
func scenarioEditor(w *game.World) bool {
	return w.CurrentCompany == tile.OwnerNone || w.CurrentCompany == tile.OwnerDeity
}

func exec(flags Flags) bool {
	return flags&Exec != 0
}
