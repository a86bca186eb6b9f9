package game

import "ttdmap/tile"

// Money is an amount in the base currency.
type Money int64

type Price uint8

const (
	PriceStationValue Price = iota
	PriceBuildRail
	PriceBuildRoad
	PriceBuildSignals
	PriceBuildBridge
	PriceBuildDepotTrain
	PriceBuildDepotRoad
	PriceBuildDepotShip
	PriceBuildTunnel
	PriceBuildStationRail
	PriceBuildStationRailLength
	PriceBuildWaypointRail
	PriceBuildWaypointBuoy
	PriceTerraform
	PriceClearGrass
	PriceClearRough
	PriceClearRocks
	PriceClearFields
	PriceClearTrees
	PriceClearRail
	PriceClearSignals
	PriceClearBridge
	PriceClearDepotTrain
	PriceClearDepotRoad
	PriceClearDepotShip
	PriceClearTunnel
	PriceClearWater
	PriceClearStationRail
	PriceClearWaypointRail
	PriceClearHouse
	PriceClearRoad
	PriceBuildFoundation
	PriceBuildIndustry
	PriceBuildCanal
	PriceBuildLock
	PriceBuildTrees
	PriceBuildObject
	PriceClearObject
	PriceClearCanal
	PriceClearLock
	PriceEnd
)

type Prices [PriceEnd]Money

// BasePrices are the prices before inflation and the construction cost setting.
func BasePrices() Prices {
	return Prices{
		PriceStationValue:           100,
		PriceBuildRail:              100,
		PriceBuildRoad:              95,
		PriceBuildSignals:           65,
		PriceBuildBridge:            275,
		PriceBuildDepotTrain:        600,
		PriceBuildDepotRoad:         500,
		PriceBuildDepotShip:         700,
		PriceBuildTunnel:            450,
		PriceBuildStationRail:       200,
		PriceBuildStationRailLength: 180,
		PriceBuildWaypointRail:      600,
		PriceBuildWaypointBuoy:      350,
		PriceTerraform:              500,
		PriceClearGrass:             20,
		PriceClearRough:             40,
		PriceClearRocks:             200,
		PriceClearFields:            500,
		PriceClearTrees:             20,
		PriceClearRail:              50,
		PriceClearSignals:           30,
		PriceClearBridge:            50,
		PriceClearDepotTrain:        80,
		PriceClearDepotRoad:         80,
		PriceClearDepotShip:         90,
		PriceClearTunnel:            30,
		PriceClearWater:             10000,
		PriceClearStationRail:       50,
		PriceClearWaypointRail:      80,
		PriceClearHouse:             200,
		PriceClearRoad:              30,
		PriceBuildFoundation:        250,
		PriceBuildIndustry:          8000,
		PriceBuildCanal:             5000,
		PriceBuildLock:              3000,
		PriceBuildTrees:             15,
		PriceBuildObject:            250,
		PriceClearObject:            10,
		PriceClearCanal:             500,
		PriceClearLock:              1200,
	}
}

// RailBuildCost is the price of one piece of track of type rt.
func (w *World) RailBuildCost(rt tile.RailType) Money {
	return w.Prices[PriceBuildRail] * Money(w.RailType(rt).CostMultiplier) >> 3
}

// RailClearCost is the price of removing one piece of track, never a refund
// larger than three quarters of the build cost.
func (w *World) RailClearCost(rt tile.RailType) Money {
	cost := w.Prices[PriceClearRail] * Money(w.RailType(rt).CostMultiplier) >> 3
	return max(cost, -w.RailBuildCost(rt)*3/4)
}

func (w *World) RoadBuildCost(rt tile.RoadType) Money {
	return w.Prices[PriceBuildRoad] * Money(w.RoadType(rt).CostMultiplier) >> 3
}

func (w *World) RoadClearCost(rt tile.RoadType) Money {
	return w.Prices[PriceClearRoad] * Money(w.RoadType(rt).CostMultiplier) >> 3
}

// RailConvertCost charges the build price of the target type, or refunds a
// part of the difference when converting to something cheaper.
func (w *World) RailConvertCost(from, to tile.RailType) Money {
	if from == to {
		return 0
	}
	diff := w.RailBuildCost(to) - w.RailBuildCost(from)
	if diff > 0 {
		return diff
	}
	return diff * 3 / 4
}
