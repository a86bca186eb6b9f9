package command

import (
	"errors"
	"fmt"
)

// ErrCommandFailed is the generic failure for invalid parameters.
var ErrCommandFailed = errors.New("command failed")

var (
	ErrNotEnoughCash               = errors.New("not enough cash")
	ErrAlreadyBuilt                = errors.New("already built")
	ErrImpossibleTrackCombination  = errors.New("impossible track combination")
	ErrMustRemoveSignalsFirst      = fmt.Errorf("must remove signals first: %w", ErrImpossibleTrackCombination)
	ErrLandSlopedInWrongDirection  = errors.New("land sloped in wrong direction")
	ErrFlatLandRequired            = errors.New("flat land required")
	ErrCantBuildOnWater            = errors.New("can't build on water")
	ErrOwnedBy                     = errors.New("owned by another company")
	ErrVehicleInTheWay             = errors.New("vehicle in the way")
	ErrNoSuitableRailroadTrack     = errors.New("no suitable railroad track")
	ErrNoRailroadTrack             = errors.New("there is no railroad track")
	ErrMustRemoveRailroadTrack     = errors.New("must remove railroad track first")
	ErrMustRemoveRoadFirst         = errors.New("must remove road first")
	ErrBuildingMustBeDemolished    = errors.New("building must be demolished first")
	ErrMustDemolishBridgeFirst     = errors.New("must demolish bridge first")
	ErrMustDemolishTunnelFirst     = errors.New("must demolish tunnel first")
	ErrMustDemolishStationFirst    = errors.New("must demolish station first")
	ErrMustRemoveWaypointFirst     = errors.New("must remove rail waypoint first")
	ErrMustDemolishDepotFirst      = errors.New("must demolish depot first")
	ErrIndustryInTheWay            = errors.New("industry in the way")
	ErrObjectInTheWay              = errors.New("object in the way")
	ErrCompanyHQInTheWay           = errors.New("company headquarters in the way")
	ErrYouAlreadyOwnIt             = errors.New("you already own it")
	ErrOffEdgeOfMap                = errors.New("off edge of map")
	ErrTooCloseToEdge              = errors.New("too close to edge of map")
	ErrAlreadyAtSeaLevel           = errors.New("already at sea level")
	ErrTooHigh                     = errors.New("too high")
	ErrRoadWorksInProgress         = errors.New("road works in progress")
	ErrCrossingOnOnewayRoad        = errors.New("crossing on one-way road")
	ErrNoSuchRoad                  = errors.New("there is no road")
	ErrTreeAlreadyHere             = errors.New("tree already here")
	ErrTreeWrongTerrain            = errors.New("tree wrong terrain for tree type")
	ErrTreeLimitReached            = errors.New("tree plant limit reached")
	ErrTooCloseToOtherWaypoint     = errors.New("too close to another waypoint")
	ErrTooManyStations             = errors.New("too many stations")
	ErrNameMustBeUnique            = errors.New("name must be unique")
	ErrLocalAuthorityRefuses       = errors.New("local authority refuses")
	ErrSiteUnsuitable              = errors.New("site unsuitable")
	ErrCanOnlyBeBuiltInEditor      = errors.New("can only be built in the scenario editor")
	ErrTooManyObjects              = errors.New("too many objects")
	ErrMustRemoveCanalFirst        = errors.New("must remove canal first")
	ErrNoSignals                   = errors.New("there are no signals")
	ErrCanalsNotAllowed            = errors.New("canal or river not allowed here")
	ErrMustDemolishShipDepotFirst  = errors.New("must demolish ship depot first")
	ErrMustRemoveLockFirst         = errors.New("must remove lock first")
	ErrCantBuildOnSea              = errors.New("can't build on sea")
	ErrWaterNearby                 = errors.New("can't remove water, nearby canal or river")
	ErrOnewayRoadsCantHaveJunction = errors.New("one-way roads can't have junctions")
	ErrRoadTypeMismatch            = errors.New("road is of a different type")
	ErrMustFoundTownFirst          = errors.New("must found a town first")
	ErrMustBeBuiltOnWater          = errors.New("must be built on water")
	ErrAdjoinsMoreThanOneWaypoint  = errors.New("adjoins more than one existing waypoint")
	ErrThereIsNoStation            = errors.New("there is no station")
	ErrMustDemolishRailroad        = errors.New("must demolish railway station first")
)
