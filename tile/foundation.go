package tile

// Foundation is the shape built under a sloped tile to carry its contents.
type Foundation uint8

const (
	FoundationNone Foundation = iota
	FoundationLeveled
	FoundationInclinedX
	FoundationInclinedY
	FoundationSteepLower
	FoundationSteepBoth
	FoundationHalftileW
	FoundationHalftileS
	FoundationHalftileE
	FoundationHalftileN
	FoundationRailW
	FoundationRailS
	FoundationRailE
	FoundationRailN
	FoundationInvalid Foundation = 0xFF
)

func HalftileFoundation(c Corner) Foundation {
	return FoundationHalftileW + Foundation(c)
}

// SpecialRailFoundation raises the three corners around c to avoid zig-zag track.
func SpecialRailFoundation(c Corner) Foundation {
	return FoundationRailW + Foundation(c)
}

func (f Foundation) IsFoundation() bool {
	return f != FoundationNone
}

func (f Foundation) IsLeveled() bool {
	return f == FoundationLeveled
}

func (f Foundation) IsInclined() bool {
	return f == FoundationInclinedX || f == FoundationInclinedY
}

func (f Foundation) IsHalftile() bool {
	return f >= FoundationHalftileW && f <= FoundationHalftileN
}

func (f Foundation) IsSpecialRail() bool {
	return f >= FoundationRailW && f <= FoundationRailN
}

func (f Foundation) String() string {
	names := [...]string{"none", "leveled", "inclined-x", "inclined-y", "steep-lower", "steep-both",
		"halftile-w", "halftile-s", "halftile-e", "halftile-n", "rail-w", "rail-s", "rail-e", "rail-n"}
	if int(f) < len(names) {
		return names[f]
	}
	return "invalid"
}

// Tracks that fit on a non-steep slope without any foundation.
var validTracksWithoutFoundation = [15]TrackBits{
	TrackBitAll,
	TrackBitRight,
	TrackBitUpper,
	TrackBitX,

	TrackBitLeft,
	TrackBitNone,
	TrackBitY,
	TrackBitLower,

	TrackBitLower,
	TrackBitY,
	TrackBitNone,
	TrackBitLeft,

	TrackBitX,
	TrackBitUpper,
	TrackBitRight,
}

// Tracks that fit on a non-steep slope once it is leveled.
var validTracksOnLeveledFoundation = [15]TrackBits{
	TrackBitNone,
	TrackBitLeft,
	TrackBitLower,
	TrackBitY | TrackBitLower | TrackBitLeft,

	TrackBitRight,
	TrackBitAll,
	TrackBitX | TrackBitLower | TrackBitRight,
	TrackBitAll,

	TrackBitUpper,
	TrackBitX | TrackBitUpper | TrackBitLeft,
	TrackBitAll,
	TrackBitAll,

	TrackBitY | TrackBitUpper | TrackBitRight,
	TrackBitAll,
	TrackBitAll,
}

// ValidTracksOnLeveledFoundation exposes the leveled-foundation table for the coast check.
func ValidTracksOnLeveledFoundation(s Slope) TrackBits {
	return validTracksOnLeveledFoundation[s]
}

// RailFoundation returns the foundation needed to carry bits on tileh, or
// FoundationInvalid when the combination cannot be built.
func RailFoundation(tileh Slope, bits TrackBits) Foundation {
	if bits == TrackBitNone {
		return FoundationNone
	}

	if tileh.IsSteep() {
		if bits == TrackBitX {
			return FoundationInclinedX
		}
		if bits == TrackBitY {
			return FoundationInclinedY
		}

		highest := tileh.HighestCorner()
		higher := CornerToTrackBits(highest)
		if bits == higher {
			return HalftileFoundation(highest)
		}
		if TracksOverlap(bits | higher) {
			return FoundationInvalid
		}
		if bits&higher != 0 {
			return FoundationSteepBoth
		}
		return FoundationSteepLower
	}

	if ^validTracksWithoutFoundation[tileh]&bits == 0 {
		return FoundationNone
	}
	leveled := ^validTracksOnLeveledFoundation[tileh]&bits == 0
	orInvalid := func() Foundation {
		if leveled {
			return FoundationLeveled
		}
		return FoundationInvalid
	}

	var corner Corner
	switch bits {
	case TrackBitLeft:
		corner = CornerW
	case TrackBitLower:
		corner = CornerS
	case TrackBitRight:
		corner = CornerE
	case TrackBitUpper:
		corner = CornerN

	case TrackBitHorz:
		switch tileh {
		case SlopeN:
			return HalftileFoundation(CornerN)
		case SlopeS:
			return HalftileFoundation(CornerS)
		}
		return orInvalid()

	case TrackBitVert:
		switch tileh {
		case SlopeW:
			return HalftileFoundation(CornerW)
		case SlopeE:
			return HalftileFoundation(CornerE)
		}
		return orInvalid()

	case TrackBitX:
		if tileh.IsOneCornerRaised() {
			return FoundationInclinedX
		}
		return orInvalid()

	case TrackBitY:
		if tileh.IsOneCornerRaised() {
			return FoundationInclinedY
		}
		return orInvalid()

	default:
		return orInvalid()
	}

	// single half track from here on
	if !leveled {
		return FoundationInvalid
	}
	if tileh.IsThreeCornersRaised() {
		return FoundationLeveled
	}
	if tileh&SlopeWithThreeCornersRaised(corner.Opposite()) == SlopeWithOneCornerRaised(corner) {
		return HalftileFoundation(corner)
	}
	return SpecialRailFoundation(corner)
}

// ApplyFoundation returns the surface slope and the extra height a foundation
// produces on tileh. Half tile and special rail foundations report the corner
// they keep as a one corner slope.
func ApplyFoundation(f Foundation, tileh Slope) (Slope, int) {
	switch {
	case !f.IsFoundation():
		return tileh, 0
	case f.IsLeveled():
		if tileh.IsSteep() {
			return SlopeFlat, 2
		}
		return SlopeFlat, 1
	case f.IsHalftile():
		return SlopeWithOneCornerRaised(Corner(f - FoundationHalftileW)), 0
	case f.IsSpecialRail():
		return SlopeWithThreeCornersRaised(Corner(f - FoundationRailW).Opposite()), 0
	}

	dz := 0
	if tileh.IsSteep() {
		dz = 1
	}
	highest := tileh.HighestCorner()
	switch f {
	case FoundationInclinedX:
		if highest == CornerW || highest == CornerS {
			return SlopeSW, dz
		}
		return SlopeNE, dz
	case FoundationInclinedY:
		if highest == CornerS || highest == CornerE {
			return SlopeSE, dz
		}
		return SlopeNW, dz
	case FoundationSteepLower:
		return SlopeWithOneCornerRaised(highest), dz
	case FoundationSteepBoth:
		return SlopeFlat, dz + 1
	}
	panic("unknown foundation")
}
