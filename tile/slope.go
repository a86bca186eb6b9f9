package tile

// Slope is the shape of a tile: one bit per raised corner plus the steep bit.
type Slope uint8

const (
	SlopeFlat  Slope = 0x00
	SlopeW     Slope = 0x01
	SlopeS     Slope = 0x02
	SlopeE     Slope = 0x04
	SlopeN     Slope = 0x08
	SlopeSteep Slope = 0x10

	SlopeNW       = SlopeN | SlopeW
	SlopeSW       = SlopeS | SlopeW
	SlopeSE       = SlopeS | SlopeE
	SlopeNE       = SlopeN | SlopeE
	SlopeEW       = SlopeE | SlopeW
	SlopeNS       = SlopeN | SlopeS
	SlopeElevated = SlopeN | SlopeE | SlopeS | SlopeW
	SlopeNWS      = SlopeN | SlopeW | SlopeS
	SlopeWSE      = SlopeW | SlopeS | SlopeE
	SlopeSEN      = SlopeS | SlopeE | SlopeN
	SlopeENW      = SlopeE | SlopeN | SlopeW

	SlopeSteepW = SlopeSteep | SlopeNWS
	SlopeSteepS = SlopeSteep | SlopeWSE
	SlopeSteepE = SlopeSteep | SlopeSEN
	SlopeSteepN = SlopeSteep | SlopeENW
)

// IsValid reports whether s is one of the 15 plain or 4 steep shapes.
func (s Slope) IsValid() bool {
	if s&SlopeSteep != 0 {
		switch s {
		case SlopeSteepW, SlopeSteepS, SlopeSteepE, SlopeSteepN:
			return true
		}
		return false
	}
	return s < SlopeElevated
}

func (s Slope) IsSteep() bool {
	return s&SlopeSteep != 0
}

// MaxZ is the height difference between the lowest and highest corner.
func (s Slope) MaxZ() int {
	switch {
	case s == SlopeFlat:
		return 0
	case s.IsSteep():
		return 2
	}
	return 1
}

func (s Slope) Complement() Slope {
	return s ^ SlopeElevated
}

func (s Slope) HasCorner(c Corner) bool {
	return s&SlopeWithOneCornerRaised(c) != 0
}

func SlopeWithOneCornerRaised(c Corner) Slope {
	return Slope(1) << c
}

func SlopeWithThreeCornersRaised(c Corner) Slope {
	return SlopeWithOneCornerRaised(c).Complement()
}

// SteepSlopeTowards returns the steep slope whose highest corner is c.
func SteepSlopeTowards(c Corner) Slope {
	return SlopeSteep | SlopeWithThreeCornersRaised(c.Opposite())
}

func (s Slope) IsOneCornerRaised() bool {
	return s == SlopeW || s == SlopeS || s == SlopeE || s == SlopeN
}

func (s Slope) IsThreeCornersRaised() bool {
	return !s.IsSteep() && s.Complement().IsOneCornerRaised()
}

// HighestCorner returns the top corner of a one-corner or steep slope.
func (s Slope) HighestCorner() Corner {
	switch s {
	case SlopeW, SlopeSteepW:
		return CornerW
	case SlopeS, SlopeSteepS:
		return CornerS
	case SlopeE, SlopeSteepE:
		return CornerE
	case SlopeN, SlopeSteepN:
		return CornerN
	}
	return InvalidCorner
}

// ZInCorner is the height of corner c relative to the lowest corner.
func (s Slope) ZInCorner(c Corner) int {
	z := 0
	if s.HasCorner(c) {
		z++
	}
	if s == SteepSlopeTowards(c) {
		z++
	}
	return z
}

func (s Slope) IsInclined() bool {
	return InclinedDirection(s) != InvalidDiagDir
}

// InclinedDirection returns the direction a slope rises towards, or InvalidDiagDir.
func InclinedDirection(s Slope) DiagDirection {
	switch s {
	case SlopeNE:
		return DiagDirNE
	case SlopeSE:
		return DiagDirSE
	case SlopeSW:
		return DiagDirSW
	case SlopeNW:
		return DiagDirNW
	}
	return InvalidDiagDir
}

func InclinedSlope(d DiagDirection) Slope {
	switch d {
	case DiagDirNE:
		return SlopeNE
	case DiagDirSE:
		return SlopeSE
	case DiagDirSW:
		return SlopeSW
	case DiagDirNW:
		return SlopeNW
	}
	return SlopeFlat
}

// IsValidLevelCrossingSlope lists the shapes a level crossing may sit on.
func IsValidLevelCrossingSlope(s Slope) bool {
	switch s {
	case SlopeFlat, SlopeSEN, SlopeENW, SlopeNWS, SlopeNS, SlopeWSE, SlopeEW:
		return true
	}
	return false
}
