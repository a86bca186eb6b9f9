package tile

import "math/bits"

type Track uint8

const (
	TrackX Track = iota
	TrackY
	TrackUpper
	TrackLower
	TrackLeft
	TrackRight
	TrackEnd
	InvalidTrack Track = 0xFF
)

func (t Track) IsValid() bool {
	return t < TrackEnd
}

func (t Track) Bits() TrackBits {
	return TrackBits(1) << t
}

func (t Track) String() string {
	switch t {
	case TrackX:
		return "X"
	case TrackY:
		return "Y"
	case TrackUpper:
		return "upper"
	case TrackLower:
		return "lower"
	case TrackLeft:
		return "left"
	case TrackRight:
		return "right"
	}
	return "invalid"
}

// TrackBits is a set of tracks on one tile.
type TrackBits uint8

const (
	TrackBitNone  TrackBits = 0
	TrackBitX     TrackBits = 1 << TrackX
	TrackBitY     TrackBits = 1 << TrackY
	TrackBitUpper TrackBits = 1 << TrackUpper
	TrackBitLower TrackBits = 1 << TrackLower
	TrackBitLeft  TrackBits = 1 << TrackLeft
	TrackBitRight TrackBits = 1 << TrackRight

	TrackBitCross = TrackBitX | TrackBitY
	TrackBitHorz  = TrackBitUpper | TrackBitLower
	TrackBitVert  = TrackBitLeft | TrackBitRight
	TrackBitAll   = TrackBitCross | TrackBitHorz | TrackBitVert
)

func (b TrackBits) Has(t Track) bool {
	return b&t.Bits() != 0
}

func (b TrackBits) Count() int {
	return bits.OnesCount8(uint8(b))
}

// Single returns the only track in b, or InvalidTrack when b holds zero or several.
func (b TrackBits) Single() Track {
	if b.Count() != 1 {
		return InvalidTrack
	}
	return Track(bits.TrailingZeros8(uint8(b)))
}

// Tracks lists the tracks in b in ascending order.
func (b TrackBits) Tracks() []Track {
	var out []Track
	for t := TrackX; t < TrackEnd; t++ {
		if b.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// TracksOverlap reports whether the set holds tracks that cross each other.
// Two parallel half tracks never overlap.
func TracksOverlap(b TrackBits) bool {
	if b == TrackBitNone || b.Count() == 1 {
		return false
	}
	return b != TrackBitHorz && b != TrackBitVert
}

func AxisToTrack(a Axis) Track {
	return Track(a)
}

func AxisToTrackBits(a Axis) TrackBits {
	return AxisToTrack(a).Bits()
}

func DiagDirToDiagTrack(d DiagDirection) Track {
	return Track(d & 1)
}

var cornerTrackBits = [CornerEnd]TrackBits{
	CornerW: TrackBitLeft,
	CornerS: TrackBitLower,
	CornerE: TrackBitRight,
	CornerN: TrackBitUpper,
}

// CornerToTrackBits returns the half track cutting off corner c.
func CornerToTrackBits(c Corner) TrackBits {
	return cornerTrackBits[c]
}

// SignalOnTrack returns the signal slots a track uses in the tile's signal nibble.
func SignalOnTrack(t Track) uint8 {
	switch t {
	case TrackLower, TrackRight:
		return 0x3
	}
	return 0xC
}
