package tile

// DiagDirection is one of the four directions along the map axes.
type DiagDirection uint8

const (
	DiagDirNE DiagDirection = iota
	DiagDirSE
	DiagDirSW
	DiagDirNW
	DiagDirEnd
	InvalidDiagDir DiagDirection = 0xFF
)

func (d DiagDirection) IsValid() bool {
	return d < DiagDirEnd
}

func (d DiagDirection) Reverse() DiagDirection {
	return d ^ 2
}

func (d DiagDirection) Axis() Axis {
	return Axis(d & 1)
}

func (d DiagDirection) String() string {
	switch d {
	case DiagDirNE:
		return "NE"
	case DiagDirSE:
		return "SE"
	case DiagDirSW:
		return "SW"
	case DiagDirNW:
		return "NW"
	}
	return "invalid"
}

// ChangeDiagDir rotates d clockwise by quarter turns.
func ChangeDiagDir(d DiagDirection, quarters int) DiagDirection {
	return DiagDirection((int(d) + quarters) & 3)
}

type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisEnd
	InvalidAxis Axis = 0xFF
)

func (a Axis) IsValid() bool {
	return a < AxisEnd
}

func (a Axis) Other() Axis {
	return a ^ 1
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	}
	return "invalid"
}

// AxisToDiagDir returns the direction pointing to the south end of the axis.
func AxisToDiagDir(a Axis) DiagDirection {
	return DiagDirection(2 - a)
}

type offset struct{ dx, dy int }

var diagDirOffsets = [DiagDirEnd]offset{
	DiagDirNE: {-1, 0},
	DiagDirSE: {0, 1},
	DiagDirSW: {1, 0},
	DiagDirNW: {0, -1},
}

// DiagDirOffset returns the coordinate delta of one step in d.
func DiagDirOffset(d DiagDirection) (dx, dy int) {
	o := diagDirOffsets[d]
	return o.dx, o.dy
}

// Corner of a tile.
type Corner uint8

const (
	CornerW Corner = iota
	CornerS
	CornerE
	CornerN
	CornerEnd
	InvalidCorner Corner = 0xFF
)

func (c Corner) IsValid() bool {
	return c < CornerEnd
}

func (c Corner) Opposite() Corner {
	return c ^ 2
}
