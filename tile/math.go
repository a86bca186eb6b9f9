package tile

import "golang.org/x/exp/constraints"

func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Delta is the absolute difference of two values.
func Delta[T constraints.Integer](a, b T) T {
	if a < b {
		return b - a
	}
	return a - b
}
