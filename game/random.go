package game

import "math/bits"

// Random is the game's seeded generator. Its state is saved with the game so
// every replay of a command draws the same numbers.
type Random struct {
	State [2]uint32
}

func (r *Random) Seed(seed uint32) {
	r.State[0] = seed
	r.State[1] = seed
}

func (r *Random) Next() uint32 {
	s, t := r.State[0], r.State[1]
	r.State[0] = s + bits.RotateLeft32(t^0x1234567F, -7) + 1
	r.State[1] = bits.RotateLeft32(s, -3) - 1
	return r.State[1]
}

// Range returns a value in [0, limit).
func (r *Random) Range(limit uint32) uint32 {
	return uint32(uint64(r.Next()) * uint64(limit) >> 32)
}

// Chance16 is true with probability a/b.
func (r *Random) Chance16(a, b uint32) bool {
	return uint32(uint16(r.Next()))*b < a*0x10000
}
