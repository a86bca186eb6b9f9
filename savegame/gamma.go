package savegame

import "io"

// The simple gamma code stores small lengths and indices in one byte and
// grows by one byte per range:
//
//	0xxxxxxx                                 < 0x80
//	10xxxxxx xxxxxxxx                        < 0x4000
//	110xxxxx xxxxxxxx xxxxxxxx               < 0x200000
//	1110xxxx xxxxxxxx xxxxxxxx xxxxxxxx      < 0x10000000
//	11110--- xxxxxxxx xxxxxxxx xxxxxxxx xxxxxxxx
func appendGamma(b []byte, i uint32) []byte {
	switch {
	case i < 1<<7:
		return append(b, byte(i))
	case i < 1<<14:
		return append(b, byte(0x80|i>>8), byte(i))
	case i < 1<<21:
		return append(b, byte(0xC0|i>>16), byte(i>>8), byte(i))
	case i < 1<<28:
		return append(b, byte(0xE0|i>>24), byte(i>>16), byte(i>>8), byte(i))
	}
	return append(b, 0xF0, byte(i>>24), byte(i>>16), byte(i>>8), byte(i))
}

func readGamma(r io.ByteReader) (uint32, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	var n int
	var i uint32
	switch {
	case first&0x80 == 0:
		return uint32(first), nil
	case first&0x40 == 0:
		n, i = 1, uint32(first&0x3F)
	case first&0x20 == 0:
		n, i = 2, uint32(first&0x1F)
	case first&0x10 == 0:
		n, i = 3, uint32(first&0x0F)
	case first&0x08 == 0:
		n, i = 4, 0
	default:
		return 0, corrupt("gamma prefix %#x", first)
	}
	for range n {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		i = i<<8 | uint32(c)
	}
	return i, nil
}
