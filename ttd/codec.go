package ttd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// titleChecksum adds up the title bytes, rotating the 16 bit sum one bit to
// the left after each addition, and xors the result with 0xAAAA.
func titleChecksum(title []byte) uint16 {
	var sum uint16
	for _, b := range title {
		sum += uint16(b)
		sum = sum<<1 | sum>>15
	}
	return sum ^ 0xAAAA
}

// checksum runs the file checksum over every byte before the trailer.
type checksum uint32

func (c *checksum) add(bs []byte) {
	for _, b := range bs {
		v := uint32(*c) + uint32(b)
		*c = checksum(v<<3 | v>>29)
	}
}

// decompress expands n bytes of run-length data. A control byte c >= 0 is
// followed by c+1 literal bytes; c < 0 repeats the next byte 1-c times.
func decompress(r io.ByteReader, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		cb, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ttd: body at %d of %d bytes: %w", len(out), n, err)
		}
		c := int8(cb)
		if c >= 0 {
			for range int(c) + 1 {
				b, err := r.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("ttd: body at %d of %d bytes: %w", len(out), n, err)
				}
				out = append(out, b)
			}
			continue
		}
		b, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ttd: body at %d of %d bytes: %w", len(out), n, err)
		}
		out = append(out, bytes.Repeat([]byte{b}, 1-int(c))...)
	}
	if len(out) != n {
		return nil, fmt.Errorf("ttd: body ran %d bytes past its end", len(out)-n)
	}
	return out, nil
}

// compress emits runs of three or more equal bytes as repeats and the rest
// as literal blocks of at most 128 bytes.
func compress(data []byte) []byte {
	out := make([]byte, 0, len(data)/2)
	lit := 0
	flush := func(end int) {
		for lit < end {
			n := min(end-lit, 128)
			out = append(out, byte(n-1))
			out = append(out, data[lit:lit+n]...)
			lit += n
		}
	}
	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && run < 128 && data[i+run] == data[i] {
			run++
		}
		if run < 3 {
			i += run
			continue
		}
		flush(i)
		out = append(out, byte(int8(1-run)), data[i])
		i += run
		lit = i
	}
	flush(len(data))
	return out
}

// codec walks the body in file order. The same walk reads a body into a
// Savegame or writes one out.
type codec interface {
	u8(v *uint8)
	u16(v *uint16)
	u32(v *uint32)
	u64(v *uint64)
	raw(b []byte)
}

type bodyReader struct {
	data []byte
	off  int
}

func (r *bodyReader) take(n int) []byte {
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *bodyReader) u8(v *uint8)   { *v = r.take(1)[0] }
func (r *bodyReader) u16(v *uint16) { *v = binary.LittleEndian.Uint16(r.take(2)) }
func (r *bodyReader) u32(v *uint32) { *v = binary.LittleEndian.Uint32(r.take(4)) }
func (r *bodyReader) u64(v *uint64) { *v = binary.LittleEndian.Uint64(r.take(8)) }
func (r *bodyReader) raw(b []byte)  { copy(b, r.take(len(b))) }

type bodyWriter struct {
	data []byte
}

func (w *bodyWriter) u8(v *uint8)   { w.data = append(w.data, *v) }
func (w *bodyWriter) u16(v *uint16) { w.data = binary.LittleEndian.AppendUint16(w.data, *v) }
func (w *bodyWriter) u32(v *uint32) { w.data = binary.LittleEndian.AppendUint32(w.data, *v) }
func (w *bodyWriter) u64(v *uint64) { w.data = binary.LittleEndian.AppendUint64(w.data, *v) }
func (w *bodyWriter) raw(b []byte)  { w.data = append(w.data, b...) }

// bits packs bools into one byte, lowest bit first.
func bits(c codec, flags ...*bool) {
	var v uint8
	for i, f := range flags {
		if *f {
			v |= 1 << i
		}
	}
	c.u8(&v)
	for i, f := range flags {
		*f = v>>i&1 != 0
	}
}

// flag16 is a bool stored as a whole word.
func flag16(c codec, f *bool) {
	var v uint16
	if *f {
		v = 1
	}
	c.u16(&v)
	*f = v != 0
}

// Regions of the body this package does not interpret.
const (
	blockEffects = iota
	blockSchedules
	blockAnimations
	blockDepots
	blockEconomy
	blockStations
	blockVehicles
	blockVehicleHash
	blockSigns
	blockSubsidies
	blockTextIDs
	blockDates
	blockCargo
	numBlocks
)

type block struct {
	size int
	// empty is repeated to fill a fresh block.
	empty []byte
}

var layout = [numBlocks]block{
	blockEffects:     {0x14 * 0x1e, append([]byte{0xFF, 0xFF}, make([]byte, 0x12)...)},
	blockSchedules:   {2 * 0x1388, []byte{0}},
	blockAnimations:  {2 * 0x100, []byte{0}},
	blockDepots:      {4 + 6*0xff, []byte{0}},
	blockEconomy:     {49*6 + 0xc*8, []byte{0}},
	blockStations:    {0x8e*0xfa + 0x36*0x5a, []byte{0}},
	blockVehicles:    {0x80 * 0x352, []byte{0}},
	blockVehicleHash: {0x1000 * 2, []byte{0xFF}},
	blockSigns:       {0xe*0x28 + 0x1c*0x100, []byte{0}},
	blockSubsidies:   {32, []byte{0xFF, 0, 0, 0}},
	blockTextIDs:     {6*2*0xc + 2*0x100 + 0x90, []byte{0}},
	blockDates:       {8, []byte{0}},
	blockCargo:       {0x20 + 3*0xc, []byte{0}},
}

func (b block) fresh() []byte {
	return bytes.Repeat(b.empty, b.size/len(b.empty))
}
