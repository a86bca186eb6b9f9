package ttd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

type summingReader struct {
	r   *bufio.Reader
	sum checksum
}

func (r *summingReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.sum.add(b[:n])
	return n, err
}

func (r *summingReader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.sum.add([]byte{b})
	}
	return b, err
}

// Load reads a TTD savegame. Both checksums must match.
func Load(r io.Reader) (*Savegame, error) {
	sr := &summingReader{r: bufio.NewReader(r)}
	head := make([]byte, maxTitleLength+2)
	if _, err := io.ReadFull(sr, head); err != nil {
		return nil, fmt.Errorf("ttd: title: %w", err)
	}
	title := head[:maxTitleLength]
	if got, want := binary.LittleEndian.Uint16(head[maxTitleLength:]), titleChecksum(title); got != want {
		return nil, fmt.Errorf("%w: file has %#04x, title sums to %#04x", ErrTitleChecksum, got, want)
	}

	data, err := decompress(sr, bodySize)
	if err != nil {
		return nil, err
	}
	want := uint32(sr.sum) + fileChecksumAdd

	var trailer [4]byte
	if _, err := io.ReadFull(sr.r, trailer[:]); err != nil {
		return nil, fmt.Errorf("ttd: file checksum: %w", err)
	}
	s := &Savegame{
		Title:    decodeString(title),
		Map:      new(Map),
		Checksum: binary.LittleEndian.Uint32(trailer[:]),
	}
	if s.Checksum != want {
		return nil, fmt.Errorf("%w: file has %#08x, contents sum to %#08x", ErrFileChecksum, s.Checksum, want)
	}
	s.body(&bodyReader{data: data})
	s.resolveNames()
	return s, nil
}
