package savegame

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

type chunkType uint8

const (
	chunkRIFF chunkType = iota
	chunkArray
	chunkSparse
)

// knownChunks lists every chunk id a file may contain.
var knownChunks = []string{
	"META", "DATE", "OPTS", "PATS", "NGRF", "MAPS",
	"MAPT", "MAPH", "MAP1", "MAP2", "MAP3", "MAP4", "MAP5", "MAP6", "MAP7", "MAP8",
	"CITY", "STNN", "OBJS", "INDY", "VEHS", "PLYR",
}

// chunk is one decoded chunk. RIFF chunks fill data, arrays fill elems
// keyed by element index.
type chunk struct {
	typ   chunkType
	data  []byte
	elems map[uint32][]byte
	// order keeps the element indices in file order.
	order []uint32
}

type chunkWriter struct {
	w   *bufio.Writer
	err error
}

func newChunkWriter(w io.Writer) *chunkWriter {
	return &chunkWriter{w: bufio.NewWriter(w)}
}

func (cw *chunkWriter) write(b []byte) {
	if cw.err != nil {
		return
	}
	_, cw.err = cw.w.Write(b)
}

func (cw *chunkWriter) header(id string, typ chunkType) {
	if len(id) != 4 {
		panic(fmt.Sprintf("chunk id %q is not four bytes", id))
	}
	cw.write(append([]byte(id), byte(typ)))
}

func (cw *chunkWriter) riff(id string, data []byte) {
	cw.header(id, chunkRIFF)
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(data)))
	cw.write(l[:])
	cw.write(data)
}

// array writes elements at their slice position. A nil element is a free slot.
func (cw *chunkWriter) array(id string, elems [][]byte) {
	cw.header(id, chunkArray)
	for _, e := range elems {
		cw.write(appendGamma(nil, uint32(len(e))+1))
		cw.write(e)
	}
	cw.write([]byte{0})
}

func (cw *chunkWriter) sparse(id string, index []uint32, elems [][]byte) {
	cw.header(id, chunkSparse)
	for i, e := range elems {
		b := appendGamma(nil, uint32(len(e))+1)
		b = appendGamma(b, index[i])
		cw.write(b)
		cw.write(e)
	}
	cw.write([]byte{0})
}

func (cw *chunkWriter) close() error {
	cw.write([]byte{0, 0, 0, 0})
	if cw.err != nil {
		return cw.err
	}
	return cw.w.Flush()
}

// readChunks reads chunks up to the terminating zero id.
func readChunks(r *bufio.Reader) (map[string]*chunk, error) {
	chunks := map[string]*chunk{}
	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return nil, corrupt("chunk id: %v", err)
		}
		if id == [4]byte{} {
			return chunks, nil
		}
		name := string(id[:])
		if !slices.Contains(knownChunks, name) {
			return nil, corrupt("unknown chunk %q", name)
		}
		if _, dup := chunks[name]; dup {
			return nil, corrupt("duplicate chunk %q", name)
		}
		typ, err := r.ReadByte()
		if err != nil {
			return nil, corrupt("chunk %s type: %v", name, err)
		}
		c := &chunk{typ: chunkType(typ)}
		switch c.typ {
		case chunkRIFF:
			var l [4]byte
			if _, err := io.ReadFull(r, l[:]); err != nil {
				return nil, corrupt("chunk %s length: %v", name, err)
			}
			c.data, err = readN(r, int64(binary.BigEndian.Uint32(l[:])))
		case chunkArray, chunkSparse:
			err = c.readElems(r)
		default:
			err = corrupt("type %d", typ)
		}
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", name, err)
		}
		chunks[name] = c
	}
}

func (c *chunk) readElems(r *bufio.Reader) error {
	c.elems = map[uint32][]byte{}
	for index := uint32(0); ; index++ {
		l, err := readGamma(r)
		if err != nil {
			return corrupt("element length: %v", err)
		}
		if l == 0 {
			return nil
		}
		if c.typ == chunkSparse {
			if index, err = readGamma(r); err != nil {
				return corrupt("element index: %v", err)
			}
		}
		if _, dup := c.elems[index]; dup {
			return corrupt("element %d repeated", index)
		}
		data, err := readN(r, int64(l-1))
		if err != nil {
			return err
		}
		if len(data) == 0 && c.typ == chunkArray {
			continue
		}
		c.elems[index] = data
		c.order = append(c.order, index)
	}
}

// readN reads exactly n bytes without trusting n for the allocation.
func readN(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, n); err != nil {
		return nil, corrupt("%d bytes: %v", n, err)
	}
	return buf.Bytes(), nil
}
