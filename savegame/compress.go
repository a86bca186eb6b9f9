package savegame

import (
	"fmt"
	"io"

	"github.com/gookit/goutil/arrutil"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Compression selects how the chunk stream after the header is packed.
type Compression uint8

const (
	CompressNone Compression = iota
	CompressZlib
	CompressZstd
	CompressLZ4
)

var compressionTags = []string{"OTTN", "OTTZ", "OTTS", "OTTL"}

func (c Compression) Tag() string {
	if int(c) < len(compressionTags) {
		return compressionTags[c]
	}
	return "????"
}

func (c Compression) String() string {
	switch c {
	case CompressNone:
		return "none"
	case CompressZlib:
		return "zlib"
	case CompressZstd:
		return "zstd"
	case CompressLZ4:
		return "lz4"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression accepts the names printed by String.
func ParseCompression(s string) (Compression, error) {
	for c := CompressNone; c <= CompressLZ4; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return CompressNone, fmt.Errorf("unknown compression %q", s)
}

func compressionFromTag(tag string) (Compression, error) {
	i := arrutil.IndexOf(tag, compressionTags)
	if i < 0 {
		return CompressNone, fmt.Errorf("%w: tag %q", ErrUnknownFormat, tag)
	}
	return Compression(i), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressNone:
		return nopWriteCloser{w}, nil
	case CompressZlib:
		return zlib.NewWriterLevel(w, zlib.BestCompression)
	case CompressZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressLZ4:
		zw := lz4.NewWriter(w)
		zw.CompressionLevel = 4
		return zw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, c)
}

func newDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressNone:
		return io.NopCloser(r), nil
	case CompressZlib:
		return zlib.NewReader(r)
	case CompressZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, c)
}
