package ttd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type summingWriter struct {
	w   io.Writer
	sum checksum
}

func (w *summingWriter) Write(b []byte) (int, error) {
	n, err := w.w.Write(b)
	w.sum.add(b[:n])
	return n, err
}

func (s *Savegame) Validate() error {
	if s.Map == nil {
		return errors.New("ttd: no map")
	}
	if _, err := encodeString(s.Title, maxTitleLength); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	if s.Difficulty[4] == 0 {
		return errors.New("ttd: a maximum initial loan of 0 crashes the game")
	}
	if s.LandscapeType > 3 {
		return fmt.Errorf("ttd: landscape %d out of range", s.LandscapeType)
	}
	return nil
}

// Save writes the game. Names are written to the custom string table.
func (s *Savegame) Save(w io.Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.assignNames(); err != nil {
		return err
	}
	title, err := encodeString(s.Title, maxTitleLength)
	if err != nil {
		return err
	}
	body := bodyWriter{data: make([]byte, 0, bodySize)}
	s.body(&body)

	sw := &summingWriter{w: w}
	if _, err := sw.Write(binary.LittleEndian.AppendUint16(title, titleChecksum(title))); err != nil {
		return err
	}
	if _, err := sw.Write(compress(body.data)); err != nil {
		return err
	}
	s.Checksum = uint32(sw.sum) + fileChecksumAdd
	_, err = w.Write(binary.LittleEndian.AppendUint32(nil, s.Checksum))
	return err
}
