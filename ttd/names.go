package ttd

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Names are stored in code page 437, NUL padded.
func decodeString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := charmap.CodePage437.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func encodeString(s string, n int) ([]byte, error) {
	b, err := encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if len(b) > n {
		return nil, fmt.Errorf("ttd: %q takes %d bytes, at most %d fit", s, len(b), n)
	}
	return append(b, make([]byte, n-len(b))...), nil
}

func (s *Savegame) customString(id uint16) string {
	i := int(id) - firstCustomTextID
	if i < 0 || i >= NumStrings {
		return ""
	}
	return decodeString(s.strings[i][:])
}

func (s *Savegame) resolveNames() {
	for i := range s.Towns {
		t := &s.Towns[i]
		t.Name = s.customString(t.nameID)
	}
	for i := range s.Companies {
		c := &s.Companies[i]
		c.Name = s.customString(c.nameID)
		c.ManagerName = s.customString(c.managerID)
	}
}

// assignNames rebuilds the custom string table from the names. Towns named
// by the built-in generator keep their text id.
func (s *Savegame) assignNames() error {
	s.strings = [NumStrings][StringLength]byte{}
	next := 0
	custom := func(name string, id *uint16) error {
		if name == "" {
			if int(*id) >= firstCustomTextID && int(*id) < firstCustomTextID+NumStrings {
				*id = 0
			}
			return nil
		}
		if next == NumStrings {
			return fmt.Errorf("ttd: more than %d names", NumStrings)
		}
		b, err := encodeString(name, StringLength-1)
		if err != nil {
			return err
		}
		copy(s.strings[next][:], b)
		*id = uint16(firstCustomTextID + next)
		next++
		return nil
	}
	for i := range s.Towns {
		t := &s.Towns[i]
		if !t.Used() {
			t.nameID = 0
			continue
		}
		if err := custom(t.Name, &t.nameID); err != nil {
			return fmt.Errorf("town %d: %w", i, err)
		}
	}
	for i := range s.Companies {
		c := &s.Companies[i]
		if !c.Used() {
			continue
		}
		if err := custom(c.Name, &c.nameID); err != nil {
			return fmt.Errorf("company %d: %w", i, err)
		}
		if err := custom(c.ManagerName, &c.managerID); err != nil {
			return fmt.Errorf("company %d manager: %w", i, err)
		}
	}
	return nil
}
