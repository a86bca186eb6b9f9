// Package newgrf tracks the external content packages a game depends on and
// matches a saved list against the packages available locally.
package newgrf

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
)

type MD5 [16]byte

func (m MD5) String() string {
	return hex.EncodeToString(m[:])
}

func ParseMD5(s string) (MD5, error) {
	var m MD5
	b, err := hex.DecodeString(s)
	if err != nil {
		return m, fmt.Errorf("md5 %q: %w", s, err)
	}
	if len(b) != len(m) {
		return m, fmt.Errorf("md5 %q: want %d bytes, got %d", s, len(m), len(b))
	}
	copy(m[:], b)
	return m, nil
}

// Identity names a package: its GRF ID plus the checksum of its content.
type Identity struct {
	GRFID uint32
	MD5   MD5
}

// GRFIDString prints the ID the way players see it, in file byte order.
func GRFIDString(id uint32) string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], id)
	return fmt.Sprintf("%08X", binary.BigEndian.Uint32(b[:]))
}

func (i Identity) String() string {
	return GRFIDString(i.GRFID) + ":" + i.MD5.String()
}

type Status uint8

const (
	StatusUnknown Status = iota
	StatusDisabled
	StatusNotFound
	StatusInitialised
	StatusActivated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusDisabled:
		return "disabled"
	case StatusNotFound:
		return "not found"
	case StatusInitialised:
		return "initialised"
	case StatusActivated:
		return "activated"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

type Flags uint8

const (
	FlagStatic Flags = 1 << iota
	FlagCompatible
	FlagCopy
	FlagInitOnly
	FlagReserved
	FlagInvalid
)

func (f Flags) Has(x Flags) bool {
	return f&x != 0
}

// Config is one entry of a game's package list.
type Config struct {
	Ident Identity
	// Checksum the game was saved with, kept once a compatible package replaced it.
	OrigMD5            MD5
	Filename           string
	Name               string
	Status             Status
	Flags              Flags
	Version            uint32
	MinLoadableVersion uint32
	Params             []uint32
}

func (c *Config) Clone() *Config {
	v := *c
	v.Params = slices.Clone(c.Params)
	return &v
}

// List is the ordered package list of a game.
type List []*Config

func (l List) Clone() List {
	out := make(List, len(l))
	for i, c := range l {
		out[i] = c.Clone()
	}
	return out
}

// Missing returns the entries that could not be resolved.
func (l List) Missing() List {
	var out List
	for _, c := range l {
		if c.Status == StatusNotFound {
			out = append(out, c)
		}
	}
	return out
}

// Compatible returns the entries that were replaced by a package with the same ID.
func (l List) Compatible() List {
	var out List
	for _, c := range l {
		if c.Flags.Has(FlagCompatible) {
			out = append(out, c)
		}
	}
	return out
}
