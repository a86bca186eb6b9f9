package savegame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"gopkg.in/yaml.v3"

	"ttdmap/newgrf"
	"ttdmap/settings"
	"ttdmap/tile"
)

const headerSize = 8

// Write stores s with the given compression. The chunk layout follows
// s.Version, so a migrated snapshot must have its version raised first.
func Write(w io.Writer, s *Snapshot, c Compression) error {
	var hdr [headerSize]byte
	copy(hdr[:4], c.Tag())
	binary.BigEndian.PutUint16(hdr[4:], s.Version.Major)
	binary.BigEndian.PutUint16(hdr[6:], s.Version.Minor)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	zw, err := newCompressor(w, c)
	if err != nil {
		return err
	}
	if err := writeChunks(zw, s); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func writeChunks(w io.Writer, s *Snapshot) error {
	ver := s.Version.Major
	cw := newChunkWriter(w)
	put := func(id string, v any) error {
		b, err := marshal(v, ver)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", id, err)
		}
		cw.riff(id, b)
		return nil
	}

	if err := put("META", &metaRecord{ID: s.ID}); err != nil {
		return err
	}
	if err := put("DATE", &s.Date); err != nil {
		return err
	}
	if s.Version.Before(V(215)) {
		if err := put("OPTS", &optsRecord{Difficulty: s.OldDifficulty}); err != nil {
			return err
		}
	}
	yml, err := s.Settings.Marshal()
	if err != nil {
		return fmt.Errorf("chunk PATS: %w", err)
	}
	if err := put("PATS", &patsRecord{Settings: string(yml)}); err != nil {
		return err
	}

	grfs := make([][]byte, len(s.GRFs))
	for i, g := range s.GRFs {
		rec := grfRecord{
			Filename:           g.Filename,
			GRFID:              g.Ident.GRFID,
			MD5:                g.Ident.MD5,
			Version:            g.Version,
			MinLoadableVersion: g.MinLoadableVersion,
			Flags:              uint8(g.Flags &^ newgrf.FlagCompatible),
			Params:             g.Params,
		}
		if g.Flags.Has(newgrf.FlagCompatible) {
			rec.MD5 = g.OrigMD5
		}
		if grfs[i], err = marshal(&rec, ver); err != nil {
			return fmt.Errorf("chunk NGRF: %w", err)
		}
	}
	cw.array("NGRF", grfs)

	if err := put("MAPS", &mapRecord{SizeX: uint32(s.SizeX()), SizeY: uint32(s.SizeY())}); err != nil {
		return err
	}
	p := &s.Planes
	cw.riff("MAPT", p.Type)
	cw.riff("MAPH", p.Height)
	cw.riff("MAP1", p.M1)
	cw.riff("MAP2", u16Bytes(p.M2))
	cw.riff("MAP3", p.M3)
	cw.riff("MAP4", p.M4)
	cw.riff("MAP5", p.M5)
	cw.riff("MAP6", p.M6)
	cw.riff("MAP7", p.M7)
	if !s.Version.Before(V(200)) {
		cw.riff("MAP8", u16Bytes(p.M8))
	}

	if err := writeSparse(cw, "CITY", s.Towns, ver, func(r *TownRecord) uint32 { return r.Index }); err != nil {
		return err
	}
	if err := writeSparse(cw, "STNN", s.Stations, ver, func(r *StationRecord) uint32 { return r.Index }); err != nil {
		return err
	}
	if !s.Version.Before(V(147)) {
		if err := writeSparse(cw, "OBJS", s.Objects, ver, func(r *ObjectRecord) uint32 { return r.Index }); err != nil {
			return err
		}
	}
	if err := writeSparse(cw, "INDY", s.Industries, ver, func(r *IndustryRecord) uint32 { return r.Index }); err != nil {
		return err
	}
	if err := writeSparse(cw, "VEHS", s.Vehicles, ver, func(r *VehicleRecord) uint32 { return r.Index }); err != nil {
		return err
	}

	players := make([][]byte, len(s.Companies))
	for i, c := range s.Companies {
		if c == nil {
			continue
		}
		if players[i], err = marshal(c, ver); err != nil {
			return fmt.Errorf("chunk PLYR: %w", err)
		}
	}
	cw.array("PLYR", players)
	return cw.close()
}

func writeSparse[T any](cw *chunkWriter, id string, recs []T, ver uint16, index func(*T) uint32) error {
	idx := make([]uint32, len(recs))
	elems := make([][]byte, len(recs))
	for i := range recs {
		b, err := marshal(&recs[i], ver)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", id, err)
		}
		if len(b) == 0 {
			return fmt.Errorf("chunk %s: empty record %d", id, i)
		}
		idx[i] = index(&recs[i])
		elems[i] = b
	}
	cw.sparse(id, idx, elems)
	return nil
}

// Read parses a savegame into a snapshot of the version it was written with.
func Read(r io.Reader) (*Snapshot, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	c, err := compressionFromTag(string(hdr[:4]))
	if err != nil {
		return nil, err
	}
	v := Version{Major: binary.BigEndian.Uint16(hdr[4:]), Minor: binary.BigEndian.Uint16(hdr[6:])}
	if Current.Before(v) {
		return nil, &VersionError{Got: v}
	}
	zr, err := newDecompressor(r, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	chunks, err := readChunks(bufio.NewReader(zr))
	if err != nil {
		return nil, err
	}
	return snapshotFromChunks(v, chunks)
}

func snapshotFromChunks(v Version, chunks map[string]*chunk) (*Snapshot, error) {
	ver := v.Major
	riff := func(id string, required bool) ([]byte, error) {
		c, ok := chunks[id]
		if !ok {
			if required {
				return nil, corrupt("missing chunk %s", id)
			}
			return nil, nil
		}
		if c.typ != chunkRIFF {
			return nil, corrupt("chunk %s: want RIFF, got type %d", id, c.typ)
		}
		return c.data, nil
	}
	get := func(id string, required bool, dst any) error {
		b, err := riff(id, required)
		if err != nil || b == nil {
			return err
		}
		if err := unmarshal(b, dst, ver); err != nil {
			return fmt.Errorf("chunk %s: %w", id, err)
		}
		return nil
	}

	var mr mapRecord
	if err := get("MAPS", true, &mr); err != nil {
		return nil, err
	}
	logX, err := mapLog(mr.SizeX)
	if err != nil {
		return nil, err
	}
	logY, err := mapLog(mr.SizeY)
	if err != nil {
		return nil, err
	}
	s := NewSnapshot(v, logX, logY)

	var meta metaRecord
	if err := get("META", true, &meta); err != nil {
		return nil, err
	}
	s.ID = meta.ID
	if err := get("DATE", true, &s.Date); err != nil {
		return nil, err
	}
	var opts optsRecord
	if err := get("OPTS", false, &opts); err != nil {
		return nil, err
	}
	s.OldDifficulty = opts.Difficulty
	var pats patsRecord
	if err := get("PATS", true, &pats); err != nil {
		return nil, err
	}
	s.Settings = settings.Default()
	if err := yaml.Unmarshal([]byte(pats.Settings), &s.Settings); err != nil {
		return nil, corrupt("chunk PATS: %v", err)
	}

	if c, ok := chunks["NGRF"]; ok {
		for _, i := range c.order {
			var rec grfRecord
			if err := unmarshal(c.elems[i], &rec, ver); err != nil {
				return nil, fmt.Errorf("chunk NGRF: %w", err)
			}
			s.GRFs = append(s.GRFs, &newgrf.Config{
				Ident:              newgrf.Identity{GRFID: rec.GRFID, MD5: rec.MD5},
				Filename:           rec.Filename,
				Flags:              newgrf.Flags(rec.Flags),
				Version:            rec.Version,
				MinLoadableVersion: rec.MinLoadableVersion,
				Params:             rec.Params,
			})
		}
	}

	n := s.Planes.Len()
	p := &s.Planes
	for _, pl := range []struct {
		id       string
		dst      []uint8
		required bool
	}{
		{"MAPT", p.Type, true},
		{"MAPH", p.Height, true},
		{"MAP1", p.M1, true},
		{"MAP3", p.M3, true},
		{"MAP4", p.M4, true},
		{"MAP5", p.M5, true},
		{"MAP6", p.M6, true},
		{"MAP7", p.M7, true},
	} {
		b, err := riff(pl.id, pl.required)
		if err != nil {
			return nil, err
		}
		if len(b) != n {
			return nil, corrupt("chunk %s: %d bytes for %d tiles", pl.id, len(b), n)
		}
		copy(pl.dst, b)
	}
	for _, pl := range []struct {
		id       string
		dst      []uint16
		required bool
	}{
		{"MAP2", p.M2, true},
		{"MAP8", p.M8, !v.Before(V(200))},
	} {
		b, err := riff(pl.id, pl.required)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		if len(b) != 2*n {
			return nil, corrupt("chunk %s: %d bytes for %d tiles", pl.id, len(b), n)
		}
		for i := range pl.dst {
			pl.dst[i] = binary.BigEndian.Uint16(b[2*i:])
		}
	}

	if s.Towns, err = readSparse(chunks, "CITY", ver, func(r *TownRecord, i uint32) { r.Index = i }); err != nil {
		return nil, err
	}
	if s.Stations, err = readSparse(chunks, "STNN", ver, func(r *StationRecord, i uint32) { r.Index = i }); err != nil {
		return nil, err
	}
	if s.Objects, err = readSparse(chunks, "OBJS", ver, func(r *ObjectRecord, i uint32) { r.Index = i }); err != nil {
		return nil, err
	}
	if s.Industries, err = readSparse(chunks, "INDY", ver, func(r *IndustryRecord, i uint32) { r.Index = i }); err != nil {
		return nil, err
	}
	if s.Vehicles, err = readSparse(chunks, "VEHS", ver, func(r *VehicleRecord, i uint32) { r.Index = i }); err != nil {
		return nil, err
	}
	if c, ok := chunks["PLYR"]; ok {
		for _, i := range c.order {
			if i >= tile.MaxCompanies {
				return nil, corrupt("chunk PLYR: company %d", i)
			}
			rec := &CompanyRecord{}
			if err := unmarshal(c.elems[i], rec, ver); err != nil {
				return nil, fmt.Errorf("chunk PLYR: %w", err)
			}
			s.Companies[i] = rec
		}
	}
	return s, nil
}

func readSparse[T any](chunks map[string]*chunk, id string, ver uint16, setIndex func(*T, uint32)) ([]T, error) {
	c, ok := chunks[id]
	if !ok {
		return nil, nil
	}
	if c.typ == chunkRIFF {
		return nil, corrupt("chunk %s: want array", id)
	}
	out := make([]T, len(c.order))
	for n, i := range c.order {
		if err := unmarshal(c.elems[i], &out[n], ver); err != nil {
			return nil, fmt.Errorf("chunk %s element %d: %w", id, i, err)
		}
		setIndex(&out[n], i)
	}
	return out, nil
}

func mapLog(size uint32) (uint, error) {
	if size == 0 || size&(size-1) != 0 {
		return 0, corrupt("map size %d is not a power of two", size)
	}
	l := uint(bits.TrailingZeros32(size))
	if l < tile.MinMapSizeBits || l > tile.MaxMapSizeBits {
		return 0, corrupt("map size %d out of range", size)
	}
	return l, nil
}

func u16Bytes(v []uint16) []byte {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint16(b[2*i:], x)
	}
	return b
}
