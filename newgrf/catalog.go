package newgrf

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Catalog is the set of packages available locally.
type Catalog struct {
	entries []*Config
}

func NewCatalog(entries ...*Config) *Catalog {
	return &Catalog{entries: entries}
}

func (c *Catalog) Add(cfg *Config) {
	c.entries = append(c.entries, cfg)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

type catalogFile struct {
	GRFs []struct {
		GRFID              string   `yaml:"grfid"`
		MD5                string   `yaml:"md5"`
		Filename           string   `yaml:"filename"`
		Name               string   `yaml:"name"`
		Version            uint32   `yaml:"version"`
		MinLoadableVersion uint32   `yaml:"min_loadable_version"`
		Params             []uint32 `yaml:"params"`
	} `yaml:"grfs"`
}

// LoadCatalog reads a YAML catalog. Entries without an md5 are hashed from
// their file, relative to the catalog's directory.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cat := &Catalog{}
	for _, e := range f.GRFs {
		id, err := strconv.ParseUint(e.GRFID, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: grfid %q: %w", path, e.GRFID, err)
		}
		cfg := &Config{
			Ident:              Identity{GRFID: uint32(id)},
			Filename:           e.Filename,
			Name:               e.Name,
			Version:            e.Version,
			MinLoadableVersion: e.MinLoadableVersion,
			Params:             e.Params,
		}
		if e.MD5 != "" {
			if cfg.Ident.MD5, err = ParseMD5(e.MD5); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		} else {
			if cfg.Ident.MD5, err = HashFile(filepath.Join(filepath.Dir(path), e.Filename)); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		cat.Add(cfg)
	}
	return cat, nil
}

func HashFile(path string) (MD5, error) {
	var sum MD5
	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("hash %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

type MatchMode uint8

const (
	// MatchExact needs both ID and checksum to match.
	MatchExact MatchMode = iota
	// MatchCompatible takes the newest package with the ID that can still load
	// content saved with the wanted version.
	MatchCompatible
)

// Find looks up a package by ID. md5 is only consulted for MatchExact.
func (c *Catalog) Find(grfid uint32, mode MatchMode, md5 *MD5, version uint32) *Config {
	var best *Config
	for _, e := range c.entries {
		if e.Ident.GRFID != grfid {
			continue
		}
		if mode == MatchExact {
			if md5 == nil || e.Ident.MD5 == *md5 {
				return e
			}
			continue
		}
		if e.Flags.Has(FlagInvalid) || e.MinLoadableVersion > version {
			continue
		}
		if best == nil || e.Version > best.Version {
			best = e
		}
	}
	return best
}
