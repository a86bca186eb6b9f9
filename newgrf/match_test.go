package newgrf

import (
	"crypto/md5"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sum(s string) MD5 {
	return MD5(md5.Sum([]byte(s)))
}

func TestIsGoodGRFConfigListTiers(t *testing.T) {
	cat := NewCatalog(
		&Config{Ident: Identity{GRFID: 1, MD5: sum("a")}, Filename: "a.grf", Name: "A", Version: 1},
		&Config{Ident: Identity{GRFID: 2, MD5: sum("b2")}, Filename: "b2.grf", Name: "B", Version: 2},
		&Config{Ident: Identity{GRFID: 2, MD5: sum("b3")}, Filename: "b3.grf", Name: "B", Version: 3},
	)

	for _, c := range []struct {
		name string
		list List
		want ListCompatibility
	}{
		{"exact", List{{Ident: Identity{GRFID: 1, MD5: sum("a")}}}, AllGood},
		{"compatible", List{{Ident: Identity{GRFID: 2, MD5: sum("b1")}, Version: 1}}, CompatibleFound},
		{"missing", List{{Ident: Identity{GRFID: 9, MD5: sum("z")}}}, NotFound},
		{"missing wins", List{
			{Ident: Identity{GRFID: 9, MD5: sum("z")}},
			{Ident: Identity{GRFID: 2, MD5: sum("b1")}},
		}, NotFound},
	} {
		if got := IsGoodGRFConfigList(c.list, cat); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCompatibleKeepsOriginalChecksum(t *testing.T) {
	cat := NewCatalog(
		&Config{Ident: Identity{GRFID: 2, MD5: sum("b2")}, Filename: "b2.grf", Version: 2},
		&Config{Ident: Identity{GRFID: 2, MD5: sum("b3")}, Filename: "b3.grf", Version: 3},
	)
	c := &Config{Ident: Identity{GRFID: 2, MD5: sum("old")}, Filename: "old.grf"}
	IsGoodGRFConfigList(List{c}, cat)

	want := &Config{
		Ident:    Identity{GRFID: 2, MD5: sum("b3")},
		OrigMD5:  sum("old"),
		Filename: "b3.grf",
		Flags:    FlagCompatible,
		Version:  3,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	// a second pass must not overwrite the saved checksum
	IsGoodGRFConfigList(List{c}, cat)
	if c.OrigMD5 != sum("old") {
		t.Errorf("OrigMD5 = %v after second pass", c.OrigMD5)
	}
}

func TestMissingIsMarked(t *testing.T) {
	c := &Config{Ident: Identity{GRFID: 7}}
	IsGoodGRFConfigList(List{c}, NewCatalog())
	if c.Status != StatusNotFound {
		t.Errorf("status = %v", c.Status)
	}
	if got := (List{c}).Missing(); len(got) != 1 {
		t.Errorf("Missing = %v", got)
	}
}

func TestLoadCatalogHashesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.grf"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	yml := "grfs:\n  - grfid: \"4D470101\"\n    filename: x.grf\n    name: X\n    version: 4\n"
	path := filepath.Join(dir, "grfs.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	want := sum("content")
	got := cat.Find(0x4D470101, MatchExact, &want, 0)
	if got == nil {
		t.Fatal("hashed entry not found")
	}
	if got.Version != 4 || got.Name != "X" {
		t.Errorf("entry = %+v", got)
	}
}

func TestGRFIDString(t *testing.T) {
	if got := GRFIDString(0x0101474D); got != "4D470101" {
		t.Errorf("GRFIDString = %s", got)
	}
}
