package newgrf

import "slices"

// ListCompatibility summarises how well a saved list resolved.
type ListCompatibility uint8

const (
	AllGood ListCompatibility = iota
	CompatibleFound
	NotFound
)

func (c ListCompatibility) String() string {
	switch c {
	case AllGood:
		return "all good"
	case CompatibleFound:
		return "compatible"
	case NotFound:
		return "not found"
	}
	return "invalid"
}

// IsGoodGRFConfigList resolves every entry of list against cat, in three tiers:
// an exact ID and checksum match, then a package with the same ID, then not
// found. Entries are updated in place; a compatible match keeps the saved
// checksum in OrigMD5. A missing package outranks a compatible one in the result.
func IsGoodGRFConfigList(list List, cat *Catalog) ListCompatibility {
	res := AllGood
	for _, c := range list {
		f := cat.Find(c.Ident.GRFID, MatchExact, &c.Ident.MD5, 0)
		if f == nil || f.Flags.Has(FlagInvalid) {
			f = cat.Find(c.Ident.GRFID, MatchCompatible, nil, c.Version)
			if f == nil {
				c.Status = StatusNotFound
				res = NotFound
				continue
			}
			if !c.Flags.Has(FlagCompatible) {
				c.Flags |= FlagCompatible
				c.OrigMD5 = c.Ident.MD5
			}
			if res != NotFound {
				res = CompatibleFound
			}
		}
		if !c.Flags.Has(FlagCopy) {
			c.Filename = f.Filename
			c.Ident.MD5 = f.Ident.MD5
			c.Name = f.Name
			c.Version = f.Version
			c.MinLoadableVersion = f.MinLoadableVersion
			if len(c.Params) == 0 {
				c.Params = slices.Clone(f.Params)
			}
		}
	}
	return res
}
