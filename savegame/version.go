// Package savegame reads and writes games as a versioned stream of tagged
// chunks. The map travels as packed per-tile planes; Decode and Encode turn
// those into the typed tile contents of package tile and back.
package savegame

import (
	"errors"
	"fmt"
)

// Version is the schema revision a file was written with. Minor revisions
// only matter to the oldest migrations.
type Version struct {
	Major uint16
	Minor uint16
}

// Current is the revision this package writes.
var Current = Version{Major: 215}

func V(major uint16, minor ...uint16) Version {
	v := Version{Major: major}
	if len(minor) > 0 {
		v.Minor = minor[0]
	}
	return v
}

// Before reports whether v predates o.
func (v Version) Before(o Version) bool {
	return v.Major < o.Major || (v.Major == o.Major && v.Minor < o.Minor)
}

func (v Version) String() string {
	if v.Minor == 0 {
		return fmt.Sprintf("%d", v.Major)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

var (
	ErrUnknownFormat = errors.New("savegame: unknown compression format")
	ErrCorrupt       = errors.New("savegame: corrupt")
)

// VersionError is returned for files newer than Current.
type VersionError struct {
	Got Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("savegame: version %v is newer than supported %v", e.Got, Current)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
