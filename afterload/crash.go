package afterload

import (
	"fmt"
	"runtime/debug"
	"strings"

	"ttdmap/newgrf"
)

// CrashError reports a panic raised while migrating or decoding a game.
type CrashError struct {
	Value any
	Stack []byte
	// Missing and Compatible are the packages that did not resolve exactly,
	// the usual suspects for a crash during loading.
	Missing    newgrf.List
	Compatible newgrf.List
}

func (e *CrashError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loading the savegame crashed: %v\n", e.Value)
	if len(e.Missing) == 0 && len(e.Compatible) == 0 {
		b.WriteString("This is probably caused by a corruption in the savegame.")
		return b.String()
	}
	b.WriteString("This is most likely caused by a missing NewGRF or a replacement with the same GRF ID. ")
	b.WriteString("Please load the savegame with the appropriate NewGRFs installed.\n")
	for _, g := range e.Compatible {
		fmt.Fprintf(&b, "NewGRF %s (checksum %s) not found; loaded %q with the same GRF ID instead\n",
			newgrf.GRFIDString(g.Ident.GRFID), g.OrigMD5, g.Filename)
	}
	for _, g := range e.Missing {
		fmt.Fprintf(&b, "NewGRF %s (%s) not found; checksum %s\n",
			newgrf.GRFIDString(g.Ident.GRFID), g.Filename, g.Ident.MD5)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// guard runs f and turns a panic into a *CrashError naming the packages of grfs
// that did not resolve.
func guard(grfs newgrf.List, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CrashError{
				Value:      r,
				Stack:      debug.Stack(),
				Missing:    grfs.Missing(),
				Compatible: grfs.Compatible(),
			}
		}
	}()
	return f()
}
