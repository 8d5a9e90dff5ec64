package app

import (
	"path/filepath"
	"strings"
	"time"
)

// SnapshotPath names an interactive snapshot taken at now. The timestamp goes
// before the extension of base; an empty base writes a PNG in the working
// directory.
func SnapshotPath(base string, now time.Time) string {
	stamp := now.Format("20060102-150405.000")
	if base == "" {
		return "yaws-" + stamp + ".png"
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + stamp + ext
}
