package backup

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Artifact extensions, without the leading dot.
const (
	ExtPostgres = "sql.gz"
	ExtMongoDB  = "archive.gz"
)

// keyTimeLayout is wire-visible: other NestVault instances reading the same
// bucket parse it back. Changing it breaks interoperability.
const keyTimeLayout = "20060102_150405"

// FormatKey builds the remote key {database}_{YYYYMMDD}_{HHMMSS}.{ext} in
// UTC at second resolution.
func FormatKey(database string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", database, at.UTC().Format(keyTimeLayout), ext)
}

// ParseKey recovers the database name and exact creation time from a key
// produced by FormatKey. Keys that do not follow the naming convention
// return ok=false; callers treat those objects as foreign and leave them
// alone.
func ParseKey(key string) (database string, at time.Time, ok bool) {
	base := path.Base(key)

	i := strings.LastIndexByte(base, '.')
	for i > 0 {
		if ext := base[i+1:]; ext == ExtPostgres || ext == ExtMongoDB {
			break
		}
		i = strings.LastIndexByte(base[:i], '.')
	}
	if i <= 0 {
		return "", time.Time{}, false
	}
	stem := base[:i]

	// The timestamp is the last two underscore-separated segments; anything
	// before them is the database name, which may itself contain underscores.
	j := strings.LastIndexByte(stem, '_')
	if j <= 0 {
		return "", time.Time{}, false
	}
	k := strings.LastIndexByte(stem[:j], '_')
	if k <= 0 {
		return "", time.Time{}, false
	}

	ts, err := time.ParseInLocation(keyTimeLayout, stem[k+1:], time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}
	return stem[:k], ts, true
}
