package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKey(t *testing.T) {
	at := time.Date(2026, 1, 15, 12, 0, 5, 0, time.UTC)

	assert.Equal(t, "mydb_20260115_120005.sql.gz", FormatKey("mydb", at, ExtPostgres))
	assert.Equal(t, "mydb_20260115_120005.archive.gz", FormatKey("mydb", at, ExtMongoDB))
}

func TestFormatKeyZeroPadsAndUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	at := time.Date(2026, 3, 4, 1, 2, 3, 0, loc)

	assert.Equal(t, "app_20260303_230203.sql.gz", FormatKey("app", at, ExtPostgres))
}

func TestParseKeyRoundTrip(t *testing.T) {
	cases := []struct {
		database string
		ext      string
	}{
		{"mydb", ExtPostgres},
		{"orders", ExtMongoDB},
		{"my_app_db", ExtPostgres}, // underscores in the database name
	}

	at := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	for _, tc := range cases {
		key := FormatKey(tc.database, at, tc.ext)

		db, got, ok := ParseKey(key)
		require.True(t, ok, "ParseKey(%q)", key)
		assert.Equal(t, tc.database, db)
		assert.True(t, got.Equal(at), "ParseKey(%q) time = %s, want %s", key, got, at)
	}
}

func TestParseKeyRejectsForeignObjects(t *testing.T) {
	for _, key := range []string{
		"",
		"readme.txt",
		"mydb.sql.gz",
		"mydb_20260830.sql.gz",
		"mydb_20260830_120000.tar.gz",
		"mydb_2026083_120000.sql.gz",
		"_20260830_120000.sql.gz",
	} {
		_, _, ok := ParseKey(key)
		assert.False(t, ok, "ParseKey(%q) should fail", key)
	}
}
