package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzipRoundTrip(t *testing.T) {
	src := strings.Repeat("INSERT INTO t VALUES (1);\n", 100)

	var compressed bytes.Buffer
	n, err := Gzip(&compressed, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Less(t, compressed.Len(), len(src))

	gr, err := Gunzip(&compressed)
	require.NoError(t, err)
	defer gr.Close()

	out, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

// A dump tool that produces no output yields n == 0, which callers use to
// reject the snapshot. The gzip container itself is still well formed.
func TestGzipEmptySource(t *testing.T) {
	var compressed bytes.Buffer
	n, err := Gzip(&compressed, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotZero(t, compressed.Len())

	gr, err := Gunzip(&compressed)
	require.NoError(t, err)
	defer gr.Close()

	out, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGunzipRejectsGarbage(t *testing.T) {
	_, err := Gunzip(strings.NewReader("not a gzip stream"))
	require.Error(t, err)
}
