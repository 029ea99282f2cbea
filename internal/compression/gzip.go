package compression

import (
	"compress/gzip"
	"fmt"
	"io"
)

// Gzip compresses src into dst and returns the number of uncompressed bytes
// consumed. The count is what callers use to detect empty dump streams.
func Gzip(dst io.Writer, src io.Reader) (int64, error) {
	gz := gzip.NewWriter(dst)

	n, err := io.Copy(gz, src)
	if err != nil {
		_ = gz.Close()
		return n, fmt.Errorf("gzip copy: %w", err)
	}

	// gzip flushes its trailer on Close.
	if err := gz.Close(); err != nil {
		return n, fmt.Errorf("gzip close: %w", err)
	}
	return n, nil
}
