package compression

import (
	"compress/gzip"
	"fmt"
	"io"
)

// Gunzip returns a reader yielding the decompressed contents of src, suitable
// for streaming straight into a child process stdin. The caller closes it.
func Gunzip(src io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return gr, nil
}
