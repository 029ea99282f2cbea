package backup

import (
	"errors"
	"os/exec"
)

// stderrTailLimit bounds how much tool stderr is kept for error reporting.
const stderrTailLimit = 4 * 1024

// tailBuffer keeps the last stderrTailLimit bytes written to it. Dump tools
// can emit megabytes of warnings; only the tail is useful in an error.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if overflow := len(t.buf) - stderrTailLimit; overflow > 0 {
		t.buf = t.buf[overflow:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

// exitCode extracts the child exit code from a Wait error, or -1 when the
// process never ran or was killed by a signal.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
