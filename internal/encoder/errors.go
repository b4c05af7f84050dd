package encoder

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// ErrCancelled is matched by errors.Is when a remux was stopped through
// its context.
var ErrCancelled = errors.New("remux cancelled")

// RemuxError describes a failed ffmpeg run.
type RemuxError struct {
	Input       string
	ExitCode    int
	Description string   // OS description of the exit code, may be empty
	StderrTail  []string // last lines ffmpeg wrote to stderr
	Cancelled   bool
	Err         error
}

func (e *RemuxError) Error() string {
	var b strings.Builder
	if e.Cancelled {
		fmt.Fprintf(&b, "remux of %s cancelled", e.Input)
	} else {
		fmt.Fprintf(&b, "failed to process %s: exit code %d", e.Input, e.ExitCode)
		if e.Description != "" {
			fmt.Fprintf(&b, " (%s)", e.Description)
		}
	}
	if len(e.StderrTail) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.StderrTail, "\n"))
	}
	return b.String()
}

func (e *RemuxError) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cancelled {
		errs = append(errs, ErrCancelled)
	}
	return errs
}

// describeExitCode maps an exit code to the platform's errno text.
func describeExitCode(code int) string {
	if code <= 0 {
		return ""
	}
	desc := syscall.Errno(code).Error()
	if strings.HasPrefix(desc, "errno ") {
		return ""
	}
	return desc
}

// tail keeps the last n lines written to it.
type tail struct {
	n     int
	lines []string
}

func newTail(n int) *tail { return &tail{n: n} }

func (t *tail) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if len(t.lines) == t.n {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.n-1]
	}
	t.lines = append(t.lines, line)
}

func (t *tail) snapshot() []string {
	return append([]string(nil), t.lines...)
}
