package encoder

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// frame=2567
	frameRe = regexp.MustCompile(`^frame=(\d+)`)
	// fps=13.90
	fpsRe = regexp.MustCompile(`^fps=(\d+(?:\.\d+)?)`)
)

// ProgressState tracks the frame counter and speed reported by ffmpeg's
// -progress output.
type ProgressState struct {
	Frame int64
	FPS   float64

	seenFrame bool
	seenFPS   bool
}

// Feed parses one line and reports the current values. changed is true
// when the line carried a value that was never seen or differs from the
// previous one, so observers are not flooded with repeats.
func (ps *ProgressState) Feed(line string) (frame int64, fps float64, changed bool) {
	line = strings.TrimSpace(line)

	if m := frameRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			if !ps.seenFrame || v != ps.Frame {
				changed = true
			}
			ps.Frame, ps.seenFrame = v, true
		}
	}
	if m := fpsRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if !ps.seenFPS || v != ps.FPS {
				changed = true
			}
			ps.FPS, ps.seenFPS = v, true
		}
	}
	return ps.Frame, ps.FPS, changed
}
