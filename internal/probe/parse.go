package probe

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 02:27:57.535000000
	durationRe = regexp.MustCompile(`^(\d+):(\d+):(\d+(?:\.\d+)?)`)
	// 24000/1001
	frameRateRe = regexp.MustCompile(`^(\d+)/(\d+)`)
)

// ParseDuration converts an "HH:MM:SS.fff" tag value into seconds.
func ParseDuration(s string) (float64, bool) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h)*3600 + float64(min)*60 + sec, true
}

// ParseFrameRate converts an "N/D" rational into frames per second.
// A zero denominator is treated as malformed.
func ParseFrameRate(s string) (float64, bool) {
	m := frameRateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	n, err1 := strconv.Atoi(m[1])
	d, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}
