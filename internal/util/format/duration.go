package format

import (
	"fmt"
	"time"
)

// HumanizeDuration renders a length in seconds for display. Zero means the
// length is unknown; short clips are shown in seconds, longer ones as
// MM:SS or HH:MM:SS.
func HumanizeDuration(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	s := int64(seconds)
	switch {
	case seconds < 120:
		return fmt.Sprintf("%02d seconds", s)
	case seconds < 3600:
		return fmt.Sprintf("%02d:%02d", s/60, s%60)
	default:
		return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
}

// ETA formats a remaining-time estimate. Zero or negative values render as "--:--".
func ETA(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	s := int64(d.Round(time.Second) / time.Second)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
