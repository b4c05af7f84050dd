package media

import (
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"trimmer/internal/model"
	"trimmer/internal/probe"
)

// allowedSpread is the relative difference under which duration or frame
// rate estimates from different sources are considered consistent.
const allowedSpread = 0.01

// Estimate is the expected length of a file. The zero value means unknown.
type Estimate struct {
	Seconds float64
	Frames  int64
	FPS     float64
}

// Known reports whether progress can be expressed as a percentage.
func (e Estimate) Known() bool { return e.Frames > 0 }

// EstimateDuration derives the file length from the container tags and the
// per-track durations, and the frame rate from the video tracks.
func EstimateDuration(tracks []model.Track, md *model.Metadata, logger zerolog.Logger) Estimate {
	var durations, rates []float64

	if md != nil {
		for _, key := range []string{"DURATION", "duration"} {
			v, ok := md.Get(key)
			if !ok {
				continue
			}
			if d, ok := parseTagDuration(v); ok {
				durations = append(durations, d)
			} else {
				logger.Warn().Str("tag", key).Str("value", v).Msg("ignoring unparsable container duration")
			}
		}
	}

	for _, t := range tracks {
		if t.Kind == model.KindVideo && t.FrameRate != 0 {
			rates = append(rates, t.FrameRate)
		}
		if t.Duration != 0 {
			durations = append(durations, t.Duration)
		}
	}

	seconds, ok1 := reduce("duration", durations, logger)
	fps, ok2 := reduce("frame rate", rates, logger)
	if !ok1 || !ok2 {
		return Estimate{}
	}
	return Estimate{
		Seconds: seconds,
		Frames:  int64(math.Floor(seconds * fps)),
		FPS:     fps,
	}
}

// reduce collapses candidate values into one. Values within allowedSpread
// of each other yield the first; otherwise the truncated average is used.
func reduce(name string, values []float64, logger zerolog.Logger) (float64, bool) {
	switch len(values) {
	case 0:
		logger.Warn().Str("estimate", name).Msg("cannot estimate: no tracks")
		return 0, false
	case 1:
		return values[0], true
	}

	lo, hi, sum := values[0], values[0], 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	if hi-lo > hi*allowedSpread {
		logger.Warn().Str("estimate", name).Floats64("values", values).Msg("estimations are different")
		return math.Floor(sum / float64(len(values))), true
	}
	return values[0], true
}

// parseTagDuration accepts both plain seconds and the HH:MM:SS.fff form.
func parseTagDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if d, err := strconv.ParseFloat(s, 64); err == nil {
		return d, true
	}
	return probe.ParseDuration(s)
}
