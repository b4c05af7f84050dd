package progress

import (
	"math"
	"time"
)

const (
	etaInitialAlpha = 0.2
	etaMinAlpha     = 0.05
	etaAlphaDecay   = 0.1

	// estimates longer than this multiple of the elapsed time are noise
	etaElapsedCap = 10
)

// ETA estimates the remaining time of an operation from a stream of
// completion percentages. Throughput and the estimate itself are both
// smoothed with an exponential moving average whose weight decays as
// samples accumulate. ETA is not safe for concurrent use.
type ETA struct {
	start       time.Time
	prevTime    time.Time
	prevPercent float64

	eta      float64 // seconds
	speedAvg float64 // percent per second
	haveAvg  bool
	alpha    float64
	samples  int
}

// NewETA returns a calculator starting at startPercent at time start.
func NewETA(start time.Time, startPercent float64) *ETA {
	e := &ETA{}
	e.Reset(start, startPercent)
	return e
}

// Reset discards all samples.
func (e *ETA) Reset(start time.Time, startPercent float64) {
	*e = ETA{
		start:       start,
		prevTime:    start,
		prevPercent: startPercent,
		alpha:       etaInitialAlpha,
	}
}

// Feed records percent at the current time.
func (e *ETA) Feed(percent float64) {
	e.FeedAt(time.Now(), percent)
}

// FeedAt records percent at now. Samples that do not advance time or
// progress are ignored.
func (e *ETA) FeedAt(now time.Time, percent float64) {
	dt := now.Sub(e.prevTime).Seconds()
	if dt <= 0 || percent <= e.prevPercent {
		return
	}

	speed := (percent - e.prevPercent) / dt
	if !e.haveAvg {
		e.speedAvg = speed
		e.haveAvg = true
	} else {
		e.speedAvg = (1-e.alpha)*e.speedAvg + e.alpha*speed
	}

	e.samples++
	e.alpha = math.Max(etaMinAlpha, etaInitialAlpha/(1+etaAlphaDecay*float64(e.samples)))

	if e.speedAvg > 0 {
		next := (100 - percent) / e.speedAvg
		if next > etaElapsedCap*now.Sub(e.start).Seconds() {
			next = e.eta
		}
		if e.eta == 0 {
			e.eta = next
		} else {
			e.eta = (1-e.alpha)*e.eta + e.alpha*next
		}
	}

	e.prevTime = now
	e.prevPercent = percent
}

// Seconds returns the smoothed estimate in seconds, 0 when unknown.
func (e *ETA) Seconds() float64 {
	return e.eta
}

// Get returns the smoothed estimate, 0 when unknown.
func (e *ETA) Get() time.Duration {
	return time.Duration(e.eta * float64(time.Second))
}
