package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"trimmer/internal/progress"
	"trimmer/internal/util/format"
)

// plainReporter renders a progress bar per file for --no-ui runs and
// non-terminal output.
type plainReporter struct {
	w       io.Writer
	verbose bool

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	current string
}

func newPlainReporter(w io.Writer, verbose bool) *plainReporter {
	return &plainReporter{w: w, verbose: verbose}
}

func (r *plainReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch u.Stage {
	case progress.StageEncoding:
		if r.bar == nil || r.current != u.JobID {
			r.finishBar()
			r.startBar(u)
		}
		if u.Frames > 0 {
			_ = r.bar.Set64(min(u.Frame, u.Frames))
		} else {
			_ = r.bar.Add64(0)
		}
		r.bar.Describe(describe(u))
	case progress.StageCompleted, progress.StageError, progress.StageCancelled:
		r.finishBar()
		fmt.Fprintf(r.w, "%s: %s\n", filepath.Base(u.JobID), u.Message)
	}
}

func (r *plainReporter) Log(l progress.Log) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "  %s\n", l.Line)
}

func (r *plainReporter) Result(progress.Result) {}

func (r *plainReporter) startBar(u progress.Update) {
	total := u.Frames
	if total <= 0 {
		total = -1 // spinner when the length is unknown
	}
	r.current = u.JobID
	r.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(filepath.Base(u.JobID)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetWidth(30),
	)
}

func (r *plainReporter) finishBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintln(r.w)
	r.bar = nil
	r.current = ""
}

func describe(u progress.Update) string {
	eta := "--:--"
	if u.ETA != nil {
		eta = format.ETA(*u.ETA)
	}
	overall := "--:--"
	if u.OverallETA != nil {
		overall = format.ETA(*u.OverallETA)
	}
	return fmt.Sprintf("%s %.1f fps %.2fx ETA %s (batch %.0f%%, ETA %s)",
		filepath.Base(u.JobID), u.FPS, u.Speed, eta, u.OverallPercent, overall)
}
