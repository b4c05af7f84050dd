package ui

import (
	"path/filepath"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"trimmer/internal/model"
	"trimmer/internal/progress"
)

const logRingSize = 200

type fileState struct {
	path   string
	name   string
	stage  progress.Stage
	status model.FileStatus
	info   string
	err    error

	percent float64 // -1 means unknown
	frame   int64
	frames  int64
	fps     float64
	speed   float64
	eta     *time.Duration

	outputPath string
	backupPath string
	bytes      int64

	spinner spinner.Model
	bar     bubblesprogress.Model

	logsRing []string
}

func newFileState(path string, styles Styles) fileState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return fileState{
		path:    path,
		name:    filepath.Base(path),
		stage:   progress.StageProbing,
		status:  model.StatusPending,
		info:    "Queued",
		percent: -1,
		spinner: sp,
		bar:     bar,
	}
}

func (f *fileState) addLog(line string) {
	if len(f.logsRing) >= logRingSize {
		f.logsRing = f.logsRing[1:]
	}
	f.logsRing = append(f.logsRing, line)
}
