package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"trimmer/internal/progress"
)

// teaReporter forwards pipeline events to the program's event channel.
// Updates and logs are dropped when the channel is full so ffmpeg output
// is never throttled by rendering; results wait for room unless the UI
// has gone away.
type teaReporter struct {
	ch   chan<- tea.Msg
	done <-chan struct{}
}

func (r teaReporter) Update(u progress.Update) {
	select {
	case r.ch <- fileUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- fileLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	select {
	case r.ch <- fileResultMsg{R: res}:
	case <-r.done:
	}
}
