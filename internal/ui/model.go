package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"trimmer/internal/encoder"
	"trimmer/internal/model"
	"trimmer/internal/pipeline"
	"trimmer/internal/progress"
	"trimmer/internal/util/format"
)

const eventBuffer = 256

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	files []*fileState
	index map[string]int // path → position in files

	overall        bubblesprogress.Model
	overallPercent float64
	overallETA     *time.Duration
	elapsed        time.Duration

	cancelling bool
	finished   bool
	result     pipeline.BatchResult

	width, height int
	styles        Styles

	// Reporter events are fed through here as tea messages.
	eventCh chan tea.Msg
}

// NewModel builds the view state for a batch over paths. The batch itself
// is started by Run.
func NewModel(ctx context.Context, paths []string) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	files := make([]*fileState, 0, len(paths))
	index := make(map[string]int, len(paths))
	for i, p := range paths {
		fs := newFileState(p, sty)
		files = append(files, &fs)
		index[p] = i
	}

	return Model{
		ctx:     c,
		cancel:  cancel,
		files:   files,
		index:   index,
		overall: bubblesprogress.New(bubblesprogress.WithDefaultGradient(), bubblesprogress.WithWidth(60)),
		styles:  sty,
		eventCh: make(chan tea.Msg, eventBuffer),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenEventsCmd()}
	for _, f := range m.files {
		cmds = append(cmds, f.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.finished || m.cancelling {
				return m, tea.Quit
			}
			// First press stops ffmpeg and lets the batch wind down.
			m.cancelling = true
			m.cancel()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 20; w > 20 {
			m.overall.Width = min(w, 80)
			for _, f := range m.files {
				f.bar.Width = min(w-10, 60)
			}
		}

	case fileUpdateMsg:
		m.applyUpdate(msg.U)
		return m, m.listenEventsCmd()

	case fileLogMsg:
		if f := m.file(msg.L.JobID, -1); f != nil {
			f.addLog(strings.TrimRight(msg.L.Line, "\r\n"))
		}
		return m, m.listenEventsCmd()

	case fileResultMsg:
		m.applyResult(msg.R)
		return m, m.listenEventsCmd()

	case batchDoneMsg:
		m.finished = true
		m.result = msg.Result
		for i, fr := range msg.Result.Files {
			if i < len(m.files) {
				m.files[i].status = fr.Status
			}
		}
		m.overallPercent = 100
		m.elapsed = msg.Result.Elapsed
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, f := range m.files {
		var c tea.Cmd
		f.spinner, c = f.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewFiles()
	if s := m.viewSummary(); s != "" {
		out += "\n" + s
	}
	return out
}

func (m Model) file(jobID string, idx int) *fileState {
	if idx >= 0 && idx < len(m.files) && m.files[idx].path == jobID {
		return m.files[idx]
	}
	if i, ok := m.index[jobID]; ok {
		return m.files[i]
	}
	return nil
}

func (m *Model) applyUpdate(u progress.Update) {
	f := m.file(u.JobID, u.Index)
	if f == nil {
		return
	}
	f.stage = u.Stage
	f.percent = u.Percent
	f.info = u.Message
	if u.Frames > 0 {
		f.frames = u.Frames
	}
	f.frame = u.Frame
	f.fps = u.FPS
	f.speed = u.Speed
	f.eta = u.ETA
	switch u.Stage {
	case progress.StageEncoding, progress.StageCommitting:
		f.status = model.StatusWorking
	case progress.StageCompleted:
		f.status = model.StatusDone
	case progress.StageError:
		f.status = model.StatusError
	case progress.StageCancelled:
		f.status = model.StatusCancelled
	}

	// Probing updates carry no batch totals.
	if u.Stage != progress.StageProbing {
		m.overallPercent = u.OverallPercent
		m.overallETA = u.OverallETA
		m.elapsed = u.Elapsed
	}
}

func (m *Model) applyResult(r progress.Result) {
	f := m.file(r.JobID, r.Index)
	if f == nil {
		return
	}
	f.err = r.Err
	switch {
	case r.Cancelled || errors.Is(r.Err, encoder.ErrCancelled):
		f.status = model.StatusCancelled
		f.stage = progress.StageCancelled
		f.info = "Cancelled"
		f.percent = -1
	case r.Err != nil:
		f.status = model.StatusError
		f.stage = progress.StageError
		f.info = r.Err.Error()
		f.percent = -1
	default:
		f.status = model.StatusDone
		f.stage = progress.StageCompleted
		f.percent = 100
		f.outputPath = r.OutputPath
		f.backupPath = r.BackupPath
		f.bytes = r.Bytes
		f.info = fmt.Sprintf("Saved: %s (%s), backup %s", f.name, format.HumanizeBytes(r.Bytes), r.BackupPath)
	}
}

func (m Model) listenEventsCmd() tea.Cmd {
	ch := m.eventCh
	return func() tea.Msg {
		return <-ch
	}
}
