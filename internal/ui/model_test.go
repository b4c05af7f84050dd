package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trimmer/internal/encoder"
	"trimmer/internal/model"
	"trimmer/internal/pipeline"
	"trimmer/internal/progress"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestModel_AppliesUpdates(t *testing.T) {
	m := NewModel(context.Background(), []string{"/v/a.mkv", "/v/b.mkv"})
	eta := 90 * time.Second

	m, _ = update(t, m, fileUpdateMsg{U: progress.Update{
		JobID:          "/v/a.mkv",
		Index:          0,
		Stage:          progress.StageEncoding,
		Percent:        40,
		Frame:          100,
		Frames:         250,
		FPS:            50,
		Speed:          2,
		ETA:            &eta,
		OverallPercent: 20,
		OverallETA:     &eta,
		Message:        "100/250 frames",
	}})

	f := m.files[0]
	if f.status != model.StatusWorking || f.percent != 40 || f.frames != 250 {
		t.Errorf("file state = %+v", f)
	}
	if m.overallPercent != 20 {
		t.Errorf("overallPercent = %v", m.overallPercent)
	}
	view := m.View()
	for _, want := range []string{"a.mkv", "b.mkv", "40.0%", "01:30", "waiting"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_AppliesResults(t *testing.T) {
	m := NewModel(context.Background(), []string{"/v/a.mkv", "/v/b.mkv", "/v/c.mkv"})

	m, _ = update(t, m, fileResultMsg{R: progress.Result{JobID: "/v/a.mkv", Index: 0, OutputPath: "/v/a.mkv", BackupPath: "/v/a.mkv.bak0", Bytes: 2048}})
	m, _ = update(t, m, fileResultMsg{R: progress.Result{JobID: "/v/b.mkv", Index: 1, Err: errors.New("ffmpeg exited with code 1")}})
	m, _ = update(t, m, fileResultMsg{R: progress.Result{JobID: "/v/c.mkv", Index: 2, Cancelled: true, Err: encoder.ErrCancelled}})

	want := []model.FileStatus{model.StatusDone, model.StatusError, model.StatusCancelled}
	for i, st := range want {
		if m.files[i].status != st {
			t.Errorf("files[%d].status = %v, want %v", i, m.files[i].status, st)
		}
	}
	if !strings.Contains(m.files[0].info, "a.mkv.bak0") {
		t.Errorf("info = %q", m.files[0].info)
	}
}

func TestModel_LogRing(t *testing.T) {
	m := NewModel(context.Background(), []string{"/v/a.mkv"})
	for i := 0; i < logRingSize+5; i++ {
		m, _ = update(t, m, fileLogMsg{L: progress.Log{JobID: "/v/a.mkv", Stream: progress.StreamStderr, Line: "line\n"}})
	}
	if got := len(m.files[0].logsRing); got != logRingSize {
		t.Errorf("ring size = %d, want %d", got, logRingSize)
	}
	if m.files[0].logsRing[0] != "line" {
		t.Errorf("line not trimmed: %q", m.files[0].logsRing[0])
	}
}

func TestModel_QuitCancelsFirst(t *testing.T) {
	m := NewModel(context.Background(), []string{"/v/a.mkv"})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("first q should not quit")
	}
	if !m.cancelling || m.ctx.Err() == nil {
		t.Error("first q should cancel the batch")
	}

	m, cmd = update(t, m, batchDoneMsg{Result: pipeline.BatchResult{Files: []pipeline.FileResult{{Path: "/v/a.mkv", Status: model.StatusCancelled}}}})
	if cmd == nil || !m.finished {
		t.Fatal("batch done should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "1 cancelled") {
		t.Errorf("summary missing:\n%s", m.View())
	}
}

func TestTeaReporter_DropsWhenFull(t *testing.T) {
	ch := make(chan tea.Msg, 1)
	stop := make(chan struct{})
	r := teaReporter{ch: ch, done: stop}

	r.Update(progress.Update{JobID: "a"})
	r.Update(progress.Update{JobID: "b"})
	r.Log(progress.Log{JobID: "c"})
	if len(ch) != 1 {
		t.Fatalf("channel holds %d messages", len(ch))
	}
	if u := (<-ch).(fileUpdateMsg); u.U.JobID != "a" {
		t.Errorf("kept %q, want a", u.U.JobID)
	}

	ch <- fileUpdateMsg{}
	close(stop)
	r.Result(progress.Result{JobID: "d"}) // must not block once the UI is gone
}
