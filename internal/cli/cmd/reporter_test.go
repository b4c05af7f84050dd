package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"trimmer/internal/progress"
)

func TestPlainReporter(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, false)
	eta := 30 * time.Second

	r.Update(progress.Update{JobID: "/v/a.mkv", Stage: progress.StageProbing, Message: "Probing a.mkv"})
	r.Update(progress.Update{JobID: "/v/a.mkv", Stage: progress.StageEncoding, Frame: 100, Frames: 250, FPS: 50, Speed: 2, ETA: &eta})
	r.Update(progress.Update{JobID: "/v/a.mkv", Stage: progress.StageCompleted, Message: "Saved: a.mkv (1.0 KB)"})
	r.Update(progress.Update{JobID: "/v/b.mkv", Stage: progress.StageEncoding, Frame: 10})
	r.Update(progress.Update{JobID: "/v/b.mkv", Stage: progress.StageError, Message: "ffmpeg exited with code 1"})
	r.Log(progress.Log{JobID: "/v/b.mkv", Line: "Conversion failed!"})

	out := buf.String()
	for _, want := range []string{"a.mkv: Saved: a.mkv (1.0 KB)", "b.mkv: ffmpeg exited with code 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Probing") {
		t.Error("probing updates should not be printed")
	}
	if strings.Contains(out, "Conversion failed!") {
		t.Error("stderr lines printed without verbose")
	}
	if r.bar != nil {
		t.Error("bar left open after terminal update")
	}
}

func TestPlainReporter_VerboseLogs(t *testing.T) {
	var buf bytes.Buffer
	r := newPlainReporter(&buf, true)
	r.Log(progress.Log{JobID: "/v/b.mkv", Line: "Conversion failed!"})
	if !strings.Contains(buf.String(), "  Conversion failed!") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDescribe(t *testing.T) {
	eta := 75 * time.Second
	got := describe(progress.Update{JobID: "/v/a.mkv", FPS: 48, Speed: 2, ETA: &eta, OverallPercent: 50})
	want := "a.mkv 48.0 fps 2.00x ETA 01:15 (batch 50%, ETA --:--)"
	if got != want {
		t.Errorf("describe() = %q, want %q", got, want)
	}
}
