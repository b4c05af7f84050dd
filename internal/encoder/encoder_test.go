package encoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"trimmer/internal/util"
)

// fakeFFmpeg replays canned output through the line callbacks.
type fakeFFmpeg struct {
	stdout   []string
	stderr   []string
	code     int
	startErr error
	args     []string
}

func (f *fakeFFmpeg) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.args = spec.Args
	if f.startErr != nil {
		return util.CmdResult{Code: -1, Err: f.startErr}, f.startErr
	}
	if spec.Started != nil {
		spec.Started()
	}
	for _, l := range f.stdout {
		if spec.StdoutLine != nil {
			spec.StdoutLine(l)
		}
	}
	for _, l := range f.stderr {
		if spec.StderrLine != nil {
			spec.StderrLine(l)
		}
	}
	if err := ctx.Err(); err != nil {
		return util.CmdResult{Code: -1, Err: err}, err
	}
	if f.code != 0 {
		err := fmt.Errorf("exit status %d", f.code)
		return util.CmdResult{Code: f.code, Err: err}, err
	}
	return util.CmdResult{}, nil
}

func TestRemux_ReportsProgressAndStates(t *testing.T) {
	var lines []string
	for i := 0; i < 3; i++ {
		lines = append(lines, "frame=100", "fps=24.0", "progress=continue")
	}
	lines = append(lines, "frame=200", "fps=24.0", "progress=end")
	f := &fakeFFmpeg{stdout: lines}

	var progress [][2]float64
	var states []State
	err := Remux(context.Background(), sampleJob(), Options{
		FFmpegPath: "ffmpeg",
		Runner:     f,
		OnProgress: func(frame int64, fps float64) { progress = append(progress, [2]float64{float64(frame), fps}) },
		OnState:    func(s State) { states = append(states, s) },
	})
	if err != nil {
		t.Fatal(err)
	}

	wantProgress := [][2]float64{{100, 0}, {100, 24}, {200, 24}}
	if fmt.Sprint(progress) != fmt.Sprint(wantProgress) {
		t.Errorf("progress = %v, want %v", progress, wantProgress)
	}
	wantStates := []State{StateSpawned, StateStreaming, StateSucceeded}
	if fmt.Sprint(states) != fmt.Sprint(wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	if f.args[len(f.args)-1] != "error" {
		t.Errorf("unexpected argv: %v", f.args)
	}
}

func TestRemux_StartFailureReportsOnlyFailed(t *testing.T) {
	f := &fakeFFmpeg{startErr: errors.New("exec: \"ffmpeg\": executable file not found in $PATH")}

	var states []State
	err := Remux(context.Background(), sampleJob(), Options{
		FFmpegPath: "ffmpeg",
		Runner:     f,
		OnState:    func(s State) { states = append(states, s) },
	})
	var rerr *RemuxError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RemuxError", err)
	}
	if rerr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", rerr.ExitCode)
	}
	if want := []State{StateFailed}; fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestRemux_SpawnedWithoutOutput(t *testing.T) {
	var states []State
	err := Remux(context.Background(), sampleJob(), Options{
		FFmpegPath: "ffmpeg",
		Runner:     &fakeFFmpeg{stderr: []string{"Conversion failed!"}, code: 1},
		OnState:    func(s State) { states = append(states, s) },
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if want := []State{StateSpawned, StateFailed}; fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestRemux_FailureCarriesDiagnostics(t *testing.T) {
	var stderr []string
	for i := 0; i < 25; i++ {
		stderr = append(stderr, fmt.Sprintf("line %d", i))
	}
	f := &fakeFFmpeg{stderr: stderr, code: 1}

	err := Remux(context.Background(), sampleJob(), Options{FFmpegPath: "ffmpeg", Runner: f})
	var rerr *RemuxError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RemuxError", err)
	}
	if rerr.ExitCode != 1 || rerr.Cancelled {
		t.Errorf("RemuxError = %+v", rerr)
	}
	if len(rerr.StderrTail) != StderrTailLines || rerr.StderrTail[0] != "line 5" || rerr.StderrTail[19] != "line 24" {
		t.Errorf("StderrTail = %v", rerr.StderrTail)
	}
	if rerr.Description == "" {
		t.Error("expected an errno description for exit code 1")
	}
	if errors.Is(err, ErrCancelled) {
		t.Error("plain failure must not match ErrCancelled")
	}
	if !strings.Contains(err.Error(), "exit code 1") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRemux_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Remux(ctx, sampleJob(), Options{FFmpegPath: "ffmpeg", Runner: &fakeFFmpeg{}})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	var rerr *RemuxError
	if !errors.As(err, &rerr) || !rerr.Cancelled {
		t.Errorf("RemuxError.Cancelled not set: %v", err)
	}
}

func TestRemux_RequiresPaths(t *testing.T) {
	if err := Remux(context.Background(), sampleJob(), Options{}); err == nil {
		t.Error("expected error without ffmpeg path")
	}
	job := sampleJob()
	job.Output = ""
	if err := Remux(context.Background(), job, Options{FFmpegPath: "ffmpeg", Runner: &fakeFFmpeg{}}); err == nil {
		t.Error("expected error without output path")
	}
}

func TestTail(t *testing.T) {
	tl := newTail(2)
	for _, l := range []string{"a", "", "b", "c"} {
		tl.add(l)
	}
	if got := strings.Join(tl.snapshot(), ","); got != "b,c" {
		t.Errorf("tail = %s, want b,c", got)
	}
}
