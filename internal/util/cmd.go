package util

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// CmdSpec describes a subprocess to run.
type CmdSpec struct {
	Path string   // Binary path
	Args []string // Arguments
	Env  []string // Optional environment variables (KEY=VALUE). If nil, inherit.
	Dir  string   // Working directory; empty = inherit.

	// Logger receives the command line and, at trace level, every output line.
	Logger *zerolog.Logger

	StdoutLine    func(string) // Called for each stdout line (if non-nil)
	StderrLine    func(string) // Called for each stderr line (if non-nil)
	CaptureStdout bool         // When false and StdoutLine is set, stdout is not buffered

	// Started is called once the process is running, before any output line
	// is delivered. It is not called when the binary fails to start.
	Started func()
}

// CmdResult contains captured output and exit status.
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int
	Err    error
}

// Combined returns stdout followed by stderr.
func (r CmdResult) Combined() string {
	return string(r.Stdout) + string(r.Stderr)
}

// Spawned reports whether the process was started at all. A result with
// Code -1 and a non-exit error means the binary could not be executed.
func (r CmdResult) Spawned() bool {
	var exitErr *exec.ExitError
	return r.Code >= 0 || errors.As(r.Err, &exitErr)
}

// CmdRunner runs subprocesses. Tests substitute fakes.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

type defaultRunner struct{}

// NewDefaultRunner returns a CmdRunner backed by os/exec.
func NewDefaultRunner() CmdRunner {
	return defaultRunner{}
}

func (defaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// Output runs a short-lived tool and returns its exit code and combined
// output. A non-zero exit code is not an error; err is set only when the
// process could not be started.
func Output(ctx context.Context, r CmdRunner, path string, args ...string) (int, string, error) {
	res, err := r.Run(ctx, CmdSpec{Path: path, Args: args, CaptureStdout: true})
	if err != nil && !res.Spawned() {
		return -1, res.Combined(), err
	}
	return res.Code, res.Combined(), nil
}

// Run executes the command and streams each output line to the optional
// callbacks. It always captures stderr. Stdout capture can be disabled with
// CaptureStdout=false when a StdoutLine callback consumes it.
// On non-zero exit, returns an error describing the exit code, while also
// populating CmdResult.Code and captured buffers.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	configureChild(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}

	if spec.Logger != nil {
		spec.Logger.Debug().Str("cmd", shellQuote(spec.Path, spec.Args)).Msg("running command")
	}

	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1, Err: err}, err
	}
	guard := guardProcess(cmd.Process)
	defer guard.Release()
	if spec.Started != nil {
		spec.Started()
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stdoutPipe)
		// ffprobe JSON for files with many streams easily exceeds the 64KB default
		const maxCapacity = 1024 * 1024
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, maxCapacity)
		for sc.Scan() {
			line := sc.Text()
			if spec.StdoutLine != nil {
				spec.StdoutLine(line)
			}
			if spec.Logger != nil {
				spec.Logger.Trace().Str("stream", "stdout").Msg(line)
			}
			if spec.CaptureStdout || spec.StdoutLine == nil {
				stdoutBuf.WriteString(line)
				stdoutBuf.WriteByte('\n')
			}
		}
		if err := sc.Err(); err != nil && spec.Logger != nil {
			spec.Logger.Warn().Err(err).Msg("stdout scan error")
		}
	}()

	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(stderrPipe)
		const maxCapacity = 1024 * 1024
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, maxCapacity)
		for sc.Scan() {
			line := sc.Text()
			if spec.StderrLine != nil {
				spec.StderrLine(line)
			}
			if spec.Logger != nil {
				spec.Logger.Trace().Str("stream", "stderr").Msg(line)
			}
			stderrBuf.WriteString(line)
			stderrBuf.WriteByte('\n')
		}
		if err := sc.Err(); err != nil && spec.Logger != nil {
			spec.Logger.Warn().Err(err).Msg("stderr scan error")
		}
	}()

	// Pipes must be fully read before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()
	guard.Disarm()

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	res := CmdResult{
		Stdout: stdoutBuf.Bytes(),
		Stderr: stderrBuf.Bytes(),
		Code:   code,
		Err:    waitErr,
	}

	if waitErr != nil {
		return res, fmt.Errorf("command failed (exit %d): %w", code, waitErr)
	}
	return res, nil
}

// ShellQuote returns a printable shell-like command string for logging.
func ShellQuote(path string, args []string) string {
	return shellQuote(path, args)
}

func shellQuote(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}
