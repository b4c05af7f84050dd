package encoder

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"trimmer/internal/util"
)

// StderrTailLines is how many trailing stderr lines a RemuxError carries.
const StderrTailLines = 20

// State is the lifecycle of one ffmpeg run.
type State int

const (
	StateSpawned State = iota
	StateStreaming
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateStreaming:
		return "streaming"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath string
	Runner     util.CmdRunner // defaults to util.NewDefaultRunner()
	Logger     zerolog.Logger

	// OnProgress is called from the reader goroutine whenever the frame
	// counter or speed changes. It must not block.
	OnProgress func(frame int64, fps float64)
	// OnState observes lifecycle transitions.
	OnState func(State)
}

// Remux runs ffmpeg for job. The output file is left in place on failure;
// removing it is up to the caller.
func Remux(ctx context.Context, job RemuxJob, opts Options) error {
	if opts.FFmpegPath == "" {
		return errors.New("ffmpeg path is required")
	}
	if job.Input == "" || job.Output == "" {
		return errors.New("input and output paths are required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	log := opts.Logger.With().Str("file", job.Input).Logger()
	setState := func(s State) {
		log.Debug().Stringer("state", s).Msg("remux state")
		if opts.OnState != nil {
			opts.OnState(s)
		}
	}

	// Spawned comes from the runner's start hook; a binary that never starts
	// goes straight to Failed. Streaming fires on the first progress line.
	var (
		ps        ProgressState
		stderr    = newTail(StderrTailLines)
		spawned   sync.Once
		streaming sync.Once
	)
	markSpawned := func() { spawned.Do(func() { setState(StateSpawned) }) }
	res, err := runner.Run(ctx, util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    BuildRemuxArgs(job),
		Logger:  &log,
		Started: markSpawned,
		StdoutLine: func(line string) {
			markSpawned()
			streaming.Do(func() { setState(StateStreaming) })
			frame, fps, changed := ps.Feed(line)
			if changed && opts.OnProgress != nil {
				opts.OnProgress(frame, fps)
			}
		},
		StderrLine: func(line string) {
			log.Debug().Str("stream", "stderr").Msg(line)
			stderr.add(line)
		},
	})
	if err == nil {
		setState(StateSucceeded)
		log.Info().Int64("frames", ps.Frame).Msg("file processed successfully")
		return nil
	}

	setState(StateFailed)
	rerr := &RemuxError{
		Input:       job.Input,
		ExitCode:    res.Code,
		Description: describeExitCode(res.Code),
		StderrTail:  stderr.snapshot(),
		Cancelled:   ctx.Err() != nil,
		Err:         err,
	}
	if rerr.Cancelled {
		log.Warn().Msg("remux cancelled")
	} else {
		log.Error().Int("code", res.Code).Strs("stderr", rerr.StderrTail).Msg("failed to process file")
	}
	return rerr
}
