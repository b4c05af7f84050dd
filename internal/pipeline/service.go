// Package pipeline runs a batch of files through probe, remux and commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"trimmer/internal/codec"
	"trimmer/internal/encoder"
	"trimmer/internal/media"
	"trimmer/internal/metrics"
	"trimmer/internal/model"
	"trimmer/internal/progress"
	"trimmer/internal/util"
	"trimmer/internal/util/format"
)

// Service orchestrates the probe → remux → commit workflow for a batch.
type Service struct {
	ffmpegPath  string
	ffprobePath string
	runner      util.CmdRunner
	reporter    progress.Reporter
	logger      zerolog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now for progress and ETA computation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a new Service with the provided options.
// It applies sensible defaults for missing components.
func NewService(opts ...Option) *Service {
	s := &Service{logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ResolveCodec detects the encoders ffmpeg supports and picks name, or the
// preferred HEVC encoder for gpu when name is empty.
func (s *Service) ResolveCodec(ctx context.Context, name, gpu string) (codec.Codec, []codec.Codec, error) {
	supported, err := codec.DetectSupported(ctx, s.runner, s.ffmpegPath)
	if err != nil {
		return codec.Codec{}, nil, err
	}
	s.logger.Info().Stringers("codecs", codecStringers(supported)).Msg("HEVC encoders")

	var cd codec.Codec
	if name != "" {
		cd, err = codec.Select(supported, name)
	} else {
		cd, err = codec.PreferHEVC(supported, gpu)
	}
	if err != nil {
		return codec.Codec{}, supported, err
	}
	s.logger.Info().Str("codec", cd.Name).Msg("preferred HEVC codec")
	return cd, supported, nil
}

// Load builds and parses a Container per path. Files that fail to parse
// are reported and left out; their errors are joined in the returned error.
func (s *Service) Load(ctx context.Context, paths []string, cd codec.Codec) ([]*media.Container, error) {
	var (
		out  []*media.Container
		errs []error
	)
	for i, p := range paths {
		s.reporter.Update(progress.Update{
			JobID:   p,
			Index:   i,
			Stage:   progress.StageProbing,
			Percent: -1,
			Message: "Probing " + filepath.Base(p),
		})
		c := media.New(p, cd, media.WithRunner(s.runner), media.WithLogger(s.logger))
		if err := c.Parse(ctx, s.ffprobePath); err != nil {
			s.logger.Error().Err(err).Str("file", p).Msg("unable to parse file")
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		out = append(out, c)
	}
	return out, errors.Join(errs...)
}

// Preflight checks that every container can be processed with the
// encoders ffmpeg supports. It runs before any file is touched.
func Preflight(containers []*media.Container, supported []codec.Codec) error {
	names := make(map[string]bool, len(supported))
	for _, c := range supported {
		names[c.Name] = true
	}
	for _, c := range containers {
		if !c.Parsed() {
			return fmt.Errorf("%s: %w", c.Path(), media.ErrNotParsed)
		}
		if !names[c.Codec().Name] {
			return fmt.Errorf("%w: %s requested for %s", codec.ErrUnsupportedCodec, c.Codec().Name, c.Path())
		}
	}
	return nil
}

// FileResult is the outcome of one file of a batch.
type FileResult struct {
	Path    string
	Status  model.FileStatus
	Backup  string
	Final   string
	Frames  int64
	Elapsed time.Duration
	Err     error
}

// BatchResult summarises a batch run.
type BatchResult struct {
	Files   []FileResult
	Elapsed time.Duration
}

// Count returns how many files ended with status st.
func (b BatchResult) Count(st model.FileStatus) int {
	n := 0
	for _, f := range b.Files {
		if f.Status == st {
			n++
		}
	}
	return n
}

// Failed returns the files that ended in error.
func (b BatchResult) Failed() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Status == model.StatusError {
			out = append(out, f)
		}
	}
	return out
}

// RunBatch remuxes the containers one at a time. A failing file is
// recorded and the batch moves on; once ctx is cancelled the remaining
// files are marked cancelled.
func (s *Service) RunBatch(ctx context.Context, containers []*media.Container) BatchResult {
	metrics.BatchRunning.Set(1)
	defer metrics.BatchRunning.Set(0)

	start := s.now()
	b := &batch{
		svc:      s,
		start:    start,
		percents: make([]float64, len(containers)),
		overall:  progress.NewETA(start, 0),
	}
	res := BatchResult{Files: make([]FileResult, len(containers))}
	for i, c := range containers {
		res.Files[i] = FileResult{Path: c.Path(), Status: model.StatusPending}
	}

	for i, c := range containers {
		if ctx.Err() != nil {
			res.Files[i] = b.cancelled(i, c)
			continue
		}
		res.Files[i] = b.process(ctx, i, c)
	}

	res.Elapsed = s.now().Sub(start)
	s.logger.Info().
		Int("done", res.Count(model.StatusDone)).
		Int("failed", res.Count(model.StatusError)).
		Int("cancelled", res.Count(model.StatusCancelled)).
		Dur("elapsed", res.Elapsed).
		Msg("all files processed")
	return res
}

// batch holds the progress state shared across the files of one run.
type batch struct {
	svc      *Service
	start    time.Time
	percents []float64
	overall  *progress.ETA
}

func (b *batch) overallPercent() float64 {
	if len(b.percents) == 0 {
		return 100
	}
	sum := 0.0
	for _, p := range b.percents {
		sum += p
	}
	return sum / float64(len(b.percents))
}

func (b *batch) emit(u progress.Update) {
	now := b.svc.now()
	u.OverallPercent = b.overallPercent()
	b.overall.FeedAt(now, u.OverallPercent)
	oe := b.overall.Get()
	u.OverallETA = &oe
	u.Elapsed = now.Sub(b.start)
	b.svc.reporter.Update(u)
}

func (b *batch) process(ctx context.Context, i int, c *media.Container) FileResult {
	s := b.svc
	log := s.logger.With().Str("file", c.Path()).Logger()
	est := c.Estimate()
	t0 := s.now()
	fileETA := progress.NewETA(t0, 0)
	b.percents[i] = 0

	b.emit(progress.Update{
		JobID:   c.Path(),
		Index:   i,
		Stage:   progress.StageEncoding,
		Percent: unknownUnless(est.Known(), 0),
		Frames:  est.Frames,
		Message: "Processing " + filepath.Base(c.Path()),
	})

	var lastFrame int64
	onProgress := func(frame int64, fps float64) {
		lastFrame = frame
		pct := -1.0
		if est.Known() {
			pct = min(100, float64(frame)/float64(est.Frames)*100)
			b.percents[i] = pct
			fileETA.FeedAt(s.now(), pct)
		}
		eta := fileETA.Get()
		speed := 0.0
		if est.FPS > 0 {
			speed = fps / est.FPS
		}
		b.emit(progress.Update{
			JobID:   c.Path(),
			Index:   i,
			Stage:   progress.StageEncoding,
			Percent: pct,
			Frame:   frame,
			Frames:  est.Frames,
			FPS:     fps,
			Speed:   speed,
			ETA:     &eta,
			Message: fmt.Sprintf("%d/%d frames", frame, est.Frames),
		})
	}
	onState := func(st encoder.State) {
		if st == encoder.StateSucceeded {
			b.emit(progress.Update{JobID: c.Path(), Index: i, Stage: progress.StageCommitting, Percent: 100, Message: "Committing"})
		}
	}

	cres, err := c.Remux(ctx, s.ffmpegPath, media.RemuxOptions{OnProgress: onProgress, OnState: onState})
	elapsed := s.now().Sub(t0)
	metrics.RemuxDuration.Observe(elapsed.Seconds())
	metrics.FramesEncoded.Add(float64(lastFrame))

	fr := FileResult{
		Path:    c.Path(),
		Backup:  cres.Backup,
		Final:   cres.Final,
		Frames:  lastFrame,
		Elapsed: elapsed,
		Err:     err,
	}
	switch {
	case err == nil:
		fr.Status = model.StatusDone
		b.percents[i] = 100
		size := util.FileSize(cres.Final)
		b.emit(progress.Update{
			JobID:   c.Path(),
			Index:   i,
			Stage:   progress.StageCompleted,
			Percent: 100,
			Message: fmt.Sprintf("Saved: %s (%s)", filepath.Base(cres.Final), format.HumanizeBytes(size)),
		})
		s.reporter.Result(progress.Result{JobID: c.Path(), Index: i, OutputPath: cres.Final, BackupPath: cres.Backup, Bytes: size})
	case errors.Is(err, encoder.ErrCancelled):
		fr.Status = model.StatusCancelled
		b.emit(progress.Update{JobID: c.Path(), Index: i, Stage: progress.StageCancelled, Percent: -1, Message: "Cancelled"})
		s.reporter.Result(progress.Result{JobID: c.Path(), Index: i, Cancelled: true, Err: err})
	default:
		fr.Status = model.StatusError
		b.percents[i] = 100
		log.Error().Err(err).Msg("failed to process file")
		var rerr *encoder.RemuxError
		if errors.As(err, &rerr) {
			for _, line := range rerr.StderrTail {
				s.reporter.Log(progress.Log{JobID: c.Path(), Stream: progress.StreamStderr, Line: line})
			}
		}
		b.emit(progress.Update{JobID: c.Path(), Index: i, Stage: progress.StageError, Percent: 100, Message: err.Error()})
		s.reporter.Result(progress.Result{JobID: c.Path(), Index: i, BackupPath: cres.Backup, Err: err})
	}
	metrics.FilesProcessed.WithLabelValues(string(fr.Status)).Inc()
	return fr
}

func (b *batch) cancelled(i int, c *media.Container) FileResult {
	metrics.FilesProcessed.WithLabelValues(string(model.StatusCancelled)).Inc()
	b.svc.reporter.Result(progress.Result{JobID: c.Path(), Index: i, Cancelled: true, Err: encoder.ErrCancelled})
	return FileResult{Path: c.Path(), Status: model.StatusCancelled, Err: encoder.ErrCancelled}
}

func unknownUnless(known bool, v float64) float64 {
	if !known {
		return -1
	}
	return v
}

func codecStringers(cs []codec.Codec) []fmt.Stringer {
	out := make([]fmt.Stringer, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
