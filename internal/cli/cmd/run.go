package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trimmer/internal/codec"
	"trimmer/internal/commit"
	"trimmer/internal/config"
	"trimmer/internal/media"
	"trimmer/internal/metrics"
	"trimmer/internal/model"
	"trimmer/internal/pipeline"
	"trimmer/internal/progress"
	"trimmer/internal/ui"
	"trimmer/internal/util/deps"
)

type runMode struct {
	ForceTUI bool
	PlanOnly bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run [paths...]",
		Short:         "Remux files and directories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

// assembleOptions resolves run flags and global settings into CLIOptions.
func assembleOptions(cmd *cobra.Command, s config.Settings) (model.CLIOptions, error) {
	fs := cmd.Flags()
	opts := model.CLIOptions{
		FFmpegBinary:  s.FFmpeg,
		FFprobeBinary: s.FFprobe,
		GPU:           s.GPU,
		MetricsFile:   s.MetricsFile,
		Verbose:       s.Verbose,
	}
	opts.Recursive, _ = fs.GetBool("recursive")
	opts.Codec, _ = fs.GetString("codec")
	opts.Preset, _ = fs.GetString("preset")
	opts.Tune, _ = fs.GetString("tune")
	opts.Profile, _ = fs.GetString("profile")
	opts.Container, _ = fs.GetString("container")
	opts.Title, _ = fs.GetString("title")
	opts.KeepNone, _ = fs.GetBool("keep-none")
	opts.NoUI, _ = fs.GetBool("no-ui")

	// An unset filter leaves the tracks alone; an empty one drops them all.
	if fs.Changed("keep-video") {
		opts.KeepVideo, _ = fs.GetStringSlice("keep-video")
		opts.KeepVideo = nonNil(opts.KeepVideo)
	}
	if fs.Changed("keep-audio") {
		opts.KeepAudio, _ = fs.GetStringSlice("keep-audio")
		opts.KeepAudio = nonNil(opts.KeepAudio)
	}
	if fs.Changed("keep-subtitle") {
		opts.KeepSubtitle, _ = fs.GetStringSlice("keep-subtitle")
		opts.KeepSubtitle = nonNil(opts.KeepSubtitle)
	}

	if opts.Container != "" {
		if _, ok := model.LookupContainerType(opts.Container); !ok {
			return opts, fmt.Errorf("invalid --container: %q (valid: %s)", opts.Container, containerNames())
		}
	}
	if opts.Codec != "" {
		if _, ok := codec.Lookup(opts.Codec); !ok {
			return opts, fmt.Errorf("%w: %s", codec.ErrUnsupportedCodec, opts.Codec)
		}
	}
	return opts, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	ctx := cmd.Context()
	s := config.Load()
	opts, err := assembleOptions(cmd, s)
	if err != nil {
		if errors.Is(err, codec.ErrUnsupportedCodec) {
			return &ExitError{Code: ExitCodecError, Err: err}
		}
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	opts.DryRun = mode.PlanOnly

	useTUI := !mode.PlanOnly && (mode.ForceTUI || (!opts.NoUI && isTerminal()))
	logger, closeLog, err := newLogger(cmd, s, useTUI)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	defer closeLog()

	ffmpegPath, err := deps.FindFFmpeg(opts.FFmpegBinary)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	ffprobePath, err := deps.FindFFprobe(opts.FFprobeBinary)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	logger.Debug().Str("ffmpeg", ffmpegPath).Str("ffprobe", ffprobePath).Msg("tools found")

	files, err := media.CollectFiles(args, opts.Recursive)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if len(files) == 0 {
		return &ExitError{Code: ExitCLIError, Err: errors.New("no supported media files found")}
	}
	warnPendingCommits(logger, files)

	serviceOpts := []pipeline.Option{
		pipeline.WithFFmpegPath(ffmpegPath),
		pipeline.WithFFprobePath(ffprobePath),
		pipeline.WithLogger(logger),
	}
	svc := pipeline.NewService(serviceOpts...)

	cd, supported, err := svc.ResolveCodec(ctx, opts.Codec, opts.GPU)
	if err != nil {
		if errors.Is(err, codec.ErrNoHEVCCodec) || errors.Is(err, codec.ErrUnsupportedCodec) {
			return &ExitError{Code: ExitCodecError, Err: err}
		}
		return &ExitError{Code: ExitMissingDep, Err: err}
	}

	containers, err := svc.Load(ctx, files, cd)
	if err != nil {
		return &ExitError{Code: ExitProbeError, Err: err}
	}
	if err := pipeline.ApplyOptions(containers, opts); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if err := pipeline.Preflight(containers, supported); err != nil {
		return &ExitError{Code: ExitCodecError, Err: err}
	}

	if mode.PlanOnly {
		printPlans(cmd, svc.PlanBatch(containers))
		return nil
	}

	var res pipeline.BatchResult
	if useTUI {
		paths := make([]string, len(containers))
		for i, c := range containers {
			paths[i] = c.Path()
		}
		res, err = ui.Run(ctx, paths, func(ctx context.Context, rep progress.Reporter) pipeline.BatchResult {
			return pipeline.NewService(append(serviceOpts, pipeline.WithReporter(rep))...).RunBatch(ctx, containers)
		})
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	} else {
		rep := newPlainReporter(cmd.ErrOrStderr(), opts.Verbose)
		res = pipeline.NewService(append(serviceOpts, pipeline.WithReporter(rep))...).RunBatch(ctx, containers)
	}

	if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
		logger.Warn().Err(err).Str("path", opts.MetricsFile).Msg("unable to write metrics")
	}
	printSummary(cmd, res)
	return exitForBatch(res)
}

// exitForBatch maps the worst per-file outcome to an exit error.
func exitForBatch(res pipeline.BatchResult) error {
	failed := res.Failed()
	for _, f := range failed {
		var cerr *commit.CommitError
		if errors.As(f.Err, &cerr) {
			return &ExitError{Code: ExitCommitError, Err: fmt.Errorf("%s: %w", f.Path, cerr)}
		}
	}
	if len(failed) > 0 {
		return &ExitError{Code: ExitRemuxError, Err: fmt.Errorf("%d of %d file(s) failed", len(failed), len(res.Files))}
	}
	if n := res.Count(model.StatusCancelled); n > 0 {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("cancelled, %d file(s) not processed", n)}
	}
	return nil
}

func warnPendingCommits(logger zerolog.Logger, files []string) {
	for _, f := range files {
		j, err := commit.PendingJournal(f)
		if err != nil {
			logger.Warn().Err(err).Str("file", f).Msg("unreadable commit journal")
			continue
		}
		if j != nil {
			logger.Warn().Str("file", f).Str("backup", j.Backup).Str("output", j.Produced).
				Msg("a previous commit of this file was interrupted, check the backup")
		}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func containerNames() string {
	names := ""
	for i, c := range model.SupportedContainers {
		if i > 0 {
			names += ", "
		}
		names += c.Ext
	}
	return names
}
