package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"trimmer/internal/buildinfo"
	"trimmer/internal/config"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitProbeError  = 3
	ExitRemuxError  = 4
	ExitCommitError = 5
	ExitCodecError  = 6
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trimmer [paths...]",
		Short: "Remux video files to HEVC and drop unwanted tracks",
		Long: "Trimmer rewrites video files in place: video is re-encoded to HEVC unless it already is, " +
			"audio and subtitles are copied, and only the tracks you keep are mapped. " +
			"Every original is kept as a .bakN backup next to the result.",
		Version:       fmt.Sprintf("%s (%s, %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Runtime()),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("config: %w", err)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands; bound to viper by config.Init.
	pf := root.PersistentFlags()
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write JSON logs to this file instead of the console")
	pf.Bool("no-color", false, "Disable colored console logs")
	pf.String("ffmpeg", "", "Path to ffmpeg (default: search PATH)")
	pf.String("ffprobe", "", "Path to ffprobe (default: search PATH)")
	pf.String("gpu", "", "GPU description used to prefer a hardware encoder (e.g. \"NVIDIA RTX 3080\")")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file when the batch ends")
	pf.BoolP("verbose", "v", false, "Debug logging and ffmpeg stderr in plain output")

	// Run flags on root, so `trimmer <paths>` works without a subcommand.
	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCodecsCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.BoolP("recursive", "r", false, "Descend into subdirectories")
	fs.StringP("codec", "c", "", "HEVC encoder (default: preferred for --gpu)")
	fs.String("preset", "", "Encoder preset (default: the codec's preferred preset)")
	fs.String("tune", "", "Encoder tune (default: the codec's preferred tune)")
	fs.String("profile", "", "Encoder profile (default: the codec's preferred profile)")
	fs.String("container", "", "Output container: mkv, webm, mp4, mov, m2ts (default: keep the input's)")
	fs.String("title", "", "Container title template: %t current title, %f path, %b base name, %e extension, %i index")
	fs.StringSlice("keep-video", nil, "Keep only video tracks matching these tokens (language, title or codec; * for all)")
	fs.StringSlice("keep-audio", nil, "Keep only audio tracks matching these tokens")
	fs.StringSlice("keep-subtitle", nil, "Keep only subtitle tracks matching these tokens")
	fs.Bool("keep-none", false, "Drop every track before the keep filters apply")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}
