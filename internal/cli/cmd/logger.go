package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trimmer/internal/config"
	"trimmer/internal/dirs"
	"trimmer/internal/logging"
)

// newLogger builds the command's logger. While the TUI owns the terminal,
// logs go to the state directory unless --log-file says otherwise.
func newLogger(cmd *cobra.Command, s config.Settings, tui bool) (zerolog.Logger, func() error, error) {
	opts := logging.Options{
		Level:   s.LogLevel,
		File:    s.LogFile,
		NoColor: s.NoColor,
		Writer:  cmd.ErrOrStderr(),
	}
	if s.Verbose && !cmd.Flags().Changed("log-level") {
		opts.Level = "debug"
	}
	if tui && opts.File == "" {
		if p, err := dirs.LogFile(); err == nil {
			opts.File = p
		}
	}
	return logging.New(opts)
}
