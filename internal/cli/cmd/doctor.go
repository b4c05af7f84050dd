package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trimmer/internal/codec"
	"trimmer/internal/config"
	"trimmer/internal/dirs"
	"trimmer/internal/pipeline"
	"trimmer/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe) and HEVC encoders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := config.Load()
			out := cmd.OutOrStdout()

			ff, err := deps.FindFFmpeg(s.FFmpeg)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fp, err := deps.FindFFprobe(s.FFprobe)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "FFmpeg:    %s\n", ff)
			fmt.Fprintf(out, "FFprobe:   %s\n", fp)
			if s.ConfigFile != "" {
				fmt.Fprintf(out, "Config:    %s\n", s.ConfigFile)
			}
			if p, err := dirs.LogFile(); err == nil {
				fmt.Fprintf(out, "TUI log:   %s\n", p)
			}

			svc := pipeline.NewService(pipeline.WithFFmpegPath(ff))
			cd, supported, err := svc.ResolveCodec(cmd.Context(), "", s.GPU)
			for _, c := range supported {
				fmt.Fprintf(out, "Encoder:   %s\n", c.Name)
			}
			if err != nil {
				if errors.Is(err, codec.ErrNoHEVCCodec) {
					return &ExitError{Code: ExitCodecError, Err: err}
				}
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "Preferred: %s\n", cd.Name)
			return nil
		},
	}
}
