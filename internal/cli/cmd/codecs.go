package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trimmer/internal/codec"
	"trimmer/internal/config"
	"trimmer/internal/ui"
	"trimmer/internal/util"
	"trimmer/internal/util/deps"
)

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "codecs",
		Short:         "List the HEVC encoders with their presets, tunes and profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := config.Load()
			var supported []codec.Codec
			if ff, err := deps.FindFFmpeg(s.FFmpeg); err == nil {
				// Without ffmpeg the catalog is still worth showing, unmarked.
				supported, _ = codec.DetectSupported(cmd.Context(), util.NewDefaultRunner(), ff)
			}
			printCodecs(cmd, codec.Known(), supported)
			return nil
		},
	}
}

func printCodecs(cmd *cobra.Command, catalog, supported []codec.Codec) {
	out := cmd.OutOrStdout()
	avail := make(map[string]bool, len(supported))
	for _, c := range supported {
		avail[c.Name] = true
	}
	for _, c := range catalog {
		mark := ui.FaintStyle.Render("  ")
		if avail[c.Name] {
			mark = ui.SuccessStyle.Render("✓ ")
		}
		fmt.Fprintln(out, mark+ui.TitleStyle.Render(c.Name))
		fmt.Fprintf(out, "    presets:  %s\n", vocabulary(c.Presets, c.PreferredPreset))
		if len(c.Tunes) > 0 {
			fmt.Fprintf(out, "    tunes:    %s\n", vocabulary(c.Tunes, c.PreferredTune))
		}
		fmt.Fprintf(out, "    profiles: %s\n", vocabulary(c.Profiles, c.PreferredProfile))
	}
}

// vocabulary joins values, starring the preferred one.
func vocabulary(values []string, preferred string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == preferred {
			v += "*"
		}
		parts[i] = v
	}
	return strings.Join(parts, ", ")
}
