package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trimmer/internal/model"
	"trimmer/internal/pipeline"
	"trimmer/internal/ui"
)

func printPlans(cmd *cobra.Command, plans []pipeline.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.TitleStyle.Render("Dry-run plan:"))
	for _, p := range plans {
		fmt.Fprintln(out)
		fmt.Fprintln(out, p.Info)
		if p.Err != nil {
			fmt.Fprintln(out, ui.ErrorStyle.Render("  error: "+p.Err.Error()))
			continue
		}
		fmt.Fprintf(out, "  keeps:   %s\n", p.Summary)
		fmt.Fprintf(out, "  command: %s\n", p.Command)
	}
}

func printSummary(cmd *cobra.Command, res pipeline.BatchResult) {
	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		switch f.Status {
		case model.StatusDone:
			fmt.Fprintln(out, ui.SuccessStyle.Render(fmt.Sprintf("Saved: %s (backup: %s)", f.Final, f.Backup)))
		case model.StatusError:
			fmt.Fprintln(out, ui.ErrorStyle.Render(fmt.Sprintf("Failed: %s: %v", f.Path, f.Err)))
		}
	}
	parts := []string{
		fmt.Sprintf("%d done", res.Count(model.StatusDone)),
		fmt.Sprintf("%d failed", res.Count(model.StatusError)),
		fmt.Sprintf("%d cancelled", res.Count(model.StatusCancelled)),
	}
	fmt.Fprintln(out, ui.FaintStyle.Render(strings.Join(parts, " • ")+" in "+res.Elapsed.Round(time.Second).String()))
}
