package ui

import (
	"fmt"
	"strings"

	"trimmer/internal/model"
	"trimmer/internal/progress"
	"trimmer/internal/util/format"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.files)
	for _, f := range m.files {
		if f.status.Terminal() {
			done++
		}
	}
	title := m.styles.Title.Render("trimmer • HEVC remux")

	hint := "q: cancel"
	switch {
	case m.finished:
		hint = "q: quit"
	case m.cancelling:
		hint = "cancelling… q again to quit now"
	}
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Files: %d/%d done • elapsed %s • %s",
		done, total, format.ETA(m.elapsed), hint))

	eta := "--:--"
	if m.overallETA != nil {
		eta = format.ETA(*m.overallETA)
	}
	bar := fmt.Sprintf("%s %5.1f%%  ETA %s", m.overall.ViewAs(clampPercent(m.overallPercent)/100), m.overallPercent, eta)
	return title + "\n" + sub + "\n" + m.styles.Header.Render("Overall ") + bar
}

func (m Model) viewFiles() string {
	var b strings.Builder
	for _, f := range m.files {
		b.WriteString(m.viewFile(f))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewFile(f *fileState) string {
	stageStyle := m.styles.FileInfo
	switch f.stage {
	case progress.StageProbing:
		stageStyle = m.styles.StageProbe
	case progress.StageEncoding:
		stageStyle = m.styles.StageEnc
	case progress.StageCommitting:
		stageStyle = m.styles.StageCommit
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageError:
		stageStyle = m.styles.Error
	case progress.StageCancelled:
		stageStyle = m.styles.Warning
	}

	left := m.styles.FileTitle.Render(truncate(f.name, 48))
	stage := stageStyle.Render(string(f.stage))
	if f.status == model.StatusPending {
		stage = m.styles.Faint.Render(string(model.StatusPending))
	}

	var right string
	switch {
	case f.status == model.StatusDone:
		right = m.styles.Success.Render("✓ done")
	case f.status == model.StatusError:
		right = m.styles.Error.Render("✗ error")
	case f.status == model.StatusCancelled:
		right = m.styles.Warning.Render("⊘ cancelled")
	case f.percent >= 0:
		eta := "--:--"
		if f.eta != nil {
			eta = format.ETA(*f.eta)
		}
		right = fmt.Sprintf("%s %5.1f%%  %.1f fps  %.2fx  ETA %s",
			f.bar.ViewAs(clampPercent(f.percent)/100), f.percent, f.fps, f.speed, eta)
	case f.status == model.StatusWorking:
		right = m.styles.Spinner.Render(f.spinner.View()) + " " + m.styles.Faint.Render(fmt.Sprintf("frame %d", f.frame))
	default:
		right = m.styles.Spinner.Render(f.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s", left, stage)
	line2 := m.styles.FileInfo.Render(f.info)
	return m.styles.Box.Render(line1 + "\n" + right + "\n" + line2)
}

func (m Model) viewSummary() string {
	if !m.finished {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%d done • %d failed • %d cancelled",
		m.result.Count(model.StatusDone), m.result.Count(model.StatusError), m.result.Count(model.StatusCancelled))))
	b.WriteString("\n")
	for _, f := range m.files {
		if f.status == model.StatusDone && f.outputPath != "" {
			b.WriteString(m.styles.Success.Render("  • " + f.outputPath))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clampPercent(p float64) float64 {
	return max(0, min(100, p))
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
