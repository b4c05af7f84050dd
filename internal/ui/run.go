package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"trimmer/internal/pipeline"
	"trimmer/internal/progress"
)

// BatchFunc runs the batch, reporting through rep. It must return once ctx
// is cancelled.
type BatchFunc func(ctx context.Context, rep progress.Reporter) pipeline.BatchResult

// Run shows the TUI for paths while batch processes them. It returns once
// the batch has fully stopped, even when the user quits early, so no
// commit is interrupted halfway.
func Run(ctx context.Context, paths []string, batch BatchFunc) (pipeline.BatchResult, error) {
	m := NewModel(ctx, paths)
	stop := make(chan struct{})
	rep := teaReporter{ch: m.eventCh, done: stop}

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	resultCh := make(chan pipeline.BatchResult, 1)
	go func() {
		res := batch(m.ctx, rep)
		resultCh <- res
		prog.Send(batchDoneMsg{Result: res})
	}()

	_, err := prog.Run()
	m.cancel()
	close(stop)
	res := <-resultCh
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return res, err
	}
	return res, nil
}
