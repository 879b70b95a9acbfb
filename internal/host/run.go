package host

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/orbis-ime/internal/imedialog"
	"github.com/muurk/orbis-ime/internal/logging"
)

// How often the owning goroutine polls the controller
const pollInterval = 50 * time.Millisecond

// Options configures Run
type Options struct {
	FrameRate int       // frames per second, DefaultFrameRate if zero
	Input     io.Reader // defaults to stdin
	Output    io.Writer // defaults to stdout
	AltScreen bool
}

// Run shows the dialog until it finishes or ctx is done, and returns the
// final state and result. Cancelling ctx aborts the dialog.
//
// The program draws frames on its own goroutine while Run's goroutine polls
// the controller, so ctrl must not be drawn by anyone else meanwhile.
func Run(ctx context.Context, ctrl *imedialog.Controller, cfg *imedialog.Config, opts Options) (imedialog.State, imedialog.Result, error) {
	var progOpts []tea.ProgramOption
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(NewModel(ctrl, cfg, opts.FrameRate), progOpts...)

	logging.Debug("Terminal host started", zap.Int("frame_rate", opts.FrameRate))

	g, gctx := errgroup.WithContext(ctx)
	runDone := make(chan struct{})

	g.Go(func() error {
		defer close(runDone)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("terminal host failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runDone:
				// The program quit on its own; make sure the dialog ended
				ctrl.Abort()
				return nil
			case <-gctx.Done():
				ctrl.Abort()
				p.Quit()
				return nil
			case <-ticker.C:
				if state, _ := ctrl.Poll(); state.Terminal() {
					p.Quit()
					return nil
				}
			}
		}
	})

	err := g.Wait()
	state, result := ctrl.Poll()
	logging.Debug("Terminal host stopped", zap.String("state", state.String()))
	return state, result, err
}
