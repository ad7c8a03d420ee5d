package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Run shows the capture overlay until it hides (or, when resident, until ctrl+c).
func Run(ctx context.Context, opts Options) (Result, error) {
	applyColorProfilePreference()
	applyThemePreference(opts.Config.TUI.Theme)
	applyGlyphPreference()

	if opts.Context == nil {
		opts.Context = ctx
	}
	if opts.Bell == nil {
		opts.Bell = os.Stderr
	}
	host := newProgramHost(opts.Resident)
	m, err := newOverlayModel(opts, host)
	if err != nil {
		return Result{}, err
	}

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if opts.Resident {
		pidPath := opts.Config.PIDFile()
		if err := writePIDFile(pidPath); err != nil {
			return Result{}, err
		}
		defer removePIDFile(pidPath)

		stop, err := watchToggle(p)
		if err != nil {
			return Result{}, err
		}
		defer stop()
		m.log.Info("resident overlay started", zap.String("pid_file", pidPath))
	}

	_, err = p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	return m.result(), err
}
