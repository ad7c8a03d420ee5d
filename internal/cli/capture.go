package cli

import (
	"companion-cli/internal/format"
	"companion-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCaptureCmd(app *App) *cobra.Command {
	var resident bool

	cmd := &cobra.Command{
		Use:           "capture",
		Short:         "Open the quick capture overlay (TUI)",
		SilenceUsage:  true,
		SilenceErrors: true, // cancel should be quiet (non-zero exit)
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay(cmd, app, resident)
		},
	}
	cmd.Flags().BoolVar(&resident, "resident", false, "Stay running after hiding; show again with `companion toggle`")
	return cmd
}

func runOverlay(cmd *cobra.Command, app *App, resident bool) error {
	if err := app.setup(cmd, false); err != nil {
		return writeErr(cmd, err)
	}
	s, err := app.openSink(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	res, err := tui.Run(cmd.Context(), tui.Options{
		Config:   app.cfg,
		Sink:     s,
		Logger:   app.log,
		Resident: resident,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log.Info("overlay closed", zap.Int("saved", len(res.Saved)), zap.Bool("resident", resident))

	if res.Canceled() {
		if res.LastError != nil {
			return writeErr(cmd, notSavedError{err: res.LastError})
		}
		return errCanceled
	}
	if resident {
		return writeOut(cmd, app, format.Envelope(res.Saved))
	}
	return writeOut(cmd, app, format.Envelope(res.Saved[len(res.Saved)-1]))
}
