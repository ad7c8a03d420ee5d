package cli

import (
	"companion-cli/internal/config"
	"companion-cli/internal/format"
	"companion-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Show or hide the resident overlay",
		Long:  "Signals the overlay started with `companion capture --resident`. Bind this to a global hotkey.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.configDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			pid, err := tui.SignalToggle(config.Defaults(dir).PIDFile())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope(map[string]any{"pid": pid}))
		},
	}
}
