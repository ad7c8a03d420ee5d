package cli

import (
	"companion-cli/internal/format"
	"companion-cli/internal/model"
	"companion-cli/internal/store"

	"github.com/spf13/cobra"
)

func newInboxCmd(app *App) *cobra.Command {
	var (
		limit     int
		delegated bool
	)

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List items captured into the local sqlite inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd, true); err != nil {
				return writeErr(cmd, err)
			}
			st, err := store.Open(cmd.Context(), app.cfg.Sink.SQLite.Path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			items, err := st.List(cmd.Context(), store.ListFilter{
				Status:        model.StatusInbox,
				DelegatedOnly: delegated,
				Limit:         limit,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			if items == nil {
				items = []model.Item{}
			}
			var hints []string
			if app.cfg.Sink.Driver != "sqlite" {
				hints = append(hints, "sink driver is "+app.cfg.Sink.Driver+"; only items captured with the sqlite sink are listed")
			}
			return writeOut(cmd, app, format.Envelope(items, hints...))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of items (0 = all)")
	cmd.Flags().BoolVar(&delegated, "delegated", false, "Only delegated items")
	return cmd
}
