package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"companion-cli/internal/config"
	"companion-cli/internal/format"
	"companion-cli/internal/model"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigPathCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd, true); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope(app.cfg.Redacted()))
		},
	}
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.configDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), config.Path(dir))
			return err
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.json with defaults",
		Example: strings.TrimSpace(`
  companion config init --owner 6ee6af65-83f5-4944-8b55-47e73a2963b0
  companion config init --owner me --kind note
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := app.configDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			owner := strings.TrimSpace(app.OwnerID)
			if owner == "" {
				return writeErr(cmd, errors.New("missing --owner"))
			}
			path := config.Path(dir)
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("%s already exists (use --force to overwrite)", path))
			}

			cfg := config.Defaults(dir)
			cfg.OwnerID = owner
			if app.Kind != "" {
				k, err := model.ParseKind(app.Kind)
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.Kind = string(k)
			}
			if app.Driver != "" {
				cfg.Sink.Driver = strings.ToLower(strings.TrimSpace(app.Driver))
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				return writeErr(cmd, errs)
			}
			if err := config.Save(dir, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope(map[string]any{"path": path}, "companion config show"))
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.json")
	return cmd
}
