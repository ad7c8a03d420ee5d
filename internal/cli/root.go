package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"companion-cli/internal/config"
	"companion-cli/internal/format"
	"companion-cli/internal/logging"
	"companion-cli/internal/sink"
	"companion-cli/internal/tracing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigDir  string
	OwnerID    string
	Kind       string
	Driver     string
	PrettyJSON bool
	Verbose    bool

	cfg    *config.Config
	log    *zap.Logger
	tracer *tracing.Provider
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "companion",
		Short:        "Quick capture overlay for your inbox",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the capture overlay
  companion

  # Keep the overlay resident and toggle it from a hotkey
  companion capture --resident
  companion toggle

  # Headless capture (shortcut for: companion add <text...>)
  companion buy milk #dd

  # Locally captured items
  companion inbox --limit 10
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive overlay.
			if len(args) == 0 {
				return runOverlay(cmd, app, false)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.shutdown(cmd.Context())
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("COMPANION_CONFIG_DIR", ""), "Configuration directory (default: ~/.companion)")
	cmd.PersistentFlags().StringVar(&app.OwnerID, "owner", "", "Owner id stamped on captured items (overrides owner_id)")
	cmd.PersistentFlags().StringVar(&app.Kind, "kind", "", "Item kind to emit (task|note)")
	cmd.PersistentFlags().StringVar(&app.Driver, "sink", "", "Sink driver (sqlite|postgres|supabase|nats|redis)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Mirror logs to stderr (headless commands)")

	cmd.AddCommand(newCaptureCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newInboxCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func (app *App) configDir() (string, error) {
	if d := strings.TrimSpace(app.ConfigDir); d != "" {
		return d, nil
	}
	return config.Dir()
}

// setup loads configuration and builds the logger and tracer. headless commands may
// mirror logs to stderr; the overlay owns the terminal and never does.
func (app *App) setup(cmd *cobra.Command, headless bool) error {
	if app.cfg != nil {
		return nil
	}
	dir, err := app.configDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir, config.Overrides{
		OwnerID: app.OwnerID,
		Kind:    app.Kind,
		Driver:  app.Driver,
	})
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging, logging.Options{
		Console: headless && app.Verbose,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	tp, err := tracing.Init(cmd.Context(), cfg.Tracing)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
		tp, _ = tracing.Init(cmd.Context(), config.TracingConfig{})
	}
	app.cfg, app.log, app.tracer = cfg, log, tp
	app.log.Debug("configuration loaded",
		zap.String("dir", cfg.Dir),
		zap.String("sink", cfg.Sink.Driver),
		zap.String("kind", cfg.Kind),
	)
	return nil
}

func (app *App) openSink(ctx context.Context) (sink.Sink, error) {
	s, err := sink.Open(ctx, app.cfg.Sink, app.log)
	if err != nil {
		return nil, err
	}
	if app.cfg.Tracing.Enabled {
		return sink.NewTraced(s, app.tracer.Tracer, app.cfg.Sink.Driver), nil
	}
	return s, nil
}

func (app *App) shutdown(ctx context.Context) {
	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil && app.log != nil {
			app.log.Warn("tracer shutdown", zap.Error(err))
		}
	}
	if app.log != nil {
		_ = app.log.Sync()
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, "json", app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
