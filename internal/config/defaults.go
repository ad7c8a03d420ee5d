package config

import (
	"path/filepath"

	"companion-cli/internal/capture"
	"companion-cli/internal/model"

	"github.com/spf13/viper"
)

// Defaults returns the built-in configuration rooted at dir.
func Defaults(dir string) *Config {
	sizing := capture.TerminalSizing()
	delegation := capture.DefaultDelegation()
	return &Config{
		Kind:   string(model.KindTask),
		Source: model.DefaultSource,
		Window: WindowConfig{
			Width:         sizing.Width,
			BaseHeight:    sizing.BaseHeight,
			LineHeight:    sizing.LineHeight,
			MaxTextHeight: sizing.MaxTextHeight,
			FocusDelayMs:  int(capture.DefaultFocusDelay.Milliseconds()),
		},
		Delegation: DelegationConfig{
			Keyword: delegation.Keyword,
			Tags:    delegation.Tags,
		},
		Sink: SinkConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: filepath.Join(dir, "inbox.sqlite")},
			Supabase: SupabaseConfig{
				Table: "items",
			},
			NATS: NATSConfig{
				URL:     "nats://localhost:4222",
				Subject: "capture.items",
				Stream:  "CAPTURE",
			},
			Redis: RedisConfig{
				URL:    "redis://localhost:6379/0",
				Stream: "capture:items",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(dir, "logs", "companion.log"),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: "companion",
		},
		TUI: TUIConfig{
			SubmitKeys:   []string{"alt+enter", "ctrl+s"},
			Theme:        "auto",
			ErrorSurface: "notice",
			Placeholder:  "What needs doing?",
		},
		Dir: dir,
	}
}

func setDefaults(v *viper.Viper, dir string) {
	d := Defaults(dir)

	v.SetDefault("owner_id", d.OwnerID)
	v.SetDefault("kind", d.Kind)
	v.SetDefault("source", d.Source)

	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.base_height", d.Window.BaseHeight)
	v.SetDefault("window.line_height", d.Window.LineHeight)
	v.SetDefault("window.max_text_height", d.Window.MaxTextHeight)
	v.SetDefault("window.focus_delay_ms", d.Window.FocusDelayMs)
	v.SetDefault("window.hide_on_blur", d.Window.HideOnBlur)

	v.SetDefault("delegation.keyword", d.Delegation.Keyword)
	v.SetDefault("delegation.tags", d.Delegation.Tags)

	v.SetDefault("sink.driver", d.Sink.Driver)
	v.SetDefault("sink.timeout_ms", d.Sink.TimeoutMs)
	v.SetDefault("sink.sqlite.path", d.Sink.SQLite.Path)
	v.SetDefault("sink.postgres.dsn", d.Sink.Postgres.DSN)
	v.SetDefault("sink.postgres.auto_migrate", d.Sink.Postgres.AutoMigrate)
	v.SetDefault("sink.supabase.url", d.Sink.Supabase.URL)
	v.SetDefault("sink.supabase.key", d.Sink.Supabase.Key)
	v.SetDefault("sink.supabase.table", d.Sink.Supabase.Table)
	v.SetDefault("sink.nats.url", d.Sink.NATS.URL)
	v.SetDefault("sink.nats.subject", d.Sink.NATS.Subject)
	v.SetDefault("sink.nats.stream", d.Sink.NATS.Stream)
	v.SetDefault("sink.redis.url", d.Sink.Redis.URL)
	v.SetDefault("sink.redis.stream", d.Sink.Redis.Stream)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)

	v.SetDefault("tui.submit_keys", d.TUI.SubmitKeys)
	v.SetDefault("tui.theme", d.TUI.Theme)
	v.SetDefault("tui.error_surface", d.TUI.ErrorSurface)
	v.SetDefault("tui.placeholder", d.TUI.Placeholder)
}
