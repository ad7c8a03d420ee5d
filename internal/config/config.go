package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companion-cli/internal/capture"
	"companion-cli/internal/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix    = "COMPANION"
	envConfigDir = "COMPANION_CONFIG_DIR"
	fileName     = "config.json"
)

type Config struct {
	// OwnerID is stamped on every item; it is never derived at runtime.
	OwnerID string `mapstructure:"owner_id" json:"owner_id" validate:"required"`
	// Kind is the item kind this deployment emits ("task" or "note").
	Kind   string `mapstructure:"kind" json:"kind" validate:"oneof=task note"`
	Source string `mapstructure:"source" json:"source" validate:"required"`

	Window     WindowConfig     `mapstructure:"window" json:"window"`
	Delegation DelegationConfig `mapstructure:"delegation" json:"delegation"`
	Sink       SinkConfig       `mapstructure:"sink" json:"sink"`
	Logging    LoggingConfig    `mapstructure:"logging" json:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing" json:"tracing"`
	TUI        TUIConfig        `mapstructure:"tui" json:"tui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-" json:"-"`
}

// WindowConfig sizes the overlay in terminal rows/columns.
type WindowConfig struct {
	Width         int  `mapstructure:"width" json:"width" validate:"gt=0"`
	BaseHeight    int  `mapstructure:"base_height" json:"base_height" validate:"gt=0"`
	LineHeight    int  `mapstructure:"line_height" json:"line_height" validate:"gt=0"`
	MaxTextHeight int  `mapstructure:"max_text_height" json:"max_text_height" validate:"gtefield=LineHeight"`
	FocusDelayMs  int  `mapstructure:"focus_delay_ms" json:"focus_delay_ms" validate:"gte=0"`
	HideOnBlur    bool `mapstructure:"hide_on_blur" json:"hide_on_blur"`
}

type DelegationConfig struct {
	Keyword string   `mapstructure:"keyword" json:"keyword"`
	Tags    []string `mapstructure:"tags" json:"tags"`
}

type SinkConfig struct {
	Driver    string `mapstructure:"driver" json:"driver" validate:"oneof=sqlite postgres supabase nats redis"`
	TimeoutMs int    `mapstructure:"timeout_ms" json:"timeout_ms" validate:"gte=0"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite" json:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" json:"postgres"`
	Supabase SupabaseConfig `mapstructure:"supabase" json:"supabase"`
	NATS     NATSConfig     `mapstructure:"nats" json:"nats"`
	Redis    RedisConfig    `mapstructure:"redis" json:"redis"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

type PostgresConfig struct {
	DSN         string `mapstructure:"dsn" json:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate" json:"auto_migrate"`
}

type SupabaseConfig struct {
	URL   string `mapstructure:"url" json:"url"`
	Key   string `mapstructure:"key" json:"key"`
	Table string `mapstructure:"table" json:"table"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url" json:"url"`
	Subject string `mapstructure:"subject" json:"subject"`
	Stream  string `mapstructure:"stream" json:"stream"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url" json:"url"`
	Stream string `mapstructure:"stream" json:"stream"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" validate:"gte=0"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	Insecure    bool   `mapstructure:"insecure" json:"insecure"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

type TUIConfig struct {
	// SubmitKeys are the modifier+Enter bindings (terminals rarely report cmd+enter).
	SubmitKeys []string `mapstructure:"submit_keys" json:"submit_keys" validate:"min=1,dive,required"`
	// Theme is "auto", "light" or "dark".
	Theme string `mapstructure:"theme" json:"theme" validate:"oneof=auto light dark"`
	// ErrorSurface is how failed saves are shown: "notice" (inline) or "bell" (inline + terminal bell).
	ErrorSurface string `mapstructure:"error_surface" json:"error_surface" validate:"oneof=notice bell"`
	Placeholder  string `mapstructure:"placeholder" json:"placeholder"`
}

// Overrides are command-line values that win over file and environment.
type Overrides struct {
	OwnerID string
	Kind    string
	Driver  string
}

// Dir returns the configuration directory (~/.companion unless COMPANION_CONFIG_DIR is set).
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.companion).
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".companion"), nil
}

func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

// Load reads dir/.env (optional), dir/config.json (optional) and COMPANION_* variables,
// applies overrides and validates the result.
func Load(dir string, o Overrides) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetConfigName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", Path(dir), err)
		}
	}

	if s := strings.TrimSpace(o.OwnerID); s != "" {
		v.Set("owner_id", s)
	}
	if s := strings.TrimSpace(o.Kind); s != "" {
		v.Set("kind", strings.ToLower(s))
	}
	if s := strings.TrimSpace(o.Driver); s != "" {
		v.Set("sink.driver", strings.ToLower(s))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Dir = dir

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// Save writes cfg to dir/config.json, keeping a backup of the previous file.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	path := Path(dir)
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o600)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func (c *Config) ItemKind() model.Kind {
	k, err := model.ParseKind(c.Kind)
	if err != nil {
		return model.KindTask
	}
	return k
}

func (c *Config) Sizing() capture.Sizing {
	return capture.Sizing{
		Width:         c.Window.Width,
		BaseHeight:    c.Window.BaseHeight,
		LineHeight:    c.Window.LineHeight,
		MaxTextHeight: c.Window.MaxTextHeight,
	}
}

func (c *Config) DelegationRule() capture.Delegation {
	return capture.Delegation{
		Keyword: c.Delegation.Keyword,
		Tags:    append([]string(nil), c.Delegation.Tags...),
	}
}

// Controller maps the configuration onto the capture controller's settings.
func (c *Config) Controller() capture.Config {
	return capture.Config{
		Kind:          c.ItemKind(),
		OwnerID:       c.OwnerID,
		Source:        c.Source,
		Sizing:        c.Sizing(),
		Delegation:    c.DelegationRule(),
		FocusDelay:    time.Duration(c.Window.FocusDelayMs) * time.Millisecond,
		HideOnBlur:    c.Window.HideOnBlur,
		SubmitTimeout: time.Duration(c.Sink.TimeoutMs) * time.Millisecond,
	}
}

func (c *Config) PIDFile() string {
	return filepath.Join(c.Dir, "companion.pid")
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	const mask = "********"
	if c.Sink.Postgres.DSN != "" {
		c.Sink.Postgres.DSN = mask
	}
	if c.Sink.Supabase.Key != "" {
		c.Sink.Supabase.Key = mask
	}
	if strings.Contains(c.Sink.Redis.URL, "@") {
		c.Sink.Redis.URL = mask
	}
	if strings.Contains(c.Sink.NATS.URL, "@") {
		c.Sink.NATS.URL = mask
	}
	c.Delegation.Tags = append([]string(nil), c.Delegation.Tags...)
	c.TUI.SubmitKeys = append([]string(nil), c.TUI.SubmitKeys...)
	return c
}
