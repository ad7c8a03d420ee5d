package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // config key path, e.g. "sink.driver"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks c and returns every problem found.
func (c *Config) Validate() ValidationErrors {
	var out ValidationErrors
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidationErrors{{Field: "config", Value: nil, Message: err.Error()}}
		}
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Value:   fe.Value(),
				Message: describe(fe),
			})
		}
	}
	out = append(out, c.validateSink()...)
	return out
}

// fieldPath drops the root struct name: "Config.sink.driver" -> "sink.driver".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "gtefield":
		return "must not be below " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func (c *Config) validateSink() ValidationErrors {
	var out ValidationErrors
	req := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			out = append(out, ValidationError{Field: field, Value: value, Message: "is required for sink driver " + c.Sink.Driver})
		}
	}
	switch c.Sink.Driver {
	case "sqlite":
		req("sink.sqlite.path", c.Sink.SQLite.Path)
	case "postgres":
		req("sink.postgres.dsn", c.Sink.Postgres.DSN)
	case "supabase":
		req("sink.supabase.url", c.Sink.Supabase.URL)
		req("sink.supabase.key", c.Sink.Supabase.Key)
		req("sink.supabase.table", c.Sink.Supabase.Table)
		if u := strings.TrimSpace(c.Sink.Supabase.URL); u != "" {
			if parsed, err := url.Parse(u); err != nil || parsed.Scheme == "" || parsed.Host == "" {
				out = append(out, ValidationError{Field: "sink.supabase.url", Value: u, Message: "must be an absolute URL"})
			}
		}
	case "nats":
		req("sink.nats.url", c.Sink.NATS.URL)
		req("sink.nats.subject", c.Sink.NATS.Subject)
	case "redis":
		req("sink.redis.url", c.Sink.Redis.URL)
		req("sink.redis.stream", c.Sink.Redis.Stream)
	}
	return out
}
