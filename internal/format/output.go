package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes output in the requested format. JSON is the only machine format.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON. Follow-up commands go in `_hints`, never in
// free text around the document.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Envelope is the standard success shape: {"data": ..., "_hints": [...]}.
func Envelope(data any, hints ...string) map[string]any {
	out := map[string]any{"data": data}
	if len(hints) > 0 {
		out["_hints"] = hints
	}
	return out
}
