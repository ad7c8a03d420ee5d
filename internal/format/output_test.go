package format

import (
	"bytes"
	"testing"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Envelope(map[string]int{"n": 1}, "companion inbox"), "json", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"_hints":["companion inbox"],"data":{"n":1}}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Write(&buf, Envelope([]int{}), "", true); err != nil {
		t.Fatalf("write pretty: %v", err)
	}
	if buf.String() != "{\n  \"data\": []\n}\n" {
		t.Fatalf("unexpected pretty output %q", buf.String())
	}

	if err := Write(&buf, 1, "edn", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
