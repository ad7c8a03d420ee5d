package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewItem_RejectsBlankContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t\n"} {
		_, err := NewItem(ItemSpec{Content: content, Kind: KindTask, OwnerID: "owner-1"})
		if !errors.Is(err, ErrBlankContent) {
			t.Fatalf("content %q: expected ErrBlankContent, got %v", content, err)
		}
	}
}

func TestNewItem_KeepsContentVerbatim(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	it, err := NewItem(ItemSpec{Content: "Call dentist\n", Kind: KindNote, OwnerID: " owner-1 ", Now: now})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if it.Content != "Call dentist\n" {
		t.Fatalf("expected verbatim content, got %q", it.Content)
	}
	if it.Status != StatusInbox || it.Kind != KindNote || it.OwnerID != "owner-1" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.Metadata.Source != DefaultSource {
		t.Fatalf("expected default source, got %q", it.Metadata.Source)
	}
	if !it.CreatedAt.Equal(now) || it.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC createdAt, got %v", it.CreatedAt)
	}
	if len(it.ID) != 26 {
		t.Fatalf("expected ULID id, got %q", it.ID)
	}
}

func TestNewItem_RequiresOwnerAndKind(t *testing.T) {
	if _, err := NewItem(ItemSpec{Content: "x", Kind: KindTask}); err == nil {
		t.Fatalf("expected missing owner error")
	}
	if _, err := NewItem(ItemSpec{Content: "x", Kind: "idea", OwnerID: "o"}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "task", want: KindTask},
		{in: " Note ", want: KindNote},
		{in: "idea", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseKind(%q) err=%v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseKind(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
