package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultSource is the metadata source stamped on every captured item.
const DefaultSource = "capture-app"

var ErrBlankContent = errors.New("content is blank")

type Status string

const (
	StatusInbox Status = "inbox"
)

type Kind string

const (
	KindTask Kind = "task"
	KindNote Kind = "note"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTask:
		return KindTask, nil
	case KindNote:
		return KindNote, nil
	default:
		return "", fmt.Errorf("unknown item kind: %q (expected task|note)", s)
	}
}

type Metadata struct {
	Source    string `json:"source"`
	Delegated bool   `json:"delegated"`
}

// Item is a single captured entry. It is built once at submit time and never mutated.
type Item struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	Kind      Kind      `json:"kind"`
	OwnerID   string    `json:"ownerId"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}

type ItemSpec struct {
	Content   string
	Kind      Kind
	OwnerID   string
	Source    string
	Delegated bool
	Now       time.Time
}

// NewItem validates spec and returns an inbox item with a fresh ULID.
//
// Content is kept verbatim (trailing newlines included); only the blank check trims.
func NewItem(spec ItemSpec) (Item, error) {
	if strings.TrimSpace(spec.Content) == "" {
		return Item{}, ErrBlankContent
	}
	if spec.Kind != KindTask && spec.Kind != KindNote {
		return Item{}, fmt.Errorf("unknown item kind: %q", spec.Kind)
	}
	if strings.TrimSpace(spec.OwnerID) == "" {
		return Item{}, errors.New("owner id is required")
	}
	now := spec.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return Item{}, fmt.Errorf("generate item id: %w", err)
	}
	source := strings.TrimSpace(spec.Source)
	if source == "" {
		source = DefaultSource
	}
	return Item{
		ID:      id.String(),
		Content: spec.Content,
		Status:  StatusInbox,
		Kind:    spec.Kind,
		OwnerID: strings.TrimSpace(spec.OwnerID),
		Metadata: Metadata{
			Source:    source,
			Delegated: spec.Delegated,
		},
		CreatedAt: now,
	}, nil
}
