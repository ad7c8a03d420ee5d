package capture

import (
	"context"

	"companion-cli/internal/model"
)

// Msg is an event delivered to the controller on the event loop.
type Msg interface{}

// Cmd is deferred work that runs off the event loop. The Msg it returns must be
// handed back to Controller.Update on the loop.
type Cmd func() Msg

// WindowHost is the host window the controller sizes, shows and hides.
// The controller never reads state back from it.
type WindowHost interface {
	Focus() error
	SetVisible(visible bool) error
	Resize(width, height int) error
	// OnFocusChanged registers fn for focus notifications and returns a function
	// that removes the registration.
	OnFocusChanged(fn func(focused bool)) (unsubscribe func())
}

// ItemSink persists captured items.
type ItemSink interface {
	Submit(ctx context.Context, item model.Item) error
}

// Input is the text surface inside the host window.
type Input interface {
	Focus()
}

type Key int

const (
	// KeyEnter is a plain Enter; the surface inserts a newline.
	KeyEnter Key = iota
	// KeySubmit is modifier+Enter.
	KeySubmit
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeySubmit:
		return "submit"
	case KeyEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// FocusChangedMsg reports a host window focus change.
type FocusChangedMsg struct {
	Focused bool
}

type focusDueMsg struct{}

type submitResultMsg struct {
	seq  uint64
	item model.Item
	err  error
}
