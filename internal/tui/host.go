package tui

import "sync"

// programHost is the capture.WindowHost of the terminal overlay. The controller
// drives it from inside Update; View renders whatever it last accepted.
//
// A terminal cannot hide itself, so hiding either ends the program or, when the
// overlay is resident, blanks the screen until the next toggle.
type programHost struct {
	resident bool

	width   int
	height  int
	visible bool
	// quit is set when a non-resident overlay is hidden.
	quit bool
	// focusRequests counts Focus calls. A terminal cannot raise its own window, so a
	// request is answered as if focus arrived.
	focusRequests int

	mu     sync.Mutex
	nextID int
	subs   map[int]func(bool)
}

func newProgramHost(resident bool) *programHost {
	return &programHost{
		resident: resident,
		visible:  true,
		subs:     map[int]func(bool){},
	}
}

func (h *programHost) Focus() error {
	h.focusRequests++
	h.emitFocus(true)
	return nil
}

func (h *programHost) SetVisible(visible bool) error {
	h.visible = visible
	if !visible && !h.resident {
		h.quit = true
	}
	return nil
}

func (h *programHost) Resize(width, height int) error {
	h.width = width
	h.height = height
	return nil
}

func (h *programHost) OnFocusChanged(fn func(focused bool)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *programHost) emitFocus(focused bool) {
	h.mu.Lock()
	fns := make([]func(bool), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(focused)
	}
}
