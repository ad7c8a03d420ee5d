package capture

import (
	"context"
	"fmt"
	"sync"

	"companion-cli/internal/model"
)

type fakeHost struct {
	mu        sync.Mutex
	calls     []string
	resizeErr error
	listeners map[int]func(bool)
	nextID    int
}

func newFakeHost() *fakeHost {
	return &fakeHost{listeners: map[int]func(bool){}}
}

func (h *fakeHost) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, s)
}

func (h *fakeHost) Focus() error {
	h.record("focus")
	return nil
}

func (h *fakeHost) SetVisible(visible bool) error {
	h.record(fmt.Sprintf("visible:%v", visible))
	return nil
}

func (h *fakeHost) Resize(width, height int) error {
	h.record(fmt.Sprintf("resize:%dx%d", width, height))
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resizeErr
}

func (h *fakeHost) OnFocusChanged(fn func(bool)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *fakeHost) emitFocus(focused bool) {
	h.mu.Lock()
	fns := make([]func(bool), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(focused)
	}
}

func (h *fakeHost) listenerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *fakeHost) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *fakeHost) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

type fakeSink struct {
	mu    sync.Mutex
	err   error
	items []model.Item
	block chan struct{}
}

func (s *fakeSink) Submit(ctx context.Context, item model.Item) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return s.err
}

func (s *fakeSink) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

type fakeInput struct {
	mu      sync.Mutex
	focused int
}

func (in *fakeInput) Focus() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.focused++
}

func (in *fakeInput) Count() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.focused
}
