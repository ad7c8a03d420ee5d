package cli

import (
	"companion-cli/internal/capture"

	"go.uber.org/zap"
)

// headlessHost is a WindowHost with no window: `companion add` runs the same
// controller and pipeline as the overlay, so host calls are only logged.
type headlessHost struct {
	log     *zap.Logger
	visible bool
	height  int
}

var _ capture.WindowHost = (*headlessHost)(nil)

func (h *headlessHost) Focus() error { return nil }

func (h *headlessHost) SetVisible(visible bool) error {
	h.visible = visible
	h.log.Debug("host visibility", zap.Bool("visible", visible))
	return nil
}

func (h *headlessHost) Resize(width, height int) error {
	h.height = height
	h.log.Debug("host resize", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (h *headlessHost) OnFocusChanged(func(bool)) func() { return func() {} }
