package capture

import "fmt"

// Sizing holds the constants of the window sizing policy. Units are whatever the
// host measures in (pixels for a desktop window, rows for a terminal).
type Sizing struct {
	Width int
	// BaseHeight is the window height with an empty or one-line buffer.
	BaseHeight int
	// LineHeight is the height of one empty line of the text surface.
	LineHeight int
	// MaxTextHeight caps the text surface; beyond it the surface scrolls.
	MaxTextHeight int
}

// SurfaceLayout is the text surface's own height and scroll mode.
type SurfaceLayout struct {
	Height int
	Scroll bool
}

func PixelSizing() Sizing {
	return Sizing{Width: 700, BaseHeight: 140, LineHeight: 36, MaxTextHeight: 300}
}

func TerminalSizing() Sizing {
	return Sizing{Width: 72, BaseHeight: 5, LineHeight: 1, MaxTextHeight: 8}
}

func (s Sizing) Validate() error {
	switch {
	case s.Width <= 0:
		return fmt.Errorf("sizing: width must be positive (got %d)", s.Width)
	case s.BaseHeight <= 0:
		return fmt.Errorf("sizing: base height must be positive (got %d)", s.BaseHeight)
	case s.LineHeight <= 0:
		return fmt.Errorf("sizing: line height must be positive (got %d)", s.LineHeight)
	case s.MaxTextHeight < s.LineHeight:
		return fmt.Errorf("sizing: max text height %d is below line height %d", s.MaxTextHeight, s.LineHeight)
	}
	return nil
}

// MaxExtra is how far the window may grow past BaseHeight.
func (s Sizing) MaxExtra() int {
	return max(0, s.MaxTextHeight-s.LineHeight)
}

// Surface clamps the measured natural content height to the surface limits.
func (s Sizing) Surface(natural int) SurfaceLayout {
	return SurfaceLayout{
		Height: min(max(natural, s.LineHeight), s.MaxTextHeight),
		Scroll: natural > s.MaxTextHeight,
	}
}

// WindowHeight maps a text height to the target window height.
func (s Sizing) WindowHeight(textHeight int) int {
	extra := max(0, textHeight-s.LineHeight)
	return min(max(s.BaseHeight+extra, s.BaseHeight), s.BaseHeight+s.MaxExtra())
}

// Layout computes both the surface layout and the window height for a measurement.
func (s Sizing) Layout(natural int) (SurfaceLayout, int) {
	surface := s.Surface(natural)
	return surface, s.WindowHeight(surface.Height)
}

// Reset is the surface layout after a hide.
func (s Sizing) Reset() SurfaceLayout {
	return SurfaceLayout{Height: s.LineHeight}
}
