package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizing_Layout(t *testing.T) {
	s := PixelSizing()
	tests := []struct {
		name        string
		natural     int
		wantSurface SurfaceLayout
		wantWindow  int
	}{
		{name: "below one line", natural: 20, wantSurface: SurfaceLayout{Height: 36}, wantWindow: 140},
		{name: "exactly one line", natural: 36, wantSurface: SurfaceLayout{Height: 36}, wantWindow: 140},
		{name: "two lines", natural: 72, wantSurface: SurfaceLayout{Height: 72}, wantWindow: 176},
		{name: "at max", natural: 300, wantSurface: SurfaceLayout{Height: 300}, wantWindow: 404},
		{
			name:        "past max scrolls",
			natural:     s.LineHeight + s.MaxExtra() + 50,
			wantSurface: SurfaceLayout{Height: 300, Scroll: true},
			wantWindow:  s.BaseHeight + s.MaxExtra(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, window := s.Layout(tt.natural)
			assert.Equal(t, tt.wantSurface, surface)
			assert.Equal(t, tt.wantWindow, window)
		})
	}
}

func TestSizing_WindowHeightClampsRawHeight(t *testing.T) {
	s := PixelSizing()
	assert.Equal(t, s.BaseHeight, s.WindowHeight(0))
	assert.Equal(t, s.BaseHeight+s.MaxExtra(), s.WindowHeight(10_000))
}

func TestSizing_Validate(t *testing.T) {
	require.NoError(t, PixelSizing().Validate())
	require.NoError(t, TerminalSizing().Validate())

	bad := PixelSizing()
	bad.MaxTextHeight = 10
	require.Error(t, bad.Validate())

	bad = PixelSizing()
	bad.Width = 0
	require.Error(t, bad.Validate())
}

func TestSizing_Reset(t *testing.T) {
	assert.Equal(t, SurfaceLayout{Height: 1}, TerminalSizing().Reset())
}
