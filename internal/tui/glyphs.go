package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
)

// Some terminals/fonts render box-drawing and braille glyphs poorly; the overlay
// can fall back to an ASCII set.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("COMPANION_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphSpinner() spinner.Spinner {
	if glyphs() == glyphSetASCII {
		return spinner.Line
	}
	return spinner.Dot
}

func glyphPrompt() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "›"
}

func glyphSeparator() string {
	if glyphs() == glyphSetASCII {
		return " | "
	}
	return " · "
}
