package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall, so the rendered overlay always matches the height the controller applied.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		ln := lines[i]
		w := xansi.StringWidth(ln)
		if w > width {
			if width <= 1 {
				ln = xansi.Truncate(ln, width, "")
			} else {
				ln = xansi.Truncate(ln, width, "…")
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}

	return strings.Join(lines, "\n")
}

// wrappedRows is how many terminal rows content occupies at the given width.
// An empty buffer still takes one row.
func wrappedRows(content string, width int) int {
	if width < 1 {
		width = 1
	}
	rows := 0
	for _, line := range strings.Split(content, "\n") {
		w := xansi.StringWidth(line)
		if w == 0 {
			rows++
			continue
		}
		// The cursor needs a cell past the last character.
		rows += (w + width) / width
	}
	return rows
}
