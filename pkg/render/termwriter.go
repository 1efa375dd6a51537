// Package render provides live terminal rendering for aggregated
// execution output.
package render

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

// termWriter is the single point of terminal output in streaming mode.
// All output flows through this struct — no other code writes to the
// destination during streaming.
type termWriter struct {
	out         io.Writer
	width       int
	height      int
	isTTY       bool
	footerLines int
}

func newTermWriter(out io.Writer, width, height int, isTTY bool) *termWriter {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return &termWriter{out: out, width: width, height: height, isTTY: isTTY}
}

// PrintLine writes a line to the scrolling history region.
// Always appends \n.
func (w *termWriter) PrintLine(s string) {
	fmt.Fprintln(w.out, s)
}

// EraseFooter removes the current footer from the terminal.
// No-op if footerLines == 0 or the destination is not a TTY.
func (w *termWriter) EraseFooter() {
	if w.footerLines == 0 || !w.isTTY {
		w.footerLines = 0
		return
	}
	for i := 0; i < w.footerLines; i++ {
		fmt.Fprint(w.out, "\r\033[2K")
		if i < w.footerLines-1 {
			fmt.Fprint(w.out, "\033[1A")
		}
	}
	fmt.Fprint(w.out, "\r")
	w.footerLines = 0
}

// DrawFooter prints footer lines, truncated to terminal width.
// Caps to min(count, max(3, height/3)). Skipped entirely on non-TTY
// output, where an erasable footer would just pollute the log.
func (w *termWriter) DrawFooter(lines []string) {
	if !w.isTTY {
		return
	}
	maxLines := w.maxFooterLines(len(lines))
	capped := len(lines) > maxLines

	printLines := lines
	if capped && maxLines > 0 {
		printLines = lines[:maxLines-1]
	}

	printed := 0
	for _, line := range printLines {
		fmt.Fprintln(w.out, truncateToWidth(line, w.width))
		printed++
	}
	if capped {
		overflow := len(lines) - len(printLines)
		more := truncateToWidth(fmt.Sprintf("  ... and %d more", overflow), w.width)
		fmt.Fprintln(w.out, more)
		printed++
	}
	w.footerLines = printed
}

func (w *termWriter) maxFooterLines(count int) int {
	maxH := w.height / 3
	if maxH < 3 {
		maxH = 3
	}
	if count <= maxH {
		return count
	}
	return maxH
}

// truncateToWidth clips s to the given visual width, honoring
// double-width runes, with an ellipsis when anything was cut.
func truncateToWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
