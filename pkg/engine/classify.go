// Package engine aggregates raw workflow output events into a bounded,
// node-grouped model ready for rendering.
package engine

import (
	"strings"
	"time"

	"github.com/flowtail/flowtail/pkg/event"
)

// ClassifiedLine is one display-ready line derived from an OutputEvent.
// Derived values are never mutated after creation.
type ClassifiedLine struct {
	Stream    event.Stream
	Content   string
	NodeID    string
	NodeName  string
	NodeType  event.NodeType
	Timestamp time.Time
}

// ClassifyChunk splits an event's content into discrete lines, strips ANSI
// escape sequences, and tags each line with the event's stream and node
// metadata. The stream comes from the event, never from content sniffing.
// Pure function of its input; restartable.
func ClassifyChunk(ev event.OutputEvent) []ClassifiedLine {
	raw := splitLines(StripANSI(ev.Content))
	if len(raw) == 0 {
		return nil
	}

	stream := ev.Stream
	if !stream.Valid() {
		// Malformed input is displayed, not rejected.
		stream = event.StreamStdout
	}

	lines := make([]ClassifiedLine, 0, len(raw))
	for _, content := range raw {
		lines = append(lines, ClassifiedLine{
			Stream:    stream,
			Content:   content,
			NodeID:    ev.NodeID,
			NodeName:  ev.NodeName,
			NodeType:  ev.NodeType,
			Timestamp: ev.Timestamp,
		})
	}
	return lines
}

// splitLines splits on \n, trims a trailing \r per line, and drops the empty
// fragment a trailing newline produces. Interior blank lines are preserved.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

// StripANSI removes ANSI escape sequences (CSI and OSC) from s.
// CSI sequences run from ESC[ to the first alphabetic final byte; OSC
// sequences run from ESC] to BEL or ESC\.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\033') {
		return s
	}
	var result strings.Builder
	result.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) {
			switch s[i+1] {
			case '[':
				j := i + 2
				for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
					j++
				}
				if j < len(s) {
					j++
				}
				i = j
				continue
			case ']':
				j := i + 2
				for j < len(s) && s[j] != '\a' && !(s[j] == '\033' && j+1 < len(s) && s[j+1] == '\\') {
					j++
				}
				if j < len(s) {
					if s[j] == '\a' {
						j++
					} else {
						j += 2
					}
				}
				i = j
				continue
			}
		}
		result.WriteByte(s[i])
		i++
	}
	return result.String()
}
