package render

import (
	"fmt"
	"io"
	"time"

	"github.com/flowtail/flowtail/pkg/engine"
	"github.com/flowtail/flowtail/pkg/event"
)

// Streamer renders aggregated execution output as an append-only log
// with an erasable running-nodes footer. It is driven by pulls: the
// consumer re-renders whenever the engine signals a model update, and
// the streamer prints only what is new since the previous pull.
//
// One Streamer serves all executions on a destination. The footer is
// terminal state, and interleaved executions must share it; per-render
// diffing state is kept per execution.
type Streamer struct {
	tw    *termWriter
	theme Theme

	execs map[string]*streamState
}

// streamState is the per-execution diffing state: what has already been
// printed, so a render emits only the delta.
type streamState struct {
	lastSeq    uint64
	announced  map[string]bool
	lastStatus map[string]engine.NodeStatus
	dropped    int
}

// NewStreamer creates a streaming renderer writing to out.
func NewStreamer(out io.Writer, width, height int, isTTY bool, theme Theme) *Streamer {
	return &Streamer{
		tw:    newTermWriter(out, width, height, isTTY),
		theme: theme,
		execs: make(map[string]*streamState),
	}
}

func (s *Streamer) state(executionID string) *streamState {
	st, ok := s.execs[executionID]
	if !ok {
		st = &streamState{
			announced:  make(map[string]bool),
			lastStatus: make(map[string]engine.NodeStatus),
		}
		s.execs[executionID] = st
	}
	return st
}

// Render prints everything that changed for executionID since the last
// call: newly arrived lines in arrival order, lifecycle transitions,
// truncation notices, then redraws the running-nodes footer.
func (s *Streamer) Render(executionID string, flat engine.FlatView, grouped engine.GroupedView) {
	st := s.state(executionID)
	s.tw.EraseFooter()

	if flat.DroppedCount > st.dropped {
		notice := fmt.Sprintf("  ... %d older lines dropped (output truncated)", flat.DroppedCount)
		s.tw.PrintLine(s.theme.Notice.Render(notice))
		st.dropped = flat.DroppedCount
	}

	meta := make(map[string]engine.GroupView, len(grouped.Groups))
	for _, g := range grouped.Groups {
		meta[g.NodeID] = g
	}

	for _, line := range flat.Lines {
		if line.Seq <= st.lastSeq {
			continue
		}
		st.lastSeq = line.Seq
		if !st.announced[line.NodeID] {
			st.announced[line.NodeID] = true
			s.printHeader(meta[line.NodeID])
		}
		s.printLine(meta[line.NodeID], line)
	}

	for _, g := range grouped.Groups {
		if st.lastStatus[g.NodeID] != g.Status && g.Status.Terminal() {
			s.printTransition(g)
		}
		st.lastStatus[g.NodeID] = g.Status
	}

	s.drawFooter(grouped)
}

// Finish erases the footer and prints the final summary for executionID.
func (s *Streamer) Finish(executionID string, grouped engine.GroupedView) {
	s.tw.EraseFooter()
	delete(s.execs, executionID)

	var completed, failed, other int
	for _, g := range grouped.Groups {
		switch g.Status {
		case engine.StatusCompleted:
			completed++
		case engine.StatusFailed:
			failed++
		default:
			other++
		}
	}

	summary := fmt.Sprintf("  %d nodes: %d completed, %d failed, %d unresolved",
		len(grouped.Groups), completed, failed, other)
	style := s.theme.Success
	if failed > 0 || other > 0 {
		style = s.theme.Failure
	}
	s.tw.PrintLine(style.Render(summary))

	if grouped.Truncated {
		notice := fmt.Sprintf("  output truncated: %d lines dropped", grouped.DroppedCount)
		s.tw.PrintLine(s.theme.Notice.Render(notice))
	}
}

func (s *Streamer) printHeader(g engine.GroupView) {
	label := displayName(g)
	header := fmt.Sprintf("%s %s", s.theme.SymbolRunning, label)
	if g.NodeType == event.NodeTypeTriggerWorkflow {
		header += " (workflow)"
	}
	s.tw.PrintLine(s.theme.Header.Render(header))
}

func (s *Streamer) printLine(g engine.GroupView, line engine.Line) {
	var style = s.theme.Stdout
	switch line.Stream {
	case event.StreamStderr:
		style = s.theme.Stderr
	case event.StreamSystem:
		style = s.theme.System
	}
	text := fmt.Sprintf("  %-12s %s", shortLabel(displayName(g), 12), line.Content)
	s.tw.PrintLine(style.Render(truncateToWidth(text, s.tw.width)))
}

func (s *Streamer) printTransition(g engine.GroupView) {
	line := fmt.Sprintf("%s %s · %s (%s)",
		s.theme.statusSymbol(g.Status),
		displayName(g),
		statusLabel(g.Status),
		formatDuration(g.Duration))
	s.tw.PrintLine(s.theme.statusStyle(g.Status).Render(line))
}

func (s *Streamer) drawFooter(grouped engine.GroupedView) {
	var lines []string
	for _, g := range grouped.Groups {
		if g.Status.Terminal() {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %-20s %4d lines %8s",
			s.theme.SymbolRunning,
			shortLabel(displayName(g), 20),
			len(g.Lines),
			formatDuration(g.Duration)))
	}
	if len(lines) == 0 {
		return
	}
	styled := make([]string, len(lines))
	for i, l := range lines {
		styled[i] = s.theme.Footer.Render(l)
	}
	s.tw.DrawFooter(styled)
}

// displayName prefers the node's name, falling back to its id.
func displayName(g engine.GroupView) string {
	if g.NodeName != "" {
		return g.NodeName
	}
	return g.NodeID
}

func shortLabel(s string, max int) string {
	return truncateToWidth(s, max)
}

// formatDuration renders durations compactly: 850ms, 2.3s, 1m05s.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
