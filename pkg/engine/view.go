package engine

import (
	"sort"
	"time"

	"github.com/flowtail/flowtail/pkg/event"
)

// Line is a read-only projection of one retained output line.
// Seq is the line's global arrival sequence within its execution;
// renderers use it to pick up where their last pull left off.
type Line struct {
	Stream    event.Stream
	Content   string
	NodeID    string
	Timestamp time.Time
	Seq       uint64
}

// FlatView is the full retained line sequence in arrival order, plus
// truncation metadata.
type FlatView struct {
	Lines        []Line
	Truncated    bool
	DroppedCount int
}

// GroupView is the read-only projection of one node group.
type GroupView struct {
	NodeID    string
	NodeName  string
	NodeType  event.NodeType
	Status    NodeStatus
	StartTime time.Time
	EndTime   time.Time // zero while running
	// Duration is EndTime-StartTime for terminal groups; for running
	// groups it is now-StartTime, computed when the view is built.
	Duration time.Duration
	Lines    []Line
}

// Body returns the group's displayable output, excluding system lines.
// System lines still count toward the retained-line ceiling.
func (v GroupView) Body() []Line {
	body := make([]Line, 0, len(v.Lines))
	for _, l := range v.Lines {
		if l.Stream != event.StreamSystem {
			body = append(body, l)
		}
	}
	return body
}

// GroupedView is the ordered node-group projection for one execution.
type GroupedView struct {
	Groups       []GroupView
	Truncated    bool
	DroppedCount int
}

// buildFlatView projects the grouper and bounder state into a FlatView.
// Lines are merged back into global arrival order by sequence number.
func buildFlatView(g *grouper, b *bounder) FlatView {
	var all []storedLine
	for _, grp := range g.groups {
		all = append(all, grp.lines...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	lines := make([]Line, len(all))
	for i, sl := range all {
		lines[i] = projectLine(sl)
	}
	return FlatView{
		Lines:        lines,
		Truncated:    b.truncated(),
		DroppedCount: b.dropped,
	}
}

// buildGroupedView projects the grouper and bounder state into a
// GroupedView, recomputing running durations against now.
func buildGroupedView(g *grouper, b *bounder, now time.Time) GroupedView {
	groups := make([]GroupView, len(g.groups))
	for i, grp := range g.groups {
		lines := make([]Line, len(grp.lines))
		for j, sl := range grp.lines {
			lines[j] = projectLine(sl)
		}
		duration := now.Sub(grp.StartTime)
		if grp.Status.Terminal() && !grp.EndTime.IsZero() {
			duration = grp.EndTime.Sub(grp.StartTime)
		}
		groups[i] = GroupView{
			NodeID:    grp.NodeID,
			NodeName:  grp.NodeName,
			NodeType:  grp.NodeType,
			Status:    grp.Status,
			StartTime: grp.StartTime,
			EndTime:   grp.EndTime,
			Duration:  duration,
			Lines:     lines,
		}
	}
	return GroupedView{
		Groups:       groups,
		Truncated:    b.truncated(),
		DroppedCount: b.dropped,
	}
}

func projectLine(sl storedLine) Line {
	return Line{
		Stream:    sl.Stream,
		Content:   sl.Content,
		NodeID:    sl.NodeID,
		Timestamp: sl.Timestamp,
		Seq:       sl.seq,
	}
}
