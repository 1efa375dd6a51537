package engine

import (
	"time"

	"github.com/flowtail/flowtail/pkg/event"
)

// NodeStatus is the lifecycle state of a node group.
type NodeStatus string

const (
	StatusRunning   NodeStatus = "running"
	StatusCompleted NodeStatus = "completed"
	StatusFailed    NodeStatus = "failed"
	// StatusInterrupted is applied by Finalize to nodes whose completion
	// marker never arrived. The engine itself never guesses terminal state.
	StatusInterrupted NodeStatus = "interrupted"
)

// Terminal reports whether s is a final state.
// Status transitions are monotonic: once terminal, a group never reverts.
func (s NodeStatus) Terminal() bool {
	return s != StatusRunning
}

// storedLine pairs a classified line with its global arrival sequence,
// so the flat view can be rebuilt in arrival order after eviction.
type storedLine struct {
	ClassifiedLine
	seq uint64
}

// NodeGroup collects the output of one node in arrival order, together
// with its inferred lifecycle state and timing.
type NodeGroup struct {
	NodeID    string
	NodeName  string
	NodeType  event.NodeType
	Status    NodeStatus
	StartTime time.Time
	EndTime   time.Time // zero until a terminal transition

	lines []storedLine
}

// LineCount returns the number of lines currently retained for this group.
// Truncation may have evicted older lines.
func (g *NodeGroup) LineCount() int {
	return len(g.lines)
}

// grouper folds classified lines into ordered per-node groups.
// Group order is first-seen order: a lookup index paired with an
// append-only sequence, never re-sorted.
type grouper struct {
	groups []*NodeGroup
	index  map[string]int // nodeID -> position in groups
	seq    uint64
}

func newGrouper() *grouper {
	return &grouper{index: make(map[string]int)}
}

// lookup returns the group for nodeID, or nil if none exists yet.
func (g *grouper) lookup(nodeID string) *NodeGroup {
	if i, ok := g.index[nodeID]; ok {
		return g.groups[i]
	}
	return nil
}

// apply appends line to its node's group, creating the group on first
// sight, and applies any lifecycle transition the line signals.
func (g *grouper) apply(line ClassifiedLine) *NodeGroup {
	grp := g.lookup(line.NodeID)
	if grp == nil {
		start := line.Timestamp
		if start.IsZero() {
			start = time.Now()
		}
		grp = &NodeGroup{
			NodeID:    line.NodeID,
			Status:    StatusRunning,
			StartTime: start,
		}
		g.index[line.NodeID] = len(g.groups)
		g.groups = append(g.groups, grp)
	}

	// First non-empty value wins; later absent values never overwrite.
	if grp.NodeName == "" && line.NodeName != "" {
		grp.NodeName = line.NodeName
	}
	if grp.NodeType == "" && line.NodeType != "" {
		grp.NodeType = line.NodeType
	}

	g.seq++
	grp.lines = append(grp.lines, storedLine{ClassifiedLine: line, seq: g.seq})

	switch interpretSystemLine(line) {
	case markerTriggerStart:
		if grp.NodeType == "" {
			grp.NodeType = event.NodeTypeTriggerWorkflow
		}
		if grp.NodeName == "" {
			grp.NodeName = markerLabel(line)
		}
	case markerScriptStart:
		if grp.NodeType == "" {
			grp.NodeType = event.NodeTypeScript
		}
		if grp.NodeName == "" {
			grp.NodeName = markerLabel(line)
		}
	case markerSuccess:
		g.transition(grp, StatusCompleted, line.Timestamp)
	case markerFailure:
		g.transition(grp, StatusFailed, line.Timestamp)
	}

	return grp
}

// transition moves grp to a terminal status. No-op if already terminal.
func (g *grouper) transition(grp *NodeGroup, status NodeStatus, at time.Time) {
	if grp.Status.Terminal() {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	grp.Status = status
	grp.EndTime = at
}

// resolve marks every still-running group with the given terminal status.
// Returns how many groups were resolved.
func (g *grouper) resolve(status NodeStatus, at time.Time) int {
	n := 0
	for _, grp := range g.groups {
		if !grp.Status.Terminal() {
			g.transition(grp, status, at)
			n++
		}
	}
	return n
}
