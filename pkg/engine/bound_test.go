package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillGroups(g *grouper, nodeID string, n int) {
	for i := 0; i < n; i++ {
		g.apply(stdoutLine(nodeID, fmt.Sprintf("%s line %d", nodeID, i)))
	}
}

func TestBounder_When_UnderCeiling_NothingDropped(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(10)
	fillGroups(g, "n1", 10)
	b.note(10)

	assert.Equal(t, 0, b.enforce(g.groups))
	assert.False(t, b.truncated())
	assert.Equal(t, 10, g.lookup("n1").LineCount())
}

func TestBounder_When_CeilingExceeded_DropsExactlyTheExcess(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(100)
	fillGroups(g, "n1", 103)
	b.note(103)

	evicted := b.enforce(g.groups)

	assert.Equal(t, 3, evicted)
	assert.Equal(t, 3, b.dropped)
	assert.True(t, b.truncated())
	require.Equal(t, 100, g.lookup("n1").LineCount())
	assert.Equal(t, "n1 line 3", g.lookup("n1").lines[0].Content, "oldest lines go first")
}

func TestBounder_When_EvictionSpansGroups_OldestGroupFirst(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(5)
	fillGroups(g, "n1", 4)
	fillGroups(g, "n2", 4)
	b.note(8)

	evicted := b.enforce(g.groups)

	assert.Equal(t, 3, evicted)
	assert.Equal(t, 1, g.lookup("n1").LineCount(), "oldest group is drained first")
	assert.Equal(t, 4, g.lookup("n2").LineCount())
	assert.Equal(t, "n1 line 3", g.lookup("n1").lines[0].Content)
}

func TestBounder_When_GroupFullyDrained_StatusAndTimingSurvive(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(2)
	g.apply(sysLine("> Starting: build"))
	g.apply(sysLine("[OK] Node completed"))
	fillGroups(g, "n2", 2)
	b.note(4)

	b.enforce(g.groups)

	first := g.lookup("n1")
	assert.Equal(t, 0, first.LineCount())
	assert.Equal(t, StatusCompleted, first.Status, "eviction removes lines, never lifecycle state")
	assert.False(t, first.StartTime.IsZero())
	assert.False(t, first.EndTime.IsZero())
}

func TestBounder_DroppedCountAccumulates_AcrossEnforcements(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(5)
	fillGroups(g, "n1", 7)
	b.note(7)
	b.enforce(g.groups)

	fillGroups(g, "n1", 3)
	b.note(3)
	b.enforce(g.groups)

	assert.Equal(t, 5, b.dropped)
	assert.Equal(t, 5, b.total)
}
