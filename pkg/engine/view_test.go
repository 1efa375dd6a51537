package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtail/flowtail/pkg/event"
)

func TestBuildFlatView_PreservesArrivalOrder_AcrossGroups(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(100)
	g.apply(stdoutLine("n1", "first"))
	g.apply(stdoutLine("n2", "second"))
	g.apply(stdoutLine("n1", "third"))
	b.note(3)

	v := buildFlatView(g, b)

	require.Len(t, v.Lines, 3)
	assert.Equal(t, "first", v.Lines[0].Content)
	assert.Equal(t, "second", v.Lines[1].Content)
	assert.Equal(t, "third", v.Lines[2].Content)
	assert.False(t, v.Truncated)
	assert.Equal(t, 0, v.DroppedCount)
}

func TestBuildFlatView_When_Truncated_ReportsDrops(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(2)
	fillGroups(g, "n1", 4)
	b.note(4)
	b.enforce(g.groups)

	v := buildFlatView(g, b)

	require.Len(t, v.Lines, 2)
	assert.True(t, v.Truncated)
	assert.Equal(t, 2, v.DroppedCount)
	assert.Equal(t, "n1 line 2", v.Lines[0].Content)
}

func TestBuildGroupedView_Duration_When_Terminal(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(100)
	start := time.Now().Add(-10 * time.Second)
	end := start.Add(3 * time.Second)
	g.apply(ClassifiedLine{Stream: event.StreamStdout, NodeID: "n1", Content: "x", Timestamp: start})
	g.apply(ClassifiedLine{Stream: event.StreamSystem, NodeID: "n1", Content: "[OK] Node completed", Timestamp: end})
	b.note(2)

	v := buildGroupedView(g, b, time.Now())

	require.Len(t, v.Groups, 1)
	assert.Equal(t, 3*time.Second, v.Groups[0].Duration)
}

func TestBuildGroupedView_Duration_When_Running_UsesNow(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(100)
	start := time.Now().Add(-5 * time.Second)
	g.apply(ClassifiedLine{Stream: event.StreamStdout, NodeID: "n1", Content: "x", Timestamp: start})
	b.note(1)

	now := start.Add(7 * time.Second)
	v := buildGroupedView(g, b, now)

	require.Len(t, v.Groups, 1)
	assert.Equal(t, 7*time.Second, v.Groups[0].Duration)
	assert.True(t, v.Groups[0].EndTime.IsZero())
}

func TestGroupViewBody_ExcludesSystemLines(t *testing.T) {
	t.Parallel()

	g := newGrouper()
	b := newBounder(100)
	g.apply(sysLine("> Starting: build"))
	g.apply(stdoutLine("n1", "compiling..."))
	g.apply(sysLine("[OK] Node completed"))
	b.note(3)

	v := buildGroupedView(g, b, time.Now())

	require.Len(t, v.Groups, 1)
	assert.Len(t, v.Groups[0].Lines, 3, "all lines are retained and counted")
	body := v.Groups[0].Body()
	require.Len(t, body, 1, "system lines are excluded from the displayed body")
	assert.Equal(t, "compiling...", body[0].Content)
}
