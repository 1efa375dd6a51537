package engine

import (
	"strings"

	"github.com/flowtail/flowtail/pkg/event"
)

// markerKind classifies a system line's control meaning.
type markerKind int

const (
	markerNone markerKind = iota
	markerTriggerStart
	markerScriptStart
	markerSuccess
	markerFailure
)

// Runner control markers, matched as prefixes on trimmed content in
// precedence order. Success and failure markers are the only way a node
// leaves the running state; if the runner ever changes these strings,
// nodes stay running until Finalize resolves them. That fragility is
// inherited from the runner's free-text protocol and is deliberate here.
const (
	triggerStartPrefix = "> Triggering workflow:"
	scriptStartPrefix  = "> Starting:"
	successPrefix      = "[OK] Node completed"
	failurePrefix      = "[FAIL] Node failed"

	// Runners report non-zero script exits as "[FAIL] <name> exited with
	// code N"; those lines fail the node too.
	failTagPrefix  = "[FAIL]"
	exitedFragment = "exited with code"
)

// interpretSystemLine returns the control meaning of a classified line.
// Non-system lines and unrecognized system lines are markerNone: they are
// displayed as-is and never alter lifecycle state.
func interpretSystemLine(line ClassifiedLine) markerKind {
	if line.Stream != event.StreamSystem {
		return markerNone
	}
	content := strings.TrimSpace(line.Content)
	switch {
	case strings.HasPrefix(content, triggerStartPrefix):
		return markerTriggerStart
	case strings.HasPrefix(content, scriptStartPrefix):
		return markerScriptStart
	case strings.HasPrefix(content, successPrefix):
		return markerSuccess
	case strings.HasPrefix(content, failurePrefix):
		return markerFailure
	case strings.HasPrefix(content, failTagPrefix) && strings.Contains(content, exitedFragment):
		return markerFailure
	}
	return markerNone
}

// markerLabel extracts the trailing label from a start marker, e.g.
// "> Starting: build" yields "build". Empty for non-start markers.
func markerLabel(line ClassifiedLine) string {
	content := strings.TrimSpace(line.Content)
	for _, prefix := range []string{triggerStartPrefix, scriptStartPrefix} {
		if strings.HasPrefix(content, prefix) {
			return strings.TrimSpace(content[len(prefix):])
		}
	}
	return ""
}
