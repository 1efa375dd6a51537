// Package event defines the raw output events produced by a workflow
// execution and consumed by the aggregation engine.
package event

import "time"

// Stream identifies which output channel a chunk was captured from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
	// StreamSystem carries runner control output (node start/finish markers).
	StreamSystem Stream = "system"
)

// NodeType identifies the kind of execution unit a chunk belongs to.
type NodeType string

const (
	NodeTypeScript          NodeType = "script"
	NodeTypeTriggerWorkflow NodeType = "trigger-workflow"
)

// OutputEvent is one raw chunk of output captured from a running execution.
// Events are immutable once created; ownership passes to the engine on ingest.
type OutputEvent struct {
	ExecutionID string    `json:"execution_id"`
	NodeID      string    `json:"node_id"`
	NodeName    string    `json:"node_name,omitempty"`
	NodeType    NodeType  `json:"node_type,omitempty"`
	Stream      Stream    `json:"stream"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// Valid reports whether s is one of the recognized stream values.
func (s Stream) Valid() bool {
	switch s {
	case StreamStdout, StreamStderr, StreamSystem:
		return true
	}
	return false
}
