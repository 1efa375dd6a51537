package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/flowtail/flowtail/pkg/event"
)

// demoInput produces a synthetic NDJSON event stream for trying the
// renderer without a workflow runner attached.
func demoInput() io.Reader {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		writeDemo(pw)
	}()
	return pr
}

type demoNode struct {
	name  string
	lines []string
	fail  bool
}

func writeDemo(w io.Writer) {
	executionID := uuid.NewString()
	enc := json.NewEncoder(w)
	now := func() time.Time { return time.Now() }

	nodes := []demoNode{
		{name: "Fetch Orders", lines: []string{
			"connecting to api.example.com",
			"fetched 214 orders",
		}},
		{name: "Transform", lines: []string{
			"normalizing currency fields",
			"\033[33mwarn:\033[0m 3 rows missing locale, defaulting to en-US",
			"wrote 214 rows",
		}},
		{name: "Notify", lines: []string{
			"rendering summary email",
			"smtp: connection refused",
		}, fail: true},
	}

	emit := func(nodeID string, node demoNode, stream event.Stream, content string) {
		_ = enc.Encode(event.OutputEvent{
			ExecutionID: executionID,
			NodeID:      nodeID,
			NodeName:    node.name,
			NodeType:    event.NodeTypeScript,
			Stream:      stream,
			Content:     content + "\n",
			Timestamp:   now(),
		})
	}

	for i, node := range nodes {
		nodeID := fmt.Sprintf("node-%d-%s", i+1, uuid.NewString()[:8])
		emit(nodeID, node, event.StreamSystem, "> Starting: "+node.name)
		for _, line := range node.lines {
			time.Sleep(180 * time.Millisecond)
			stream := event.StreamStdout
			if node.fail && line == node.lines[len(node.lines)-1] {
				stream = event.StreamStderr
			}
			emit(nodeID, node, stream, line)
		}
		time.Sleep(120 * time.Millisecond)
		if node.fail {
			emit(nodeID, node, event.StreamSystem, "[FAIL] Node failed")
		} else {
			emit(nodeID, node, event.StreamSystem, "[OK] Node completed")
		}
	}
}
