package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flowtail/flowtail/pkg/engine"
	"github.com/flowtail/flowtail/pkg/event"
)

// --- E2E tests ---
// These exercise the full pipeline: stdin NDJSON → engine → streamer → stdout

func eventLine(t *testing.T, ev event.OutputEvent) string {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	return string(b)
}

func TestRun_StreamsCompletedExecution(t *testing.T) {
	now := time.Now()
	input := strings.Join([]string{
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Build", Stream: event.StreamSystem, Content: "> Starting: Build\n", Timestamp: now}),
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Build", Stream: event.StreamStdout, Content: "compiling main.go\n", Timestamp: now}),
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Build", Stream: event.StreamSystem, Content: "[OK] Node completed\n", Timestamp: now}),
	}, "\n") + "\n"

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-color", "-quiet-period-ms", "10"}, strings.NewReader(input), &stdout, &stderr)

	if code != 0 {
		t.Errorf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	output := stdout.String()
	if !strings.Contains(output, "compiling main.go") {
		t.Errorf("missing output line; got:\n%s", output)
	}
	if !strings.Contains(output, "Build · Completed") {
		t.Errorf("missing completion transition; got:\n%s", output)
	}
	if !strings.Contains(output, "1 nodes: 1 completed, 0 failed, 0 unresolved") {
		t.Errorf("missing summary; got:\n%s", output)
	}
}

func TestRun_FailedNodeSetsExitCode(t *testing.T) {
	now := time.Now()
	input := strings.Join([]string{
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Deploy", Stream: event.StreamStdout, Content: "pushing image\n", Timestamp: now}),
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Deploy", Stream: event.StreamSystem, Content: "[FAIL] Node failed\n", Timestamp: now}),
	}, "\n") + "\n"

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-color", "-quiet-period-ms", "10"}, strings.NewReader(input), &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), "Deploy · Failed") {
		t.Errorf("missing failure transition; got:\n%s", stdout.String())
	}
}

func TestRun_UnresolvedNodeSetsExitCode(t *testing.T) {
	input := eventLine(t, event.OutputEvent{
		ExecutionID: "e1", NodeID: "n1", NodeName: "Hang",
		Stream: event.StreamStdout, Content: "still going\n", Timestamp: time.Now(),
	}) + "\n"

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-color", "-quiet-period-ms", "10"}, strings.NewReader(input), &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1 for unresolved node, got %d", code)
	}
	if !strings.Contains(stdout.String(), "1 unresolved") {
		t.Errorf("missing unresolved count; got:\n%s", stdout.String())
	}
}

func TestRun_SkipsMalformedLines(t *testing.T) {
	now := time.Now()
	input := strings.Join([]string{
		"not json at all",
		`{"execution_id":""}`,
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Build", Stream: event.StreamStdout, Content: "ok\n", Timestamp: now}),
		eventLine(t, event.OutputEvent{ExecutionID: "e1", NodeID: "n1", NodeName: "Build", Stream: event.StreamSystem, Content: "[OK] Node completed\n", Timestamp: now}),
	}, "\n") + "\n"

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-color", "-quiet-period-ms", "10"}, strings.NewReader(input), &stdout, &stderr)

	if code != 0 {
		t.Errorf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "ok") {
		t.Errorf("valid event not rendered; got:\n%s", stdout.String())
	}
}

func TestRun_VersionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-version"}, strings.NewReader(""), &stdout, &stderr)

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "flowtail") {
		t.Errorf("missing version banner; got: %s", stdout.String())
	}
}

func TestRun_RejectsUnknownFinalizeStatus(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-finalize-status", "exploded"}, strings.NewReader(""), &stdout, &stderr)

	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "exploded") {
		t.Errorf("error should name the bad value; got: %s", stderr.String())
	}
}

func TestParseFinalizeStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    engine.NodeStatus
		wantErr bool
	}{
		{"", engine.StatusInterrupted, false},
		{"interrupted", engine.StatusInterrupted, false},
		{"completed", engine.StatusCompleted, false},
		{"failed", engine.StatusFailed, false},
		{"running", "", true},
	}
	for _, tc := range cases {
		got, err := parseFinalizeStatus(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("parseFinalizeStatus(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseFinalizeStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUpdateBridge_When_FlushRacesEndOfInput_DeliverySucceeds(t *testing.T) {
	t.Parallel()

	bridge := newUpdateBridge()

	// Engine update handlers run on timer goroutines that can still be
	// mid-delivery when the input goroutine signals completion; those
	// late sends must land instead of panicking.
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bridge.notify("e1")
			}
		}()
	}
	bridge.finish()
	wg.Wait()
	bridge.notify("e1")

	select {
	case <-bridge.done:
	default:
		t.Fatal("done must be closed after finish")
	}
	select {
	case id := <-bridge.first:
		if id != "e1" {
			t.Errorf("unexpected first execution id %q", id)
		}
	default:
		t.Fatal("first execution id never announced")
	}
	select {
	case <-bridge.first:
		t.Fatal("first execution id announced more than once")
	default:
	}
	select {
	case <-bridge.updates:
	default:
		t.Fatal("update signal lost")
	}
}

func TestDemoInput_ProducesDecodableEvents(t *testing.T) {
	t.Parallel()

	dec := json.NewDecoder(demoInput())
	count := 0
	executions := map[string]bool{}
	for dec.More() {
		var ev event.OutputEvent
		if err := dec.Decode(&ev); err != nil {
			t.Fatalf("decoding demo event %d: %v", count, err)
		}
		if ev.ExecutionID == "" || ev.NodeID == "" {
			t.Errorf("demo event %d missing ids: %+v", count, ev)
		}
		executions[ev.ExecutionID] = true
		count++
	}
	if count == 0 {
		t.Fatal("demo produced no events")
	}
	if len(executions) != 1 {
		t.Errorf("demo should cover one execution, got %d", len(executions))
	}
}
