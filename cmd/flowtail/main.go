// flowtail renders live workflow execution output as a readable
// terminal stream.
//
// Usage:
//
//	workflow-runner --emit-ndjson | flowtail
//	workflow-runner --emit-ndjson | flowtail -tui
//	flowtail -demo
//
// Input is newline-delimited JSON on stdin, one output event per line:
//
//	{"execution_id":"...","node_id":"...","stream":"stdout","content":"...","timestamp":"..."}
//
// Chunks are debounced, grouped by node, and printed incrementally;
// with -tui an interactive dashboard replaces the plain stream.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/flowtail/flowtail/internal/config"
	"github.com/flowtail/flowtail/internal/version"
	"github.com/flowtail/flowtail/pkg/engine"
	"github.com/flowtail/flowtail/pkg/event"
	"github.com/flowtail/flowtail/pkg/render"
	"github.com/flowtail/flowtail/pkg/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("flowtail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	quietFlag := fs.Int("quiet-period-ms", 0, "Debounce quiet period in milliseconds")
	bufferFlag := fs.Int("max-buffer-bytes", 0, "Force a flush once this many bytes are pending")
	linesFlag := fs.Int("max-lines", 0, "Retained line ceiling per execution")
	finalizeFlag := fs.String("finalize-status", "", "Status for unresolved nodes at end of input: interrupted, completed, failed")
	tuiFlag := fs.Bool("tui", false, "Interactive dashboard instead of plain streaming")
	noColorFlag := fs.Bool("no-color", false, "Disable colored output")
	debugFlag := fs.Bool("debug", false, "Verbose logging to stderr")
	demoFlag := fs.Bool("demo", false, "Render a synthetic demo execution")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "flowtail %s (%s, built %s)\n", version.Version, version.CommitHash, version.BuildDate)
		return 0
	}

	flags := config.CliFlags{
		QuietPeriodMs:  *quietFlag,
		MaxBufferBytes: *bufferFlag,
		MaxLines:       *linesFlag,
		FinalizeStatus: *finalizeFlag,
		NoColor:        *noColorFlag,
		Debug:          *debugFlag,
		TUI:            *tuiFlag,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "no-color":
			flags.NoColorSet = true
		case "debug":
			flags.DebugSet = true
		case "tui":
			flags.TUISet = true
		}
	})
	cfg := config.ResolveConfig(flags)

	logger := newLogger(stderr, cfg.Debug)

	finalize, err := parseFinalizeStatus(cfg.FinalizeStatus)
	if err != nil {
		fmt.Fprintf(stderr, "flowtail: %v\n", err)
		return 2
	}

	eng := engine.New(engine.Options{
		QuietPeriod:    cfg.QuietPeriod,
		MaxBufferBytes: cfg.MaxBufferBytes,
		MaxLines:       cfg.MaxLines,
		FinalizeStatus: finalize,
		Logger:         &logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	source := stdin
	if *demoFlag {
		source = demoInput()
	} else if isTTY(stdin) {
		fmt.Fprintln(stderr, "flowtail: no input on stdin (pipe NDJSON events, or try -demo)")
		return 2
	}

	if cfg.TUI {
		return runTUI(ctx, eng, source, stdout, stderr, logger)
	}
	return runStream(ctx, eng, source, stdout, cfg.NoColor, logger)
}

// runStream is the plain streaming path: a reader goroutine feeds the
// engine while the main loop re-renders on every engine update.
func runStream(ctx context.Context, eng *engine.Engine, input io.Reader, stdout io.Writer, noColor bool, logger zerolog.Logger) int {
	updates := make(chan string, 64)
	eng.OnUpdate(func(executionID string) {
		select {
		case updates <- executionID:
		default:
			// A pending signal already guarantees a re-render.
		}
	})

	done := make(chan []string, 1)
	go func() { done <- ingestAll(ctx, eng, input, logger) }()

	theme := render.DefaultTheme()
	if noColor {
		theme = render.MonochromeTheme()
	}
	// One streamer for all executions: the footer is terminal state and
	// interleaved executions must share its bookkeeping.
	width, height := termSize(stdout)
	streamer := render.NewStreamer(stdout, width, height, isTTY(stdout), theme)

	for {
		select {
		case id := <-updates:
			streamer.Render(id, eng.FlatView(id), eng.GroupedView(id))
		case seen := <-done:
			for _, id := range seen {
				eng.Finalize(id)
			}
			// Drain re-render signals queued by the final flushes.
			for {
				select {
				case id := <-updates:
					streamer.Render(id, eng.FlatView(id), eng.GroupedView(id))
					continue
				default:
				}
				break
			}
			code := 0
			for _, id := range seen {
				view := eng.GroupedView(id)
				streamer.Finish(id, view)
				for _, g := range view.Groups {
					if g.Status != engine.StatusCompleted {
						code = 1
					}
				}
			}
			eng.Dispose()
			return code
		case <-ctx.Done():
			eng.Dispose()
			return 130
		}
	}
}

// runTUI launches the dashboard on the first execution seen in the
// input stream.
func runTUI(ctx context.Context, eng *engine.Engine, input io.Reader, stdout, stderr io.Writer, logger zerolog.Logger) int {
	if !isTTY(stdout) {
		fmt.Fprintln(stderr, "flowtail: -tui requires a terminal")
		return 2
	}

	bridge := newUpdateBridge()
	eng.OnUpdate(bridge.notify)

	go func() {
		seen := ingestAll(ctx, eng, input, logger)
		for _, id := range seen {
			eng.Finalize(id)
		}
		bridge.finish()
	}()

	select {
	case executionID := <-bridge.first:
		if err := tui.Run(ctx, eng, executionID, bridge.updates, bridge.done); err != nil {
			fmt.Fprintf(stderr, "flowtail: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		return 130
	}
}

// updateBridge forwards engine update signals to the dashboard. The
// updates channel is never closed: the engine invokes notify from its
// own goroutines, and a timer flush can still be mid-delivery when the
// input goroutine finishes, so closing the channel would race the send.
// End of input is signaled through the separate done channel instead.
type updateBridge struct {
	updates chan string
	first   chan string
	done    chan struct{}
	once    sync.Once
}

func newUpdateBridge() *updateBridge {
	return &updateBridge{
		updates: make(chan string, 64),
		first:   make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// notify is the engine's update handler.
func (b *updateBridge) notify(executionID string) {
	b.once.Do(func() { b.first <- executionID })
	select {
	case b.updates <- executionID:
	default:
		// A pending signal already guarantees a re-render.
	}
}

// finish marks end of input.
func (b *updateBridge) finish() {
	close(b.done)
}

// ingestAll feeds NDJSON events from input into the engine until EOF
// or cancellation, returning the execution ids seen in arrival order.
func ingestAll(ctx context.Context, eng *engine.Engine, input io.Reader, logger zerolog.Logger) []string {
	var order []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	malformed := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event.OutputEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			malformed++
			logger.Debug().Err(err).Msg("skipping malformed input line")
			continue
		}
		if ev.ExecutionID == "" {
			malformed++
			continue
		}
		if !seen[ev.ExecutionID] {
			seen[ev.ExecutionID] = true
			order = append(order, ev.ExecutionID)
		}
		eng.Ingest(ev)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("reading input")
	}
	if malformed > 0 {
		logger.Warn().Int("lines", malformed).Msg("malformed input lines skipped")
	}
	return order
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func parseFinalizeStatus(s string) (engine.NodeStatus, error) {
	switch s {
	case "", "interrupted":
		return engine.StatusInterrupted, nil
	case "completed":
		return engine.StatusCompleted, nil
	case "failed":
		return engine.StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown finalize status %q (expected interrupted, completed, failed)", s)
	}
}

// isTTY reports whether the reader or writer v is a terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
