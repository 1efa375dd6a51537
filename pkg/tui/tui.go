// Package tui provides an interactive dashboard for watching execution
// output: a node list on the left, the selected node's output on the
// right, updated live as the aggregation engine flushes.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/flowtail/flowtail/pkg/engine"
	"github.com/flowtail/flowtail/pkg/event"
)

// Run launches the dashboard for one execution. updates carries
// execution ids from the engine's update callback; done is closed when
// the input stream is finished. updates itself is never closed, so a
// late engine flush can still deliver a signal safely. Run blocks until
// the user quits.
func Run(ctx context.Context, eng *engine.Engine, executionID string, updates <-chan string, done <-chan struct{}) error {
	program := tea.NewProgram(newModel(eng, executionID, updates, done), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type model struct {
	eng         *engine.Engine
	executionID string
	updates     <-chan string
	done        <-chan struct{}
	st          styles

	view        engine.GroupedView
	selected    int
	follow      bool
	finished    bool
	ready       bool
	viewport    viewport.Model
	width       int
	height      int
	listWidth   int
	detailWidth int
}

func newModel(eng *engine.Engine, executionID string, updates <-chan string, done <-chan struct{}) model {
	vp := viewport.New(0, 0)
	vp.SetContent("Waiting for output...")
	return model{
		eng:         eng,
		executionID: executionID,
		updates:     updates,
		done:        done,
		st:          defaultStyles(),
		follow:      true,
		viewport:    vp,
	}
}

type tickMsg struct{}
type refreshMsg string
type inputClosedMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.listenUpdates(), m.waitDone(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/8, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) listenUpdates() tea.Cmd {
	return func() tea.Msg {
		id, ok := <-m.updates
		if !ok {
			return nil
		}
		return refreshMsg(id)
	}
}

// waitDone resolves once the producer reports end of input.
func (m model) waitDone() tea.Cmd {
	return func() tea.Msg {
		<-m.done
		return inputClosedMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.follow = true
				m.refreshViewport()
			}
		case "down", "j":
			if m.selected < len(m.view.Groups)-1 {
				m.selected++
				m.follow = true
				m.refreshViewport()
			}
		case "pgup", "b":
			m.follow = false
			m.viewport.HalfViewUp()
		case "pgdown", "f":
			m.viewport.HalfViewDown()
			if m.viewport.AtBottom() {
				m.follow = true
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listWidth = m.calculateListWidth()
		if m.listWidth > m.width/2 {
			m.listWidth = m.width / 2
		}
		m.detailWidth = m.width - m.listWidth - 1
		m.viewport.Width = m.detailWidth - 4
		m.viewport.Height = m.height - 8
		m.ready = true
		m.reload()
	case tickMsg:
		m.reload()
		return m, tick()
	case refreshMsg:
		if string(msg) == m.executionID {
			m.reload()
		}
		return m, m.listenUpdates()
	case inputClosedMsg:
		m.finished = true
		m.reload()
		return m, nil
	}
	return m, nil
}

// reload re-pulls the grouped view from the engine and refreshes the
// detail pane for the selected node.
func (m *model) reload() {
	m.view = m.eng.GroupedView(m.executionID)
	if m.selected >= len(m.view.Groups) {
		m.selected = len(m.view.Groups) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if m.selected < 0 || m.selected >= len(m.view.Groups) {
		return
	}
	m.viewport.SetContent(detailContent(m.view.Groups[m.selected], m.viewport.Width))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// detailContent renders the selected node's output body, colored by
// stream. System lines are held back; they already drive the status
// shown in the node list.
func detailContent(g engine.GroupView, width int) string {
	body := g.Body()
	if len(body) == 0 {
		return "No output yet"
	}
	stderr := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	var b strings.Builder
	for i, line := range body {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := line.Content
		if width > 0 {
			text = runewidth.Truncate(text, width, "")
		}
		if line.Stream == event.StreamStderr {
			text = stderr.Render(text)
		}
		b.WriteString(text)
	}
	return b.String()
}

func (m *model) calculateListWidth() int {
	maxWidth := 24
	for _, g := range m.view.Groups {
		if n := len(nodeLabel(g)) + 14; n > maxWidth {
			maxWidth = n
		}
	}
	return maxWidth + 4
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "\n" + m.st.Title.Width(m.width).Render("flowtail · "+m.executionID)

	contentHeight := m.height - 8
	if contentHeight < 5 {
		contentHeight = 5
	}

	listPanel := m.st.NodeList.
		Width(m.listWidth).
		Render(padToHeight(m.renderNodeList(), contentHeight))

	var detail string
	if m.selected >= 0 && m.selected < len(m.view.Groups) {
		g := m.view.Groups[m.selected]
		head := m.st.DetailHead.Render(nodeLabel(g))
		detail = head + "\n\n" + m.viewport.View()
	} else {
		detail = "Waiting for output..."
	}
	detailPanel := m.st.DetailBox.
		Width(m.detailWidth).
		Render(padToHeight(detail, contentHeight))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)

	status := "↑/↓ nodes • pgup/pgdn scroll • q quit"
	if m.view.Truncated {
		status = fmt.Sprintf("%d lines dropped • %s", m.view.DroppedCount, status)
	}
	if m.finished {
		status = "input closed • " + status
	}
	bar := m.st.StatusBar.Render(status)

	return lipgloss.JoinVertical(lipgloss.Left, title, panels, bar)
}

func (m model) renderNodeList() string {
	if len(m.view.Groups) == 0 {
		return "No nodes yet"
	}
	lineWidth := m.listWidth - 6
	if lineWidth < 20 {
		lineWidth = 20
	}
	var lines []string
	for i, g := range m.view.Groups {
		duration := formatDuration(g.Duration)
		if i == m.selected {
			content := fmt.Sprintf("%s %s %s %s", m.st.IconSelect, m.rawStatusIcon(g), nodeLabel(g), duration)
			lines = append(lines, m.st.Selected.Width(lineWidth).Render(content))
		} else {
			name := fmt.Sprintf("%s %s %s", m.statusIcon(g), nodeLabel(g), m.st.Duration.Render(duration))
			lines = append(lines, m.st.Unselected.Render("  "+name))
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) statusIcon(g engine.GroupView) string {
	switch g.Status {
	case engine.StatusCompleted:
		return m.st.SuccessIcon.Render(m.st.IconSuccess)
	case engine.StatusFailed:
		return m.st.ErrorIcon.Render(m.st.IconFailed)
	case engine.StatusInterrupted:
		return m.st.PendingIcon.Render(m.st.IconPending)
	default:
		return m.st.RunningIcon.Render(m.spinnerFrame(g))
	}
}

func (m model) rawStatusIcon(g engine.GroupView) string {
	switch g.Status {
	case engine.StatusCompleted:
		return m.st.IconSuccess
	case engine.StatusFailed:
		return m.st.IconFailed
	case engine.StatusInterrupted:
		return m.st.IconPending
	default:
		return m.spinnerFrame(g)
	}
}

func (m model) spinnerFrame(g engine.GroupView) string {
	frames := m.st.SpinnerFrames
	idx := int(g.Duration/(100*time.Millisecond)) % len(frames)
	if idx < 0 {
		idx = 0
	}
	return frames[idx]
}

// nodeLabel prefers the node's name, falling back to its id.
func nodeLabel(g engine.GroupView) string {
	if g.NodeName != "" {
		return g.NodeName
	}
	return g.NodeID
}

func padToHeight(content string, height int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}
