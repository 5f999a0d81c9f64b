// Command tactus-watch tails a growing onset log file and renders a
// live view of the tracker's current best hypothesis.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/m2march/tactus/tactus"
)

func main() {
	path := ""
	for _, a := range os.Args[1:] {
		if !strings.HasPrefix(a, "-") {
			path = a
		}
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: tactus-watch <onset-log-path>")
		os.Exit(1)
	}

	engine, err := tactus.NewEngine(tactus.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file watcher: %v\n", err)
		os.Exit(1)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		fmt.Fprintf(os.Stderr, "failed to watch %s: %v\n", path, err)
		os.Exit(1)
	}

	m := initialModel(path, engine, watcher)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	watcher.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		os.Exit(1)
	}
}

type fileChangeMsg struct{}

type reloadedMsg struct {
	onsets []float64
	err    error
}

type model struct {
	path    string
	engine  *tactus.Engine
	watcher *fsnotify.Watcher

	onsets   []float64
	errorMsg string
	updated  time.Time

	width, height int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("15")).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var quitKey = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

func initialModel(path string, engine *tactus.Engine, watcher *fsnotify.Watcher) model {
	m := model{path: path, engine: engine, watcher: watcher, updated: time.Now()}
	onsets, err := readOnsets(path)
	if err != nil {
		m.errorMsg = err.Error()
		return m
	}
	advance(engine, nil, onsets)
	m.onsets = onsets
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForFileChange(m.watcher), tea.EnterAltScreen)
}

func waitForFileChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					time.Sleep(50 * time.Millisecond)
					return fileChangeMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func reload(path string) tea.Cmd {
	return func() tea.Msg {
		onsets, err := readOnsets(path)
		return reloadedMsg{onsets: onsets, err: err}
	}
}

// advance steps the engine once for every onset newly present in next
// relative to prev, using a fresh static Playback view over each
// successive prefix (spec section 4.A/4.H).
func advance(e *tactus.Engine, prev, next []float64) {
	for i := len(prev); i < len(next); i++ {
		if i == 0 {
			continue
		}
		e.Step(tactus.NewPlayback(next[: i+1]))
	}
}

func readOnsets(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var onsets []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("bad onset line %q: %w", line, err)
		}
		onsets = append(onsets, v)
	}
	return onsets, scanner.Err()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fileChangeMsg:
		return m, tea.Batch(reload(m.path), waitForFileChange(m.watcher))

	case reloadedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		advance(m.engine, m.onsets, msg.onsets)
		m.onsets = msg.onsets
		m.errorMsg = ""
		m.updated = time.Now()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("tactus-watch: %s", m.path)))
	b.WriteString("\n\n")

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render(m.errorMsg))
		b.WriteString("\n")
	}

	pool := poolByName(m.engine)
	overtime := tactus.OvertimeTracking(pool, m.onsets)

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-8s %-10s %-10s %-8s", "onset", "name", "phase", "period", "conf")))
	b.WriteString("\n")

	start := 0
	if len(overtime) > 20 {
		start = len(overtime) - 20
	}
	for _, step := range overtime[start:] {
		b.WriteString(fmt.Sprintf("%-10.1f %-8s %-10.1f %-10.1f %-8.3f\n",
			step.Time, step.Name, step.Hypothesis.Rho, step.Hypothesis.Delta, step.Score))
	}

	status := fmt.Sprintf("%d onsets | %d hypotheses | updated %s", len(m.onsets), len(m.engine.Pool()), m.updated.Format("15:04:05"))
	b.WriteString("\n")
	b.WriteString(statusStyle.Width(maxInt(m.width, 1)).Render(status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}

func poolByName(e *tactus.Engine) map[string]*tactus.Tracker {
	out := make(map[string]*tactus.Tracker)
	for _, t := range e.Pool() {
		out[t.Name()] = t
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
