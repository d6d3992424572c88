// Package tui provides a Bubble Tea terminal user interface for enriching
// a play-history CSV.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/husaker/spotify-data-viz/internal/app"
	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/enrich"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/table"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1DB954")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1DB954")).
			Padding(1, 2)
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StatePreparing
	StateEnriching
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   enrich.ProgressLevel
}

// eventLog collects progress events from enrichment goroutines until the
// next tick drains them.
type eventLog struct {
	mu      sync.Mutex
	pending []LogEntry
}

func (l *eventLog) add(ev enrich.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, LogEntry{Message: ev.Message, Level: ev.Level})
}

func (l *eventLog) drain() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	events    *eventLog
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	app      *app.App
	enricher *enrich.Enricher
	table    *table.Table
	output   string

	doneBatches  int32
	totalBatches int32
	summary      enrich.Summary
	rows         int

	// Options
	useCache bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. settings provides everything except
// the input path and the cache toggle.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "data/plays.csv"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954"))

	prog := progress.New(progress.WithGradient("#1DB954", "#A8DADC"))
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		events:    &eventLog{},
		ctx:       ctx,
		cancel:    cancel,
		useCache:  settings.EnableCache,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// PreparedMsg is sent once the table is loaded and services are built.
	PreparedMsg struct {
		App      *app.App
		Enricher *enrich.Enricher
		Table    *table.Table
		Output   string
		Err      error
	}

	// EnrichDoneMsg is sent when the table has been enriched and written.
	EnrichDoneMsg struct {
		Summary enrich.Summary
		Rows    int
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.closeApp()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateEnriching || m.state == StatePreparing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StatePreparing
				return m, tea.Batch(m.prepare(), m.spinner.Tick)
			}

		case "alt+c":
			if m.state == StateInput {
				m.useCache = !m.useCache
				return m, nil
			}

		case "alt+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				m.closeApp()
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.closeApp()
				m.state = StateInput
				m.logs = nil
				m.events.drain()
				m.err = nil
				m.table = nil
				m.enricher = nil
				m.doneBatches = 0
				m.totalBatches = 0
				m.summary = enrich.Summary{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case PreparedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		if m.ctx.Err() != nil {
			msg.App.Close()
			break
		}
		m.app = msg.App
		m.enricher = msg.Enricher
		m.table = msg.Table
		m.output = msg.Output
		m.state = StateEnriching
		cmds = append(cmds, m.startEnrich(), m.tickProgress())

	case EnrichDoneMsg:
		m.appendLogs(m.events.drain())
		m.summary = msg.Summary
		m.rows = msg.Rows
		if m.enricher != nil {
			m.doneBatches, m.totalBatches = m.enricher.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.enricher != nil && m.state == StateEnriching {
			m.appendLogs(m.events.drain())
			m.doneBatches, m.totalBatches = m.enricher.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLogs(entries []LogEntry) {
	for _, e := range entries {
		if e.Level == enrich.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, e)
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) closeApp() {
	if m.app != nil {
		m.app.Close()
		m.app = nil
	}
}

func (m Model) percent() float64 {
	if m.totalBatches == 0 {
		return 0
	}
	return float64(m.doneBatches) / float64(m.totalBatches)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ Spotify Enrich"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Add durations, covers and genres to your listening history"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePreparing:
		b.WriteString(m.viewPreparing())
	case StateEnriching:
		b.WriteString(m.viewEnriching())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter CSV path:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Use cache (alt+c)\n", checkbox(m.useCache))
	fmt.Fprintf(&b, "  %s Verbose/debug output (alt+v)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cache: %s backend, %s", m.settings.CacheBackend, m.settings.CacheDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPreparing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading table..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewEnriching() string {
	var b strings.Builder

	if m.table != nil {
		b.WriteString(successStyle.Render(fmt.Sprintf("Loaded %d rows", m.table.Len())))
		b.WriteString("\n\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Batches: %d/%d", m.doneBatches, m.totalBatches)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Enrichment Complete!\n\n"+
			"Rows:    %d\n"+
			"Found:   %d\n"+
			"Missing: %d\n"+
			"Failed:  %d\n\n"+
			"Written to %s",
		m.rows,
		m.summary.Found,
		m.summary.Missing,
		m.summary.Failed,
		m.output,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case enrich.LevelError:
			style = errorStyle
			prefix = "✗"
		case enrich.LevelWarning:
			style = warningStyle
			prefix = "!"
		case enrich.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case enrich.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • alt+c: cache • alt+v: verbose • esc: quit"
	case StatePreparing, StateEnriching:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new file • q: quit"
	}
	return ""
}

// prepare reads the table and builds the services.
func (m *Model) prepare() tea.Cmd {
	input := strings.TrimSpace(m.textInput.Value())
	settings := *m.settings
	settings.EnableCache = m.useCache
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		tbl, err := table.ReadFile(input)
		if err != nil {
			return PreparedMsg{Err: err}
		}

		// the console logger would draw over the UI
		a, err := app.New(ctx, &settings, logger.Nop())
		if err != nil {
			return PreparedMsg{Err: err}
		}

		return PreparedMsg{
			App:      a,
			Enricher: a.Enricher(enrich.WithProgress(events.add)),
			Table:    tbl,
			Output:   table.DerivedPath(input, "-enriched"),
		}
	}
}

// startEnrich enriches the table in the background and writes the result.
func (m *Model) startEnrich() tea.Cmd {
	ctx, e, tbl, output := m.ctx, m.enricher, m.table, m.output

	return func() tea.Msg {
		result, err := e.EnrichTable(ctx, tbl, enrich.AllFields)
		if err != nil {
			return EnrichDoneMsg{Err: err}
		}
		if err := tbl.WriteFile(output); err != nil {
			return EnrichDoneMsg{Err: err}
		}
		return EnrichDoneMsg{Summary: result.Summary(), Rows: tbl.Len()}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
