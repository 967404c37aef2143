package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/wintrack/internal/report"
	"github.com/lakshaymaurya-felt/wintrack/internal/scan"
	"github.com/lakshaymaurya-felt/wintrack/internal/tracker"
	"github.com/lakshaymaurya-felt/wintrack/internal/ui"
)

// Scanner starts a background scan; *tracker.Orchestrator implements it.
type Scanner interface {
	Start(ctx context.Context, req tracker.Request) (<-chan tracker.Outcome, error)
}

// ─── Messages ────────────────────────────────────────────────────────────────

type progressMsg string

type outcomeMsg tracker.Outcome

type startedMsg struct {
	outcomes <-chan tracker.Outcome
}

type startErrMsg struct {
	err error
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Model is the bubbletea Model for the file change tracker.
type Model struct {
	scanner Scanner
	ctx     context.Context
	cancel  context.CancelFunc

	root    string
	filter  scan.Filter
	filters []scan.Filter
	topN    int

	spinner  spinner.Model
	table    table.Model
	progress chan string

	scanning bool
	status   string
	outcome  *tracker.Outcome
	width    int
	height   int
	quitting bool
}

// New creates a Model that scans root as soon as the program starts.
func New(ctx context.Context, scanner Scanner, root string, filter scan.Filter, topN int) Model {
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorCoral)

	filters := []scan.Filter{scan.NoFilter}
	for _, ext := range scan.KnownExtensions {
		filters = append(filters, scan.NormalizeFilter(ext))
	}

	if topN <= 0 {
		topN = report.DefaultTop
	}

	m := Model{
		scanner:  scanner,
		ctx:      ctx,
		cancel:   cancel,
		root:     root,
		filter:   filter,
		filters:  filters,
		topN:     topN,
		spinner:  sp,
		progress: make(chan string, 16),
		scanning: true,
		status:   "Starting scan...",
		width:    100,
		height:   30,
	}
	m.table = newTable(m.width, m.height)
	return m
}

// Outcome returns the last finished scan, if any.
func (m Model) Outcome() (tracker.Outcome, bool) {
	if m.outcome == nil {
		return tracker.Outcome{}, false
	}
	return *m.outcome, true
}

func (m Model) reportProgress() tracker.ProgressFunc {
	ch := m.progress
	return func(status string) {
		select {
		case ch <- status:
		default:
		}
	}
}

func (m Model) startScan() tea.Cmd {
	scanner, ctx := m.scanner, m.ctx
	req := tracker.Request{Root: m.root, Filter: m.filter, Progress: m.reportProgress()}
	return func() tea.Msg {
		ch, err := scanner.Start(ctx, req)
		if err != nil {
			return startErrMsg{err: err}
		}
		return startedMsg{outcomes: ch}
	}
}

func waitForProgress(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(s)
	}
}

func waitForOutcome(ch <-chan tracker.Outcome) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return nil
		}
		return outcomeMsg(out)
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForProgress(m.progress), m.startScan())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = newTable(m.width, m.height)
		m.fillTable()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "r":
			if !m.scanning {
				m.scanning = true
				m.status = "Starting scan..."
			}
			return m, tea.Batch(m.spinner.Tick, m.startScan())
		case "f":
			if !m.scanning {
				m.filter = m.nextFilter()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		if m.scanning {
			m.status = string(msg)
		}
		return m, waitForProgress(m.progress)

	case startedMsg:
		return m, waitForOutcome(msg.outcomes)

	case startErrMsg:
		if errors.Is(msg.err, tracker.ErrBusy) {
			m.status = "A scan is already running."
			return m, nil
		}
		m.scanning = false
		m.status = "Cannot start scan: " + msg.err.Error()
		return m, nil

	case outcomeMsg:
		out := tracker.Outcome(msg)
		m.scanning = false
		m.outcome = &out
		if out.OK() {
			m.status = "Scan complete. " + out.Summary()
		} else {
			m.status = "Scan failed: " + out.Err.Error()
		}
		m.fillTable()
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	return m.renderView()
}

func (m Model) nextFilter() scan.Filter {
	for i, f := range m.filters {
		if f == m.filter {
			return m.filters[(i+1)%len(m.filters)]
		}
	}
	return m.filters[0]
}

func (m *Model) fillTable() {
	if m.outcome == nil || !m.outcome.OK() {
		m.table.SetRows(nil)
		return
	}
	rows := report.Rows(*m.outcome, m.topN)
	trs := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		trs = append(trs, table.Row{r.Path, r.SizeText(), r.Change})
	}
	m.table.SetRows(trs)
}

func newTable(width, height int) table.Model {
	pathW := width - 36
	if pathW < 20 {
		pathW = 20
	}
	h := height - 10
	if h < 5 {
		h = 5
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "File Path", Width: pathW},
			{Title: "Size", Width: 12},
			{Title: "Change", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(h),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Foreground(ui.ColorCoral).Bold(true)
	st.Selected = st.Selected.Foreground(ui.ColorText).Background(ui.ColorPrimary)
	t.SetStyles(st)
	return t
}
