package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"declid/internal/index"
)

// Loading manifests fills this share of the bar; merge and bind split the
// remainder evenly.
const loadShare = 0.8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	statusStyles = map[index.Status]lipgloss.Style{
		index.StatusQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		index.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		index.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		index.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type manifestRow struct {
	path    string
	status  index.Status
	entries int
	elapsed time.Duration
}

type progressModel struct {
	title   string
	events  <-chan index.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []manifestRow
	rowOf   map[string]int
	stage   index.Stage
	status  index.Status
	stages  map[index.Stage]bool
	total   int
	width   int
	done    bool
}

type eventMsg index.Event
type doneMsg struct{}

// NewProgressModel renders the progress of one index.Build over files,
// fed by events, and quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan index.Event) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(statusStyles[index.StatusWorking])),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rowOf:   make(map[string]int, len(files)),
		stages:  make(map[index.Stage]bool, 2),
		width:   80,
	}
	for _, f := range files {
		if _, dup := m.rowOf[f]; dup {
			continue
		}
		m.rowOf[f] = len(m.rows)
		m.rows = append(m.rows, manifestRow{path: f, status: index.StatusQueued})
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(index.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev index.Event) tea.Cmd {
	if ev.File == "" {
		m.stage, m.status = ev.Stage, ev.Status
		if ev.Status == index.StatusDone && ev.Stage != index.StageLoad {
			m.stages[ev.Stage] = true
			m.total = ev.Entries
		}
		return m.bar.SetPercent(m.percent())
	}
	i, ok := m.rowOf[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.status, row.entries, row.elapsed = ev.Status, ev.Entries, ev.Elapsed
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var loaded float64
	for _, r := range m.rows {
		switch r.status {
		case index.StatusDone, index.StatusError:
			loaded++
		case index.StatusWorking:
			loaded += 0.5
		}
	}
	pct := loadShare * loaded / float64(len(m.rows))
	for _, s := range []index.Stage{index.StageMerge, index.StageBind} {
		if m.stages[s] {
			pct += (1 - loadShare) / 2
		}
	}
	return min(pct, 1)
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	header := m.title
	if label := statusLabel(m.stage, m.status); label != "" && !m.done {
		header += " (" + label + ")"
	}
	if m.done {
		b.WriteString(titleStyle.Render("✓ " + header))
	} else {
		b.WriteString(m.spinner.View() + " " + titleStyle.Render(header))
	}
	b.WriteString("\n\n")

	const statusWidth = 8
	pathWidth := max(m.width-statusWidth-20, 20)
	failed := 0
	for _, r := range m.rows {
		if r.status == index.StatusError {
			failed++
		}
		label := runewidth.FillLeft(statusLabel(index.StageLoad, r.status), statusWidth)
		fmt.Fprintf(&b, "  %s %s", statusStyles[r.status].Render(label), truncate(r.path, pathWidth))
		if r.status == index.StatusDone {
			fmt.Fprintf(&b, " (%d)", r.entries)
		}
		if r.elapsed > 0 {
			b.WriteString(dimStyle.Render(" " + r.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	if m.stages[index.StageBind] {
		footer := fmt.Sprintf("%d declarations", m.total)
		if failed > 0 {
			footer += fmt.Sprintf(", %d manifests failed", failed)
		}
		b.WriteString(dimStyle.Render(footer) + "\n")
	}
	return b.String()
}

func statusLabel(stage index.Stage, status index.Status) string {
	switch status {
	case index.StatusQueued, index.StatusDone, index.StatusError:
		return string(status)
	case index.StatusWorking:
		switch stage {
		case index.StageLoad:
			return "loading"
		case index.StageMerge:
			return "merging"
		case index.StageBind:
			return "binding"
		}
	}
	return ""
}

// truncate cuts value to at most width cells, ending in "..." when there is
// room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
