package display

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressFunc reports completed and total trials for the live view to poll.
type ProgressFunc func() (completed, total uint64)

type tickMsg time.Time

const (
	pollInterval = 100 * time.Millisecond
	maxBarWidth  = 60
)

// LiveModel is the Bubble Tea model for an in-flight run: a spinner, a
// progress bar and a throughput line, fed by polling the simulator's
// trial counter.
type LiveModel struct {
	poll  ProgressFunc
	bar   progress.Model
	spin  spinner.Model
	start time.Time

	completed uint64
	total     uint64
	quitting  bool
}

// NewLiveModel creates a live progress model polling the given counter.
func NewLiveModel(poll ProgressFunc) LiveModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = maxBarWidth

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return LiveModel{
		poll:  poll,
		bar:   bar,
		spin:  sp,
		start: time.Now(),
	}
}

// Init starts the spinner and the poll ticker.
func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles poll ticks, spinner frames and quit keys.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 30
		if m.bar.Width > maxBarWidth {
			m.bar.Width = maxBarWidth
		}
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}

	case tickMsg:
		m.completed, m.total = m.poll()
		if m.total > 0 && m.completed >= m.total {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress line.
func (m LiveModel) View() string {
	if m.quitting {
		return ""
	}

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.completed) / float64(m.total)
	}
	rate := float64(m.completed) / time.Since(m.start).Seconds()

	return fmt.Sprintf("\n %s %s %3.0f%%  %d/%d trials  %.0f trials/sec  %s\n",
		m.spin.View(),
		m.bar.ViewAs(pct),
		pct*100,
		m.completed, m.total,
		rate,
		time.Since(m.start).Round(time.Second))
}

// RunLive runs the live progress view until the counter reaches its total
// or the user quits.
func RunLive(poll ProgressFunc) error {
	p := tea.NewProgram(NewLiveModel(poll))
	_, err := p.Run()
	return err
}
