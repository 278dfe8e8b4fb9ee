// Package display renders simulation results and live progress to the
// terminal.
package display

import (
	"fmt"
	"io"
	"time"

	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/montyhall/internal/statistics"
)

// Style definitions
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	strategyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	ciStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12"))

	elapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// DisableColor forces plain output regardless of terminal support.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// AutoColor matches the renderer to the environment, so piped output
// degrades to plain text.
func AutoColor() {
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// Row is one reported strategy outcome with its run time.
type Row struct {
	Result  statistics.StrategyResult
	Elapsed time.Duration
}

// RenderResults writes the per-strategy results table.
func RenderResults(w io.Writer, rows []Row) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("strategy"),
		headerStyle.Render("trials"),
		headerStyle.Render("wins"),
		headerStyle.Render("win rate"),
		headerStyle.Render("95% ci"),
		headerStyle.Render("elapsed"))

	for _, row := range rows {
		low, high := row.Result.ConfidenceInterval95()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			strategyStyle.Render(row.Result.Strategy.String()),
			row.Result.Trials,
			row.Result.Wins,
			winStyle.Render(fmt.Sprintf("%.4f", row.Result.WinRate())),
			ciStyle.Render(fmt.Sprintf("[%.4f, %.4f]", low, high)),
			elapsedStyle.Render(row.Elapsed.Round(time.Millisecond).String()))
	}

	tw.Flush()
}

// Summary returns the one-line result sentence for a both-strategy run.
func Summary(results statistics.Results) string {
	return fmt.Sprintf("Played %d times, winning %.2f%% of the time when switching and %.2f%% when staying",
		results.TotalTrials(),
		results.Switched.WinRate()*100,
		results.Stayed.WinRate()*100)
}
