package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ghautomation/testpage/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	skipStyle  = lipgloss.NewStyle().Faint(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// RenderReport formats a finished run for the terminal
func RenderReport(run *models.VerificationRun) string {
	lines := []string{
		titleStyle.Render("Verification of " + run.BaseURL),
		mutedStyle.Render(fmt.Sprintf("run %s · %s", run.ID, run.Browser)),
		"",
	}

	for _, c := range run.Checks {
		lines = append(lines, renderCheck(c))
	}

	if run.Error != "" {
		lines = append(lines, failStyle.Render("✖ "+run.Error))
	}

	passed, failed, skipped := run.Counts()
	summary := fmt.Sprintf("%s  %d passed, %d failed, %d skipped in %s",
		renderStatus(run.Status), passed, failed, skipped, run.Duration().Round(time.Millisecond))
	lines = append(lines, "", summary)

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderCheck(c models.CheckResult) string {
	switch c.Status {
	case models.CheckStatusPassed:
		return passStyle.Render("✔ "+c.Name) + mutedStyle.Render(fmt.Sprintf(" (%s)", c.Duration.Round(time.Millisecond)))
	case models.CheckStatusFailed:
		return failStyle.Render("✖ "+c.Name) + "\n    " + firstLine(c.Message)
	default:
		return skipStyle.Render("- " + c.Name + " (skipped)")
	}
}

func renderStatus(status models.RunStatus) string {
	label := strings.ToUpper(string(status))
	switch status {
	case models.RunStatusPassed:
		return passStyle.Render(label)
	case models.RunStatusRunning:
		return skipStyle.Render(label)
	default:
		return failStyle.Render(label)
	}
}

// RenderRuns formats a list of recorded runs, newest first
func RenderRuns(runs []*models.VerificationRun) string {
	if len(runs) == 0 {
		return mutedStyle.Render("No verification runs recorded")
	}

	var b strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&b, "%s  %-8s  %s  %s\n",
			run.ID,
			renderStatus(run.Status),
			run.StartedAt.Format(time.RFC3339),
			mutedStyle.Render(run.BaseURL),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// firstLine trims multi-line playwright assertion errors for the summary
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
