package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/model"
)

// ProgressBar renders a bar with a done/total counter.
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		width = 28
	}
	filled := done * width / max(total, 1)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	t := Current()
	bar := t.Success.Render(strings.Repeat("█", filled)) + t.Muted.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}

// Panel frames lines with the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Checkbox renders the done marker.
func Checkbox(done bool) string {
	t := Current()
	if done {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Pending.Render(t.BoxUnchecked)
}

// TaskLine renders one list row: 1-based index, checkbox, title and a
// muted description.
func TaskLine(n int, task model.Task) string {
	t := Current()
	title := task.Title
	if task.IsDone {
		title = t.Done.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%2d.", n)), Checkbox(task.IsDone), title)
	if task.Description != "" {
		line += " " + t.Muted.Render("- "+task.Description)
	}
	return line
}

// TaskDetail renders every field of task, one per line.
func TaskDetail(task model.Task) []string {
	t := Current()
	status := t.Pending.Render("pending")
	if task.IsDone {
		status = t.Success.Render("done")
	}
	return []string{
		t.Title.Render(task.Title),
		task.Description,
		"",
		t.Muted.Render("id:     ") + task.ID,
		t.Muted.Render("status: ") + status,
	}
}
