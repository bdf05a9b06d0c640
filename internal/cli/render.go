package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

const maxTitle = 80

// listLines builds the ls panel: header, progress bar, then the tasks
// flat or grouped by pending/done.
func listLines(all []model.Task, group bool) []string {
	th := ui.Current()
	d, p := model.Stats(all)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		th.Title.Render("Todos"),
		th.Success.Render(th.SymOK), d,
		th.Pending.Render("•"), p,
		th.Accent.Render("Total"), len(all),
	)

	lines := []string{header, ui.ProgressBar(d, d+p, 28), ""}
	if group {
		lines = append(lines, groupLines(all)...)
	} else {
		lines = append(lines, flatLines(all, positions(all))...)
	}
	lines = append(lines, "", th.Muted.Render(`Tip: add with todo add "Buy milk" -d "2%"`))
	return lines
}

func flatLines(tasks []model.Task, pos map[string]int) []string {
	if len(tasks) == 0 {
		return []string{ui.Current().Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if r := []rune(t.Title); len(r) > maxTitle {
			t.Title = string(r[:maxTitle-3]) + "..."
		}
		out = append(out, ui.TaskLine(pos[t.ID], t))
	}
	return out
}

// groupLines keeps each task's position in the full list so the printed
// index still works as a ref.
func groupLines(all []model.Task) []string {
	pos := positions(all)
	var pend, done []model.Task
	for _, t := range all {
		if t.IsDone {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	th := ui.Current()
	section := func(name string, tasks []model.Task) []string {
		lines := []string{th.Accent.Render(name)}
		if len(tasks) == 0 {
			return append(lines, th.Muted.Render("(none)"))
		}
		return append(lines, flatLines(tasks, pos)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// resolveRef finds a task by 1-based index, exact ID or unique ID prefix.
func resolveRef(all []model.Task, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, usagef("empty task reference")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(all) {
			return model.Task{}, usagef("index out of range: have %d, got %d\nHint: run `todo ls` to see valid indexes", len(all), n)
		}
		return all[n-1], nil
	}
	var matches []model.Task
	for _, t := range all {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, usagef("no task matches %q", ref)
	case 1:
		return matches[0], nil
	}
	return model.Task{}, usagef("%q matches %d tasks, use a longer id", ref, len(matches))
}
