package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts a task to bubbles/list.Item.
type listItem struct {
	task model.Task
}

func (i listItem) FilterValue() string { return i.task.Title }

func toItems(tasks []model.Task) []list.Item {
	out := make([]list.Item, len(tasks))
	for i, t := range tasks {
		out[i] = listItem{task: t}
	}
	return out
}

// itemDelegate renders one task per line with the current theme.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	th := ui.Current()
	title := it.task.Title
	if it.task.IsDone {
		title = th.Done.Render(title)
	}
	line := fmt.Sprintf("%s %s", ui.Checkbox(it.task.IsDone), title)
	if it.task.Description != "" {
		line += "  " + th.Muted.Render(it.task.Description)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = th.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+line)
}
