// Package tui is the interactive Bubble Tea front end.
package tui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/query"
	"github.com/idilsaglam/tada/internal/ui"
)

// Repo is what the TUI needs from the task repository.
type Repo interface {
	Snapshot() []model.Task
	Search(text string) []model.Task
	Stats() (done, pending int)
	Create(title, description string) (model.Task, error)
	Update(id, title, description string) (model.Task, error)
	Toggle(id string) (model.Task, error)
	Duplicate(id string) (model.Task, error)
	Delete(id string) bool
	PersistErr() error
	Persist()
}

type Options struct {
	Delay  time.Duration
	Theme  string
	Logger *log.Logger

	onResult func(query.Result)
}

const persistPoll = 500 * time.Millisecond

type mode int

const (
	modeList mode = iota
	modeAddTitle
	modeAddDescription
	modeEditTitle
	modeEditDescription
	modeConfirmDelete
	modeSearch
)

// resultMsg delivers a search result from the query pipeline.
type resultMsg query.Result

type persistTickMsg struct{}

// Model is the Bubble Tea model. Every change goes through the repository
// and the list is redrawn from the newest search result.
type Model struct {
	repo   Repo
	live   *query.Live
	logger *log.Logger

	list   list.Model
	input  textinput.Model
	search textinput.Model

	mode      mode
	draft     model.Task // task being added or edited
	resultSeq uint64

	status     string
	statusErr  bool
	persistErr error
}

var keys = struct {
	add, edit, toggle, dup, del, search, copy, theme, save, quit key.Binding
}{
	add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	dup:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "duplicate")),
	del:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
	theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "retry save")),
	quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func New(repo Repo, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Theme != "" {
		ui.SetTheme(opts.Theme)
	}

	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit.SetEnabled(false)
	extra := func() []key.Binding {
		return []key.Binding{keys.add, keys.edit, keys.toggle, keys.dup, keys.del, keys.search, keys.copy, keys.theme}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 200

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search titles and descriptions"

	m := Model{
		repo:   repo,
		live:   query.New(repo, opts.Delay, opts.onResult),
		logger: opts.Logger.With("component", "tui"),
		list:   l,
		input:  in,
		search: search,
	}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(repo Repo, opts Options) error {
	p, live := newProgram(repo, opts, tea.WithAltScreen())
	defer live.Stop()
	_, err := p.Run()
	return err
}

// newProgram wires search results into the program. Results computed on
// the event loop itself (submit, refresh) are sent from a new goroutine,
// since Send blocks until the loop receives; stale ones are dropped by
// their sequence number in apply.
func newProgram(repo Repo, opts Options, popts ...tea.ProgramOption) (*tea.Program, *query.Live) {
	var prog atomic.Pointer[tea.Program]
	opts.onResult = func(r query.Result) {
		if p := prog.Load(); p != nil {
			go p.Send(resultMsg(r))
		}
	}
	m := New(repo, opts)
	p := tea.NewProgram(m, popts...)
	prog.Store(p)
	return p, m.live
}

func (m Model) Init() tea.Cmd { return pollPersist() }

func pollPersist() tea.Cmd {
	return tea.Tick(persistPoll, func(time.Time) tea.Msg { return persistTickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		m.input.Width = msg.Width - 10
		m.search.Width = msg.Width - 10
		return m, nil
	case resultMsg:
		m.apply(query.Result(msg))
		return m, nil
	case persistTickMsg:
		m.checkPersist()
		return m, pollPersist()
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTitle, modeAddDescription, modeEditTitle, modeEditDescription:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case msg.Type == tea.KeyEsc:
		if strings.TrimSpace(m.search.Value()) != "" {
			m.search.SetValue("")
			m.submitSearch()
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, keys.add):
		m.draft = model.Task{}
		cmd := m.startInput(modeAddTitle, "", "Title")
		return m, cmd
	case key.Matches(msg, keys.search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, keys.theme):
		th := ui.SetTheme(ui.NextTheme(ui.Current().Name))
		m.setStatus("theme: "+th.Name, false)
		return m, nil
	case key.Matches(msg, keys.save):
		m.repo.Persist()
		m.setStatus("saving…", false)
		return m, nil
	}

	t, ok := m.selected()
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(msg, keys.edit):
		m.draft = t
		cmd := m.startInput(modeEditTitle, t.Title, "Title")
		return m, cmd
	case key.Matches(msg, keys.toggle):
		if _, err := m.repo.Toggle(t.ID); err != nil {
			m.setStatus(err.Error(), true)
		}
		m.refresh()
		return m, nil
	case key.Matches(msg, keys.dup):
		if _, err := m.repo.Duplicate(t.ID); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("duplicated", false)
		}
		m.refresh()
		return m, nil
	case key.Matches(msg, keys.del):
		m.draft = t
		m.mode = modeConfirmDelete
		return m, nil
	case key.Matches(msg, keys.copy):
		if err := clipboard.WriteAll(t.Title); err != nil {
			m.logger.Debug("clipboard", "err", err)
			m.setStatus("could not copy: "+err.Error(), true)
		} else {
			m.setStatus("copied", false)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) startInput(md mode, value, placeholder string) tea.Cmd {
	m.mode = md
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	m.status = ""
	return m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeAddTitle, modeEditTitle:
			if value == "" {
				m.setStatus("title must not be empty", true)
				return m, nil
			}
			m.draft.Title = value
			next := modeAddDescription
			if m.mode == modeEditTitle {
				next = modeEditDescription
			}
			desc := ""
			if next == modeEditDescription {
				desc = m.draft.Description
			}
			cmd := m.startInput(next, desc, "Description")
			return m, cmd
		case modeAddDescription:
			if _, err := m.repo.Create(m.draft.Title, value); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.setStatus("added", false)
		case modeEditDescription:
			if _, err := m.repo.Update(m.draft.ID, m.draft.Title, value); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.setStatus("updated", false)
		}
		m.endInput()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) endInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.draft = model.Task{}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if strings.EqualFold(msg.String(), "y") {
		if m.repo.Delete(m.draft.ID) {
			m.setStatus("deleted", false)
		}
		m.refresh()
	} else {
		m.setStatus("kept", false)
	}
	m.mode = modeList
	m.draft = model.Task{}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.submitSearch()
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.search.SetValue("")
		m.submitSearch()
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.live.Type(m.search.Value())
	}
	return m, cmd
}

// submitSearch runs the search text now and shows the result.
func (m *Model) submitSearch() {
	m.live.Submit(m.search.Value())
	m.apply(m.live.Latest())
}

// refresh re-runs the active search, or lists everything, after a change.
func (m *Model) refresh() {
	m.live.Refresh()
	m.apply(m.live.Latest())
}

// apply shows r unless a newer result is already shown.
func (m *Model) apply(r query.Result) {
	if r.Seq != 0 && r.Seq <= m.resultSeq {
		return
	}
	m.resultSeq = r.Seq
	idx := m.list.Index()
	m.list.SetItems(toItems(r.Tasks))
	if n := len(r.Tasks); idx >= n && n > 0 {
		idx = n - 1
	}
	m.list.Select(idx)
	m.list.Title = m.header()
}

func (m *Model) checkPersist() {
	err := m.repo.PersistErr()
	if err != nil && m.persistErr == nil {
		m.logger.Warn("changes are not being saved", "err", err)
	}
	m.persistErr = err
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.task, ok
}

func (m Model) header() string {
	th := ui.Current()
	d, p := m.repo.Stats()
	h := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		th.Title.Render("Todos"),
		th.Success.Render(th.SymOK), d,
		th.Pending.Render("•"), p,
		th.Accent.Render("Total"), d+p,
	)
	if q := strings.TrimSpace(m.search.Value()); q != "" {
		h += "   " + th.Muted.Render(fmt.Sprintf("search %q: %d", q, len(m.list.Items())))
	}
	return h
}

func (m Model) View() string {
	th := ui.Current()
	m.list.Styles.Title = lipgloss.NewStyle()
	m.list.Styles.HelpStyle = th.Help
	m.list.Styles.PaginationStyle = th.Help

	parts := []string{m.list.View()}
	box := lipgloss.NewStyle().Border(th.Border).BorderForeground(th.BorderColor).Padding(0, 1)
	switch m.mode {
	case modeAddTitle, modeAddDescription, modeEditTitle, modeEditDescription:
		parts = append(parts, box.Render(m.inputTitle()+"\n"+m.input.View()))
	case modeConfirmDelete:
		parts = append(parts, box.Render(fmt.Sprintf("Delete %q? [y/N]", m.draft.Title)))
	case modeSearch:
		parts = append(parts, box.Render(m.search.View()))
	default:
		if m.search.Value() != "" {
			parts = append(parts, th.Muted.Render(m.search.View()))
		}
	}
	if line := m.statusLine(); line != "" {
		parts = append(parts, line)
	}
	return ui.Panel(parts)
}

func (m Model) inputTitle() string {
	switch m.mode {
	case modeAddTitle:
		return "Add task: title"
	case modeAddDescription:
		return "Add task: description"
	case modeEditTitle:
		return "Edit task: title"
	}
	return "Edit task: description"
}

func (m Model) statusLine() string {
	th := ui.Current()
	var parts []string
	if m.persistErr != nil {
		parts = append(parts, th.Warn.Render(th.SymWarn+" changes are not being saved (s to retry): "+m.persistErr.Error()))
	}
	if m.status != "" {
		st := th.Muted
		if m.statusErr {
			st = th.Error
		}
		parts = append(parts, st.Render(m.status))
	}
	return strings.Join(parts, "\n")
}
