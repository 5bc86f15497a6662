package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	prefsdto "didathing/internal/modules/preferences/dto"
	trackerdto "didathing/internal/modules/tracker/dto"
	"didathing/internal/platform/timefmt"
	"didathing/internal/ui/components"
	"didathing/internal/ui/theme"
	tasksview "didathing/internal/ui/views/tasks"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type trackerPort interface {
	ListTasks(ctx context.Context, sortBy string) ([]trackerdto.TaskSummaryOutput, error)
	GetTask(ctx context.Context, id int64) (trackerdto.TaskDetailOutput, error)
	CreateTask(ctx context.Context, title, kind string, phases []trackerdto.PhaseInput, force bool) (trackerdto.CreateTaskOutput, error)
	RenameTask(ctx context.Context, id int64, title string) (trackerdto.TaskOutput, error)
	DeleteTask(ctx context.Context, id int64) error
	Advance(ctx context.Context, taskID int64) (trackerdto.TransitionOutcome, error)
	AddHistory(ctx context.Context, taskID int64, from, to int, at time.Time) (trackerdto.TransitionOutcome, error)
	DeleteHistory(ctx context.Context, transitionID int64) (trackerdto.DeleteTransitionOutput, error)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	ParsePhases(specs []string) ([]trackerdto.PhaseInput, error)
}

type prefsPort interface {
	ToggleSort(ctx context.Context) (prefsdto.PreferencesOutput, error)
	ToggleTheme(ctx context.Context) (prefsdto.PreferencesOutput, error)
}

// ─── prompt purposes ─────────────────────────────────────────────────────────

const (
	promptAdd        = "add"
	promptAddConfirm = "add-confirm"
	promptRename     = "rename"
	promptBackdate   = "backdate"
	promptDelete     = "delete"
)

// ─── async messages ───────────────────────────────────────────────────────────

// mutationDoneMsg reports a finished write. The list is reloaded afterwards.
type mutationDoneMsg struct {
	status string
	err    error
}

// duplicateTitleMsg asks the user to confirm adding a second task with the
// same title.
type duplicateTitleMsg struct {
	input string
}

type prefsMsg struct {
	prefs  prefsdto.PreferencesOutput
	reload bool
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Add      key.Binding
	Done     key.Binding
	Backdate key.Binding
	Undo     key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Sort     key.Binding
	Theme    key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Done:     key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter/d", "did it now")),
		Backdate: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "did it at…")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo last")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle sort")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),
		Reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Done, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Rename, k.Delete},
		{k.Done, k.Backdate, k.Undo},
		{k.Sort, k.Theme, k.Reload},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the prompt overlay, the help
// screen and the status bar. Reads and writes go through the ports; the task
// list and detail pane are rendered by the tasks view.
type Model struct {
	tracker trackerPort
	prefs   prefsPort

	tasksView tasksview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	prompt   components.Prompt
	// pending holds the add-task input while a duplicate title is confirmed.
	pending   string
	sortBy    string
	themePref string
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(tracker trackerPort, prefs prefsPort, initial prefsdto.PreferencesOutput, now func() time.Time) Model {
	return Model{
		tracker:   tracker,
		prefs:     prefs,
		tasksView: tasksview.New(tracker, initial.SortBy, now),
		keys:      defaultKeys(),
		help:      help.New(),
		prompt:    components.NewPrompt(),
		sortBy:    initial.SortBy,
		themePref: initial.Theme,
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.tasksView.Init()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The prompt intercepts all input while open.
	if m.prompt.Visible() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		} else {
			m.status = msg.status
		}
		return m, m.tasksView.Reload(m.sortBy)

	case duplicateTitleMsg:
		m.pending = msg.input
		title, _ := splitAddInput(msg.input)
		return m, m.prompt.Open(promptAddConfirm,
			fmt.Sprintf("A task named %q already exists. Add anyway?", title),
			"yes / no", "", "type yes to add a second task with this title")

	case prefsMsg:
		if msg.err != nil {
			m.status = "preferences: " + msg.err.Error()
			return m, nil
		}
		m.themePref = msg.prefs.Theme
		theme.Use(theme.Resolve(m.themePref))
		m.tasksView.Restyle()
		if msg.reload {
			m.sortBy = msg.prefs.SortBy
			m.status = "sorted by " + sortLabel(m.sortBy)
			return m, m.tasksView.Reload(m.sortBy)
		}
		m.status = "theme: " + themeLabel(m.themePref)
		return m, nil

	case components.PromptSubmitMsg:
		return m.submitPrompt(msg.Purpose, msg.Input)

	case components.PromptCancelMsg:
		m.pending = ""
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the list when its search filter is active.
		if m.tasksView.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Add):
			return m, m.prompt.Open(promptAdd, "New task", "Title | Phase 1, Phase 2", "",
				"a title alone tracks when you last did it",
				"add two or more phases after | for a cycle, e.g. Laundry | Washing, Drying, Folded",
				"a phase may carry a duration in days: Sprouting:5")
		case key.Matches(msg, m.keys.Rename):
			if _, ok := m.tasksView.SelectedTaskID(); !ok {
				m.status = "no task selected"
				return m, nil
			}
			return m, m.prompt.Open(promptRename, "Rename task", "title", m.tasksView.SelectedTitle())
		case key.Matches(msg, m.keys.Done):
			id, ok := m.tasksView.SelectedTaskID()
			if !ok {
				m.status = "no task selected"
				return m, nil
			}
			return m, m.advanceCmd(id, m.tasksView.SelectedTitle())
		case key.Matches(msg, m.keys.Backdate):
			detail, ok := m.selectedDetail()
			if !ok {
				m.status = "no task selected"
				return m, nil
			}
			hints := []string{"format: YYYY-MM-DD HH:MM, local time"}
			if detail.Kind == "cycle" {
				hints = append(hints, "append a phase number to record moving there, e.g. 2026-03-10 08:00 3",
					"or two to record a specific step, e.g. 2026-03-10 08:00 1 2")
			}
			return m, m.prompt.Open(promptBackdate, "When did you do "+detail.Task.Title+"?",
				"2006-01-02 15:04", time.Now().Format("2006-01-02 15:04"), hints...)
		case key.Matches(msg, m.keys.Undo):
			if _, ok := m.selectedDetail(); !ok {
				m.status = "no task selected"
				return m, nil
			}
			id, ok := m.tasksView.LatestTransitionID()
			if !ok {
				m.status = "nothing to undo"
				return m, nil
			}
			return m, m.deleteHistoryCmd(id)
		case key.Matches(msg, m.keys.Delete):
			if _, ok := m.tasksView.SelectedTaskID(); !ok {
				m.status = "no task selected"
				return m, nil
			}
			return m, m.prompt.Open(promptDelete, "Delete "+m.tasksView.SelectedTitle()+" and its history?",
				"yes / no", "", "type yes to delete")
		case key.Matches(msg, m.keys.Sort):
			return m, m.toggleSortCmd()
		case key.Matches(msg, m.keys.Theme):
			return m, m.toggleThemeCmd()
		case key.Matches(msg, m.keys.Reload):
			m.status = "reloaded"
			return m, m.tasksView.Reload(m.sortBy)
		}
	}

	var viewCmd tea.Cmd
	m.tasksView, viewCmd = m.tasksView.Update(msg)
	cmds = append(cmds, viewCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.prompt.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.prompt.View())
	default:
		content = m.tasksView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := theme.Hot.Render(" didathing ") + theme.Muted.Render(" when did I last…?")
	return theme.Bar.Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render(fmt.Sprintf("sort:%s  theme:%s  ?:help  q:quit",
		sortLabel(m.sortBy), themeLabel(m.themePref)))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + theme.Bar.Width(m.width).Render(bar)
}

// ─── prompt handling ─────────────────────────────────────────────────────────

func (m Model) submitPrompt(purpose, input string) (tea.Model, tea.Cmd) {
	switch purpose {
	case promptAdd:
		if input == "" {
			m.status = "ready"
			return m, nil
		}
		return m, m.addTaskCmd(input, false)

	case promptAddConfirm:
		pending := m.pending
		m.pending = ""
		if !strings.EqualFold(input, "yes") || pending == "" {
			m.status = "task not added"
			return m, nil
		}
		return m, m.addTaskCmd(pending, true)

	case promptRename:
		id, ok := m.tasksView.SelectedTaskID()
		if !ok || input == "" {
			m.status = "ready"
			return m, nil
		}
		return m, m.renameCmd(id, input)

	case promptBackdate:
		detail, ok := m.selectedDetail()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		at, from, to, err := parseBackdate(input, detail)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.addHistoryCmd(detail.Task.ID, from, to, at)

	case promptDelete:
		id, ok := m.tasksView.SelectedTaskID()
		if !ok || !strings.EqualFold(input, "yes") {
			m.status = "delete cancelled"
			return m, nil
		}
		return m, m.deleteTaskCmd(id, m.tasksView.SelectedTitle())
	}
	return m, nil
}

// splitAddInput reads "Title | Phase 1, Phase 2:3" into a title and raw
// phase specs. Blank specs are dropped.
func splitAddInput(input string) (string, []string) {
	title, rest, hasPhases := strings.Cut(input, "|")
	title = strings.TrimSpace(title)
	if !hasPhases {
		return title, nil
	}
	var specs []string
	for _, raw := range strings.Split(rest, ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			specs = append(specs, raw)
		}
	}
	return title, specs
}

const backdateFormat = "YYYY-MM-DD [HH:MM] [from] [to]"

// parseBackdate reads "YYYY-MM-DD HH:MM [from] [to]". Phase numbers are
// 1-based. Without them a cycle records current → next; a lone number is
// the phase moved to, starting from the current one.
func parseBackdate(input string, detail trackerdto.TaskDetailOutput) (time.Time, int, int, error) {
	fields := strings.Fields(input)
	var from, to int
	if detail.Kind == "cycle" {
		from = detail.Task.CurrentPhaseIndex
		to = (from + 1) % len(detail.Phases)
	}

	// The date and time never parse as bare integers, so trailing integers
	// are phase numbers.
	var numbers []int
	for len(fields) > 1 && len(numbers) < 2 {
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			break
		}
		numbers = append([]int{n}, numbers...)
		fields = fields[:len(fields)-1]
	}
	switch len(numbers) {
	case 1:
		to = numbers[0] - 1
	case 2:
		from, to = numbers[0]-1, numbers[1]-1
	}

	if len(fields) == 0 || len(fields) > 2 {
		return time.Time{}, 0, 0, fmt.Errorf("expected %s", backdateFormat)
	}
	at, err := timefmt.ParseLocal(strings.Join(fields, " "))
	if err != nil {
		return time.Time{}, 0, 0, fmt.Errorf("expected %s: %w", backdateFormat, err)
	}
	return at, from, to, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// selectedDetail returns the detail pane's task when it matches the list
// selection.
func (m Model) selectedDetail() (trackerdto.TaskDetailOutput, bool) {
	id, ok := m.tasksView.SelectedTaskID()
	if !ok {
		return trackerdto.TaskDetailOutput{}, false
	}
	detail := m.tasksView.Detail()
	if detail.Task.ID != id {
		return trackerdto.TaskDetailOutput{}, false
	}
	return detail, true
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 4}
	m.tasksView, _ = m.tasksView.Update(sz)
}

func sortLabel(sortBy string) string {
	if sortBy == "alpha" {
		return "A-Z"
	}
	return "recent"
}

func themeLabel(pref string) string {
	if pref == "" {
		return "system"
	}
	return pref
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) addTaskCmd(input string, force bool) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		ctx := context.Background()
		title, specs := splitAddInput(input)
		phases, err := tracker.ParsePhases(specs)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		if !force {
			exists, err := tracker.TitleExists(ctx, title, 0)
			if err != nil {
				return mutationDoneMsg{err: err}
			}
			if exists {
				return duplicateTitleMsg{input: input}
			}
		}
		out, err := tracker.CreateTask(ctx, title, "", phases, force)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: "added " + out.Task.Title}
	}
}

func (m Model) renameCmd(id int64, title string) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		out, err := tracker.RenameTask(context.Background(), id, title)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: "renamed to " + out.Title}
	}
}

func (m Model) deleteTaskCmd(id int64, title string) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		if err := tracker.DeleteTask(context.Background(), id); err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: "deleted " + title}
	}
}

func (m Model) advanceCmd(id int64, title string) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		if _, err := tracker.Advance(context.Background(), id); err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: "did " + title}
	}
}

func (m Model) addHistoryCmd(id int64, from, to int, at time.Time) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		out, err := tracker.AddHistory(context.Background(), id, from, to, at)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: "recorded " + timefmt.DateTime(out.Transition.TransitionedAt)}
	}
}

func (m Model) deleteHistoryCmd(id int64) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		out, err := tracker.DeleteHistory(context.Background(), id)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		if !out.Deleted {
			return mutationDoneMsg{status: "already gone"}
		}
		return mutationDoneMsg{status: "undone"}
	}
}

func (m Model) toggleSortCmd() tea.Cmd {
	prefs := m.prefs
	return func() tea.Msg {
		out, err := prefs.ToggleSort(context.Background())
		return prefsMsg{prefs: out, reload: true, err: err}
	}
}

func (m Model) toggleThemeCmd() tea.Cmd {
	prefs := m.prefs
	return func() tea.Msg {
		out, err := prefs.ToggleTheme(context.Background())
		return prefsMsg{prefs: out, err: err}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
