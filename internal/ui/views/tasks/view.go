package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "didathing/internal/modules/tracker/dto"
	"didathing/internal/platform/timefmt"
	"didathing/internal/ui/theme"
)

// historyLimit caps the transitions shown in the detail pane.
const historyLimit = 20

// ─── port ────────────────────────────────────────────────────────────────────

type TasksPort interface {
	ListTasks(ctx context.Context, sortBy string) ([]trackerdto.TaskSummaryOutput, error)
	GetTask(ctx context.Context, id int64) (trackerdto.TaskDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type TasksLoadedMsg struct {
	Tasks []trackerdto.TaskSummaryOutput
	Err   error
}

type DetailLoadedMsg struct {
	Detail trackerdto.TaskDetailOutput
	Err    error
}

// TickMsg asks the view to redraw its relative-time labels.
type TickMsg struct {
	gen int
	At  time.Time
}

// ─── list item ───────────────────────────────────────────────────────────────

type taskItem struct {
	task trackerdto.TaskSummaryOutput
	now  time.Time
}

func (i taskItem) Title() string { return i.task.Task.Title }

func (i taskItem) Description() string {
	if i.task.Kind == "cycle" {
		return fmt.Sprintf("%s · %s", i.task.CurrentPhaseName, timefmt.Since(i.now, i.task.Task.CurrentPhaseSince))
	}
	if i.task.LastTransition == nil {
		return "Not done yet"
	}
	return "Done · " + timefmt.Since(i.now, i.task.LastTransition.TransitionedAt)
}

func (i taskItem) FilterValue() string { return i.task.Task.Title }

// labelTime is the timestamp the item's relative label counts from.
func (i taskItem) labelTime() (time.Time, bool) {
	if i.task.Kind == "cycle" {
		return i.task.Task.CurrentPhaseSince, true
	}
	if i.task.LastTransition == nil {
		return time.Time{}, false
	}
	return i.task.LastTransition.TransitionedAt, true
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    TasksPort
	now     func() time.Time
	sortBy  string
	tasks   []trackerdto.TaskSummaryOutput
	list    list.Model
	detail  trackerdto.TaskDetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	tickGen int
	width   int
	height  int
}

func New(port TasksPort, sortBy string, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New(nil, newDelegate(), 0, 0)
	l.Title = "Tasks"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		port:    port,
		now:     now,
		sortBy:  sortBy,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
	m.Restyle()
	return m
}

func newDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Current.Lavender).BorderForeground(theme.Current.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Current.Sapphire).BorderForeground(theme.Current.Lavender)
	return delegate
}

// Restyle re-applies the current theme palette.
func (m *Model) Restyle() {
	m.list.SetDelegate(newDelegate())
	m.list.Styles.Title = theme.Title
	m.preview.Style = lipgloss.NewStyle().
		Background(theme.Current.Mantle).
		Foreground(theme.Current.Text).
		Padding(1)
	m.spinner.Style = lipgloss.NewStyle().Foreground(theme.Current.Lavender)
	m.preview.SetContent(m.renderDetail())
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasksCmd(), m.spinner.Tick)
}

// Reload fetches the list again with the given sort order.
func (m *Model) Reload(sortBy string) tea.Cmd {
	m.sortBy = sortBy
	return m.loadTasksCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case TasksLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Tasks: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Tasks"
		m.tasks = msg.Tasks
		cmds = append(cmds, m.list.SetItems(m.items()))
		if item, ok := m.list.SelectedItem().(taskItem); ok {
			cmds = append(cmds, m.loadDetailCmd(item.task.Task.ID))
		} else {
			m.detail = trackerdto.TaskDetailOutput{}
			m.preview.SetContent(m.renderDetail())
		}
		cmds = append(cmds, m.scheduleTick())

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case TickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		cmds = append(cmds, m.list.SetItems(m.items()))
		m.preview.SetContent(m.renderDetail())
		cmds = append(cmds, m.scheduleTick())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(taskItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.task.Task.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading tasks…")
	}

	listW := m.width * 45 / 100
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current.Surface1).
		Background(theme.Current.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedTaskID returns the current selection's task ID, if any.
func (m Model) SelectedTaskID() (int64, bool) {
	if item, ok := m.list.SelectedItem().(taskItem); ok {
		return item.task.Task.ID, true
	}
	return 0, false
}

func (m Model) SelectedTitle() string {
	if item, ok := m.list.SelectedItem().(taskItem); ok {
		return item.task.Task.Title
	}
	return ""
}

// Detail is the task currently shown in the detail pane.
func (m Model) Detail() trackerdto.TaskDetailOutput { return m.detail }

// LatestTransitionID is the newest history entry of the task in the detail
// pane.
func (m Model) LatestTransitionID() (int64, bool) {
	if len(m.detail.Transitions) == 0 {
		return 0, false
	}
	return m.detail.Transitions[0].ID, true
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) items() []list.Item {
	now := m.now()
	items := make([]list.Item, len(m.tasks))
	for i, t := range m.tasks {
		items[i] = taskItem{task: t, now: now}
	}
	return items
}

// scheduleTick waits until the most urgent relative label changes. Older
// ticks are dropped through the generation counter.
func (m *Model) scheduleTick() tea.Cmd {
	m.tickGen++
	gen := m.tickGen
	now := m.now()
	interval := time.Hour
	for _, t := range m.tasks {
		if at, ok := (taskItem{task: t}).labelTime(); ok {
			if d := timefmt.RefreshInterval(now, at); d < interval {
				interval = d
			}
		}
	}
	return tea.Tick(interval, func(at time.Time) tea.Msg { return TickMsg{gen: gen, At: at} })
}

func (m *Model) resize() {
	listW := m.width * 45 / 100
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.Task.ID == 0 {
		return theme.Muted.Render("No task selected. Press n to add one.")
	}
	now := m.now()
	phaseName := func(idx int) string {
		for _, p := range d.Phases {
			if p.Index == idx {
				return p.Name
			}
		}
		return fmt.Sprintf("#%d", idx)
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Task.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:      ") + fmt.Sprint(d.Task.ID) + "\n")
	if d.Kind == "cycle" {
		sb.WriteString(theme.Muted.Render("phase:   ") + theme.Hot.Render(d.CurrentPhaseName) +
			theme.Muted.Render(" since "+timefmt.DateTime(d.Task.CurrentPhaseSince)) + "\n")
		sb.WriteString(theme.Muted.Render("         ") + timefmt.Ago(now, d.Task.CurrentPhaseSince) + "\n")
		sb.WriteString(theme.Muted.Render("next:    ") + d.NextPhaseName + "\n\n")
		sb.WriteString(theme.Muted.Render("cycle") + "\n")
		for _, p := range d.Phases {
			marker := "  "
			if p.Index == d.Task.CurrentPhaseIndex {
				marker = theme.Good.Render("● ")
			}
			line := fmt.Sprintf("%s%d. %s", marker, p.Index+1, p.Name)
			if p.DurationDays != nil {
				line += theme.Muted.Render(fmt.Sprintf("  (%dd)", *p.DurationDays))
			}
			sb.WriteString(line + "\n")
		}
	} else if len(d.Transitions) > 0 {
		last := d.Transitions[0].TransitionedAt
		sb.WriteString(theme.Muted.Render("last:    ") + timefmt.DateTime(last) + "\n")
		sb.WriteString(theme.Muted.Render("         ") + timefmt.Ago(now, last) + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("last:    ") + "never\n")
	}

	sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("history (%d)", len(d.Transitions))) + "\n")
	for i, t := range d.Transitions {
		if i == historyLimit {
			sb.WriteString(theme.Muted.Render(fmt.Sprintf("  … %d more", len(d.Transitions)-historyLimit)) + "\n")
			break
		}
		entry := timefmt.DateTime(t.TransitionedAt)
		if d.Kind == "cycle" {
			entry += "  " + phaseName(t.FromPhaseIndex) + " → " + phaseName(t.ToPhaseIndex)
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", theme.Muted.Render(fmt.Sprintf("[%d]", t.ID)), entry))
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: did it now  b: backdate  u: undo last"))
	return sb.String()
}

func (m Model) loadTasksCmd() tea.Cmd {
	port, sortBy := m.port, m.sortBy
	return func() tea.Msg {
		tasks, err := port.ListTasks(context.Background(), sortBy)
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

func (m Model) loadDetailCmd(id int64) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		detail, err := port.GetTask(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
