package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"didathing/internal/ui/theme"
)

// PromptSubmitMsg is emitted when the user confirms the input.
type PromptSubmitMsg struct {
	Purpose string
	Input   string
}

// PromptCancelMsg is emitted when the user presses esc.
type PromptCancelMsg struct{ Purpose string }

// Prompt is a one-line input overlay backed by bubbles/textinput. Purpose
// tells the owner what the answer is for.
type Prompt struct {
	input   textinput.Model
	purpose string
	title   string
	hints   []string
	visible bool
	width   int
}

// NewPrompt creates an inactive Prompt ready to be opened.
func NewPrompt() Prompt {
	ti := textinput.New()
	ti.CharLimit = 256
	return Prompt{input: ti}
}

func (p Prompt) Visible() bool { return p.visible }

func (p Prompt) Purpose() string { return p.purpose }

// Open shows the prompt with an initial value and returns the focus command.
func (p *Prompt) Open(purpose, title, placeholder, value string, hints ...string) tea.Cmd {
	p.visible = true
	p.purpose = purpose
	p.title = title
	p.hints = hints
	p.input.Placeholder = placeholder
	p.input.SetValue(value)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *Prompt) SetWidth(w int) { p.width = w }

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			purpose := p.purpose
			return p, func() tea.Msg { return PromptCancelMsg{Purpose: purpose} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.visible = false
			p.input.Blur()
			purpose := p.purpose
			return p, func() tea.Msg { return PromptSubmitMsg{Purpose: purpose, Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.title) + "\n")
	sb.WriteString("> " + p.input.View() + "\n")
	if len(p.hints) > 0 {
		sb.WriteString("\n")
		for _, h := range p.hints {
			sb.WriteString(theme.Muted.Render("  "+h) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current.Peach).
		Background(theme.Current.Mantle).
		Foreground(theme.Current.Text).
		Padding(0, 1)
	return style.Width(w - 2).Render(sb.String())
}
