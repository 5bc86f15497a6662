package theme

import "github.com/charmbracelet/lipgloss"

// Palette is one colour scheme. Dark is Catppuccin Mocha, Light is Latte.
type Palette struct {
	Name     string
	Base     lipgloss.Color
	Mantle   lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color
	Text     lipgloss.Color
	Subtext0 lipgloss.Color
	Lavender lipgloss.Color
	Sapphire lipgloss.Color
	Green    lipgloss.Color
	Peach    lipgloss.Color
	Red      lipgloss.Color
}

var (
	Dark = Palette{
		Name:     "dark",
		Base:     lipgloss.Color("#1e1e2e"),
		Mantle:   lipgloss.Color("#181825"),
		Surface0: lipgloss.Color("#313244"),
		Surface1: lipgloss.Color("#45475a"),
		Text:     lipgloss.Color("#cdd6f4"),
		Subtext0: lipgloss.Color("#a6adc8"),
		Lavender: lipgloss.Color("#b4befe"),
		Sapphire: lipgloss.Color("#74c7ec"),
		Green:    lipgloss.Color("#a6e3a1"),
		Peach:    lipgloss.Color("#fab387"),
		Red:      lipgloss.Color("#f38ba8"),
	}
	Light = Palette{
		Name:     "light",
		Base:     lipgloss.Color("#eff1f5"),
		Mantle:   lipgloss.Color("#e6e9ef"),
		Surface0: lipgloss.Color("#ccd0da"),
		Surface1: lipgloss.Color("#bcc0cc"),
		Text:     lipgloss.Color("#4c4f69"),
		Subtext0: lipgloss.Color("#6c6f85"),
		Lavender: lipgloss.Color("#7287fd"),
		Sapphire: lipgloss.Color("#209fb5"),
		Green:    lipgloss.Color("#40a02b"),
		Peach:    lipgloss.Color("#fe640b"),
		Red:      lipgloss.Color("#d20f39"),
	}
)

// Current palette and the styles derived from it. Views read these at render
// time, so Use takes effect on the next frame.
var (
	Current Palette

	App        lipgloss.Style
	Pane       lipgloss.Style
	PaneActive lipgloss.Style
	Bar        lipgloss.Style
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Hot        lipgloss.Style
	Good       lipgloss.Style
	Bad        lipgloss.Style
)

func init() {
	Use(Dark)
}

// Resolve maps a preference ("dark", "light", "system" or empty) to a
// palette. Anything but dark or light follows the terminal background.
func Resolve(name string) Palette {
	switch name {
	case Dark.Name:
		return Dark
	case Light.Name:
		return Light
	}
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

func Use(p Palette) {
	Current = p
	App = lipgloss.NewStyle().
		Background(p.Base).
		Foreground(p.Text).
		Padding(1, 2)
	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface1).
		Background(p.Mantle).
		Foreground(p.Text).
		Padding(1)
	PaneActive = Pane.BorderForeground(p.Lavender)
	Bar = lipgloss.NewStyle().Background(p.Mantle)
	Title = lipgloss.NewStyle().Foreground(p.Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(p.Subtext0)
	Hot = lipgloss.NewStyle().Foreground(p.Peach).Bold(true)
	Good = lipgloss.NewStyle().Foreground(p.Green)
	Bad = lipgloss.NewStyle().Foreground(p.Red)
}
