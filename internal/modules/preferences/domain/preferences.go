package domain

import (
	"fmt"
	"strings"

	apperrors "didathing/internal/platform/errors"
)

type SortBy string

const (
	SortRecent SortBy = "recent"
	SortAlpha  SortBy = "alpha"
)

// Theme is empty when the terminal's own background decides.
type Theme string

const (
	ThemeSystem Theme = ""
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
)

type Preferences struct {
	SortBy SortBy `yaml:"sort_by"`
	Theme  Theme  `yaml:"theme,omitempty"`
}

func Defaults() Preferences {
	return Preferences{SortBy: SortRecent, Theme: ThemeSystem}
}

func ParseSortBy(raw string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(raw))) {
	case SortRecent:
		return SortRecent, nil
	case SortAlpha:
		return SortAlpha, nil
	default:
		return "", fmt.Errorf("unsupported sort %q (want recent or alpha): %w", raw, apperrors.ErrInvalidInput)
	}
}

func ParseTheme(raw string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "system":
		return ThemeSystem, nil
	case string(ThemeDark):
		return ThemeDark, nil
	case string(ThemeLight):
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("unsupported theme %q (want system, dark or light): %w", raw, apperrors.ErrInvalidInput)
	}
}

// Normalize replaces unknown values read from disk with defaults.
func (p Preferences) Normalize() Preferences {
	if _, err := ParseSortBy(string(p.SortBy)); err != nil {
		p.SortBy = SortRecent
	}
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		p.Theme = ThemeSystem
	}
	return p
}

func (s SortBy) Toggle() SortBy {
	if s == SortAlpha {
		return SortRecent
	}
	return SortAlpha
}

// Next cycles system -> dark -> light -> system.
func (t Theme) Next() Theme {
	switch t {
	case ThemeSystem:
		return ThemeDark
	case ThemeDark:
		return ThemeLight
	default:
		return ThemeSystem
	}
}

func (t Theme) Label() string {
	if t == ThemeSystem {
		return "system"
	}
	return string(t)
}
