package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "didathing/internal/platform/errors"
)

// Kind distinguishes single-step tasks (one phase, every advance is a 0->0
// completion) from multi-phase cycles.
type Kind string

const (
	KindSingle Kind = "single"
	KindCycle  Kind = "cycle"
)

// DefaultPhaseName names the only phase of a single-step task.
const DefaultPhaseName = "Done"

type Task struct {
	ID                int64
	Title             string
	CurrentPhaseIndex int
	CurrentPhaseSince time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Phase struct {
	ID           int64
	TaskID       int64
	Index        int
	Name         string
	DurationDays *int
}

type Transition struct {
	ID             int64
	TaskID         int64
	FromPhaseIndex int
	ToPhaseIndex   int
	TransitionedAt time.Time
}

// Pointer is the cached lifecycle position of a task.
type Pointer struct {
	Index int
	Since time.Time
}

func (t Task) Pointer() Pointer {
	return Pointer{Index: t.CurrentPhaseIndex, Since: t.CurrentPhaseSince}
}

func (t Task) WithPointer(p Pointer) Task {
	t.CurrentPhaseIndex = p.Index
	t.CurrentPhaseSince = p.Since
	return t
}

func (p Pointer) Equal(other Pointer) bool {
	return p.Index == other.Index && p.Since.Equal(other.Since)
}

// PhaseSpec describes a phase before it is stored.
type PhaseSpec struct {
	Name         string
	DurationDays *int
}

func (p PhaseSpec) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("phase name is required: %w", apperrors.ErrInvalidInput)
	}
	if p.DurationDays != nil && *p.DurationDays < 0 {
		return fmt.Errorf("phase duration must be non-negative: %w", apperrors.ErrInvalidInput)
	}
	return nil
}

// ParsePhaseSpec reads "name" or "name:days".
func ParsePhaseSpec(raw string) (PhaseSpec, error) {
	name, days, hasDays := strings.Cut(raw, ":")
	spec := PhaseSpec{Name: strings.TrimSpace(name)}
	if hasDays {
		n, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil || n < 0 {
			return PhaseSpec{}, fmt.Errorf("phase %q: duration must be a non-negative number of days: %w", raw, apperrors.ErrInvalidInput)
		}
		spec.DurationDays = &n
	}
	if spec.Name == "" {
		return PhaseSpec{}, fmt.Errorf("phase name is required: %w", apperrors.ErrInvalidInput)
	}
	return spec, nil
}

// NormalizeTitle is the form used for duplicate-title checks.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required: %w", apperrors.ErrInvalidInput)
	}
	return nil
}

// ResolvePhases checks a task's initial phases against its kind. An empty kind
// is inferred from the phase count and a single-step task without phases
// gets one DefaultPhaseName phase.
func ResolvePhases(kind Kind, phases []PhaseSpec) (Kind, []PhaseSpec, error) {
	if kind == "" {
		kind = KindSingle
		if len(phases) > 1 {
			kind = KindCycle
		}
	}
	switch kind {
	case KindSingle:
		if len(phases) > 1 {
			return "", nil, fmt.Errorf("a single-step task has exactly one phase, got %d: %w", len(phases), apperrors.ErrInvalidInput)
		}
		if len(phases) == 0 {
			phases = []PhaseSpec{{Name: DefaultPhaseName}}
		}
	case KindCycle:
		if len(phases) < 2 {
			return "", nil, fmt.Errorf("a multi-phase task needs at least two phases, got %d: %w", len(phases), apperrors.ErrInvalidInput)
		}
	default:
		return "", nil, fmt.Errorf("unsupported task kind %q: %w", string(kind), apperrors.ErrInvalidInput)
	}
	for i, p := range phases {
		if err := p.Validate(); err != nil {
			return "", nil, fmt.Errorf("phase %d: %w", i, err)
		}
	}
	return kind, phases, nil
}

// ValidatePhaseIndex checks that index is a valid position in a ring of n
// phases. A task without phases behaves as single-step and accepts only 0.
func ValidatePhaseIndex(index, n int) error {
	limit := n
	if limit < 1 {
		limit = 1
	}
	if index < 0 || index >= limit {
		return fmt.Errorf("phase index %d out of range [0, %d): %w", index, limit, apperrors.ErrInvalidInput)
	}
	return nil
}
