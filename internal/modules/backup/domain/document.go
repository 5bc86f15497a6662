package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "didathing/internal/platform/errors"
)

const (
	FormatTag = "didathing-export"
	Version   = 1
)

type TaskRecord struct {
	ID                int64     `json:"id" yaml:"id"`
	Title             string    `json:"title" yaml:"title"`
	CurrentPhaseIndex int       `json:"currentPhaseIndex" yaml:"currentPhaseIndex"`
	CurrentPhaseSince time.Time `json:"currentPhaseSince" yaml:"currentPhaseSince"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type PhaseRecord struct {
	ID           int64  `json:"id" yaml:"id"`
	TaskID       int64  `json:"taskId" yaml:"taskId"`
	Index        int    `json:"index" yaml:"index"`
	Name         string `json:"name" yaml:"name"`
	DurationDays *int   `json:"durationDays,omitempty" yaml:"durationDays,omitempty"`
}

type TransitionRecord struct {
	ID             int64     `json:"id" yaml:"id"`
	TaskID         int64     `json:"taskId" yaml:"taskId"`
	FromPhaseIndex int       `json:"fromPhaseIndex" yaml:"fromPhaseIndex"`
	ToPhaseIndex   int       `json:"toPhaseIndex" yaml:"toPhaseIndex"`
	TransitionedAt time.Time `json:"transitionedAt" yaml:"transitionedAt"`
}

// Document is a full backup of the store plus the user's sort preference.
type Document struct {
	Format        string             `json:"format" yaml:"format"`
	Version       int                `json:"version" yaml:"version"`
	SchemaVersion int                `json:"schemaVersion" yaml:"schemaVersion"`
	ExportedAt    time.Time          `json:"exportedAt" yaml:"exportedAt"`
	SortBy        string             `json:"sortBy,omitempty" yaml:"sortBy,omitempty"`
	Tasks         []TaskRecord       `json:"tasks" yaml:"tasks"`
	Phases        []PhaseRecord      `json:"phases" yaml:"phases"`
	Transitions   []TransitionRecord `json:"transitions" yaml:"transitions"`
}

// Validate checks that the document is self-consistent. It never looks at
// what is already stored.
func (d Document) Validate() error {
	if d.Format != FormatTag {
		return invalid("not a didathing export (format %q)", d.Format)
	}
	if d.Version < 1 || d.Version > Version {
		return invalid("unsupported export version %d", d.Version)
	}

	tasks := make(map[int64]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if _, dup := tasks[t.ID]; dup {
			return invalid("task id %d appears twice", t.ID)
		}
		if strings.TrimSpace(t.Title) == "" {
			return invalid("task %d has no title", t.ID)
		}
		if t.CreatedAt.IsZero() {
			return invalid("task %d has no creation time", t.ID)
		}
		tasks[t.ID] = struct{}{}
	}

	phaseIndices := make(map[int64][]int, len(d.Tasks))
	for _, p := range d.Phases {
		if _, ok := tasks[p.TaskID]; !ok {
			return invalid("phase %d references unknown task %d", p.ID, p.TaskID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return invalid("phase %d has no name", p.ID)
		}
		if p.DurationDays != nil && *p.DurationDays < 0 {
			return invalid("phase %d has a negative duration", p.ID)
		}
		phaseIndices[p.TaskID] = append(phaseIndices[p.TaskID], p.Index)
	}
	for _, t := range d.Tasks {
		if len(phaseIndices[t.ID]) == 0 {
			return invalid("task %d has no phases", t.ID)
		}
	}
	for taskID, indices := range phaseIndices {
		sort.Ints(indices)
		for want, got := range indices {
			if got != want {
				return invalid("task %d phases must be numbered 0..%d without gaps or repeats", taskID, len(indices)-1)
			}
		}
	}

	for _, tr := range d.Transitions {
		if _, ok := tasks[tr.TaskID]; !ok {
			return invalid("transition %d references unknown task %d", tr.ID, tr.TaskID)
		}
		if tr.TransitionedAt.IsZero() {
			return invalid("transition %d has no time", tr.ID)
		}
		n := len(phaseIndices[tr.TaskID])
		if tr.FromPhaseIndex < 0 || tr.FromPhaseIndex >= n || tr.ToPhaseIndex < 0 || tr.ToPhaseIndex >= n {
			return invalid("transition %d moves %d -> %d outside phases [0, %d)", tr.ID, tr.FromPhaseIndex, tr.ToPhaseIndex, n)
		}
	}
	return nil
}

// PointerFor derives the imported task's position from the document's
// transitions, never from the exported cached fields. The latest transition
// wins; equal times go to the higher id. A task with no history sits at
// phase 0 since its creation.
func (d Document) PointerFor(task TaskRecord) (index int, since time.Time) {
	var latest TransitionRecord
	found := false
	for _, tr := range d.Transitions {
		if tr.TaskID != task.ID {
			continue
		}
		if !found || tr.TransitionedAt.After(latest.TransitionedAt) ||
			(tr.TransitionedAt.Equal(latest.TransitionedAt) && tr.ID > latest.ID) {
			latest = tr
			found = true
		}
	}
	if !found {
		return 0, task.CreatedAt
	}
	return latest.ToPhaseIndex, latest.TransitionedAt
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("invalid export: "+format+": %w", append(args, apperrors.ErrInvalidInput)...)
}
