package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "didathing/internal/platform/errors"
)

type SortOrder string

const (
	// SortRecent lists the least recently done tasks first. Tasks never
	// done sort before all others.
	SortRecent SortOrder = "recent"
	SortAlpha  SortOrder = "alpha"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortRecent:
		return SortRecent, nil
	case SortAlpha:
		return SortAlpha, nil
	default:
		return "", fmt.Errorf("unsupported sort order %q: %w", raw, apperrors.ErrInvalidInput)
	}
}

// Summary is a task with the data list screens show next to it.
type Summary struct {
	Task           Task
	Phases         []Phase
	LastTransition *Transition
}

func (s Summary) PhaseCount() int {
	return len(s.Phases)
}

func (s Summary) Kind() Kind {
	if len(s.Phases) > 1 {
		return KindCycle
	}
	return KindSingle
}

// CurrentPhaseName is empty when the pointer does not match a stored phase.
func (s Summary) CurrentPhaseName() string {
	for _, p := range s.Phases {
		if p.Index == s.Task.CurrentPhaseIndex {
			return p.Name
		}
	}
	return ""
}

// NextPhaseName is the phase an advance would move to.
func (s Summary) NextPhaseName() string {
	next := NextPhaseIndex(s.Task.CurrentPhaseIndex, len(s.Phases))
	for _, p := range s.Phases {
		if p.Index == next {
			return p.Name
		}
	}
	return ""
}

func (s Summary) lastDone() time.Time {
	if s.LastTransition == nil {
		return time.Time{}
	}
	return s.LastTransition.TransitionedAt
}

// SortSummaries orders items in place.
func SortSummaries(items []Summary, order SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order == SortRecent {
			ta, tb := a.lastDone(), b.lastDone()
			if !ta.Equal(tb) {
				return ta.Before(tb)
			}
		}
		ka, kb := strings.ToLower(a.Task.Title), strings.ToLower(b.Task.Title)
		if ka != kb {
			return ka < kb
		}
		return a.Task.ID < b.Task.ID
	})
}

// Drift is a task whose cached pointer disagrees with its transition log.
type Drift struct {
	TaskID   int64
	Title    string
	Cached   Pointer
	Expected Pointer
}
