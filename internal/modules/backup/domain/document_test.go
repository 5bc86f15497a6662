package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "didathing/internal/platform/errors"
)

func validDocument() Document {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Document{
		Format:  FormatTag,
		Version: Version,
		Tasks:   []TaskRecord{{ID: 1, Title: "Bread", CreatedAt: created}},
		Phases: []PhaseRecord{
			{ID: 1, TaskID: 1, Index: 0, Name: "Feed"},
			{ID: 2, TaskID: 1, Index: 1, Name: "Rise"},
			{ID: 3, TaskID: 1, Index: 2, Name: "Bake"},
		},
	}
}

func TestPointerForUsesLatestTransition(t *testing.T) {
	t.Parallel()
	doc := validDocument()
	task := doc.Tasks[0]

	index, since := doc.PointerFor(task)
	if index != 0 || !since.Equal(task.CreatedAt) {
		t.Fatalf("no history must sit at phase 0 since creation, got %d %v", index, since)
	}

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	doc.Transitions = []TransitionRecord{
		{ID: 7, TaskID: 1, FromPhaseIndex: 1, ToPhaseIndex: 2, TransitionedAt: at},
		{ID: 3, TaskID: 1, FromPhaseIndex: 0, ToPhaseIndex: 1, TransitionedAt: at},
		{ID: 9, TaskID: 1, FromPhaseIndex: 0, ToPhaseIndex: 1, TransitionedAt: at.Add(-time.Hour)},
		{ID: 10, TaskID: 2, FromPhaseIndex: 0, ToPhaseIndex: 0, TransitionedAt: at.Add(time.Hour)},
	}
	index, since = doc.PointerFor(task)
	if index != 2 || !since.Equal(at) {
		t.Fatalf("equal times must go to the higher id, got %d %v", index, since)
	}
}

func TestValidateRejectsTaskWithoutPhases(t *testing.T) {
	t.Parallel()
	doc := validDocument()
	if err := doc.Validate(); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	doc.Tasks = append(doc.Tasks, TaskRecord{ID: 2, Title: "Ghost", CreatedAt: doc.Tasks[0].CreatedAt})
	if err := doc.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for a task without phases, got %v", err)
	}
}

func TestValidateRejectsTransitionOutsideRing(t *testing.T) {
	t.Parallel()
	doc := validDocument()
	doc.Transitions = []TransitionRecord{
		{ID: 1, TaskID: 1, FromPhaseIndex: 2, ToPhaseIndex: 3, TransitionedAt: doc.Tasks[0].CreatedAt},
	}
	if err := doc.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	doc.Transitions[0].ToPhaseIndex = -1
	if err := doc.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
