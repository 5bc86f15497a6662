package out

import (
	"context"

	"didathing/internal/modules/tracker/domain"
	"didathing/internal/platform/store"
)

// Collection names used to scope atomic units.
const (
	CollectionTasks       = store.Tasks
	CollectionPhases      = store.Phases
	CollectionTransitions = store.Transitions
)

type TaskStore interface {
	Add(ctx context.Context, task domain.Task) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Put(ctx context.Context, task domain.Task) error
	Delete(ctx context.Context, id int64) error
}

type PhaseStore interface {
	Add(ctx context.Context, phase domain.Phase) (domain.Phase, error)
	// ListByTask returns the task's phases ordered by index.
	ListByTask(ctx context.Context, taskID int64) ([]domain.Phase, error)
	FindByTaskIndex(ctx context.Context, taskID int64, index int) ([]domain.Phase, error)
	Delete(ctx context.Context, id int64) error
}

type TransitionStore interface {
	Add(ctx context.Context, transition domain.Transition) (domain.Transition, error)
	Get(ctx context.Context, id int64) (domain.Transition, error)
	ListByTask(ctx context.Context, taskID int64) ([]domain.Transition, error)
	Delete(ctx context.Context, id int64) error
}
