package out

import (
	"context"

	"didathing/internal/modules/backup/domain"
	"didathing/internal/platform/store"
)

// Collections covered by a backup.
var Collections = []string{store.Tasks, store.Phases, store.Transitions}

// RecordStore reads and inserts raw records. Inserts assign fresh keys.
type RecordStore interface {
	Tasks(ctx context.Context) ([]domain.TaskRecord, error)
	Phases(ctx context.Context) ([]domain.PhaseRecord, error)
	Transitions(ctx context.Context) ([]domain.TransitionRecord, error)
	AddTask(ctx context.Context, task domain.TaskRecord) (int64, error)
	AddPhase(ctx context.Context, phase domain.PhaseRecord) (int64, error)
	AddTransition(ctx context.Context, transition domain.TransitionRecord) (int64, error)
}

// Destroyer irreversibly removes the store. The handle is released first.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

type PreferenceSource interface {
	SortBy(ctx context.Context) (string, error)
	SetSortBy(ctx context.Context, sortBy string) error
	Reset(ctx context.Context) error
}
