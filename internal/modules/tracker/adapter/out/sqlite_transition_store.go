package out

import (
	"context"

	"didathing/internal/modules/tracker/domain"
	trackerout "didathing/internal/modules/tracker/port/out"
	"didathing/internal/platform/store"
)

type SQLiteTransitionStore struct {
	transitions *store.Collection[domain.Transition]
}

func NewSQLiteTransitionStore(db *store.DB) (trackerout.TransitionStore, error) {
	transitions, err := store.NewCollection(db, store.Transitions, transitionMapper)
	if err != nil {
		return nil, err
	}
	return &SQLiteTransitionStore{transitions: transitions}, nil
}

var transitionMapper = store.Mapper[domain.Transition]{
	Columns: []string{"task_id", "from_phase_index", "to_phase_index", "transitioned_at"},
	Values: func(t domain.Transition) []any {
		return []any{t.TaskID, t.FromPhaseIndex, t.ToPhaseIndex, store.Millis(t.TransitionedAt)}
	},
	Scan: func(row store.Scanner) (domain.Transition, error) {
		var (
			t  domain.Transition
			at int64
		)
		if err := row.Scan(&t.ID, &t.TaskID, &t.FromPhaseIndex, &t.ToPhaseIndex, &at); err != nil {
			return domain.Transition{}, err
		}
		t.TransitionedAt = store.FromMillis(at)
		return t, nil
	},
	Key:     func(t domain.Transition) int64 { return t.ID },
	WithKey: func(t domain.Transition, id int64) domain.Transition { t.ID = id; return t },
}

func (s *SQLiteTransitionStore) Add(ctx context.Context, transition domain.Transition) (domain.Transition, error) {
	return s.transitions.Add(ctx, transition)
}

func (s *SQLiteTransitionStore) Get(ctx context.Context, id int64) (domain.Transition, error) {
	return s.transitions.Get(ctx, id)
}

// ListByTask returns the task's transitions in insertion order.
func (s *SQLiteTransitionStore) ListByTask(ctx context.Context, taskID int64) ([]domain.Transition, error) {
	return s.transitions.GetAllByIndex(ctx, "taskId", taskID)
}

func (s *SQLiteTransitionStore) Delete(ctx context.Context, id int64) error {
	return s.transitions.Delete(ctx, id)
}
