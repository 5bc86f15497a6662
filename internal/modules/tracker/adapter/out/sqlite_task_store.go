package out

import (
	"context"

	"didathing/internal/modules/tracker/domain"
	trackerout "didathing/internal/modules/tracker/port/out"
	"didathing/internal/platform/store"
)

type SQLiteTaskStore struct {
	tasks *store.Collection[domain.Task]
}

func NewSQLiteTaskStore(db *store.DB) (trackerout.TaskStore, error) {
	tasks, err := store.NewCollection(db, store.Tasks, taskMapper)
	if err != nil {
		return nil, err
	}
	return &SQLiteTaskStore{tasks: tasks}, nil
}

var taskMapper = store.Mapper[domain.Task]{
	Columns: []string{"title", "current_phase_index", "current_phase_since", "created_at", "updated_at"},
	Values: func(t domain.Task) []any {
		return []any{t.Title, t.CurrentPhaseIndex, store.Millis(t.CurrentPhaseSince), store.Millis(t.CreatedAt), store.Millis(t.UpdatedAt)}
	},
	Scan: func(row store.Scanner) (domain.Task, error) {
		var (
			t                       domain.Task
			since, created, updated int64
		)
		if err := row.Scan(&t.ID, &t.Title, &t.CurrentPhaseIndex, &since, &created, &updated); err != nil {
			return domain.Task{}, err
		}
		t.CurrentPhaseSince = store.FromMillis(since)
		t.CreatedAt = store.FromMillis(created)
		t.UpdatedAt = store.FromMillis(updated)
		return t, nil
	},
	Key:     func(t domain.Task) int64 { return t.ID },
	WithKey: func(t domain.Task, id int64) domain.Task { t.ID = id; return t },
}

func (s *SQLiteTaskStore) Add(ctx context.Context, task domain.Task) (domain.Task, error) {
	return s.tasks.Add(ctx, task)
}

func (s *SQLiteTaskStore) Get(ctx context.Context, id int64) (domain.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *SQLiteTaskStore) List(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.GetAll(ctx)
}

func (s *SQLiteTaskStore) Put(ctx context.Context, task domain.Task) error {
	return s.tasks.Put(ctx, task)
}

func (s *SQLiteTaskStore) Delete(ctx context.Context, id int64) error {
	return s.tasks.Delete(ctx, id)
}
