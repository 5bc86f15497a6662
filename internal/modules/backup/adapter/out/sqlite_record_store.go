package out

import (
	"context"
	"database/sql"

	"didathing/internal/modules/backup/domain"
	backupout "didathing/internal/modules/backup/port/out"
	"didathing/internal/platform/store"
)

type SQLiteRecordStore struct {
	tasks       *store.Collection[domain.TaskRecord]
	phases      *store.Collection[domain.PhaseRecord]
	transitions *store.Collection[domain.TransitionRecord]
}

func NewSQLiteRecordStore(db *store.DB) (backupout.RecordStore, error) {
	tasks, err := store.NewCollection(db, store.Tasks, taskRecordMapper)
	if err != nil {
		return nil, err
	}
	phases, err := store.NewCollection(db, store.Phases, phaseRecordMapper)
	if err != nil {
		return nil, err
	}
	transitions, err := store.NewCollection(db, store.Transitions, transitionRecordMapper)
	if err != nil {
		return nil, err
	}
	return &SQLiteRecordStore{tasks: tasks, phases: phases, transitions: transitions}, nil
}

var taskRecordMapper = store.Mapper[domain.TaskRecord]{
	Columns: []string{"title", "current_phase_index", "current_phase_since", "created_at", "updated_at"},
	Values: func(t domain.TaskRecord) []any {
		return []any{t.Title, t.CurrentPhaseIndex, store.Millis(t.CurrentPhaseSince), store.Millis(t.CreatedAt), store.Millis(t.UpdatedAt)}
	},
	Scan: func(row store.Scanner) (domain.TaskRecord, error) {
		var (
			t                       domain.TaskRecord
			since, created, updated int64
		)
		if err := row.Scan(&t.ID, &t.Title, &t.CurrentPhaseIndex, &since, &created, &updated); err != nil {
			return domain.TaskRecord{}, err
		}
		t.CurrentPhaseSince = store.FromMillis(since)
		t.CreatedAt = store.FromMillis(created)
		t.UpdatedAt = store.FromMillis(updated)
		return t, nil
	},
	Key:     func(t domain.TaskRecord) int64 { return t.ID },
	WithKey: func(t domain.TaskRecord, id int64) domain.TaskRecord { t.ID = id; return t },
}

var phaseRecordMapper = store.Mapper[domain.PhaseRecord]{
	Columns: []string{"task_id", "idx", "name", "duration_days"},
	Values: func(p domain.PhaseRecord) []any {
		days := sql.NullInt64{}
		if p.DurationDays != nil {
			days = sql.NullInt64{Int64: int64(*p.DurationDays), Valid: true}
		}
		return []any{p.TaskID, p.Index, p.Name, days}
	},
	Scan: func(row store.Scanner) (domain.PhaseRecord, error) {
		var (
			p    domain.PhaseRecord
			days sql.NullInt64
		)
		if err := row.Scan(&p.ID, &p.TaskID, &p.Index, &p.Name, &days); err != nil {
			return domain.PhaseRecord{}, err
		}
		if days.Valid {
			n := int(days.Int64)
			p.DurationDays = &n
		}
		return p, nil
	},
	Key:     func(p domain.PhaseRecord) int64 { return p.ID },
	WithKey: func(p domain.PhaseRecord, id int64) domain.PhaseRecord { p.ID = id; return p },
}

var transitionRecordMapper = store.Mapper[domain.TransitionRecord]{
	Columns: []string{"task_id", "from_phase_index", "to_phase_index", "transitioned_at"},
	Values: func(t domain.TransitionRecord) []any {
		return []any{t.TaskID, t.FromPhaseIndex, t.ToPhaseIndex, store.Millis(t.TransitionedAt)}
	},
	Scan: func(row store.Scanner) (domain.TransitionRecord, error) {
		var (
			t  domain.TransitionRecord
			at int64
		)
		if err := row.Scan(&t.ID, &t.TaskID, &t.FromPhaseIndex, &t.ToPhaseIndex, &at); err != nil {
			return domain.TransitionRecord{}, err
		}
		t.TransitionedAt = store.FromMillis(at)
		return t, nil
	},
	Key:     func(t domain.TransitionRecord) int64 { return t.ID },
	WithKey: func(t domain.TransitionRecord, id int64) domain.TransitionRecord { t.ID = id; return t },
}

func (s *SQLiteRecordStore) Tasks(ctx context.Context) ([]domain.TaskRecord, error) {
	return s.tasks.GetAll(ctx)
}

func (s *SQLiteRecordStore) Phases(ctx context.Context) ([]domain.PhaseRecord, error) {
	return s.phases.GetAll(ctx)
}

func (s *SQLiteRecordStore) Transitions(ctx context.Context) ([]domain.TransitionRecord, error) {
	return s.transitions.GetAll(ctx)
}

func (s *SQLiteRecordStore) AddTask(ctx context.Context, task domain.TaskRecord) (int64, error) {
	added, err := s.tasks.Add(ctx, task)
	return added.ID, err
}

func (s *SQLiteRecordStore) AddPhase(ctx context.Context, phase domain.PhaseRecord) (int64, error) {
	added, err := s.phases.Add(ctx, phase)
	return added.ID, err
}

func (s *SQLiteRecordStore) AddTransition(ctx context.Context, transition domain.TransitionRecord) (int64, error) {
	added, err := s.transitions.Add(ctx, transition)
	return added.ID, err
}
