package out

import (
	"context"
	"database/sql"
	"sort"

	"didathing/internal/modules/tracker/domain"
	trackerout "didathing/internal/modules/tracker/port/out"
	"didathing/internal/platform/store"
)

type SQLitePhaseStore struct {
	phases *store.Collection[domain.Phase]
}

func NewSQLitePhaseStore(db *store.DB) (trackerout.PhaseStore, error) {
	phases, err := store.NewCollection(db, store.Phases, phaseMapper)
	if err != nil {
		return nil, err
	}
	return &SQLitePhaseStore{phases: phases}, nil
}

var phaseMapper = store.Mapper[domain.Phase]{
	Columns: []string{"task_id", "idx", "name", "duration_days"},
	Values: func(p domain.Phase) []any {
		days := sql.NullInt64{}
		if p.DurationDays != nil {
			days = sql.NullInt64{Int64: int64(*p.DurationDays), Valid: true}
		}
		return []any{p.TaskID, p.Index, p.Name, days}
	},
	Scan: func(row store.Scanner) (domain.Phase, error) {
		var (
			p    domain.Phase
			days sql.NullInt64
		)
		if err := row.Scan(&p.ID, &p.TaskID, &p.Index, &p.Name, &days); err != nil {
			return domain.Phase{}, err
		}
		if days.Valid {
			n := int(days.Int64)
			p.DurationDays = &n
		}
		return p, nil
	},
	Key:     func(p domain.Phase) int64 { return p.ID },
	WithKey: func(p domain.Phase, id int64) domain.Phase { p.ID = id; return p },
}

func (s *SQLitePhaseStore) Add(ctx context.Context, phase domain.Phase) (domain.Phase, error) {
	return s.phases.Add(ctx, phase)
}

func (s *SQLitePhaseStore) ListByTask(ctx context.Context, taskID int64) ([]domain.Phase, error) {
	phases, err := s.phases.GetAllByIndex(ctx, "taskId", taskID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Index < phases[j].Index })
	return phases, nil
}

func (s *SQLitePhaseStore) FindByTaskIndex(ctx context.Context, taskID int64, index int) ([]domain.Phase, error) {
	return s.phases.GetAllByIndex(ctx, "taskId_index", taskID, index)
}

func (s *SQLitePhaseStore) Delete(ctx context.Context, id int64) error {
	return s.phases.Delete(ctx, id)
}
