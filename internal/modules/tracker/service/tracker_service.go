package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"didathing/internal/modules/tracker/domain"
	trackerout "didathing/internal/modules/tracker/port/out"
	"didathing/internal/platform/clock"
	apperrors "didathing/internal/platform/errors"
	"didathing/internal/platform/tx"
)

var (
	scopeTasks       = []string{trackerout.CollectionTasks}
	scopeTaskPhases  = []string{trackerout.CollectionTasks, trackerout.CollectionPhases}
	scopeTaskHistory = []string{trackerout.CollectionTasks, trackerout.CollectionTransitions}
	scopeAll         = []string{trackerout.CollectionTasks, trackerout.CollectionPhases, trackerout.CollectionTransitions}
)

type TrackerService struct {
	clock       clock.Clock
	tx          tx.Manager
	tasks       trackerout.TaskStore
	phases      trackerout.PhaseStore
	transitions trackerout.TransitionStore
	logger      hclog.Logger
}

func NewTrackerService(clock clock.Clock, txm tx.Manager, tasks trackerout.TaskStore, phases trackerout.PhaseStore, transitions trackerout.TransitionStore, logger hclog.Logger) *TrackerService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &TrackerService{
		clock:       clock,
		tx:          txm,
		tasks:       tasks,
		phases:      phases,
		transitions: transitions,
		logger:      logger.Named("tracker"),
	}
}

// CreateTask stores a task positioned at phase 0 together with its phases.
func (s *TrackerService) CreateTask(ctx context.Context, title string, kind domain.Kind, specs []domain.PhaseSpec) (domain.Task, []domain.Phase, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return domain.Task{}, nil, err
	}
	_, specs, err := domain.ResolvePhases(kind, specs)
	if err != nil {
		return domain.Task{}, nil, err
	}

	now := s.clock.Now()
	var task domain.Task
	phases := make([]domain.Phase, 0, len(specs))
	err = s.tx.Within(ctx, scopeTaskPhases, func(ctx context.Context) error {
		created, err := s.tasks.Add(ctx, domain.Task{
			Title:             strings.TrimSpace(title),
			CurrentPhaseIndex: 0,
			CurrentPhaseSince: now,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		if err != nil {
			return err
		}
		task = created
		for i, spec := range specs {
			phase, err := s.phases.Add(ctx, domain.Phase{TaskID: task.ID, Index: i, Name: spec.Name, DurationDays: spec.DurationDays})
			if err != nil {
				return err
			}
			phases = append(phases, phase)
		}
		return nil
	})
	if err != nil {
		return domain.Task{}, nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Debug("task created", "task_id", task.ID, "phases", len(phases))
	return task, phases, nil
}

func (s *TrackerService) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *TrackerService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.List(ctx)
}

// Summary reads a task with its phases and latest transition.
func (s *TrackerService) Summary(ctx context.Context, id int64) (domain.Summary, error) {
	var summary domain.Summary
	err := s.tx.Within(ctx, scopeAll, func(ctx context.Context) error {
		task, err := s.tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		summary, err = s.summarize(ctx, task)
		return err
	})
	return summary, err
}

// Summaries lists every task enriched for display, in the given order.
func (s *TrackerService) Summaries(ctx context.Context, order domain.SortOrder) ([]domain.Summary, error) {
	out := make([]domain.Summary, 0)
	err := s.tx.Within(ctx, scopeAll, func(ctx context.Context) error {
		tasks, err := s.tasks.List(ctx)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			summary, err := s.summarize(ctx, task)
			if err != nil {
				return err
			}
			out = append(out, summary)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	domain.SortSummaries(out, order)
	return out, nil
}

func (s *TrackerService) summarize(ctx context.Context, task domain.Task) (domain.Summary, error) {
	phases, err := s.phases.ListByTask(ctx, task.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	history, err := s.transitions.ListByTask(ctx, task.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	summary := domain.Summary{Task: task, Phases: phases}
	if latest, ok := domain.LatestTransition(history); ok {
		summary.LastTransition = &latest
	}
	return summary, nil
}

// TaskPatch holds the fields UpdateTask may change. Nil fields are kept.
type TaskPatch struct {
	Title             *string
	CurrentPhaseIndex *int
	CurrentPhaseSince *time.Time
}

func (s *TrackerService) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (domain.Task, error) {
	if patch.Title != nil {
		if err := domain.ValidateTitle(*patch.Title); err != nil {
			return domain.Task{}, err
		}
	}
	var task domain.Task
	err := s.tx.Within(ctx, scopeTaskPhases, func(ctx context.Context) error {
		current, err := s.tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			current.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.CurrentPhaseIndex != nil {
			phases, err := s.phases.ListByTask(ctx, id)
			if err != nil {
				return err
			}
			if err := domain.ValidatePhaseIndex(*patch.CurrentPhaseIndex, len(phases)); err != nil {
				return err
			}
			current.CurrentPhaseIndex = *patch.CurrentPhaseIndex
		}
		if patch.CurrentPhaseSince != nil {
			current.CurrentPhaseSince = *patch.CurrentPhaseSince
		}
		current.UpdatedAt = s.clock.Now()
		if err := s.tasks.Put(ctx, current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

// DeleteTask removes a task with every phase and transition it owns. A
// missing task is not an error.
func (s *TrackerService) DeleteTask(ctx context.Context, id int64) error {
	err := s.tx.Within(ctx, scopeAll, func(ctx context.Context) error {
		phases, err := s.phases.ListByTask(ctx, id)
		if err != nil {
			return err
		}
		for _, phase := range phases {
			if err := s.phases.Delete(ctx, phase.ID); err != nil {
				return err
			}
		}
		history, err := s.transitions.ListByTask(ctx, id)
		if err != nil {
			return err
		}
		for _, transition := range history {
			if err := s.transitions.Delete(ctx, transition.ID); err != nil {
				return err
			}
		}
		return s.tasks.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Debug("task deleted", "task_id", id)
	return nil
}

// CreatePhase appends or inserts a phase. Indices stay unique and contiguous
// per task: index must be the next free position.
func (s *TrackerService) CreatePhase(ctx context.Context, taskID int64, index *int, name string, durationDays *int) (domain.Phase, error) {
	spec := domain.PhaseSpec{Name: name, DurationDays: durationDays}
	if err := spec.Validate(); err != nil {
		return domain.Phase{}, err
	}
	var phase domain.Phase
	err := s.tx.Within(ctx, scopeTaskPhases, func(ctx context.Context) error {
		task, err := s.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		existing, err := s.phases.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		next := len(existing)
		if index != nil {
			next = *index
		}
		dupes, err := s.phases.FindByTaskIndex(ctx, taskID, next)
		if err != nil {
			return err
		}
		if len(dupes) > 0 {
			return fmt.Errorf("task %d already has a phase at index %d: %w", taskID, next, apperrors.ErrInvalidInput)
		}
		if next != len(existing) {
			return fmt.Errorf("phase index %d would leave a gap, next index is %d: %w", next, len(existing), apperrors.ErrInvalidInput)
		}
		phase, err = s.phases.Add(ctx, domain.Phase{TaskID: taskID, Index: next, Name: spec.Name, DurationDays: durationDays})
		if err != nil {
			return err
		}
		task.UpdatedAt = s.clock.Now()
		return s.tasks.Put(ctx, task)
	})
	if err != nil {
		return domain.Phase{}, fmt.Errorf("create phase: %w", err)
	}
	return phase, nil
}

func (s *TrackerService) PhasesForTask(ctx context.Context, taskID int64) ([]domain.Phase, error) {
	return s.phases.ListByTask(ctx, taskID)
}

// Advance moves a task one step around its ring and logs the move. The
// transition and the pointer update commit together.
func (s *TrackerService) Advance(ctx context.Context, taskID int64) (domain.Transition, domain.Task, error) {
	var (
		transition domain.Transition
		task       domain.Task
	)
	err := s.tx.Within(ctx, scopeAll, func(ctx context.Context) error {
		current, err := s.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		phases, err := s.phases.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		to := domain.NextPhaseIndex(current.CurrentPhaseIndex, len(phases))
		transition, err = s.transitions.Add(ctx, domain.Transition{
			TaskID:         taskID,
			FromPhaseIndex: current.CurrentPhaseIndex,
			ToPhaseIndex:   to,
			TransitionedAt: now,
		})
		if err != nil {
			return err
		}
		current = current.WithPointer(domain.Pointer{Index: to, Since: now})
		current.UpdatedAt = now
		if err := s.tasks.Put(ctx, current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return domain.Transition{}, domain.Task{}, fmt.Errorf("advance task %d: %w", taskID, err)
	}
	s.logger.Debug("task advanced", "task_id", taskID, "from", transition.FromPhaseIndex, "to", transition.ToPhaseIndex)
	return transition, task, nil
}

// CreateTransition logs a manual, possibly backdated, transition. It leaves
// the cached pointer alone; callers recompute afterwards.
func (s *TrackerService) CreateTransition(ctx context.Context, taskID int64, from, to int, at time.Time) (domain.Transition, error) {
	if at.IsZero() {
		return domain.Transition{}, fmt.Errorf("transition time is required: %w", apperrors.ErrInvalidInput)
	}
	var transition domain.Transition
	err := s.tx.Within(ctx, scopeAll, func(ctx context.Context) error {
		if _, err := s.tasks.Get(ctx, taskID); err != nil {
			return err
		}
		phases, err := s.phases.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := domain.ValidatePhaseIndex(from, len(phases)); err != nil {
			return err
		}
		if err := domain.ValidatePhaseIndex(to, len(phases)); err != nil {
			return err
		}
		transition, err = s.transitions.Add(ctx, domain.Transition{
			TaskID:         taskID,
			FromPhaseIndex: from,
			ToPhaseIndex:   to,
			TransitionedAt: at.UTC().Truncate(time.Millisecond),
		})
		return err
	})
	if err != nil {
		return domain.Transition{}, fmt.Errorf("create transition: %w", err)
	}
	return transition, nil
}

// TransitionsForTask returns the task's history newest first.
func (s *TrackerService) TransitionsForTask(ctx context.Context, taskID int64) ([]domain.Transition, error) {
	history, err := s.transitions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		a, b := history[i], history[j]
		if !a.TransitionedAt.Equal(b.TransitionedAt) {
			return a.TransitionedAt.After(b.TransitionedAt)
		}
		return a.ID > b.ID
	})
	return history, nil
}

// DeleteTransition removes one log entry and reports the task it belonged
// to. Deleting a missing transition succeeds with found=false.
func (s *TrackerService) DeleteTransition(ctx context.Context, id int64) (domain.Transition, bool, error) {
	var (
		deleted domain.Transition
		found   bool
	)
	err := s.tx.Within(ctx, []string{trackerout.CollectionTransitions}, func(ctx context.Context) error {
		transition, err := s.transitions.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := s.transitions.Delete(ctx, id); err != nil {
			return err
		}
		deleted, found = transition, true
		return nil
	})
	if err != nil {
		return domain.Transition{}, false, fmt.Errorf("delete transition %d: %w", id, err)
	}
	return deleted, found, nil
}

// Recompute rebuilds the cached pointer of a task from its transition log.
func (s *TrackerService) Recompute(ctx context.Context, taskID int64) (domain.Task, error) {
	var task domain.Task
	err := s.tx.Within(ctx, scopeTaskHistory, func(ctx context.Context) error {
		current, err := s.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		history, err := s.transitions.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		current = current.WithPointer(domain.RecomputePointer(current.CreatedAt, history))
		current.UpdatedAt = s.clock.Now()
		if err := s.tasks.Put(ctx, current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("recompute task %d: %w", taskID, err)
	}
	s.logger.Debug("pointer recomputed", "task_id", taskID, "index", task.CurrentPhaseIndex)
	return task, nil
}

// TitleExists reports whether another task already uses title, ignoring case
// and surrounding whitespace. excludeID skips the task being edited.
func (s *TrackerService) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	want := domain.NormalizeTitle(title)
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return false, err
	}
	for _, task := range tasks {
		if task.ID != excludeID && domain.NormalizeTitle(task.Title) == want {
			return true, nil
		}
	}
	return false, nil
}

// Drifts lists tasks whose cached pointer disagrees with their log.
func (s *TrackerService) Drifts(ctx context.Context) (int, []domain.Drift, error) {
	checked := 0
	drifts := make([]domain.Drift, 0)
	err := s.tx.Within(ctx, scopeTaskHistory, func(ctx context.Context) error {
		tasks, err := s.tasks.List(ctx)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			history, err := s.transitions.ListByTask(ctx, task.ID)
			if err != nil {
				return err
			}
			checked++
			expected := domain.RecomputePointer(task.CreatedAt, history)
			if !task.Pointer().Equal(expected) {
				drifts = append(drifts, domain.Drift{TaskID: task.ID, Title: task.Title, Cached: task.Pointer(), Expected: expected})
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("check pointers: %w", err)
	}
	if len(drifts) > 0 {
		s.logger.Warn("cached pointers out of date", "tasks", len(drifts))
	}
	return checked, drifts, nil
}
