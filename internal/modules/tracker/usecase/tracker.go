package usecase

import (
	"context"
	"fmt"

	"didathing/internal/modules/tracker/domain"
	trackerdto "didathing/internal/modules/tracker/dto"
	trackerin "didathing/internal/modules/tracker/port/in"
	"didathing/internal/modules/tracker/service"
	apperrors "didathing/internal/platform/errors"
)

type Interactor struct {
	svc *service.TrackerService
}

func NewInteractor(svc *service.TrackerService) trackerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) CreateTask(ctx context.Context, input trackerdto.CreateTaskInput) (trackerdto.CreateTaskOutput, error) {
	if !input.Force {
		exists, err := i.svc.TitleExists(ctx, input.Title, 0)
		if err != nil {
			return trackerdto.CreateTaskOutput{}, err
		}
		if exists {
			return trackerdto.CreateTaskOutput{}, fmt.Errorf("a task titled %q already exists: %w", input.Title, apperrors.ErrInvalidInput)
		}
	}
	specs := make([]domain.PhaseSpec, 0, len(input.Phases))
	for _, p := range input.Phases {
		specs = append(specs, domain.PhaseSpec{Name: p.Name, DurationDays: p.DurationDays})
	}
	task, phases, err := i.svc.CreateTask(ctx, input.Title, domain.Kind(input.Kind), specs)
	if err != nil {
		return trackerdto.CreateTaskOutput{}, err
	}
	summary := domain.Summary{Task: task, Phases: phases}
	return trackerdto.CreateTaskOutput{
		Task:   toTaskOutput(task),
		Kind:   string(summary.Kind()),
		Phases: toPhaseOutputs(phases),
	}, nil
}

func (i *Interactor) GetTask(ctx context.Context, id int64) (trackerdto.TaskDetailOutput, error) {
	summary, err := i.svc.Summary(ctx, id)
	if err != nil {
		return trackerdto.TaskDetailOutput{}, err
	}
	history, err := i.svc.TransitionsForTask(ctx, id)
	if err != nil {
		return trackerdto.TaskDetailOutput{}, err
	}
	return trackerdto.TaskDetailOutput{
		Task:             toTaskOutput(summary.Task),
		Kind:             string(summary.Kind()),
		Phases:           toPhaseOutputs(summary.Phases),
		CurrentPhaseName: summary.CurrentPhaseName(),
		NextPhaseName:    summary.NextPhaseName(),
		Transitions:      toTransitionOutputs(history),
	}, nil
}

func (i *Interactor) ListTasks(ctx context.Context, input trackerdto.ListTasksInput) ([]trackerdto.TaskSummaryOutput, error) {
	order, err := domain.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, err
	}
	summaries, err := i.svc.Summaries(ctx, order)
	if err != nil {
		return nil, err
	}
	out := make([]trackerdto.TaskSummaryOutput, 0, len(summaries))
	for _, s := range summaries {
		names := make([]string, 0, len(s.Phases))
		for _, p := range s.Phases {
			names = append(names, p.Name)
		}
		item := trackerdto.TaskSummaryOutput{
			Task:             toTaskOutput(s.Task),
			Kind:             string(s.Kind()),
			PhaseNames:       names,
			CurrentPhaseName: s.CurrentPhaseName(),
			NextPhaseName:    s.NextPhaseName(),
		}
		if s.LastTransition != nil {
			last := toTransitionOutput(*s.LastTransition)
			item.LastTransition = &last
		}
		out = append(out, item)
	}
	return out, nil
}

func (i *Interactor) UpdateTask(ctx context.Context, input trackerdto.UpdateTaskInput) (trackerdto.TaskOutput, error) {
	if input.Title != nil {
		exists, err := i.svc.TitleExists(ctx, *input.Title, input.ID)
		if err != nil {
			return trackerdto.TaskOutput{}, err
		}
		if exists {
			return trackerdto.TaskOutput{}, fmt.Errorf("a task titled %q already exists: %w", *input.Title, apperrors.ErrInvalidInput)
		}
	}
	task, err := i.svc.UpdateTask(ctx, input.ID, service.TaskPatch{
		Title:             input.Title,
		CurrentPhaseIndex: input.CurrentPhaseIndex,
		CurrentPhaseSince: input.CurrentPhaseSince,
	})
	if err != nil {
		return trackerdto.TaskOutput{}, err
	}
	return toTaskOutput(task), nil
}

func (i *Interactor) DeleteTask(ctx context.Context, id int64) error {
	return i.svc.DeleteTask(ctx, id)
}

func (i *Interactor) CreatePhase(ctx context.Context, input trackerdto.CreatePhaseInput) (trackerdto.PhaseOutput, error) {
	phase, err := i.svc.CreatePhase(ctx, input.TaskID, input.Index, input.Name, input.DurationDays)
	if err != nil {
		return trackerdto.PhaseOutput{}, err
	}
	return toPhaseOutput(phase), nil
}

func (i *Interactor) PhasesForTask(ctx context.Context, taskID int64) ([]trackerdto.PhaseOutput, error) {
	phases, err := i.svc.PhasesForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toPhaseOutputs(phases), nil
}

func (i *Interactor) Advance(ctx context.Context, taskID int64) (trackerdto.TransitionOutcome, error) {
	transition, task, err := i.svc.Advance(ctx, taskID)
	if err != nil {
		return trackerdto.TransitionOutcome{}, err
	}
	return trackerdto.TransitionOutcome{Transition: toTransitionOutput(transition), Task: toTaskOutput(task)}, nil
}

// CreateTransition logs a manual entry and then restores the pointer. The
// two steps are separate units; a crash in between leaves a stale pointer
// that Doctor repairs.
func (i *Interactor) CreateTransition(ctx context.Context, input trackerdto.CreateTransitionInput) (trackerdto.TransitionOutcome, error) {
	transition, err := i.svc.CreateTransition(ctx, input.TaskID, input.FromPhaseIndex, input.ToPhaseIndex, input.TransitionedAt)
	if err != nil {
		return trackerdto.TransitionOutcome{}, err
	}
	task, err := i.svc.Recompute(ctx, input.TaskID)
	if err != nil {
		return trackerdto.TransitionOutcome{}, err
	}
	return trackerdto.TransitionOutcome{Transition: toTransitionOutput(transition), Task: toTaskOutput(task)}, nil
}

func (i *Interactor) TransitionsForTask(ctx context.Context, taskID int64) ([]trackerdto.TransitionOutput, error) {
	history, err := i.svc.TransitionsForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toTransitionOutputs(history), nil
}

func (i *Interactor) DeleteTransition(ctx context.Context, id int64) (trackerdto.DeleteTransitionOutput, error) {
	deleted, found, err := i.svc.DeleteTransition(ctx, id)
	if err != nil {
		return trackerdto.DeleteTransitionOutput{}, err
	}
	out := trackerdto.DeleteTransitionOutput{TransitionID: id, Deleted: found}
	if !found {
		return out, nil
	}
	task, err := i.svc.Recompute(ctx, deleted.TaskID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// The owning task is already gone; there is no pointer to fix.
			return out, nil
		}
		return trackerdto.DeleteTransitionOutput{}, err
	}
	taskOut := toTaskOutput(task)
	out.Task = &taskOut
	return out, nil
}

func (i *Interactor) Recompute(ctx context.Context, taskID int64) (trackerdto.TaskOutput, error) {
	task, err := i.svc.Recompute(ctx, taskID)
	if err != nil {
		return trackerdto.TaskOutput{}, err
	}
	return toTaskOutput(task), nil
}

func (i *Interactor) TitleExists(ctx context.Context, input trackerdto.TitleExistsInput) (bool, error) {
	return i.svc.TitleExists(ctx, input.Title, input.ExcludeID)
}

func (i *Interactor) Doctor(ctx context.Context, input trackerdto.DoctorInput) (trackerdto.DoctorOutput, error) {
	checked, drifts, err := i.svc.Drifts(ctx)
	if err != nil {
		return trackerdto.DoctorOutput{}, err
	}
	out := trackerdto.DoctorOutput{Checked: checked, Drifts: make([]trackerdto.DriftOutput, 0, len(drifts))}
	for _, d := range drifts {
		out.Drifts = append(out.Drifts, trackerdto.DriftOutput{
			TaskID:        d.TaskID,
			Title:         d.Title,
			CachedIndex:   d.Cached.Index,
			CachedSince:   d.Cached.Since,
			ExpectedIndex: d.Expected.Index,
			ExpectedSince: d.Expected.Since,
		})
	}
	if !input.Repair || len(drifts) == 0 {
		return out, nil
	}
	for _, d := range drifts {
		if _, err := i.svc.Recompute(ctx, d.TaskID); err != nil {
			return trackerdto.DoctorOutput{}, err
		}
	}
	out.Repaired = true
	return out, nil
}

func (i *Interactor) ParsePhases(specs []string) ([]trackerdto.PhaseInput, error) {
	phases := make([]trackerdto.PhaseInput, 0, len(specs))
	for _, raw := range specs {
		spec, err := domain.ParsePhaseSpec(raw)
		if err != nil {
			return nil, err
		}
		phases = append(phases, trackerdto.PhaseInput{Name: spec.Name, DurationDays: spec.DurationDays})
	}
	return phases, nil
}

func toTaskOutput(task domain.Task) trackerdto.TaskOutput {
	return trackerdto.TaskOutput{
		ID:                task.ID,
		Title:             task.Title,
		CurrentPhaseIndex: task.CurrentPhaseIndex,
		CurrentPhaseSince: task.CurrentPhaseSince,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

func toPhaseOutput(phase domain.Phase) trackerdto.PhaseOutput {
	return trackerdto.PhaseOutput{
		ID:           phase.ID,
		TaskID:       phase.TaskID,
		Index:        phase.Index,
		Name:         phase.Name,
		DurationDays: phase.DurationDays,
	}
}

func toPhaseOutputs(phases []domain.Phase) []trackerdto.PhaseOutput {
	out := make([]trackerdto.PhaseOutput, 0, len(phases))
	for _, p := range phases {
		out = append(out, toPhaseOutput(p))
	}
	return out
}

func toTransitionOutput(t domain.Transition) trackerdto.TransitionOutput {
	return trackerdto.TransitionOutput{
		ID:             t.ID,
		TaskID:         t.TaskID,
		FromPhaseIndex: t.FromPhaseIndex,
		ToPhaseIndex:   t.ToPhaseIndex,
		TransitionedAt: t.TransitionedAt,
	}
}

func toTransitionOutputs(history []domain.Transition) []trackerdto.TransitionOutput {
	out := make([]trackerdto.TransitionOutput, 0, len(history))
	for _, t := range history {
		out = append(out, toTransitionOutput(t))
	}
	return out
}
