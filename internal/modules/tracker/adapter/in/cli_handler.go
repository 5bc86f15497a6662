package in

import (
	"context"
	"time"

	trackerdto "didathing/internal/modules/tracker/dto"
	trackerin "didathing/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreateTask(ctx context.Context, title, kind string, phases []trackerdto.PhaseInput, force bool) (trackerdto.CreateTaskOutput, error) {
	return h.usecase.CreateTask(ctx, trackerdto.CreateTaskInput{Title: title, Kind: kind, Phases: phases, Force: force})
}

func (h CLIHandler) ListTasks(ctx context.Context, sortBy string) ([]trackerdto.TaskSummaryOutput, error) {
	return h.usecase.ListTasks(ctx, trackerdto.ListTasksInput{Sort: sortBy})
}

func (h CLIHandler) GetTask(ctx context.Context, id int64) (trackerdto.TaskDetailOutput, error) {
	return h.usecase.GetTask(ctx, id)
}

func (h CLIHandler) RenameTask(ctx context.Context, id int64, title string) (trackerdto.TaskOutput, error) {
	return h.usecase.UpdateTask(ctx, trackerdto.UpdateTaskInput{ID: id, Title: &title})
}

func (h CLIHandler) DeleteTask(ctx context.Context, id int64) error {
	return h.usecase.DeleteTask(ctx, id)
}

func (h CLIHandler) AddPhase(ctx context.Context, taskID int64, name string, durationDays *int) (trackerdto.PhaseOutput, error) {
	return h.usecase.CreatePhase(ctx, trackerdto.CreatePhaseInput{TaskID: taskID, Name: name, DurationDays: durationDays})
}

func (h CLIHandler) Advance(ctx context.Context, taskID int64) (trackerdto.TransitionOutcome, error) {
	return h.usecase.Advance(ctx, taskID)
}

func (h CLIHandler) AddHistory(ctx context.Context, taskID int64, from, to int, at time.Time) (trackerdto.TransitionOutcome, error) {
	return h.usecase.CreateTransition(ctx, trackerdto.CreateTransitionInput{
		TaskID:         taskID,
		FromPhaseIndex: from,
		ToPhaseIndex:   to,
		TransitionedAt: at,
	})
}

func (h CLIHandler) DeleteHistory(ctx context.Context, transitionID int64) (trackerdto.DeleteTransitionOutput, error) {
	return h.usecase.DeleteTransition(ctx, transitionID)
}

func (h CLIHandler) Recompute(ctx context.Context, taskID int64) (trackerdto.TaskOutput, error) {
	return h.usecase.Recompute(ctx, taskID)
}

func (h CLIHandler) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	return h.usecase.TitleExists(ctx, trackerdto.TitleExistsInput{Title: title, ExcludeID: excludeID})
}

func (h CLIHandler) Doctor(ctx context.Context, repair bool) (trackerdto.DoctorOutput, error) {
	return h.usecase.Doctor(ctx, trackerdto.DoctorInput{Repair: repair})
}

func (h CLIHandler) ParsePhases(specs []string) ([]trackerdto.PhaseInput, error) {
	return h.usecase.ParsePhases(specs)
}
