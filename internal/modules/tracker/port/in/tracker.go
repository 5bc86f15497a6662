package in

import (
	"context"

	"didathing/internal/modules/tracker/dto"
)

type Usecase interface {
	CreateTask(ctx context.Context, input dto.CreateTaskInput) (dto.CreateTaskOutput, error)
	GetTask(ctx context.Context, id int64) (dto.TaskDetailOutput, error)
	ListTasks(ctx context.Context, input dto.ListTasksInput) ([]dto.TaskSummaryOutput, error)
	UpdateTask(ctx context.Context, input dto.UpdateTaskInput) (dto.TaskOutput, error)
	DeleteTask(ctx context.Context, id int64) error
	CreatePhase(ctx context.Context, input dto.CreatePhaseInput) (dto.PhaseOutput, error)
	PhasesForTask(ctx context.Context, taskID int64) ([]dto.PhaseOutput, error)
	Advance(ctx context.Context, taskID int64) (dto.TransitionOutcome, error)
	CreateTransition(ctx context.Context, input dto.CreateTransitionInput) (dto.TransitionOutcome, error)
	TransitionsForTask(ctx context.Context, taskID int64) ([]dto.TransitionOutput, error)
	DeleteTransition(ctx context.Context, id int64) (dto.DeleteTransitionOutput, error)
	Recompute(ctx context.Context, taskID int64) (dto.TaskOutput, error)
	TitleExists(ctx context.Context, input dto.TitleExistsInput) (bool, error)
	Doctor(ctx context.Context, input dto.DoctorInput) (dto.DoctorOutput, error)
	// ParsePhases reads "name" or "name:days" phase specs in order.
	ParsePhases(specs []string) ([]dto.PhaseInput, error)
}
