package dto

import "time"

type PhaseInput struct {
	Name         string
	DurationDays *int
}

type CreateTaskInput struct {
	Title string
	// Kind is "single", "cycle" or empty to infer it from Phases.
	Kind   string
	Phases []PhaseInput
	// Force creates the task even when another task has the same title.
	Force bool
}

type TaskOutput struct {
	ID                int64
	Title             string
	CurrentPhaseIndex int
	CurrentPhaseSince time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PhaseOutput struct {
	ID           int64
	TaskID       int64
	Index        int
	Name         string
	DurationDays *int
}

type TransitionOutput struct {
	ID             int64
	TaskID         int64
	FromPhaseIndex int
	ToPhaseIndex   int
	TransitionedAt time.Time
}

type CreateTaskOutput struct {
	Task   TaskOutput
	Kind   string
	Phases []PhaseOutput
}

type TaskDetailOutput struct {
	Task             TaskOutput
	Kind             string
	Phases           []PhaseOutput
	CurrentPhaseName string
	NextPhaseName    string
	// Transitions are newest first.
	Transitions []TransitionOutput
}

type ListTasksInput struct {
	Sort string
}

type TaskSummaryOutput struct {
	Task             TaskOutput
	Kind             string
	PhaseNames       []string
	CurrentPhaseName string
	NextPhaseName    string
	LastTransition   *TransitionOutput
}

// UpdateTaskInput is a partial update: nil fields are left unchanged.
type UpdateTaskInput struct {
	ID                int64
	Title             *string
	CurrentPhaseIndex *int
	CurrentPhaseSince *time.Time
}

type CreatePhaseInput struct {
	TaskID int64
	// Index defaults to the position after the last phase.
	Index        *int
	Name         string
	DurationDays *int
}

type CreateTransitionInput struct {
	TaskID         int64
	FromPhaseIndex int
	ToPhaseIndex   int
	TransitionedAt time.Time
}

// TransitionOutcome is a history change together with the task's pointer
// after it.
type TransitionOutcome struct {
	Transition TransitionOutput
	Task       TaskOutput
}

type DeleteTransitionOutput struct {
	TransitionID int64
	// Deleted is false when the transition did not exist.
	Deleted bool
	Task    *TaskOutput
}

type TitleExistsInput struct {
	Title     string
	ExcludeID int64
}

type DoctorInput struct {
	Repair bool
}

type DriftOutput struct {
	TaskID        int64
	Title         string
	CachedIndex   int
	CachedSince   time.Time
	ExpectedIndex int
	ExpectedSince time.Time
}

type DoctorOutput struct {
	Checked  int
	Drifts   []DriftOutput
	Repaired bool
}
