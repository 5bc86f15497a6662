package in

import (
	"context"

	prefsdto "didathing/internal/modules/preferences/dto"
	prefsin "didathing/internal/modules/preferences/port/in"
)

type CLIHandler struct {
	usecase prefsin.Usecase
}

func NewCLIHandler(usecase prefsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Get(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	return h.usecase.Get(ctx)
}

// Set changes the values that are non-empty.
func (h CLIHandler) Set(ctx context.Context, sortBy, theme string) (prefsdto.PreferencesOutput, error) {
	input := prefsdto.UpdateInput{}
	if sortBy != "" {
		input.SortBy = &sortBy
	}
	if theme != "" {
		input.Theme = &theme
	}
	return h.usecase.Update(ctx, input)
}

func (h CLIHandler) ToggleSort(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	return h.usecase.ToggleSort(ctx)
}

func (h CLIHandler) ToggleTheme(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	return h.usecase.ToggleTheme(ctx)
}
