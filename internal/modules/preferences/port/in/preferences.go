package in

import (
	"context"

	"didathing/internal/modules/preferences/dto"
)

type Usecase interface {
	Get(ctx context.Context) (dto.PreferencesOutput, error)
	Update(ctx context.Context, input dto.UpdateInput) (dto.PreferencesOutput, error)
	ToggleSort(ctx context.Context) (dto.PreferencesOutput, error)
	ToggleTheme(ctx context.Context) (dto.PreferencesOutput, error)
	Reset(ctx context.Context) error
}
