package in

import (
	"context"

	"didathing/internal/modules/backup/dto"
)

type Usecase interface {
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
	Wipe(ctx context.Context) error
}
