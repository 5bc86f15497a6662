package in

import (
	"context"

	backupdto "didathing/internal/modules/backup/dto"
	backupin "didathing/internal/modules/backup/port/in"
)

type CLIHandler struct {
	usecase backupin.Usecase
}

func NewCLIHandler(usecase backupin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Export(ctx context.Context, format string) (backupdto.ExportOutput, error) {
	return h.usecase.Export(ctx, backupdto.ExportInput{Format: format})
}

func (h CLIHandler) Import(ctx context.Context, payload []byte) (backupdto.ImportOutput, error) {
	return h.usecase.Import(ctx, backupdto.ImportInput{Payload: payload})
}

func (h CLIHandler) Wipe(ctx context.Context) error {
	return h.usecase.Wipe(ctx)
}
