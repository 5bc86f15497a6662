package usecase

import (
	"context"

	"didathing/internal/modules/backup/domain"
	backupdto "didathing/internal/modules/backup/dto"
	backupin "didathing/internal/modules/backup/port/in"
	"didathing/internal/modules/backup/service"
)

type Interactor struct {
	svc *service.BackupService
}

func NewInteractor(svc *service.BackupService) backupin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Export(ctx context.Context, input backupdto.ExportInput) (backupdto.ExportOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return backupdto.ExportOutput{}, err
	}
	doc, err := i.svc.Export(ctx)
	if err != nil {
		return backupdto.ExportOutput{}, err
	}
	payload, err := domain.Encode(doc, enc)
	if err != nil {
		return backupdto.ExportOutput{}, err
	}
	return backupdto.ExportOutput{
		Format:      string(enc),
		Payload:     payload,
		ExportedAt:  doc.ExportedAt,
		Tasks:       len(doc.Tasks),
		Phases:      len(doc.Phases),
		Transitions: len(doc.Transitions),
	}, nil
}

func (i *Interactor) Import(ctx context.Context, input backupdto.ImportInput) (backupdto.ImportOutput, error) {
	doc, err := domain.Decode(input.Payload)
	if err != nil {
		return backupdto.ImportOutput{}, err
	}
	result, err := i.svc.Import(ctx, doc)
	if err != nil {
		return backupdto.ImportOutput{}, err
	}
	return backupdto.ImportOutput{
		Tasks:       result.Tasks,
		Phases:      result.Phases,
		Transitions: result.Transitions,
		SortBy:      result.SortBy,
	}, nil
}

func (i *Interactor) Wipe(ctx context.Context) error {
	return i.svc.Wipe(ctx)
}
