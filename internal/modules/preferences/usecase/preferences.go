package usecase

import (
	"context"

	"didathing/internal/modules/preferences/domain"
	prefsdto "didathing/internal/modules/preferences/dto"
	prefsin "didathing/internal/modules/preferences/port/in"
	"didathing/internal/modules/preferences/service"
)

type Interactor struct {
	svc *service.PreferencesService
}

func NewInteractor(svc *service.PreferencesService) prefsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Get(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	prefs, err := i.svc.Get(ctx)
	if err != nil {
		return prefsdto.PreferencesOutput{}, err
	}
	return toOutput(prefs), nil
}

func (i *Interactor) Update(ctx context.Context, input prefsdto.UpdateInput) (prefsdto.PreferencesOutput, error) {
	prefs, err := i.svc.Modify(ctx, func(p domain.Preferences) (domain.Preferences, error) {
		if input.SortBy != nil {
			sortBy, err := domain.ParseSortBy(*input.SortBy)
			if err != nil {
				return p, err
			}
			p.SortBy = sortBy
		}
		if input.Theme != nil {
			theme, err := domain.ParseTheme(*input.Theme)
			if err != nil {
				return p, err
			}
			p.Theme = theme
		}
		return p, nil
	})
	if err != nil {
		return prefsdto.PreferencesOutput{}, err
	}
	return toOutput(prefs), nil
}

func (i *Interactor) ToggleSort(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	prefs, err := i.svc.Modify(ctx, func(p domain.Preferences) (domain.Preferences, error) {
		p.SortBy = p.SortBy.Toggle()
		return p, nil
	})
	if err != nil {
		return prefsdto.PreferencesOutput{}, err
	}
	return toOutput(prefs), nil
}

func (i *Interactor) ToggleTheme(ctx context.Context) (prefsdto.PreferencesOutput, error) {
	prefs, err := i.svc.Modify(ctx, func(p domain.Preferences) (domain.Preferences, error) {
		p.Theme = p.Theme.Next()
		return p, nil
	})
	if err != nil {
		return prefsdto.PreferencesOutput{}, err
	}
	return toOutput(prefs), nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	return i.svc.Reset(ctx)
}

func toOutput(p domain.Preferences) prefsdto.PreferencesOutput {
	return prefsdto.PreferencesOutput{SortBy: string(p.SortBy), Theme: p.Theme.Label()}
}
