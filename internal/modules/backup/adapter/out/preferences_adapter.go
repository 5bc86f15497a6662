package out

import (
	"context"

	backupout "didathing/internal/modules/backup/port/out"
	prefsdto "didathing/internal/modules/preferences/dto"
	prefsin "didathing/internal/modules/preferences/port/in"
)

type PreferencesAdapter struct {
	prefs prefsin.Usecase
}

func NewPreferencesAdapter(prefs prefsin.Usecase) backupout.PreferenceSource {
	return &PreferencesAdapter{prefs: prefs}
}

func (a *PreferencesAdapter) SortBy(ctx context.Context) (string, error) {
	out, err := a.prefs.Get(ctx)
	if err != nil {
		return "", err
	}
	return out.SortBy, nil
}

func (a *PreferencesAdapter) SetSortBy(ctx context.Context, sortBy string) error {
	_, err := a.prefs.Update(ctx, prefsdto.UpdateInput{SortBy: &sortBy})
	return err
}

func (a *PreferencesAdapter) Reset(ctx context.Context) error {
	return a.prefs.Reset(ctx)
}
