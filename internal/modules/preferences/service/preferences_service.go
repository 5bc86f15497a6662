package service

import (
	"context"

	"didathing/internal/modules/preferences/domain"
	prefsout "didathing/internal/modules/preferences/port/out"
)

type PreferencesService struct {
	store prefsout.PreferenceStore
}

func NewPreferencesService(store prefsout.PreferenceStore) *PreferencesService {
	return &PreferencesService{store: store}
}

func (s *PreferencesService) Get(ctx context.Context) (domain.Preferences, error) {
	return s.store.Load(ctx)
}

// Modify loads, applies fn and saves the result.
func (s *PreferencesService) Modify(ctx context.Context, fn func(domain.Preferences) (domain.Preferences, error)) (domain.Preferences, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return domain.Preferences{}, err
	}
	next, err := fn(current)
	if err != nil {
		return domain.Preferences{}, err
	}
	if next == current {
		return current, nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return domain.Preferences{}, err
	}
	return next, nil
}

func (s *PreferencesService) Reset(ctx context.Context) error {
	return s.store.Remove(ctx)
}
