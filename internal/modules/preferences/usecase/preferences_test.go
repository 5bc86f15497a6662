package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	prefsout "didathing/internal/modules/preferences/adapter/out"
	prefsdto "didathing/internal/modules/preferences/dto"
	"didathing/internal/modules/preferences/service"
	"didathing/internal/modules/preferences/usecase"
	apperrors "didathing/internal/platform/errors"
)

func TestPreferencesPersistAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	uc := usecase.NewInteractor(service.NewPreferencesService(prefsout.NewYAMLPreferenceStore(path)))

	got, err := uc.Get(ctx)
	if err != nil {
		t.Fatalf("get defaults: %v", err)
	}
	if got.SortBy != "recent" || got.Theme != "system" {
		t.Fatalf("unexpected defaults %+v", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("reading defaults must not create the file")
	}

	if _, err := uc.ToggleSort(ctx); err != nil {
		t.Fatalf("toggle sort: %v", err)
	}
	if _, err := uc.ToggleTheme(ctx); err != nil {
		t.Fatalf("toggle theme: %v", err)
	}

	reopened := usecase.NewInteractor(service.NewPreferencesService(prefsout.NewYAMLPreferenceStore(path)))
	got, err = reopened.Get(ctx)
	if err != nil {
		t.Fatalf("get saved: %v", err)
	}
	if got.SortBy != "alpha" || got.Theme != "dark" {
		t.Fatalf("unexpected saved preferences %+v", got)
	}

	if err := reopened.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := reopened.Reset(ctx); err != nil {
		t.Fatalf("second reset must succeed: %v", err)
	}
}

func TestPreferencesUpdateValidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	uc := usecase.NewInteractor(service.NewPreferencesService(prefsout.NewYAMLPreferenceStore(path)))

	bad := "newest"
	if _, err := uc.Update(ctx, prefsdto.UpdateInput{SortBy: &bad}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid sort, got %v", err)
	}
	light := "light"
	got, err := uc.Update(ctx, prefsdto.UpdateInput{Theme: &light})
	if err != nil {
		t.Fatalf("update theme: %v", err)
	}
	if got.Theme != "light" || got.SortBy != "recent" {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestPreferencesIgnoreUnknownValuesOnDisk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	if err := os.WriteFile(path, []byte("sort_by: sideways\ntheme: light\n"), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	uc := usecase.NewInteractor(service.NewPreferencesService(prefsout.NewYAMLPreferenceStore(path)))
	got, err := uc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SortBy != "recent" || got.Theme != "light" {
		t.Fatalf("unexpected %+v", got)
	}
}
