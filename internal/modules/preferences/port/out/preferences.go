package out

import (
	"context"

	"didathing/internal/modules/preferences/domain"
)

type PreferenceStore interface {
	// Load returns defaults when nothing has been saved.
	Load(ctx context.Context) (domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
	Remove(ctx context.Context) error
}
