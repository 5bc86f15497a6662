package dto

type PreferencesOutput struct {
	SortBy string
	Theme  string
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	SortBy *string
	Theme  *string
}
