package dto

import "time"

type ExportInput struct {
	// Format is "json" (default) or "yaml".
	Format string
}

type ExportOutput struct {
	Format      string
	Payload     []byte
	ExportedAt  time.Time
	Tasks       int
	Phases      int
	Transitions int
}

type ImportInput struct {
	Payload []byte
}

type ImportOutput struct {
	Tasks       int
	Phases      int
	Transitions int
	SortBy      string
}
