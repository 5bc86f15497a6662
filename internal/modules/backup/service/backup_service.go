package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"didathing/internal/modules/backup/domain"
	backupout "didathing/internal/modules/backup/port/out"
	"didathing/internal/platform/clock"
	"didathing/internal/platform/store"
	"didathing/internal/platform/tx"
)

type BackupService struct {
	clock     clock.Clock
	tx        tx.Manager
	records   backupout.RecordStore
	destroyer backupout.Destroyer
	prefs     backupout.PreferenceSource
	logger    hclog.Logger
}

func NewBackupService(clock clock.Clock, txm tx.Manager, records backupout.RecordStore, destroyer backupout.Destroyer, prefs backupout.PreferenceSource, logger hclog.Logger) *BackupService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BackupService{
		clock:     clock,
		tx:        txm,
		records:   records,
		destroyer: destroyer,
		prefs:     prefs,
		logger:    logger.Named("backup"),
	}
}

// Export snapshots all three collections in one read unit.
func (s *BackupService) Export(ctx context.Context) (domain.Document, error) {
	doc := domain.Document{
		Format:        domain.FormatTag,
		Version:       domain.Version,
		SchemaVersion: store.SchemaVersion,
		ExportedAt:    s.clock.Now(),
	}
	if s.prefs != nil {
		sortBy, err := s.prefs.SortBy(ctx)
		if err != nil {
			s.logger.Warn("export without sort preference", "error", err)
		} else {
			doc.SortBy = sortBy
		}
	}
	err := s.tx.Within(ctx, backupout.Collections, func(ctx context.Context) error {
		var err error
		if doc.Tasks, err = s.records.Tasks(ctx); err != nil {
			return err
		}
		if doc.Phases, err = s.records.Phases(ctx); err != nil {
			return err
		}
		doc.Transitions, err = s.records.Transitions(ctx)
		return err
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("export: %w", err)
	}
	s.logger.Info("exported", "tasks", len(doc.Tasks), "phases", len(doc.Phases), "transitions", len(doc.Transitions))
	return doc, nil
}

// ImportResult counts the records written by Import.
type ImportResult struct {
	Tasks       int
	Phases      int
	Transitions int
	// SortBy is the sort preference applied from the document, if any.
	SortBy string
}

// Import adds every record of doc under fresh keys, remapping task
// references, and derives each task's pointer from its imported history. An
// invalid document or a failed insert writes nothing. The document's sort
// preference is applied once the records are in.
func (s *BackupService) Import(ctx context.Context, doc domain.Document) (ImportResult, error) {
	if err := doc.Validate(); err != nil {
		return ImportResult{}, err
	}
	phases := append([]domain.PhaseRecord(nil), doc.Phases...)
	sort.SliceStable(phases, func(i, j int) bool {
		if phases[i].TaskID != phases[j].TaskID {
			return phases[i].TaskID < phases[j].TaskID
		}
		return phases[i].Index < phases[j].Index
	})
	// Original ids order equal timestamps; inserting in that order keeps
	// the tie-break stable under the new keys.
	transitions := append([]domain.TransitionRecord(nil), doc.Transitions...)
	sort.SliceStable(transitions, func(i, j int) bool { return transitions[i].ID < transitions[j].ID })

	result := ImportResult{}
	err := s.tx.Within(ctx, backupout.Collections, func(ctx context.Context) error {
		taskIDs := make(map[int64]int64, len(doc.Tasks))
		for _, task := range doc.Tasks {
			record := task
			record.CurrentPhaseIndex, record.CurrentPhaseSince = doc.PointerFor(task)
			if record.UpdatedAt.IsZero() {
				record.UpdatedAt = record.CreatedAt
			}
			id, err := s.records.AddTask(ctx, record)
			if err != nil {
				return err
			}
			taskIDs[task.ID] = id
		}
		for _, phase := range phases {
			phase.TaskID = taskIDs[phase.TaskID]
			if _, err := s.records.AddPhase(ctx, phase); err != nil {
				return err
			}
		}
		for _, tr := range transitions {
			tr.TaskID = taskIDs[tr.TaskID]
			if _, err := s.records.AddTransition(ctx, tr); err != nil {
				return err
			}
		}
		result = ImportResult{Tasks: len(doc.Tasks), Phases: len(phases), Transitions: len(transitions)}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	s.logger.Info("imported", "tasks", result.Tasks, "phases", result.Phases, "transitions", result.Transitions)
	if s.prefs != nil && doc.SortBy != "" {
		if err := s.prefs.SetSortBy(ctx, doc.SortBy); err != nil {
			s.logger.Warn("imported sort preference not applied", "sortBy", doc.SortBy, "error", err)
		} else {
			result.SortBy = doc.SortBy
		}
	}
	return result, nil
}

// Wipe destroys the store and the saved preferences.
func (s *BackupService) Wipe(ctx context.Context) error {
	if err := s.destroyer.Destroy(ctx); err != nil {
		return fmt.Errorf("wipe store: %w", err)
	}
	if s.prefs != nil {
		if err := s.prefs.Reset(ctx); err != nil {
			return fmt.Errorf("wipe preferences: %w", err)
		}
	}
	s.logger.Info("all data wiped")
	return nil
}
