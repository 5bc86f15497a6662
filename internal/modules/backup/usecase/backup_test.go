package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	backupout "didathing/internal/modules/backup/adapter/out"
	backupdto "didathing/internal/modules/backup/dto"
	backupin "didathing/internal/modules/backup/port/in"
	backupservice "didathing/internal/modules/backup/service"
	backupusecase "didathing/internal/modules/backup/usecase"
	prefsout "didathing/internal/modules/preferences/adapter/out"
	prefsin "didathing/internal/modules/preferences/port/in"
	prefsservice "didathing/internal/modules/preferences/service"
	prefsusecase "didathing/internal/modules/preferences/usecase"
	trackerout "didathing/internal/modules/tracker/adapter/out"
	trackerdto "didathing/internal/modules/tracker/dto"
	trackerin "didathing/internal/modules/tracker/port/in"
	trackerservice "didathing/internal/modules/tracker/service"
	trackerusecase "didathing/internal/modules/tracker/usecase"
	apperrors "didathing/internal/platform/errors"
	"didathing/internal/platform/store"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

type env struct {
	tracker   trackerin.Usecase
	backup    backupin.Usecase
	prefs     prefsin.Usecase
	dbPath    string
	prefsPath string
}

func openEnv(t *testing.T, dir string) env {
	t.Helper()
	dbPath := filepath.Join(dir, "didathing.db")
	prefsPath := filepath.Join(dir, "preferences.yaml")
	db, err := store.Open(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	clk := &stepClock{now: time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)}

	tasks, err := trackerout.NewSQLiteTaskStore(db)
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	phases, err := trackerout.NewSQLitePhaseStore(db)
	if err != nil {
		t.Fatalf("phase store: %v", err)
	}
	transitions, err := trackerout.NewSQLiteTransitionStore(db)
	if err != nil {
		t.Fatalf("transition store: %v", err)
	}
	tracker := trackerusecase.NewInteractor(trackerservice.NewTrackerService(clk, db, tasks, phases, transitions, nil))

	prefs := prefsusecase.NewInteractor(prefsservice.NewPreferencesService(prefsout.NewYAMLPreferenceStore(prefsPath)))
	records, err := backupout.NewSQLiteRecordStore(db)
	if err != nil {
		t.Fatalf("record store: %v", err)
	}
	backup := backupusecase.NewInteractor(backupservice.NewBackupService(
		clk, db, records, backupout.NewStoreDestroyer(db), backupout.NewPreferencesAdapter(prefs), nil,
	))
	return env{tracker: tracker, backup: backup, prefs: prefs, dbPath: dbPath, prefsPath: prefsPath}
}

func seed(t *testing.T, e env) {
	t.Helper()
	ctx := context.Background()
	plants, err := e.tracker.CreateTask(ctx, trackerdto.CreateTaskInput{Title: "Water plants"})
	if err != nil {
		t.Fatalf("create plants: %v", err)
	}
	days := 1
	laundry, err := e.tracker.CreateTask(ctx, trackerdto.CreateTaskInput{
		Title:  "Laundry",
		Phases: []trackerdto.PhaseInput{{Name: "Washing"}, {Name: "Drying", DurationDays: &days}, {Name: "Folded"}},
	})
	if err != nil {
		t.Fatalf("create laundry: %v", err)
	}
	if _, err := e.tracker.CreateTask(ctx, trackerdto.CreateTaskInput{Title: "Taxes"}); err != nil {
		t.Fatalf("create taxes: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := e.tracker.Advance(ctx, plants.Task.ID); err != nil {
			t.Fatalf("advance plants: %v", err)
		}
	}
	if _, err := e.tracker.Advance(ctx, laundry.Task.ID); err != nil {
		t.Fatalf("advance laundry: %v", err)
	}
	if _, err := e.prefs.ToggleSort(ctx); err != nil {
		t.Fatalf("toggle sort: %v", err)
	}
}

type snapshot struct {
	Title       string
	Phase       int
	Since       time.Time
	PhaseNames  string
	Transitions int
}

func snapshotOf(t *testing.T, uc trackerin.Usecase) []snapshot {
	t.Helper()
	ctx := context.Background()
	list, err := uc.ListTasks(ctx, trackerdto.ListTasksInput{Sort: "alpha"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]snapshot, 0, len(list))
	for _, item := range list {
		history, err := uc.TransitionsForTask(ctx, item.Task.ID)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		out = append(out, snapshot{
			Title:       item.Task.Title,
			Phase:       item.Task.CurrentPhaseIndex,
			Since:       item.Task.CurrentPhaseSince,
			PhaseNames:  strings.Join(item.PhaseNames, ","),
			Transitions: len(history),
		})
	}
	return out
}

func TestExportWipeImportRoundTrip(t *testing.T) {
	t.Parallel()
	for _, format := range []string{"json", "yaml"} {
		format := format
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := t.TempDir()
			first := openEnv(t, dir)
			seed(t, first)
			before := snapshotOf(t, first.tracker)

			exported, err := first.backup.Export(ctx, backupdto.ExportInput{Format: format})
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if exported.Tasks != 3 || exported.Phases != 5 || exported.Transitions != 3 {
				t.Fatalf("unexpected export counts %+v", exported)
			}
			if !strings.Contains(string(exported.Payload), "didathing-export") {
				t.Fatalf("payload must carry the format tag")
			}

			if err := first.backup.Wipe(ctx); err != nil {
				t.Fatalf("wipe: %v", err)
			}
			if _, err := os.Stat(first.dbPath); !os.IsNotExist(err) {
				t.Fatalf("database file must be removed")
			}
			if _, err := os.Stat(first.prefsPath); !os.IsNotExist(err) {
				t.Fatalf("preferences file must be removed")
			}
			if _, err := first.tracker.ListTasks(ctx, trackerdto.ListTasksInput{}); !errors.Is(err, apperrors.ErrStorage) {
				t.Fatalf("wiped store must be unusable, got %v", err)
			}

			second := openEnv(t, dir)
			if got := snapshotOf(t, second.tracker); len(got) != 0 {
				t.Fatalf("fresh store must be empty, got %d tasks", len(got))
			}
			imported, err := second.backup.Import(ctx, backupdto.ImportInput{Payload: exported.Payload})
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if imported.Tasks != 3 || imported.SortBy != "alpha" {
				t.Fatalf("unexpected import result %+v", imported)
			}

			prefs, err := second.prefs.Get(ctx)
			if err != nil || prefs.SortBy != "alpha" {
				t.Fatalf("imported sort preference must be applied, got %+v %v", prefs, err)
			}

			after := snapshotOf(t, second.tracker)
			if len(after) != len(before) {
				t.Fatalf("task count mismatch: %d vs %d", len(after), len(before))
			}
			for i := range before {
				b, a := before[i], after[i]
				if b.Title != a.Title || b.Phase != a.Phase || !b.Since.Equal(a.Since) || b.PhaseNames != a.PhaseNames || b.Transitions != a.Transitions {
					t.Fatalf("task %d differs:\nbefore %+v\nafter  %+v", i, b, a)
				}
			}
			report, err := second.tracker.Doctor(ctx, trackerdto.DoctorInput{})
			if err != nil || len(report.Drifts) != 0 {
				t.Fatalf("imported pointers must be consistent: %+v %v", report, err)
			}
		})
	}
}

func TestImportRejectsInvalidDocumentsWithoutWriting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := openEnv(t, t.TempDir())
	cases := map[string]string{
		"empty":          ``,
		"wrong format":   `{"format":"other","version":1,"tasks":[]}`,
		"future version": `{"format":"didathing-export","version":99,"tasks":[]}`,
		"orphan phase": `{"format":"didathing-export","version":1,
			"tasks":[{"id":1,"title":"a","createdAt":"2026-01-01T00:00:00Z"}],
			"phases":[{"id":1,"taskId":2,"index":0,"name":"Done"}]}`,
		"phase gap": `{"format":"didathing-export","version":1,
			"tasks":[{"id":1,"title":"a","createdAt":"2026-01-01T00:00:00Z"}],
			"phases":[{"id":1,"taskId":1,"index":0,"name":"A"},{"id":2,"taskId":1,"index":2,"name":"C"}]}`,
		"transition out of range": `{"format":"didathing-export","version":1,
			"tasks":[{"id":1,"title":"a","createdAt":"2026-01-01T00:00:00Z"}],
			"phases":[{"id":1,"taskId":1,"index":0,"name":"Done"}],
			"transitions":[{"id":1,"taskId":1,"fromPhaseIndex":0,"toPhaseIndex":1,"transitionedAt":"2026-01-02T00:00:00Z"}]}`,
		"blank title": `{"format":"didathing-export","version":1,
			"tasks":[{"id":1,"title":" ","createdAt":"2026-01-01T00:00:00Z"}]}`,
		"task without phases": `{"format":"didathing-export","version":1,
			"tasks":[{"id":1,"title":"Ghost","createdAt":"2026-01-01T00:00:00Z"}],
			"phases":[],
			"transitions":[{"id":1,"taskId":1,"fromPhaseIndex":0,"toPhaseIndex":0,"transitionedAt":"2026-01-02T00:00:00Z"}]}`,
		"not yaml": "format: [unterminated",
	}
	for name, payload := range cases {
		if _, err := e.backup.Import(ctx, backupdto.ImportInput{Payload: []byte(payload)}); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
	list, err := e.tracker.ListTasks(ctx, trackerdto.ListTasksInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected imports must write nothing, got %d tasks", len(list))
	}
}

func TestImportRecomputesPointerFromHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := openEnv(t, t.TempDir())
	payload := `format: didathing-export
version: 1
schemaVersion: 2
exportedAt: 2026-02-01T00:00:00Z
tasks:
  - id: 10
    title: Compost
    currentPhaseIndex: 0
    currentPhaseSince: 2026-01-01T00:00:00Z
    createdAt: 2026-01-01T00:00:00Z
    updatedAt: 2026-01-01T00:00:00Z
phases:
  - {id: 1, taskId: 10, index: 0, name: Filling}
  - {id: 2, taskId: 10, index: 1, name: Resting}
transitions:
  - {id: 5, taskId: 10, fromPhaseIndex: 0, toPhaseIndex: 1, transitionedAt: 2026-01-10T00:00:00Z}
`
	out, err := e.backup.Import(ctx, backupdto.ImportInput{Payload: []byte(payload)})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Tasks != 1 || out.Phases != 2 || out.Transitions != 1 || out.SortBy != "" {
		t.Fatalf("unexpected result %+v", out)
	}
	prefs, err := e.prefs.Get(ctx)
	if err != nil || prefs.SortBy != "recent" {
		t.Fatalf("a document without a sort preference must leave it alone, got %+v %v", prefs, err)
	}
	list, err := e.tracker.ListTasks(ctx, trackerdto.ListTasksInput{})
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %d %v", len(list), err)
	}
	want := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if list[0].Task.CurrentPhaseIndex != 1 || !list[0].Task.CurrentPhaseSince.Equal(want) || list[0].CurrentPhaseName != "Resting" {
		t.Fatalf("pointer must follow the imported history, got %+v", list[0])
	}
}
