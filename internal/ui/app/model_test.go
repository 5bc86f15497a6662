package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	trackerinadapter "didathing/internal/modules/tracker/adapter/in"
	trackerout "didathing/internal/modules/tracker/adapter/out"
	trackerdto "didathing/internal/modules/tracker/dto"
	trackerservice "didathing/internal/modules/tracker/service"
	trackerusecase "didathing/internal/modules/tracker/usecase"
	"didathing/internal/platform/clock"
	apperrors "didathing/internal/platform/errors"
	"didathing/internal/platform/store"
)

func TestSplitAddInput(t *testing.T) {
	t.Parallel()
	title, specs := splitAddInput("Water plants")
	if title != "Water plants" || specs != nil {
		t.Fatalf("single: got %q %v", title, specs)
	}

	title, specs = splitAddInput(" Sourdough | Feed, Rise:1 ,, Bake ")
	if title != "Sourdough" {
		t.Fatalf("title: got %q", title)
	}
	if strings.Join(specs, "/") != "Feed/Rise:1/Bake" {
		t.Fatalf("unexpected specs %q", specs)
	}
}

func newTracker(t *testing.T) trackerinadapter.CLIHandler {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "didathing.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
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
	svc := trackerservice.NewTrackerService(clock.SystemClock{}, db, tasks, phases, transitions, nil)
	return trackerinadapter.NewCLIHandler(trackerusecase.NewInteractor(svc))
}

func TestAddTaskCmdParsesPhases(t *testing.T) {
	t.Parallel()
	tracker := newTracker(t)
	m := Model{tracker: tracker}

	msg := m.addTaskCmd("Seeds | Sprouting:abc, Grown:-3", false)()
	done, ok := msg.(mutationDoneMsg)
	if !ok || !errors.Is(done.err, apperrors.ErrInvalidInput) {
		t.Fatalf("malformed duration must be reported, got %#v", msg)
	}
	list, err := tracker.ListTasks(context.Background(), "")
	if err != nil || len(list) != 0 {
		t.Fatalf("nothing may be stored, got %d tasks (%v)", len(list), err)
	}

	msg = m.addTaskCmd("Sourdough | Feed, Rise:1, Bake", false)()
	if done, ok := msg.(mutationDoneMsg); !ok || done.err != nil {
		t.Fatalf("add: %#v", msg)
	}
	list, err = tracker.ListTasks(context.Background(), "")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one task, got %d (%v)", len(list), err)
	}
	detail, err := tracker.GetTask(context.Background(), list[0].Task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.Phases) != 3 || detail.Phases[1].Name != "Rise" || detail.Phases[1].DurationDays == nil || *detail.Phases[1].DurationDays != 1 {
		t.Fatalf("unexpected phases %+v", detail.Phases)
	}

	msg = m.addTaskCmd("sourdough", false)()
	if _, ok := msg.(duplicateTitleMsg); !ok {
		t.Fatalf("expected duplicate confirmation, got %#v", msg)
	}
}

func TestParseBackdate(t *testing.T) {
	t.Parallel()
	cycle := trackerdto.TaskDetailOutput{
		Kind:   "cycle",
		Task:   trackerdto.TaskOutput{ID: 1, CurrentPhaseIndex: 2},
		Phases: []trackerdto.PhaseOutput{{Index: 0}, {Index: 1}, {Index: 2}},
	}

	at, from, to, err := parseBackdate("2026-03-10 08:15", cycle)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if from != 2 || to != 0 {
		t.Fatalf("expected current -> next wraparound 2->0, got %d->%d", from, to)
	}
	if !at.Equal(time.Date(2026, 3, 10, 8, 15, 0, 0, time.Local)) {
		t.Fatalf("unexpected time %v", at)
	}

	_, from, to, err = parseBackdate("2026-03-10 08:15 1 2", cycle)
	if err != nil {
		t.Fatalf("parse with phases: %v", err)
	}
	if from != 0 || to != 1 {
		t.Fatalf("expected 0->1, got %d->%d", from, to)
	}

	_, from, to, err = parseBackdate("2026-03-10 08:00 2", cycle)
	if err != nil {
		t.Fatalf("parse with one phase: %v", err)
	}
	if from != 2 || to != 1 {
		t.Fatalf("expected current -> 1, got %d->%d", from, to)
	}

	at, from, to, err = parseBackdate("2026-03-10 1 3", cycle)
	if err != nil {
		t.Fatalf("parse date with phases: %v", err)
	}
	if from != 0 || to != 2 || !at.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected midnight 0->2, got %v %d->%d", at, from, to)
	}

	single := trackerdto.TaskDetailOutput{Kind: "single", Task: trackerdto.TaskOutput{ID: 2}}
	_, from, to, err = parseBackdate("2026-03-10", single)
	if err != nil {
		t.Fatalf("parse single: %v", err)
	}
	if from != 0 || to != 0 {
		t.Fatalf("expected 0->0, got %d->%d", from, to)
	}

	if _, _, _, err := parseBackdate("last tuesday", single); err == nil {
		t.Fatalf("expected parse error")
	}
	for _, bad := range []string{"2026-03-10 08:15 a b", "2026-03-10 08:15 1 2 3", "", "3"} {
		_, _, _, err := parseBackdate(bad, cycle)
		if err == nil || !strings.Contains(err.Error(), backdateFormat) {
			t.Fatalf("%q: expected a format error, got %v", bad, err)
		}
	}
}
