package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	backupinadapter "didathing/internal/modules/backup/adapter/in"
	backupoutadapter "didathing/internal/modules/backup/adapter/out"
	backupservice "didathing/internal/modules/backup/service"
	backupusecase "didathing/internal/modules/backup/usecase"
	prefsinadapter "didathing/internal/modules/preferences/adapter/in"
	prefsoutadapter "didathing/internal/modules/preferences/adapter/out"
	prefsservice "didathing/internal/modules/preferences/service"
	prefsusecase "didathing/internal/modules/preferences/usecase"
	trackerinadapter "didathing/internal/modules/tracker/adapter/in"
	trackeroutadapter "didathing/internal/modules/tracker/adapter/out"
	trackerservice "didathing/internal/modules/tracker/service"
	trackerusecase "didathing/internal/modules/tracker/usecase"
	"didathing/internal/platform/clock"
	"didathing/internal/platform/config"
	"didathing/internal/platform/store"
	uiapp "didathing/internal/ui/app"
	"didathing/internal/ui/theme"
)

type App struct {
	TrackerCLI trackerinadapter.CLIHandler
	PrefsCLI   prefsinadapter.CLIHandler
	BackupCLI  backupinadapter.CLIHandler

	db *store.DB
}

// NewLogger builds the process logger at the configured level. Logs go to
// stderr so command output stays clean.
func NewLogger(cfg config.Config) hclog.Logger {
	level := hclog.LevelFromString(cfg.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "didathing",
		Level:  level,
		Output: os.Stderr,
	})
}

func New(cfg config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	clk := clock.SystemClock{}

	db, err := store.Open(context.Background(), cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tasks, err := trackeroutadapter.NewSQLiteTaskStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new task store: %w", err)
	}
	phases, err := trackeroutadapter.NewSQLitePhaseStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new phase store: %w", err)
	}
	transitions, err := trackeroutadapter.NewSQLiteTransitionStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new transition store: %w", err)
	}
	trackerUC := trackerusecase.NewInteractor(
		trackerservice.NewTrackerService(clk, db, tasks, phases, transitions, logger),
	)

	prefsUC := prefsusecase.NewInteractor(
		prefsservice.NewPreferencesService(prefsoutadapter.NewYAMLPreferenceStore(cfg.PrefsPath)),
	)

	records, err := backupoutadapter.NewSQLiteRecordStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("new record store: %w", err)
	}
	backupUC := backupusecase.NewInteractor(backupservice.NewBackupService(
		clk,
		db,
		records,
		backupoutadapter.NewStoreDestroyer(db),
		backupoutadapter.NewPreferencesAdapter(prefsUC),
		logger,
	))

	logger.Debug("app wired", "db", cfg.DBPath, "prefs", cfg.PrefsPath)
	return &App{
		TrackerCLI: trackerinadapter.NewCLIHandler(trackerUC),
		PrefsCLI:   prefsinadapter.NewCLIHandler(prefsUC),
		BackupCLI:  backupinadapter.NewCLIHandler(backupUC),
		db:         db,
	}, nil
}

// Close releases the store. Safe to call more than once.
func (a *App) Close() error {
	return a.db.Close()
}

func RunTUI(app *App) error {
	prefs, err := app.PrefsCLI.Get(context.Background())
	if err != nil {
		return err
	}
	theme.Use(theme.Resolve(prefs.Theme))
	model := uiapp.NewModel(app.TrackerCLI, app.PrefsCLI, prefs, time.Now)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
