// Package store is the embedded entity store: three keyed collections in a
// single SQLite file, secondary-index lookups and atomic units spanning
// several collections.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	apperrors "didathing/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB is the process-wide store handle. Create it once with Open and pass it
// to every adapter that needs persistence.
type DB struct {
	mu     sync.RWMutex
	sql    *sql.DB
	path   string
	logger hclog.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. Opening an up-to-date database changes nothing.
func Open(ctx context.Context, path string, logger hclog.Logger) (*DB, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storageErr("create db dir", err)
		}
	}
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open sqlite", err)
	}
	// One connection: a single logical writer, and atomic units own it.
	handle.SetMaxOpenConns(1)
	if _, err := handle.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = handle.Close()
		return nil, storageErr("configure sqlite", err)
	}

	db := &DB{sql: handle, path: path, logger: logger.Named("store")}
	if err := db.migrate(ctx); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the handle. Further operations fail with ErrStorage.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sql == nil {
		return nil
	}
	err := d.sql.Close()
	d.sql = nil
	if err != nil {
		return storageErr("close sqlite", err)
	}
	return nil
}

// Wipe releases the handle and then deletes the database files. The store is
// unusable afterwards.
func (d *DB) Wipe() error {
	if err := d.Close(); err != nil {
		return err
	}
	if d.path == MemoryPath {
		return nil
	}
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		if err := os.Remove(d.path + suffix); err != nil && !os.IsNotExist(err) {
			return storageErr("remove database file", err)
		}
	}
	d.logger.Info("store wiped", "path", d.path)
	return nil
}

func (d *DB) handle() (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.sql == nil {
		return nil, fmt.Errorf("store is closed: %w", apperrors.ErrStorage)
	}
	return d.sql, nil
}

// ─── atomic units ────────────────────────────────────────────────────────────

type unitKey struct{}

type unit struct {
	db    *DB
	tx    *sql.Tx
	scope map[string]struct{}
}

// RunAtomic runs fn as one transaction over the named collections. Collection
// operations must use the context handed to fn; touching a collection that is
// not in scope fails. If fn returns an error, or commit fails, nothing fn
// wrote is kept. A nested call joins the enclosing unit when its scope is a
// subset of the outer one.
func (d *DB) RunAtomic(ctx context.Context, scope []string, fn func(context.Context) error) error {
	if len(scope) == 0 {
		return fmt.Errorf("atomic unit needs at least one collection: %w", apperrors.ErrStorage)
	}
	for _, name := range scope {
		if _, ok := collections[name]; !ok {
			return fmt.Errorf("unknown collection %q: %w", name, apperrors.ErrStorage)
		}
	}

	if outer, ok := ctx.Value(unitKey{}).(*unit); ok && outer.db == d {
		for _, name := range scope {
			if _, ok := outer.scope[name]; !ok {
				return fmt.Errorf("collection %q is outside the enclosing atomic unit: %w", name, apperrors.ErrStorage)
			}
		}
		return fn(ctx)
	}

	handle, err := d.handle()
	if err != nil {
		return err
	}
	tx, err := handle.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin atomic unit", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.logger.Warn("rollback failed", "scope", scope, "error", rbErr)
		}
	}()
	u := &unit{db: d, tx: tx, scope: make(map[string]struct{}, len(scope))}
	for _, name := range scope {
		u.scope[name] = struct{}{}
	}

	if err := fn(context.WithValue(ctx, unitKey{}, u)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit atomic unit", err)
	}
	committed = true
	d.logger.Trace("atomic unit committed", "scope", scope)
	return nil
}

// Within satisfies tx.Manager.
func (d *DB) Within(ctx context.Context, scope []string, fn func(context.Context) error) error {
	return d.RunAtomic(ctx, scope, fn)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction of the unit carried by ctx, or the shared
// handle when ctx carries none.
func (d *DB) conn(ctx context.Context, collection string) (querier, error) {
	if u, ok := ctx.Value(unitKey{}).(*unit); ok && u.db == d {
		if _, ok := u.scope[collection]; !ok {
			return nil, fmt.Errorf("collection %q is outside the atomic unit: %w", collection, apperrors.ErrStorage)
		}
		return u.tx, nil
	}
	return d.handle()
}

// ─── migrations ──────────────────────────────────────────────────────────────

func (d *DB) migrate(ctx context.Context) error {
	const ledger = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at INTEGER NOT NULL
);
`
	if _, err := d.sql.ExecContext(ctx, ledger); err != nil {
		return storageErr("create migration ledger", err)
	}
	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, ok := applied[m.version]; ok {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return err
		}
		d.logger.Info("applied migration", "version", m.version, "name", m.name)
	}
	return nil
}

func (d *DB) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, storageErr("read migration ledger", err)
	}
	defer rows.Close()
	out := map[int]struct{}{}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, storageErr("scan migration version", err)
		}
		out[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate migration ledger", err)
	}
	return out, nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(fmt.Sprintf("begin migration %d", m.version), err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storageErr(fmt.Sprintf("migration %d (%s)", m.version, m.name), err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UnixMilli(),
	); err != nil {
		return storageErr(fmt.Sprintf("record migration %d", m.version), err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr(fmt.Sprintf("commit migration %d", m.version), err)
	}
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// Millis converts t to the Unix-millisecond form stored on disk.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored timestamp back to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStorage, err)
}
