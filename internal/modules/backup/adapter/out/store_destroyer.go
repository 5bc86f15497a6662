package out

import (
	"context"

	backupout "didathing/internal/modules/backup/port/out"
	"didathing/internal/platform/store"
)

type StoreDestroyer struct {
	db *store.DB
}

func NewStoreDestroyer(db *store.DB) backupout.Destroyer {
	return &StoreDestroyer{db: db}
}

func (d *StoreDestroyer) Destroy(_ context.Context) error {
	return d.db.Wipe()
}
