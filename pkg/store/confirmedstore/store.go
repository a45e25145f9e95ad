// Package confirmedstore persists the set of confirmed addresses. Inserts
// are idempotent: recording an address that is already present is a no-op,
// not an error, and the caller learns whether its call was the first.
package confirmedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/fystack/address-intake/pkg/common/config"
	"github.com/fystack/address-intake/pkg/common/enum"
	"github.com/fystack/address-intake/pkg/infra"
	"gorm.io/gorm"
)

type Store interface {
	// Insert records a normalized address. inserted reports whether this
	// call was the first to record it.
	Insert(ctx context.Context, address string) (inserted bool, err error)
	Contains(ctx context.Context, address string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// NewFromConfig constructs the store backend selected by configuration.
// db and kv may be nil when the respective backend is not selected.
func NewFromConfig(cfg config.StoreCfg, db *gorm.DB, kv infra.KVStore) (Store, error) {
	switch cfg.Backend {
	case enum.StoreBackendPostgres:
		if db == nil {
			return nil, errors.New("postgres store requires a database connection")
		}
		return NewPostgresStore(db), nil
	case enum.StoreBackendKV:
		if kv == nil {
			return nil, errors.New("kv store backend requires a kv store")
		}
		return NewKVStore(kv), nil
	case enum.StoreBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
