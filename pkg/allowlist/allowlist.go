// Package allowlist answers membership questions about the set of addresses
// permitted to be confirmed. The set is read-only from the intake service's
// perspective; it is seeded out of band by the import and kv-load commands.
package allowlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/fystack/address-intake/pkg/common/config"
	"github.com/fystack/address-intake/pkg/common/enum"
	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
	"gorm.io/gorm"
)

// Allowlist is the membership oracle. All lookups take normalized addresses.
type Allowlist interface {
	Contains(ctx context.Context, address string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// New constructs the allowlist backend selected by configuration.
// db and kv may be nil when the respective source is not selected;
// redisClient is only needed for the redis bloom front.
func New(
	cfg config.AllowlistCfg,
	db *gorm.DB,
	kv infra.KVStore,
	redisClient infra.RedisClient,
) (Allowlist, error) {
	switch cfg.Source {
	case enum.AllowlistSourceDB:
		if db == nil {
			return nil, errors.New("db allowlist requires a database connection")
		}
		repo := repository.NewRepository[model.AllowlistEntry](db)
		filter, err := newFilter(cfg.Bloom, repo, redisClient)
		if err != nil {
			return nil, err
		}
		return NewDBAllowlist(repo, filter), nil

	case enum.AllowlistSourceKV:
		if kv == nil {
			return nil, errors.New("kv allowlist requires a kv store")
		}
		return NewKVAllowlist(kv), nil

	case enum.AllowlistSourceStatic:
		return LoadStaticFile(cfg.StaticPath)

	default:
		return nil, fmt.Errorf("unsupported allowlist source: %s", cfg.Source)
	}
}

// Initialize warms any bloom front the backend carries. A no-op for
// backends without one.
func Initialize(ctx context.Context, list Allowlist) error {
	if d, ok := list.(*dbAllowlist); ok && d.filter != nil {
		return d.filter.Initialize(ctx)
	}
	return nil
}

func newFilter(
	cfg config.BloomCfg,
	repo repository.Repository[model.AllowlistEntry],
	redisClient infra.RedisClient,
) (Filter, error) {
	switch cfg.Backend {
	case enum.BloomBackendInMemory:
		return NewInMemoryFilter(InMemoryFilterConfig{
			Repo:              repo,
			ExpectedItems:     cfg.InMemory.ExpectedItems,
			FalsePositiveRate: cfg.InMemory.FalsePositiveRate,
			BatchSize:         cfg.BatchSize,
		}), nil
	case enum.BloomBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis bloom filter requires a redis client")
		}
		return NewRedisFilter(RedisFilterConfig{
			RedisClient: redisClient,
			Repo:        repo,
			BatchSize:   cfg.BatchSize,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			ErrorRate:   cfg.Redis.ErrorRate,
			Capacity:    cfg.Redis.Capacity,
		}), nil
	case enum.BloomBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported bloom backend: %s", cfg.Backend)
	}
}
