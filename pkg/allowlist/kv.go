package allowlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/fystack/address-intake/pkg/common/constant"
	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/kvstore"
)

type kvAllowlist struct {
	store infra.KVStore
}

// NewKVAllowlist backs membership with a KV store seeded by the kv-load
// command under allowlist/<address> keys.
func NewKVAllowlist(store infra.KVStore) Allowlist {
	return &kvAllowlist{store: store}
}

func composeKey(address string) string {
	return fmt.Sprintf("%s/%s", constant.AllowlistKeyPrefix, address)
}

func (a *kvAllowlist) Contains(ctx context.Context, address string) (bool, error) {
	v, err := a.store.GetWithOptions(composeKey(address), &kvstore.DefaultCacheOptions)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return v != "", nil
}

func (a *kvAllowlist) Count(ctx context.Context) (int64, error) {
	pairs, err := a.store.List(constant.AllowlistKeyPrefix + "/")
	if err != nil {
		return 0, err
	}
	return int64(len(pairs)), nil
}
