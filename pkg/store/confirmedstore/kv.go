package confirmedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/fystack/address-intake/pkg/common/constant"
	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/kvstore"
)

type kvConfirmedStore struct {
	store infra.KVStore
}

// conditionalSetter is implemented by KV backends that can create a key
// atomically, making the inserted flag exact under concurrency.
type conditionalSetter interface {
	SetIfAbsent(key string, value string) (bool, error)
}

// NewKVStore persists confirmations under confirmed/<address> keys.
// Backends implementing conditionalSetter report the inserted flag
// exactly; others fall back to get-then-set, which is best-effort
// across processes.
func NewKVStore(store infra.KVStore) Store {
	return &kvConfirmedStore{store: store}
}

func composeKey(address string) string {
	return fmt.Sprintf("%s/%s", constant.ConfirmedKeyPrefix, address)
}

func (s *kvConfirmedStore) Insert(ctx context.Context, address string) (bool, error) {
	key := composeKey(address)

	if cs, ok := s.store.(conditionalSetter); ok {
		return cs.SetIfAbsent(key, "ok")
	}

	_, err := s.store.Get(key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return false, err
	}

	if err := s.store.Set(key, "ok"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *kvConfirmedStore) Contains(ctx context.Context, address string) (bool, error) {
	_, err := s.store.Get(composeKey(address))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *kvConfirmedStore) Count(ctx context.Context) (int64, error) {
	pairs, err := s.store.List(constant.ConfirmedKeyPrefix + "/")
	if err != nil {
		return 0, err
	}
	return int64(len(pairs)), nil
}

func (s *kvConfirmedStore) Close() error {
	return s.store.Close()
}
