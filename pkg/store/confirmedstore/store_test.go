package confirmedstore

import (
	"context"
	"sync"
	"testing"

	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x1234567890123456789012345678901234567890"

func TestMemoryStore_IdempotentInsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	inserted, err := store.Insert(ctx, testAddress)
	require.NoError(t, err)
	assert.True(t, inserted, "first insert should report inserted")

	inserted, err = store.Insert(ctx, testAddress)
	require.NoError(t, err)
	assert.False(t, inserted, "second insert should be a no-op")

	ok, err := store.Contains(ctx, testAddress)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_ConcurrentInsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.Insert(ctx, testAddress)
			if err != nil {
				t.Errorf("Insert failed: %v", err)
				return
			}
			if inserted {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, firsts, "exactly one submission should win the insert")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestKVStore_ConcurrentInsert(t *testing.T) {
	badger, err := kvstore.NewBadgerStore(t.TempDir(), "", infra.JSON)
	require.NoError(t, err)

	store := NewKVStore(badger)
	defer store.Close()

	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := store.Insert(ctx, testAddress)
			if err != nil {
				t.Errorf("Insert failed: %v", err)
				return
			}
			if inserted {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, firsts, "exactly one submission should win the insert")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestKVStore_IdempotentInsert(t *testing.T) {
	badger, err := kvstore.NewBadgerStore(t.TempDir(), "", infra.JSON)
	require.NoError(t, err)

	store := NewKVStore(badger)
	defer store.Close()

	ctx := context.Background()

	inserted, err := store.Insert(ctx, testAddress)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Insert(ctx, testAddress)
	require.NoError(t, err)
	assert.False(t, inserted)

	ok, err := store.Contains(ctx, testAddress)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Contains(ctx, "0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
