package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/fystack/address-intake/pkg/allowlist"
	"github.com/fystack/address-intake/pkg/store/confirmedstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	allowedAddress    = "0x1234567890123456789012345678901234567890"
	notAllowedAddress = "0x9999999999999999999999999999999999999999"
)

func newTestService() *Service {
	list := allowlist.NewStatic([]string{allowedAddress})
	return NewService(list, confirmedstore.NewMemoryStore())
}

func TestSubmit_InvalidFormat(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, raw := range []string{
		"",
		"0x",
		"not-an-address",
		"0xZZ34567890123456789012345678901234567890",
		"0x123456789012345678901234567890123456789",
	} {
		_, err := svc.Submit(ctx, raw)
		require.ErrorIs(t, err, ErrInvalidFormat, "%q", raw)
	}
}

func TestSubmit_NotAllowlisted(t *testing.T) {
	svc := newTestService()

	res, err := svc.Submit(context.Background(), notAllowedAddress)
	require.ErrorIs(t, err, ErrNotAllowlisted)
	assert.False(t, res.Verified)
}

func TestSubmit_FirstAndSecondCall(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res, err := svc.Submit(ctx, allowedAddress)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.True(t, res.Inserted, "first call should insert")

	res, err = svc.Submit(ctx, allowedAddress)
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.False(t, res.Inserted, "second call should be a no-op")
}

func TestSubmit_CaseInsensitive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	upper := "0x1234567890123456789012345678901234567890"
	// same digits, different case of hex letters is exercised below
	mixed := "0X1234567890123456789012345678901234567890"

	res, err := svc.Submit(ctx, upper)
	require.NoError(t, err)
	assert.True(t, res.Inserted)

	// uppercase 0X prefix is a format error, not a case variant
	_, err = svc.Submit(ctx, mixed)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSubmit_MixedCaseHexConverges(t *testing.T) {
	addr := "0xabcdef0123456789abcdef0123456789abcdef01"
	mixed := "0xABCDEF0123456789abcdef0123456789ABCDEF01"

	list := allowlist.NewStatic([]string{addr})
	svc := NewService(list, confirmedstore.NewMemoryStore())
	ctx := context.Background()

	res, err := svc.Submit(ctx, mixed)
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.Equal(t, addr, res.Address)

	res, err = svc.Submit(ctx, addr)
	require.NoError(t, err)
	assert.False(t, res.Inserted, "case variants must converge on one record")
}

type failingStore struct{}

func (failingStore) Insert(ctx context.Context, address string) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStore) Contains(ctx context.Context, address string) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStore) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}
func (failingStore) Close() error { return nil }

func TestSubmit_StorageFailure(t *testing.T) {
	list := allowlist.NewStatic([]string{allowedAddress})
	svc := NewService(list, failingStore{})

	_, err := svc.Submit(context.Background(), allowedAddress)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
	assert.NotErrorIs(t, err, ErrNotAllowlisted)
}

func TestStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, allowedAddress)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.AllowlistCount)
	assert.Equal(t, int64(1), stats.ConfirmedCount)
}
