package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fystack/address-intake/internal/intake"
	"github.com/fystack/address-intake/pkg/allowlist"
	"github.com/fystack/address-intake/pkg/store/confirmedstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allowedAddress = "0x1234567890123456789012345678901234567890"

func newTestHandler(t *testing.T) *IntakeHTTPHandler {
	t.Helper()
	list := allowlist.NewStatic([]string{allowedAddress})
	service := intake.NewService(list, confirmedstore.NewMemoryStore())
	return NewIntakeHTTPHandler("test", service)
}

func postVerify(t *testing.T, h *IntakeHTTPHandler, body string) (*httptest.ResponseRecorder, VerifyResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleVerify_Success(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := postVerify(t, h, `{"address":"`+allowedAddress+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Verified)
	assert.True(t, *resp.Verified)
	require.NotNil(t, resp.Inserted)
	assert.True(t, *resp.Inserted)

	// second submission is a no-op, still 200
	rec, resp = postVerify(t, h, `{"address":"`+allowedAddress+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Inserted)
	assert.False(t, *resp.Inserted)
}

func TestHandleVerify_CaseInsensitive(t *testing.T) {
	lower := "0xabcdef0123456789abcdef0123456789abcdef01"
	mixed := "0xABCDEF0123456789abcdef0123456789ABCDEF01"

	list := allowlist.NewStatic([]string{lower})
	service := intake.NewService(list, confirmedstore.NewMemoryStore())
	h := NewIntakeHTTPHandler("test", service)

	rec, resp := postVerify(t, h, `{"address":"`+mixed+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Inserted)
	assert.True(t, *resp.Inserted)

	rec, resp = postVerify(t, h, `{"address":"`+lower+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Inserted)
	assert.False(t, *resp.Inserted, "case variants must converge on one record")
}

func TestHandleVerify_InvalidFormat(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := postVerify(t, h, `{"address":"0xZZ34567890123456789012345678901234567890"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "Invalid wallet address format")
}

func TestHandleVerify_NotAllowlisted(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := postVerify(t, h, `{"address":"0x9999999999999999999999999999999999999999"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.OK)
	require.NotNil(t, resp.Verified)
	assert.False(t, *resp.Verified)
}

func TestHandleVerify_BadBody(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := postVerify(t, h, `{"address": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.OK)
}

func TestHandleVerify_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/verify", nil)
	rec := httptest.NewRecorder()
	h.HandleVerify(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type failingStore struct{}

func (failingStore) Insert(ctx context.Context, address string) (bool, error) {
	return false, errors.New("dial tcp: connection refused")
}
func (failingStore) Contains(ctx context.Context, address string) (bool, error) {
	return false, errors.New("dial tcp: connection refused")
}
func (failingStore) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("dial tcp: connection refused")
}
func (failingStore) Close() error { return nil }

func TestHandleVerify_StorageFailure(t *testing.T) {
	list := allowlist.NewStatic([]string{allowedAddress})
	service := intake.NewService(list, failingStore{})
	h := NewIntakeHTTPHandler("test", service)

	rec, resp := postVerify(t, h, `{"address":"`+allowedAddress+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.OK)
	// the underlying error is logged, not echoed
	assert.NotContains(t, resp.Error, "connection refused")
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestHandleStats(t *testing.T) {
	h := newTestHandler(t)

	_, _ = postVerify(t, h, `{"address":"`+allowedAddress+`"}`)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.HandleStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.AllowlistCount)
	assert.Equal(t, int64(1), resp.ConfirmedCount)

	postReq := httptest.NewRequest(http.MethodPost, "/stats", nil)
	rec = httptest.NewRecorder()
	h.HandleStats(rec, postReq)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
