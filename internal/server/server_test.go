package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/typespec/reverification"
)

type memoryCache struct {
	catalog reverification.Catalog
	getErr  error
	sets    int
}

func (m *memoryCache) Get(context.Context) (reverification.Catalog, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.catalog, m.catalog != nil, nil
}

func (m *memoryCache) Set(_ context.Context, c reverification.Catalog) error {
	m.catalog = c
	m.sets++
	return nil
}

func newCatalogServer(t *testing.T, status int) (*Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(`{"items":[{"id":"v1","isRecurringEnabled":true}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := kycapi.New(kycapi.Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return &Server{
		Backend: client,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, &hits
}

func TestCatalog_ReadThroughCache(t *testing.T) {
	s, hits := newCatalogServer(t, http.StatusOK)
	cache := &memoryCache{}
	s.Catalogs = cache
	ctx := context.Background()

	c, err := s.Catalog(ctx, false)
	require.NoError(t, err)
	assert.Len(t, c, 1)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.sets)

	_, err = s.Catalog(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = s.Catalog(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 2, cache.sets)
}

func TestCatalog_CacheErrorFallsThrough(t *testing.T) {
	s, hits := newCatalogServer(t, http.StatusOK)
	s.Catalogs = &memoryCache{getErr: errors.New("redis down")}

	c, err := s.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, c, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCatalog_BackendFailure(t *testing.T) {
	s, _ := newCatalogServer(t, http.StatusBadGateway)

	_, err := s.Catalog(context.Background(), false)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.ErrorIs(t, err, kycapi.ErrUnavailable)
}

func TestValidatorUsesServerClock(t *testing.T) {
	s := &Server{Now: func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }}
	v := s.Validator(reverification.Catalog{{ID: "v1"}})

	_, errs := v.Validate(reverification.Draft{ReverificationID: "v1", Frequency: reverification.FrequencyOneTime, StartDate: "2029-12-31"})
	require.Len(t, errs, 1)
	assert.Equal(t, reverification.FieldStartDate, errs[0].Field)
}

func TestWriteBackendError(t *testing.T) {
	s := &Server{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	w := httptest.NewRecorder()
	s.WriteBackendError(w, r, kycapi.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.WriteBackendError(w, r, &kycapi.APIError{StatusCode: http.StatusConflict, Message: "duplicate"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"duplicate"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.WriteBackendError(w, r, errors.New("timeout"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
