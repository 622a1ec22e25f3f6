package kycapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kyc-dashboard.gomodule/typespec/reverification"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "kyc.internal"})
	assert.Error(t, err)
}

func TestListReverificationTypes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/reverification-types", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"items":[{"id":"v1","name":"Identity","isRecurringEnabled":true,"actionId":"IDENTITY_CHECK"}]}`))
	})

	catalog, err := c.ListReverificationTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "v1", catalog[0].ID)
	assert.True(t, catalog[0].IsRecurringEnabled)
}

func TestCreateReverification_SendsPayloadAndIdempotencyKey(t *testing.T) {
	key := uuid.MustParse("0b7f7c2e-5d6a-4a1c-8f77-1f1e2d3c4b5a")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/customers/cust-1/reverifications", r.URL.Path)
		assert.Equal(t, key.String(), r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"reverificationId":"v1","frequency":"ONE_TIME","startDate":"2025-01-10"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"rr-1","status":"SCHEDULED"}`))
	})

	p := reverification.Payload{
		ReverificationID: "v1",
		StartDate:        reverification.Date{Year: 2025, Month: time.January, Day: 10},
		Schedule:         reverification.OneTime{},
	}
	res, err := c.CreateReverification(context.Background(), "cust-1", p, key)
	require.NoError(t, err)
	assert.Equal(t, CreateResult{ID: "rr-1", Status: "SCHEDULED"}, res)
}

func TestCreateReverification_GeneratesKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, err := uuid.Parse(r.Header.Get("Idempotency-Key"))
		assert.NoError(t, err)
		w.Write([]byte(`{"id":"rr-2"}`))
	})

	_, err := c.CreateReverification(context.Background(), "c", reverification.Payload{Schedule: reverification.OneTime{}}, uuid.Nil)
	assert.NoError(t, err)
}

func TestCancelReverification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/c%2F1/reverifications/rr-1/cancel", r.URL.EscapedPath())
		var body reverification.CancelBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, reverification.CancelRequestTypeNextOccurrence, body.CancelRequestType)
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.CancelReverification(context.Background(), "c/1", "rr-1",
		reverification.CancelBody{CancelRequestType: reverification.CancelRequestTypeNextOccurrence})
	assert.NoError(t, err)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"not found", http.StatusNotFound, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNotFound)
		}},
		{"server error", http.StatusServiceUnavailable, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnavailable)
		}},
		{"rejection with json", http.StatusConflict, `{"message":"already scheduled"}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
			assert.Equal(t, "already scheduled", apiErr.Message)
		}},
		{"rejection with text", http.StatusUnprocessableEntity, "bad schedule\n", func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "bad schedule", apiErr.Message)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.GetCustomer(context.Background(), "c1")
			tt.check(t, err)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.ListReverificationTypes(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDownloadReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/c1/report", r.URL.Path)
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	})

	report, err := c.DownloadReport(context.Background(), "c1")
	require.NoError(t, err)
	defer report.Body.Close()

	data, err := io.ReadAll(report.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
	assert.Equal(t, "application/pdf", report.ContentType)
}
