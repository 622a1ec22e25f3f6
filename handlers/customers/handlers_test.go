package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/internal/storage"
	"kyc-dashboard.gomodule/typespec/common"
	"kyc-dashboard.gomodule/typespec/customers"
	"kyc-dashboard.gomodule/typespec/reverification"
)

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	gets    int
}

func (a *fakeArchive) Get(_ context.Context, key string) (storage.ArchivedReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gets++
	data, ok := a.objects[key]
	if !ok {
		return storage.ArchivedReport{}, storage.ErrNotArchived
	}
	return storage.ArchivedReport{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	}, nil
}

func (a *fakeArchive) Put(_ context.Context, key, _ string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = append([]byte(nil), data...)
	return nil
}

type backendCalls struct {
	mu      sync.Mutex
	reports int
	search  []string
}

func newTestServer(t *testing.T) (*server.Server, *backendCalls) {
	t.Helper()
	calls := &backendCalls{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/customers/search", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls.mu.Lock()
		calls.search = append(calls.search, string(body))
		calls.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"customerId":"c1","fullName":"Ada Lovelace","status":"VERIFIED"}]}`))
	})
	mux.HandleFunc("GET /v1/customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "c1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"customerId":"c1","fullName":"Ada Lovelace","status":"VERIFIED","createdAt":"2024-06-01T00:00:00Z"}`))
	})
	mux.HandleFunc("GET /v1/customers/{id}/report", func(w http.ResponseWriter, r *http.Request) {
		calls.mu.Lock()
		calls.reports++
		calls.mu.Unlock()
		if r.PathValue("id") != "c1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 report"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := kycapi.New(kycapi.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	return &server.Server{
		Backend: client,
		Policy:  reverification.DefaultPolicy(),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     func() time.Time { return time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC) },
	}, calls
}

func TestFilterCustomers_Proxies(t *testing.T) {
	s, calls := newTestServer(t)

	body := `{"query":"ada","status":"VERIFIED"}`
	r := httptest.NewRequest(http.MethodPost, "/admin/filter-customers", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	FilterCustomers(s)(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")
	assert.Equal(t, []string{body}, calls.search)
}

func TestFilterCustomers_Invalid(t *testing.T) {
	s, calls := newTestServer(t)

	r := httptest.NewRequest(http.MethodPost, "/admin/filter-customers", bytes.NewBufferString(`{"status":"ARCHIVED"}`))
	w := httptest.NewRecorder()
	FilterCustomers(s)(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, calls.search)
}

func TestGetCustomer(t *testing.T) {
	s, _ := newTestServer(t)

	get := func(id string) *httptest.ResponseRecorder {
		data, _ := json.Marshal(customers.GetCustomerRequest{CustomerID: common.CustomerID(id)})
		w := httptest.NewRecorder()
		GetCustomer(s)(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data)))
		return w
	}

	w := get("c1")
	require.Equal(t, http.StatusOK, w.Code)
	var c customers.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, customers.CustomerStatusVerified, c.Status)

	assert.Equal(t, http.StatusNotFound, get("c2").Code)
	assert.Equal(t, http.StatusBadRequest, get("").Code)
}

func TestVerificationReport_DownloadsAndArchives(t *testing.T) {
	s, calls := newTestServer(t)
	archive := &fakeArchive{objects: map[string][]byte{}}
	s.Reports = archive

	download := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		VerificationReport(s)(w, httptest.NewRequest(http.MethodGet, "/admin/verification-report?customerId=c1", nil))
		return w
	}

	w := download()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7 report", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="verification-report-c1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte("%PDF-1.7 report"), archive.objects["reports/c1/2025-01-05.pdf"])

	// Second download is served from the archive
	w = download()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7 report", w.Body.String())
	assert.Equal(t, 1, calls.reports)
}

func TestVerificationReport_WithoutArchive(t *testing.T) {
	s, calls := newTestServer(t)

	w := httptest.NewRecorder()
	VerificationReport(s)(w, httptest.NewRequest(http.MethodGet, "/admin/verification-report?customerId=c1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.7 report", w.Body.String())
	assert.Equal(t, 1, calls.reports)
}

func TestVerificationReport_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	VerificationReport(s)(w, httptest.NewRequest(http.MethodGet, "/admin/verification-report", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	VerificationReport(s)(w, httptest.NewRequest(http.MethodGet, "/admin/verification-report?customerId=unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
