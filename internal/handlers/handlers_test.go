package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-enricher/internal/common/errors"
	"directory-enricher/internal/config"
	"directory-enricher/internal/credentials"
	"directory-enricher/internal/directory"
	"directory-enricher/internal/directory/cache"
	"directory-enricher/internal/directory/client"
)

type fakeCache struct {
	record     *directory.EnrichedEmployeeRecord
	getErr     error
	refreshErr error

	refreshCalls int
	clearCalls   int
	lastIdentity string
}

func (f *fakeCache) GetEmployee(ctx context.Context, email string) (*directory.EnrichedEmployeeRecord, error) {
	f.lastIdentity = email
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeCache) RefreshAll(ctx context.Context) error {
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakeCache) Clear(ctx context.Context) {
	f.clearCalls++
}

func (f *fakeCache) Stats() cache.Stats {
	return cache.Stats{Entries: 2, FullLoaded: true, Policy: "eager"}
}

type fakeStore struct {
	healthErr error
}

func (f *fakeStore) Load(ctx context.Context) (*directory.CacheSnapshot, error)  { return nil, nil }
func (f *fakeStore) Save(ctx context.Context, s *directory.CacheSnapshot) error  { return nil }
func (f *fakeStore) Health(ctx context.Context) error                            { return f.healthErr }
func (f *fakeStore) Close() error                                                { return nil }

func newTestRouter(fc *fakeCache, creds *credentials.Provider, store *fakeStore) *mux.Router {
	h := New(fc, creds, store, config.Load())

	router := mux.NewRouter()
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/employees/{email}", h.GetEmployee).Methods("GET")
	router.HandleFunc("/api/refresh", h.RefreshCache).Methods("POST")
	router.HandleFunc("/api/cache/clear", h.ClearCache).Methods("POST")
	router.HandleFunc("/api/cache/stats", h.GetCacheStats).Methods("GET")
	router.HandleFunc("/api/credentials", h.UpdateCredentials).Methods("PUT")
	return router
}

func configuredProvider() *credentials.Provider {
	return credentials.NewProvider(client.Credentials{BaseURL: "https://hr.example.com", Token: "tok"})
}

func TestGetEmployee_Found(t *testing.T) {
	fc := &fakeCache{record: &directory.EnrichedEmployeeRecord{
		Email: "a@x.com",
		Team:  "Engineering",
	}}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/employees/a@x.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got directory.EnrichedEmployeeRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "Engineering", got.Team)
	assert.Equal(t, "a@x.com", fc.lastIdentity)
}

func TestGetEmployee_NotFound(t *testing.T) {
	fc := &fakeCache{record: nil}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/employees/ghost@x.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEmployee_BlankIdentity(t *testing.T) {
	fc := &fakeCache{getErr: errors.ValidationError("identity must not be blank")}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/employees/%20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshCache_Success(t *testing.T) {
	fc := &fakeCache{}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fc.refreshCalls)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Entries)
	assert.True(t, stats.FullLoaded)
}

func TestRefreshCache_UpstreamFailure(t *testing.T) {
	fc := &fakeCache{refreshErr: errors.UpstreamStatusError(503, "down")}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestClearCache(t *testing.T) {
	fc := &fakeCache{}
	router := newTestRouter(fc, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fc.clearCalls)
}

func TestGetCacheStats(t *testing.T) {
	router := newTestRouter(&fakeCache{}, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "eager", stats.Policy)
}

func TestUpdateCredentials_Success(t *testing.T) {
	creds := credentials.NewProvider(client.Credentials{})
	router := newTestRouter(&fakeCache{}, creds, &fakeStore{})

	body, _ := json.Marshal(credentialsRequest{
		BaseURL: "https://hr.example.com",
		Token:   "rotated-token",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/credentials", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rotated-token", creds.Current().Token)
	assert.True(t, creds.Configured())
}

func TestUpdateCredentials_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"baseUrl": `},
		{name: "missing token", body: `{"baseUrl": "https://hr.example.com"}`},
		{name: "missing base URL", body: `{"token": "tok"}`},
		{name: "relative base URL", body: `{"baseUrl": "hr.example.com", "token": "tok"}`},
		{name: "blank values", body: `{"baseUrl": "  ", "token": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := credentials.NewProvider(client.Credentials{})
			router := newTestRouter(&fakeCache{}, creds, &fakeStore{})

			req := httptest.NewRequest(http.MethodPut, "/api/credentials", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, creds.Configured())
		})
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	router := newTestRouter(&fakeCache{}, configuredProvider(), &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["credentialsConfigured"])
}

func TestHealthCheck_StoreUnhealthy(t *testing.T) {
	store := &fakeStore{healthErr: errors.InternalError("disk gone", nil)}
	router := newTestRouter(&fakeCache{}, configuredProvider(), store)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
