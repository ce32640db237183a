package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory-enricher/internal/common/errors"
	"directory-enricher/internal/common/utils"
	"directory-enricher/internal/directory/resolver"
)

func testRetryConfig() utils.RetryConfig {
	return utils.RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 1.0,
	}
}

func newTestClient(serverURL string) (*Client, Credentials) {
	c := New(nil, WithRetryConfig(testRetryConfig()))
	creds := Credentials{BaseURL: serverURL, Token: "secret-token"}
	return c, creds
}

func TestFetchEmployee_EnvelopeShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/people", r.URL.Path)
		assert.Equal(t, "a@x.com", r.URL.Query().Get("email"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Write([]byte(`{"employees": [{"email": "A@x.com", "displayName": "Ada", "department": "D1"}]}`))
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	record, err := c.FetchEmployee(context.Background(), creds, "A@x.com")

	require.NoError(t, err)
	assert.Equal(t, "A@x.com", record.Email) // case preserved as supplied by upstream
	assert.Equal(t, "Ada", record.DisplayName)
	assert.Equal(t, "D1", record.Department)
}

func TestFetchEmployee_BareArrayFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"email": "a@x.com", "displayName": "Ada"}]`))
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	record, err := c.FetchEmployee(context.Background(), creds, "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", record.Email)
}

func TestFetchEmployee_EmptyResultIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"employees": []}`))
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	record, err := c.FetchEmployee(context.Background(), creds, "ghost@x.com")

	assert.Nil(t, record)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestFetchEmployee_BlankIdentity(t *testing.T) {
	c, creds := newTestClient("http://unused")
	record, err := c.FetchEmployee(context.Background(), creds, "   ")

	assert.Nil(t, record)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestFetchEmployee_NonSuccessStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	record, err := c.FetchEmployee(context.Background(), creds, "a@x.com")

	assert.Nil(t, record)
	assert.True(t, errors.IsType(err, errors.ErrTypeUpstreamStatus))
	assert.Equal(t, http.StatusForbidden, errors.UpstreamStatus(err))
	// 4xx is not retryable
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchEmployee_ServerErrorIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	_, err := c.FetchEmployee(context.Background(), creds, "a@x.com")

	assert.True(t, errors.IsType(err, errors.ErrTypeUpstreamStatus))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchEmployee_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"employees": [`))
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	record, err := c.FetchEmployee(context.Background(), creds, "a@x.com")

	assert.Nil(t, record)
	assert.True(t, errors.IsType(err, errors.ErrTypeDecode))
}

func TestFetchAllEmployees_DropsRecordsWithoutEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"employees": [
			{"email": "a@x.com", "displayName": "Ada"},
			{"displayName": "No Email"},
			{"email": "   ", "displayName": "Blank Email"},
			{"email": "b@x.com", "displayName": "Bob"}
		]}`))
	}))
	defer server.Close()

	c, creds := newTestClient(server.URL)
	records, err := c.FetchAllEmployees(context.Background(), creds)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a@x.com", records[0].Email)
	assert.Equal(t, "b@x.com", records[1].Email)
}

func TestFetchAllEmployees_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c, creds := newTestClient(server.URL)
	records, err := c.FetchAllEmployees(context.Background(), creds)

	assert.Nil(t, records)
	assert.True(t, errors.IsType(err, errors.ErrTypeTransport))
}

func TestFetchNamedList_BothShapesFlattenIdentically(t *testing.T) {
	wrapped := `{"name": "departments", "values": [
		{"id": "D1", "name": "Engineering", "children": [{"id": "D2", "name": "Platform"}]},
		{"id": "D3", "name": "Sales"}
	]}`
	bare := `[
		{"id": "D1", "name": "Engineering", "children": [{"id": "D2", "name": "Platform"}]},
		{"id": "D3", "name": "Sales"}
	]`

	var mappings []map[string]string
	for _, payload := range []string{wrapped, bare} {
		body := payload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/company/named-lists/departments", r.URL.Path)
			w.Write([]byte(body))
		}))

		c, creds := newTestClient(server.URL)
		list, err := c.FetchNamedList(context.Background(), creds, "departments")
		server.Close()

		require.NoError(t, err)
		assert.Equal(t, "departments", list.Name)
		mappings = append(mappings, resolver.Flatten(list.Items))
	}

	assert.Equal(t, mappings[0], mappings[1])
	assert.Equal(t, map[string]string{
		"D1": "Engineering",
		"D2": "Platform",
		"D3": "Sales",
	}, mappings[0])
}

func TestFetchNamedList_BlankCategory(t *testing.T) {
	c, creds := newTestClient("http://unused")
	list, err := c.FetchNamedList(context.Background(), creds, "")

	assert.Nil(t, list)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestCredentials_AuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Bearer tok", Credentials{Token: "tok"}.AuthorizationHeader())
	assert.Equal(t, "Basic tok", Credentials{AuthScheme: "Basic", Token: "tok"}.AuthorizationHeader())
}
