package kickfire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_CompanyFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/company", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("website"))
		assert.Equal(t, "kf-test", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[{"name":"Acme Corp","isISP":0}]}`))
	}))
	defer srv.Close()

	client := NewClient("kf-test", WithBaseURL(srv.URL))
	got, err := client.Lookup(context.Background(), "acme.com")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.False(t, got.ISP)
}

func TestLookup_ISPDomain(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[{"name":"Gmail","isISP":1}]}`))
	}))
	defer srv.Close()

	client := NewClient("kf-test", WithBaseURL(srv.URL))
	got, err := client.Lookup(context.Background(), "gmail.com")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.ISP)
}

func TestLookup_NoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"failure","data":[]}`))
	}))
	defer srv.Close()

	client := NewClient("kf-test", WithBaseURL(srv.URL))
	got, err := client.Lookup(context.Background(), "nonexistent.example")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookup_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`bad key`))
	}))
	defer srv.Close()

	client := NewClient("kf-test", WithBaseURL(srv.URL))
	_, err := client.Lookup(context.Background(), "acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestLookup_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("kf-test", WithBaseURL(srv.URL))
	_, err := client.Lookup(context.Background(), "acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
