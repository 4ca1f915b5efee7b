package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
	})
}

func TestClientCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/catalog", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"entries": [
				{"id": "eos", "name": "ETC Eos Family", "products": ["Eos", "Ion"], "keywords": ["lighting", "console"]},
				{"id": "x32", "name": "Behringer X32", "products": ["X32"]}
			],
			"last_updated": 1724500000000
		}`))
	}))
	defer srv.Close()

	catalog, err := newTestClient(srv.URL).Catalog(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog.Entries, 2)
	assert.Equal(t, "eos", catalog.Entries[0].ID)
	assert.Equal(t, []string{"lighting", "console"}, catalog.Entries[0].Keywords)
	assert.Equal(t, int64(1724500000000), catalog.LastUpdated)
}

func TestClientCatalogServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Catalog(context.Background())
	assert.Error(t, err)
}

func TestClientModuleInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/modules/eos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"last_updated": 1724500000000, "update_warning": "2.x requires firmware 3.1"}`))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).ModuleInfo(context.Background(), "eos")
	require.NoError(t, err)

	assert.Equal(t, "eos", info.ModuleID)
	assert.Equal(t, int64(1724500000000), info.LastUpdated)
	assert.Equal(t, "2.x requires firmware 3.1", info.UpdateWarning)
}

func TestClientModuleInfoEmptyID(t *testing.T) {
	_, err := newTestClient("http://unused.invalid").ModuleInfo(context.Background(), "")
	assert.Error(t, err)
}
