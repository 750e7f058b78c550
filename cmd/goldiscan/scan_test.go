package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingohawk/goldiscan/internal/config"
	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/signal"
	"github.com/lingohawk/goldiscan/internal/storage/sqlite"
)

// fakeAPI serves a minimal GitHub API with one scannable organization.
// Unregistered paths 404 so unknown orgs resolve to not-found.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		w.Write(data)
	}

	mux.HandleFunc("/orgs/acme", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gh.Organization{Login: "acme", Name: "Acme", PublicRepos: 12})
	})
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []gh.Repository{{
			Name: "web", FullName: "acme/web", Stars: 10,
			PushedAt: time.Now().UTC(), DefaultBranch: "main",
		}})
	})
	mux.HandleFunc("/search/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gh.SearchUsersResult{})
	})
	mux.HandleFunc("/repos/acme/web/contents/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []gh.ContentEntry{})
	})
	mux.HandleFunc("/repos/acme/web/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []gh.Commit{})
	})
	mux.HandleFunc("/repos/acme/web/branches", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []gh.Branch{})
	})
	mux.HandleFunc("/repos/acme/web/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []gh.PullRequest{})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		if _, pattern := mux.Handler(r); pattern == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunScansFailureStaysScoped(t *testing.T) {
	srv := fakeAPI(t)

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL
	cfg.Timeout = 30 * time.Second

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	err = runScans(ctx, cfg, store, []string{"nosuchorg", "acme"})
	assert.Error(t, err, "the unknown organization is a real failure")
	assert.Contains(t, err.Error(), "nosuchorg")

	// The sibling scan finished and persisted despite it.
	sessions, err := store.ListSessions(ctx, "acme", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, signal.StatusComplete, sessions[0].Status)
}
