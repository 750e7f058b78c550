package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingohawk/goldiscan/internal/gh"
)

func newClient(t *testing.T, mux *http.ServeMux) *gh.Client {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		mux.ServeHTTP(w, r)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := gh.NewClient(gh.Config{BaseURL: srv.URL, Tokens: []string{"t"}})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, v any) {
	data, _ := json.Marshal(v)
	w.Write(data)
}

func TestFindOrganizationDirectHit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gh.Organization{Login: "acme", PublicRepos: 42})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	org, err := FindOrganization(context.Background(), newClient(t, mux), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Login)
}

func TestFindOrganizationTriesLoginVariants(t *testing.T) {
	// "Acme Corp" is not a login; the squashed variant is.
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acmecorp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gh.Organization{Login: "acmecorp", PublicRepos: 30})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	org, err := FindOrganization(context.Background(), newClient(t, mux), "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "acmecorp", org.Login)
}

func TestFindOrganizationSearchFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"total_count": 1,
			"items":       []map[string]string{{"login": "acme-inc"}},
		})
	})
	mux.HandleFunc("/orgs/acme-inc", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, gh.Organization{Login: "acme-inc", PublicRepos: 7})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	org, err := FindOrganization(context.Background(), newClient(t, mux), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme-inc", org.Login)
}

func TestFindOrganizationNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"total_count": 0, "items": []any{}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := FindOrganization(context.Background(), newClient(t, mux), "nonesuch")
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func repoList(repos ...gh.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, repos)
	}
}

func TestListRepositoriesFiltersAndRanks(t *testing.T) {
	now := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", repoList(
		gh.Repository{Name: "tiny-tool", Stars: 50, PushedAt: now},
		gh.Repository{Name: "webapp", Stars: 200, Language: "TypeScript", PushedAt: now},
		gh.Repository{Name: "old-prototype", Stars: 5000, PushedAt: now.AddDate(-4, 0, 0)},
		gh.Repository{Name: "archived-thing", Stars: 9000, Archived: true, PushedAt: now},
		gh.Repository{Name: "forked-web", Stars: 800, Fork: true, PushedAt: now},
	))

	descriptors, err := ListRepositories(context.Background(), newClient(t, mux), "acme", DefaultConfig())
	require.NoError(t, err)

	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	// Archived and stale repos are gone entirely.
	assert.NotContains(t, names, "archived-thing")
	assert.NotContains(t, names, "old-prototype")
	// webapp: 200 stars + 1000 (name) + 500 (TypeScript) leads.
	require.NotEmpty(t, descriptors)
	assert.Equal(t, "webapp", descriptors[0].Name)
	assert.Equal(t, 1700, descriptors[0].Rank)
}

func TestListRepositoriesStaleFallback(t *testing.T) {
	// Every repo is outside the inactivity window; the most recently pushed
	// ones are kept anyway so a dormant org still gets scanned.
	old := time.Now().AddDate(-5, 0, 0)
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", repoList(
		gh.Repository{Name: "ancient", Stars: 10, PushedAt: old},
		gh.Repository{Name: "older", Stars: 10, PushedAt: old.AddDate(-1, 0, 0)},
	))

	descriptors, err := ListRepositories(context.Background(), newClient(t, mux), "acme", DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, descriptors, 2)
}

func TestListRepositoriesEmptyOrg(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", repoList())

	_, err := ListRepositories(context.Background(), newClient(t, mux), "acme", DefaultConfig())
	assert.ErrorIs(t, err, ErrOrganizationEmpty)
}

func TestRankRepository(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want int
	}{
		{"plain", Descriptor{Name: "docs", Stars: 100}, 100},
		{"high-value name", Descriptor{Name: "mobile-app", Stars: 100}, 1100},
		{"low-value name", Descriptor{Name: "scripts", Stars: 100}, -400},
		{"fork penalty", Descriptor{Name: "docs", Stars: 100, Fork: true}, -900},
		{"language bump", Descriptor{Name: "docs", Stars: 100, Language: "Swift"}, 600},
		{"name bumps apply once", Descriptor{Name: "web-app-frontend", Stars: 0}, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rankRepository(tt.d))
		})
	}
}

func TestLoginVariants(t *testing.T) {
	variants := loginVariants("Acme Corp")
	assert.Contains(t, variants, "Acme Corp")
	assert.Contains(t, variants, "acmecorp")
	assert.Contains(t, variants, "acme-corp")
	assert.Contains(t, variants, "acme_corp")
	assert.Contains(t, variants, "acmecorplabs")

	// No duplicates even when the name is already squashed.
	short := loginVariants("acme")
	seen := map[string]bool{}
	for _, v := range short {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}
