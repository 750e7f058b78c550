// Package discovery locates a company's GitHub organization and ranks its
// repositories for scanning. Ranking favors active, popular, original
// repositories: those are the ones most likely to carry current i18n signals.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lingohawk/goldiscan/internal/gh"
)

// ErrOrganizationNotFound means no GitHub organization matched the company
// name. This is the only condition that prevents a result from being scored.
var ErrOrganizationNotFound = errors.New("organization not found")

// ErrOrganizationEmpty means the organization exists but has zero
// non-archived repositories. Callers produce a zero-signal result, not a
// failure.
var ErrOrganizationEmpty = errors.New("organization has no scannable repositories")

// Config tunes repository listing and filtering.
type Config struct {
	InactivityDays     int // skip repos not pushed within this window
	InactivityFallback int // if all repos are stale, keep the N most recent
	MaxPages           int // pagination safety limit
}

// DefaultConfig mirrors the production defaults: two years of inactivity
// tolerance and a fallback so a dormant org still yields something to scan.
func DefaultConfig() Config {
	return Config{
		InactivityDays:     730,
		InactivityFallback: 10,
		MaxPages:           20,
	}
}

// Descriptor is one ranked repository candidate.
type Descriptor struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Stars         int       `json:"stars"`
	Language      string    `json:"language"`
	PushedAt      time.Time `json:"pushed_at"`
	Fork          bool      `json:"fork"`
	DefaultBranch string    `json:"default_branch"`
	Rank          int       `json:"rank"`
}

// Name-pattern and language tables feeding the ranking composite. High-value
// patterns identify core product repositories; docs repos are deliberately
// not down-ranked because doc sites are often where i18n work starts.
var (
	highValuePatterns = []string{
		"web", "app", "frontend", "mobile", "ios", "android",
		"server", "api", "ui", "client", "monorepo",
		"website", "marketing", "dashboard", "console",
	}
	lowValuePatterns   = []string{"tool", "script", "demo", "example", "test", "fork"}
	highValueLanguages = map[string]bool{
		"TypeScript": true, "JavaScript": true, "Swift": true, "Kotlin": true,
	}
)

// FindOrganization resolves a company name to a GitHub organization, trying
// direct login variants before falling back to the search API.
func FindOrganization(ctx context.Context, client *gh.Client, name string) (*gh.Organization, error) {
	var candidates []*gh.Organization
	for _, variant := range loginVariants(name) {
		org, err := client.GetOrganization(ctx, variant)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return nil, err
		}
		// A login with a healthy repo count is almost certainly the right org.
		if org.PublicRepos > 10 {
			return org, nil
		}
		candidates = append(candidates, org)
	}
	if best := mostRepos(candidates); best != nil {
		return best, nil
	}

	result, err := client.SearchOrganizations(ctx, name, 10)
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", name, ErrOrganizationNotFound)
		}
		return nil, err
	}
	if best := bestSearchMatch(ctx, client, name, result); best != nil {
		return best, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrOrganizationNotFound)
}

// ListRepositories enumerates and ranks an organization's repositories.
// Archived repositories are excluded outright; repositories with no push
// inside the inactivity window are dropped unless that would leave nothing,
// in which case the most recently pushed survivors are kept.
func ListRepositories(ctx context.Context, client *gh.Client, login string, cfg Config) ([]Descriptor, error) {
	const perPage = 100
	cutoff := time.Now().AddDate(0, 0, -cfg.InactivityDays)

	var active, nonArchived []gh.Repository
	for page := 1; page <= cfg.MaxPages; page++ {
		repos, err := client.ListRepositories(ctx, login, page, perPage)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				return nil, fmt.Errorf("%q: %w", login, ErrOrganizationNotFound)
			}
			return nil, err
		}
		for _, r := range repos {
			if r.Archived {
				continue
			}
			nonArchived = append(nonArchived, r)
			if r.PushedAt.IsZero() || r.PushedAt.After(cutoff) {
				active = append(active, r)
			}
		}
		if len(repos) < perPage {
			break
		}
	}

	if len(nonArchived) == 0 {
		return nil, fmt.Errorf("%q: %w", login, ErrOrganizationEmpty)
	}
	if len(active) == 0 {
		sort.Slice(nonArchived, func(i, j int) bool {
			return nonArchived[i].PushedAt.After(nonArchived[j].PushedAt)
		})
		n := cfg.InactivityFallback
		if n > len(nonArchived) {
			n = len(nonArchived)
		}
		active = nonArchived[:n]
	}

	descriptors := make([]Descriptor, 0, len(active))
	for _, r := range active {
		d := Descriptor{
			Name:          r.Name,
			FullName:      r.FullName,
			Stars:         r.Stars,
			Language:      r.Language,
			PushedAt:      r.PushedAt,
			Fork:          r.Fork,
			DefaultBranch: r.DefaultBranch,
		}
		d.Rank = rankRepository(d)
		descriptors = append(descriptors, d)
	}
	sort.SliceStable(descriptors, func(i, j int) bool {
		return descriptors[i].Rank > descriptors[j].Rank
	})
	return descriptors, nil
}

// rankRepository computes the composite priority for one repository:
// star count as the base, bumped for core-product names and frontend/mobile
// languages, penalized for non-core names and forks.
func rankRepository(d Descriptor) int {
	score := d.Stars
	name := strings.ToLower(d.Name)
	for _, p := range highValuePatterns {
		if strings.Contains(name, p) {
			score += 1000
			break
		}
	}
	for _, p := range lowValuePatterns {
		if strings.Contains(name, p) {
			score -= 500
			break
		}
	}
	if d.Fork {
		score -= 1000
	}
	if highValueLanguages[d.Language] {
		score += 500
	}
	return score
}

func loginVariants(name string) []string {
	lower := strings.ToLower(name)
	squashed := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(lower)
	variants := []string{
		name,
		squashed,
		strings.ReplaceAll(lower, " ", "-"),
		strings.ReplaceAll(lower, " ", "_"),
		squashed + "labs",
		squashed + "engineering",
	}
	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func mostRepos(orgs []*gh.Organization) *gh.Organization {
	var best *gh.Organization
	for _, o := range orgs {
		if best == nil || o.PublicRepos > best.PublicRepos {
			best = o
		}
	}
	return best
}

// bestSearchMatch prefers an exact login match with public repos, then the
// containing match with the most repositories.
func bestSearchMatch(ctx context.Context, client *gh.Client, name string, result *gh.SearchUsersResult) *gh.Organization {
	if result == nil || result.TotalCount == 0 {
		return nil
	}
	lower := strings.ToLower(name)
	var detailed []*gh.Organization
	limit := len(result.Items)
	if limit > 5 {
		limit = 5
	}
	for _, item := range result.Items[:limit] {
		org, err := client.GetOrganization(ctx, item.Login)
		if err != nil {
			continue
		}
		detailed = append(detailed, org)
	}
	for _, org := range detailed {
		if strings.ToLower(org.Login) == lower && org.PublicRepos > 0 {
			return org
		}
	}
	var best *gh.Organization
	for _, org := range detailed {
		login := strings.ToLower(org.Login)
		if !strings.Contains(login, lower) && !strings.Contains(lower, login) {
			continue
		}
		if best == nil || org.PublicRepos > best.PublicRepos {
			best = org
		}
	}
	if best != nil {
		return best
	}
	if len(detailed) > 0 {
		return detailed[0]
	}
	return nil
}
