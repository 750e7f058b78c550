package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/signal"
)

// scanCommits is detection step 3: read a bounded window of recent commit
// messages on the default branch and flag the ones where i18n work and
// manual-process pain show up in the same message.
func (s *Scanner) scanCommits(ctx context.Context, owner, repo, defaultBranch string, limit int) ([]signal.Signal, int, error) {
	if limit > 100 {
		limit = 100
	}
	commits, err := s.client.ListCommits(ctx, owner, repo, defaultBranch, limit)
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var found []signal.Signal
	for _, commit := range commits {
		message := strings.ToLower(commit.Commit.Message)
		if len(matchKeywords(message, s.rules.I18nKeywords)) == 0 {
			continue
		}
		phrases := matchKeywords(message, s.rules.FrustrationPhrases)
		if len(phrases) == 0 {
			continue
		}
		found = append(found, signal.Signal{
			Type:         signal.TypeFrustration,
			Repository:   repo,
			Ref:          commit.SHA,
			Significance: signal.SignificanceLow,
			DetectedAt:   nowUTC(),
			Keywords:     phrases,
			Excerpt:      signal.Excerpt(firstLine(commit.Commit.Message)),
		})
	}
	return found, len(commits), nil
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}

// scanBranches is detection step 4: find i18n-named branches whose head is
// strictly ahead of the default branch in time. A matching branch that is
// merely a stale fork point is noise; unmerged work newer than the default
// head is someone mid-flight on localization.
func (s *Scanner) scanBranches(ctx context.Context, owner, repo, defaultBranch string) ([]signal.Signal, error) {
	branches, err := s.client.ListBranches(ctx, owner, repo, 100)
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var defaultSHA string
	type match struct {
		branch  gh.Branch
		pattern string
	}
	var matches []match
	for _, branch := range branches {
		if branch.Name == defaultBranch {
			defaultSHA = branch.Commit.SHA
			continue
		}
		name := strings.ToLower(branch.Name)
		for _, pattern := range s.rules.BranchPatterns {
			if strings.Contains(name, pattern) {
				matches = append(matches, match{branch: branch, pattern: pattern})
				break
			}
		}
	}
	if len(matches) == 0 || defaultSHA == "" {
		return nil, nil
	}

	defaultHead, err := s.client.GetCommit(ctx, owner, repo, defaultSHA)
	if err != nil {
		return nil, err
	}
	defaultDate := defaultHead.Commit.Committer.Date

	var found []signal.Signal
	for _, m := range matches {
		head, err := s.client.GetCommit(ctx, owner, repo, m.branch.Commit.SHA)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return found, err
		}
		headDate := head.Commit.Committer.Date
		if !headDate.After(defaultDate) {
			continue
		}
		found = append(found, signal.Signal{
			Type:         signal.TypeGhostBranch,
			Repository:   repo,
			Ref:          m.branch.Name,
			Significance: signal.SignificanceHigh,
			DetectedAt:   nowUTC(),
			Pattern:      m.pattern,
			Excerpt:      signal.Excerpt(fmt.Sprintf("branch %s ahead of %s since %s", m.branch.Name, defaultBranch, headDate.Format("2006-01-02"))),
		})
	}
	return found, nil
}
