package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/signal"
)

// scanPulls is detection step 5: read recent pull requests and separate
// talk from delivery. A PR discussing i18n strategy without touching any
// translated catalog is an rfc_discussion; a PR shipping competitor config
// files is a competitor_config.
func (s *Scanner) scanPulls(ctx context.Context, owner, repo string, lookbackDays int) ([]signal.Signal, int, error) {
	pulls, err := s.client.ListPullRequests(ctx, owner, repo, "all", 50)
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	cutoff := nowUTC().AddDate(0, 0, -lookbackDays)
	var found []signal.Signal
	analyzed := 0
	for _, pr := range pulls {
		// Listing is sorted by creation, newest first.
		if pr.CreatedAt.Before(cutoff) {
			break
		}
		analyzed++

		text := strings.ToLower(pr.Title + "\n" + pr.Body)
		matched := matchKeywords(text, s.rules.RFCKeywords)
		if len(matched) == 0 {
			continue
		}

		files, err := s.client.ListPullRequestFiles(ctx, owner, repo, pr.Number)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return found, analyzed, err
		}

		shipsTranslations := false
		var competitorFiles []string
		for _, file := range files {
			if s.isTranslatedCatalogPath(file.Filename) {
				shipsTranslations = true
			}
			base := strings.ToLower(file.Filename[strings.LastIndexByte(file.Filename, '/')+1:])
			for _, cfg := range s.rules.CompetitorConfigs {
				if base == cfg {
					competitorFiles = append(competitorFiles, file.Filename)
				}
			}
		}

		if len(competitorFiles) > 0 {
			found = append(found, signal.Signal{
				Type:         signal.TypeCompetitorConfig,
				Repository:   repo,
				Ref:          prRef(pr, ""),
				Significance: signal.SignificanceMedium,
				DetectedAt:   nowUTC(),
				Excerpt:      signal.Excerpt(fmt.Sprintf("PR #%d touches %s", pr.Number, strings.Join(competitorFiles, ", "))),
			})
		}
		if shipsTranslations {
			continue
		}

		significance := signal.SignificanceMedium
		if hasPrefix(pr.Title, s.rules.RFCTitlePrefixes) {
			significance = signal.SignificanceHigh
		}
		found = append(found, signal.Signal{
			Type:         signal.TypeRFCDiscussion,
			Repository:   repo,
			Ref:          prRef(pr, pr.Head.Ref),
			Significance: significance,
			DetectedAt:   nowUTC(),
			Keywords:     matched,
			Excerpt:      signal.Excerpt(fmt.Sprintf("PR #%d (%s, %s): %s", pr.Number, pr.State, pr.CreatedAt.Format(time.DateOnly), strings.TrimSpace(pr.Title))),
		})
	}
	return found, analyzed, nil
}

func prRef(pr gh.PullRequest, headRef string) string {
	if headRef != "" {
		return headRef
	}
	return fmt.Sprintf("#%d", pr.Number)
}
