package scanner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/signal"
)

var localeCodeRe = regexp.MustCompile(`^[a-z]{2}(?:[-_][a-zA-Z]{2,4})?$`)

// androidResPaths are probed for platform string resources. The values-*
// convention carries its own translated/untranslated distinction.
var androidResPaths = []string{"app/src/main/res", "res"}

// probeLocales is detection step 2: look for the well-known locale directory
// conventions. Translated content anywhere is conclusive inventory. A locale
// directory holding only source-language files is the opposite: installed
// infrastructure with nothing shipped, which joins the dependency candidate
// pool.
func (s *Scanner) probeLocales(ctx context.Context, owner, repo string) (inventory, candidates []signal.Signal, err error) {
	for _, dir := range s.rules.LocaleDirs {
		entries, err := s.client.ListDirectory(ctx, owner, repo, dir)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}

		locales, sourceOnly := s.classifyLocaleDir(entries)
		if len(locales) > 0 {
			inventory = append(inventory, signal.Signal{
				Type:         signal.TypeLocaleInventory,
				Repository:   repo,
				Ref:          dir,
				Significance: signal.SignificanceHigh,
				DetectedAt:   nowUTC(),
				Keywords:     locales,
				Excerpt:      signal.Excerpt(fmt.Sprintf("%s/ ships translated catalogs: %s", dir, strings.Join(locales, ", "))),
			})
			return inventory, nil, nil
		}
		if sourceOnly {
			candidates = append(candidates, signal.Signal{
				Type:         signal.TypeDependencyInjection,
				Repository:   repo,
				Ref:          dir,
				Significance: signal.SignificanceHigh,
				DetectedAt:   nowUTC(),
				Excerpt:      signal.Excerpt(fmt.Sprintf("%s/ holds only source-language files, no translations shipped", dir)),
			})
		}
	}

	androidInventory, androidCandidate, err := s.probeAndroidResources(ctx, owner, repo)
	if err != nil {
		return nil, nil, err
	}
	if androidInventory != nil {
		return []signal.Signal{*androidInventory}, nil, nil
	}
	if androidCandidate != nil {
		candidates = append(candidates, *androidCandidate)
	}
	return nil, candidates, nil
}

// classifyLocaleDir splits a locale directory's entries into translated
// locales and source-language holdings. Subdirectories count when they are
// named like locale codes; stray folders such as templates/ are ignored.
func (s *Scanner) classifyLocaleDir(entries []gh.ContentEntry) (locales []string, sourceOnly bool) {
	sawSource := false
	for _, entry := range entries {
		name := strings.ToLower(entry.Name)
		switch entry.Type {
		case "dir":
			if s.isSourceLocaleName(name) {
				sawSource = true
			} else if localeCodeRe.MatchString(name) {
				locales = append(locales, name)
			}
		case "file":
			ext := path.Ext(name)
			if !s.isCatalogExtension(ext) {
				continue
			}
			base := strings.TrimSuffix(name, ext)
			if s.isSourceLocaleName(base) {
				sawSource = true
			} else if localeCodeRe.MatchString(base) {
				locales = append(locales, base)
			}
		}
	}
	return locales, sawSource && len(locales) == 0
}

func (s *Scanner) probeAndroidResources(ctx context.Context, owner, repo string) (inventory, candidate *signal.Signal, err error) {
	for _, resPath := range androidResPaths {
		entries, err := s.client.ListDirectory(ctx, owner, repo, resPath)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}

		var translated []string
		hasValues := false
		for _, entry := range entries {
			if entry.Type != "dir" {
				continue
			}
			name := strings.ToLower(entry.Name)
			if name == "values" {
				hasValues = true
			} else if suffix, ok := strings.CutPrefix(name, "values-"); ok && localeCodeRe.MatchString(suffix) {
				translated = append(translated, suffix)
			}
		}

		if len(translated) > 0 {
			return &signal.Signal{
				Type:         signal.TypeLocaleInventory,
				Repository:   repo,
				Ref:          resPath,
				Significance: signal.SignificanceHigh,
				DetectedAt:   nowUTC(),
				Keywords:     translated,
				Excerpt:      signal.Excerpt(fmt.Sprintf("%s/ ships translated values- resources: %s", resPath, strings.Join(translated, ", "))),
			}, nil, nil
		}
		if hasValues {
			return nil, &signal.Signal{
				Type:         signal.TypeDependencyInjection,
				Repository:   repo,
				Ref:          resPath,
				Significance: signal.SignificanceMedium,
				DetectedAt:   nowUTC(),
				Excerpt:      signal.Excerpt(fmt.Sprintf("%s/values present with no translated values- variants", resPath)),
			}, nil
		}
	}
	return nil, nil, nil
}

func (s *Scanner) isSourceLocaleName(name string) bool {
	for _, src := range s.rules.SourceLocaleNames {
		if name == src {
			return true
		}
	}
	return false
}

func (s *Scanner) isCatalogExtension(ext string) bool {
	for _, e := range s.rules.CatalogExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isTranslatedCatalogPath reports whether a changed-file path ships a
// translated message catalog. The pull-request scan uses it to tell
// discussion apart from delivery.
func (s *Scanner) isTranslatedCatalogPath(filePath string) bool {
	lower := strings.ToLower(filePath)
	segments := strings.Split(lower, "/")
	inLocaleDir := false
	for _, seg := range segments[:max(len(segments)-1, 0)] {
		for _, dir := range s.rules.LocaleDirs {
			if seg == dir {
				inLocaleDir = true
			}
		}
	}
	if !inLocaleDir {
		return false
	}
	name := segments[len(segments)-1]
	ext := path.Ext(name)
	if !s.isCatalogExtension(ext) {
		return false
	}
	base := strings.TrimSuffix(name, ext)
	return !s.isSourceLocaleName(base) && localeCodeRe.MatchString(base)
}
