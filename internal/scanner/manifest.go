package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/modfile"

	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/signal"
)

// scanManifests is detection step 1: list the repository root once, then
// fetch only the dependency manifests and competitor configs that are
// actually present. Dependency matches return as pending candidates (the
// locale probe gets to veto them); competitor configs are conclusive on
// their own.
func (s *Scanner) scanManifests(ctx context.Context, owner, repo string) (candidates, extras []signal.Signal, err error) {
	root, err := s.client.ListDirectory(ctx, owner, repo, "")
	if err != nil {
		if errors.Is(err, gh.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	present := make(map[string]bool, len(root))
	for _, entry := range root {
		if entry.Type == "file" {
			present[entry.Name] = true
		}
	}

	for _, name := range s.rules.CompetitorConfigs {
		if !present[name] {
			continue
		}
		extras = append(extras, signal.Signal{
			Type:         signal.TypeCompetitorConfig,
			Repository:   repo,
			Ref:          name,
			Significance: signal.SignificanceMedium,
			DetectedAt:   nowUTC(),
			Excerpt:      signal.Excerpt(fmt.Sprintf("%s present at repository root", name)),
		})
	}

	for _, name := range s.rules.ManifestFiles {
		if !present[name] {
			continue
		}
		entry, err := s.client.GetFile(ctx, owner, repo, name)
		if err != nil {
			if errors.Is(err, gh.ErrNotFound) {
				continue
			}
			return candidates, extras, err
		}
		raw, err := entry.Decode()
		if err != nil {
			continue
		}
		if sig := s.matchManifest(repo, name, raw); sig != nil {
			candidates = append(candidates, *sig)
		}
	}
	return candidates, extras, nil
}

// matchManifest inspects one manifest's content. package.json and go.mod are
// parsed structurally; everything else is matched as text since manifest
// formats vary too much to justify a parser per ecosystem.
func (s *Scanner) matchManifest(repo, name string, raw []byte) *signal.Signal {
	var libs, keywords []string
	switch name {
	case "package.json":
		libs, keywords = s.matchPackageJSON(raw)
	case "go.mod":
		libs = s.matchGoMod(raw)
	default:
		lower := strings.ToLower(string(raw))
		for _, lib := range s.rules.Libraries {
			if strings.Contains(lower, strings.ToLower(lib)) {
				libs = append(libs, lib)
			}
		}
	}
	if len(libs) == 0 {
		return nil
	}

	sort.Strings(libs)
	significance := signal.SignificanceHigh
	if len(keywords) > 0 {
		// Library plus pipeline automation means someone is actively
		// maintaining the extraction workflow, not just carrying a dep.
		significance = signal.SignificanceCritical
	}
	return &signal.Signal{
		Type:         signal.TypeDependencyInjection,
		Repository:   repo,
		Ref:          name,
		Significance: significance,
		DetectedAt:   nowUTC(),
		Libraries:    libs,
		Keywords:     keywords,
		Excerpt:      signal.Excerpt(fmt.Sprintf("%s declares %s", name, strings.Join(libs, ", "))),
	}
}

func (s *Scanner) matchPackageJSON(raw []byte) (libs, keywords []string) {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
		Scripts         map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		// Malformed package.json still gets the text fallback.
		lower := strings.ToLower(string(raw))
		for _, lib := range s.rules.Libraries {
			if strings.Contains(lower, strings.ToLower(lib)) {
				libs = append(libs, lib)
			}
		}
		return libs, nil
	}

	declared := make(map[string]bool, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for dep := range manifest.Dependencies {
		declared[strings.ToLower(dep)] = true
	}
	for dep := range manifest.DevDependencies {
		declared[strings.ToLower(dep)] = true
	}
	for _, lib := range s.rules.Libraries {
		if declared[strings.ToLower(lib)] {
			libs = append(libs, lib)
		}
	}

	var scripts strings.Builder
	for _, cmd := range manifest.Scripts {
		scripts.WriteString(strings.ToLower(cmd))
		scripts.WriteByte('\n')
	}
	keywords = matchKeywords(scripts.String(), s.rules.ScriptKeywords)
	sort.Strings(keywords)
	return libs, keywords
}

func (s *Scanner) matchGoMod(raw []byte) []string {
	parsed, err := modfile.ParseLax("go.mod", raw, nil)
	if err != nil {
		return nil
	}
	var libs []string
	for _, req := range parsed.Require {
		for _, lib := range s.rules.GoLibraries {
			if req.Mod.Path == lib {
				libs = append(libs, lib)
			}
		}
	}
	return libs
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
