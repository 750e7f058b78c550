package scanner

import "strings"

// Rules holds the detection tables the scanner matches against. They are
// data, not code: the default set mirrors the maintained production
// allow-lists, and callers may extend them through configuration.
type Rules struct {
	// ManifestFiles are the dependency manifests inspected in step 1.
	ManifestFiles []string
	// Libraries is the i18n library allow-list keyed by library identifier.
	// Matching a manifest against this list is the dependency_injection
	// candidate; it is not full source analysis.
	Libraries []string
	// GoLibraries are module paths matched structurally inside go.mod.
	GoLibraries []string
	// ScriptKeywords flag translation-pipeline automation in package.json
	// scripts.
	ScriptKeywords []string
	// CompetitorConfigs are rival localization platforms' config files.
	CompetitorConfigs []string
	// LocaleDirs are the well-known locale directory conventions probed in
	// step 2.
	LocaleDirs []string
	// SourceLocaleNames are file names that indicate infrastructure without
	// translations (a lone en.json is still a Goldilocks lead).
	SourceLocaleNames []string
	// CatalogExtensions are message-catalog file extensions; a locale file
	// outside SourceLocaleNames with one of these is shipped translation.
	CatalogExtensions []string
	// I18nKeywords are generic i18n terms for commit and PR text matching.
	I18nKeywords []string
	// FrustrationPhrases capture manual-translation pain in commit messages.
	FrustrationPhrases []string
	// BranchPatterns are WIP i18n branch naming conventions.
	BranchPatterns []string
	// RFCKeywords are the high-intent discussion phrases for the PR scan.
	RFCKeywords []string
	// RFCTitlePrefixes mark a discussion as high significance.
	RFCTitlePrefixes []string
}

// DefaultRules returns the production detection tables.
func DefaultRules() Rules {
	return Rules{
		ManifestFiles: []string{
			"package.json",
			"Gemfile",
			"requirements.txt",
			"composer.json",
			"mix.exs",
			"pubspec.yaml",
			"Podfile",
			"build.gradle",
			"build.gradle.kts",
			"go.mod",
			"pom.xml",
			"pyproject.toml",
		},
		Libraries: []string{
			"babel-plugin-react-intl",
			"react-i18next",
			"react-intl",
			"i18next",
			"formatjs",
			"vue-i18n",
			"next-i18next",
			"next-intl",
			"@lingui/core",
			"@lingui/react",
			"@lingui/macro",
			"@formatjs/intl",
			"i18n-js",
			"typesafe-i18n",
			"django-babel",
			"flask-babel",
			"python-i18n",
			"rails-i18n",
			"i18n-tasks",
			"messageformat",
		},
		GoLibraries: []string{
			"github.com/nicksnyder/go-i18n/v2",
			"github.com/nicksnyder/go-i18n",
			"github.com/leonelquinteros/gotext",
			"github.com/kataras/i18n",
			"github.com/vorlif/spreak",
		},
		ScriptKeywords: []string{
			"extract-i18n",
			"extract-intl",
			"compile-locales",
			"sync-translations",
			"update-strings",
			"i18next-scanner",
			"lingui extract",
		},
		CompetitorConfigs: []string{
			"crowdin.yml",
			"crowdin.yaml",
			".phrase.yml",
			"phrase.yml",
			".phraseapp.yml",
			"lokalise.yml",
			".transifexrc",
			"transifex.yml",
			"wti.yml",
		},
		LocaleDirs: []string{
			"locales",
			"locale",
			"i18n",
			"translations",
			"lang",
			"languages",
			"l10n",
			"messages",
		},
		SourceLocaleNames: []string{
			"en", "en-us", "en-gb", "en_us", "en_gb",
			"base", "source", "default",
		},
		CatalogExtensions: []string{
			".json", ".js", ".ts", ".yml", ".yaml", ".po", ".arb", ".properties",
		},
		I18nKeywords: []string{
			"i18n",
			"l10n",
			"localization",
			"localisation",
			"internationalization",
			"translation",
			"translations",
			"locale",
		},
		FrustrationPhrases: []string{
			"by hand",
			"manually",
			"manual translation",
			"tedious",
			"painful",
			"copy-paste",
			"copy paste",
			"hardcoded strings",
			"hard-coded strings",
			"out of sync",
			"yet again",
			"forgot to update",
		},
		BranchPatterns: []string{
			"feature/i18n",
			"feature/l10n",
			"feature/localization",
			"feature/internationalization",
			"feature/translate",
			"feature/translation",
			"feature/translations",
			"feature/multi-language",
			"feature/multilingual",
			"chore/i18n",
			"chore/l10n",
			"chore/localization",
			"chore/translations",
			"add-translation-support",
			"refactor/extract-strings",
			"l10n-setup",
			"i18n-setup",
			"wip/i18n",
			"wip/l10n",
			"wip/localization",
			"experimental/i18n",
			"draft/i18n",
			"poc/i18n",
		},
		RFCKeywords: []string{
			"i18n strategy",
			"i18n support",
			"localization support",
			"localization strategy",
			"internationalization",
			"translation workflow",
			"multi-language support",
			"multilingual support",
			"rtl support",
			"right-to-left",
			"handle timezones",
			"currency formatting",
			"multi-currency",
			"global expansion",
			"international markets",
		},
		RFCTitlePrefixes: []string{
			"rfc", "[rfc]", "proposal", "[proposal]",
		},
	}
}

// matchKeywords returns the subset of keywords found in text (already
// lowercased by the caller).
func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			matched = append(matched, k)
		}
	}
	return matched
}

// hasPrefix reports whether the lowercased title starts with any prefix.
func hasPrefix(title string, prefixes []string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
