// Package config holds the user-facing settings of the linker and derives the
// immutable values the core consumes from them (resolver.Policy,
// catalog.Scope). Settings live in <vault>/.vlink/config.yaml; a missing file
// means defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/corey/vlink/internal/domain/catalog"
	"github.com/corey/vlink/internal/domain/resolver"
)

// FileName is the settings file below the vault's .vlink directory.
const FileName = "config.yaml"

// Settings is every recognised option. Field names follow the YAML keys.
type Settings struct {
	LinkerActivated bool `yaml:"linkerActivated" json:"linkerActivated"`

	// Matching
	MatchOnlyWholeWords bool    `yaml:"matchOnlyWholeWords" json:"matchOnlyWholeWords"`
	MatchCaseSensitive  bool    `yaml:"matchCaseSensitive" json:"matchCaseSensitive"`
	CapitalProportion   float64 `yaml:"capitalLetterProportionForAutomaticMatchCase" json:"capitalLetterProportionForAutomaticMatchCase"`
	IncludeHeaders      bool    `yaml:"includeHeaders" json:"includeHeaders"`
	IncludeAliases      bool    `yaml:"includeAliases" json:"includeAliases"`

	// Catalog scope
	IncludeAllFiles     bool     `yaml:"includeAllFiles" json:"includeAllFiles"`
	LinkerDirectories   []string `yaml:"linkerDirectories" json:"linkerDirectories"`
	ExcludedDirectories []string `yaml:"excludedDirectories,omitempty" json:"excludedDirectories"`

	// Where links are produced
	ExcludedDirectoriesForLinking []string `yaml:"excludedDirectoriesForLinking,omitempty" json:"excludedDirectoriesForLinking"`
	ExcludeLinksToOwnNote         bool     `yaml:"excludeLinksToOwnNote" json:"excludeLinksToOwnNote"`
	ExcludeLinksToRealLinkedFiles bool     `yaml:"excludeLinksToRealLinkedFiles" json:"excludeLinksToRealLinkedFiles"`
	OnlyLinkOnce                  bool     `yaml:"onlyLinkOnce" json:"onlyLinkOnce"`
	ExcludeLinksInCurrentLine     bool     `yaml:"excludeLinksInCurrentLine" json:"excludeLinksInCurrentLine"`
	FixIMEProblem                 bool     `yaml:"fixIMEProblem" json:"fixIMEProblem"`

	// Presentation
	ApplyDefaultLinkStyling   bool   `yaml:"applyDefaultLinkStyling" json:"applyDefaultLinkStyling"`
	VirtualLinkSuffix         string `yaml:"virtualLinkSuffix" json:"virtualLinkSuffix"`
	VirtualLinkAliasSuffix    string `yaml:"virtualLinkAliasSuffix" json:"virtualLinkAliasSuffix"`
	SuppressSuffixForSubWords bool   `yaml:"suppressSuffixForSubWords" json:"suppressSuffixForSubWords"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		LinkerActivated:               true,
		MatchOnlyWholeWords:           true,
		CapitalProportion:             0.75,
		IncludeHeaders:                true,
		IncludeAliases:                true,
		IncludeAllFiles:               true,
		LinkerDirectories:             []string{"Glossary"},
		ExcludeLinksToOwnNote:         true,
		ExcludeLinksToRealLinkedFiles: true,
		OnlyLinkOnce:                  true,
		ApplyDefaultLinkStyling:       true,
		VirtualLinkSuffix:             "🔗",
		VirtualLinkAliasSuffix:        "🔗",
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default; unknown keys are ignored. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, creating parent directories.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate rejects values the linker cannot work with.
func (s Settings) Validate() error {
	if s.CapitalProportion < 0 || s.CapitalProportion > 1 {
		return fmt.Errorf("capitalLetterProportionForAutomaticMatchCase must be within [0,1], got %v", s.CapitalProportion)
	}
	return nil
}

// Policy derives the resolver policy.
func (s Settings) Policy() resolver.Policy {
	return resolver.Policy{
		MatchOnlyWholeWords:           s.MatchOnlyWholeWords,
		ExcludeLinksToOwnNote:         s.ExcludeLinksToOwnNote,
		ExcludeLinksToRealLinkedFiles: s.ExcludeLinksToRealLinkedFiles,
		OnlyLinkOnce:                  s.OnlyLinkOnce,
		ExcludeLinksInCurrentLine:     s.ExcludeLinksInCurrentLine,
		FixIMEProblem:                 s.FixIMEProblem,
	}
}

// Scope derives the catalog scope.
func (s Settings) Scope() catalog.Scope {
	return catalog.Scope{
		IncludeAllFiles:     s.IncludeAllFiles,
		LinkerDirectories:   append([]string(nil), s.LinkerDirectories...),
		ExcludedDirectories: append([]string(nil), s.ExcludedDirectories...),
		IncludeAliases:      s.IncludeAliases,
		MatchCaseSensitive:  s.MatchCaseSensitive,
		CapitalProportion:   s.CapitalProportion,
	}
}

// ExcludedTypes lists the syntax region type fragments that are never
// annotated in the live editor.
func (s Settings) ExcludedTypes() []string {
	types := []string{"codeblock", "code-block", "inline-code", "internal-link", "link", "url", "hashtag"}
	if !s.IncludeHeaders {
		types = append(types, "header-")
	}
	return types
}

// HeadingTags are the extra HTML elements scanned in static rendering when
// headers are included.
func (s Settings) HeadingTags() []string {
	if !s.IncludeHeaders {
		return nil
	}
	return []string{"h1", "h2", "h3", "h4", "h5", "h6"}
}
