package vault

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontmatterRE matches a complete YAML frontmatter block at the start of a
// note. The closing "---" must be unindented; "---" inside YAML block scalars
// is always indented, so this needs no YAML-aware boundary scanner.
var frontmatterRE = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---[ \t]*(\r?\n|$)`)

// Frontmatter holds the keys the linker reads from a note's frontmatter.
type Frontmatter struct {
	Aliases    stringList `yaml:"aliases"`
	Alias      stringList `yaml:"alias"`
	MatchCase  bool       `yaml:"linker-match-case"`
	IgnoreCase bool       `yaml:"linker-ignore-case"`
	Exclude    bool       `yaml:"linker-exclude"`
}

// AllAliases returns aliases from both accepted keys.
func (fm Frontmatter) AllAliases() []string {
	out := make([]string, 0, len(fm.Aliases)+len(fm.Alias))
	out = append(out, fm.Aliases...)
	return append(out, fm.Alias...)
}

// stringList decodes either a single YAML scalar or a sequence of scalars.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" || n.Value == "" {
			*l = nil
			return nil
		}
		*l = stringList{n.Value}
		return nil
	case yaml.SequenceNode:
		out := make(stringList, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode || c.ShortTag() == "!!null" {
				continue
			}
			out = append(out, c.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", n.Line)
	}
}

// ParseFrontmatter extracts the frontmatter of content. It returns the
// decoded keys and the byte length of the block (0 when there is none).
func ParseFrontmatter(content []byte) (Frontmatter, int, error) {
	loc := frontmatterRE.FindSubmatchIndex(content)
	if loc == nil {
		return Frontmatter{}, 0, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(content[loc[2]:loc[3]], &fm); err != nil {
		return Frontmatter{}, loc[1], fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, loc[1], nil
}
