package resolver

import (
	"regexp"
	"strings"
)

// ws is whitespace the way editors see it: RE2's \s is ASCII only, so
// no-break and other Unicode spaces are added.
const ws = `[\s\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var (
	// Text before a span that still counts as the start of a line: blank,
	// a list marker, a heading marker, a quote marker, a list heading, or a
	// callout header.
	lineStartPattern = regexp.MustCompile(strings.ReplaceAll(
		`(^\s*$)|(^\s*- +$)|(^\s*#{1,6} $)|(^\s*>+ *$)|(^\s*- +#{1,6} +$)|(^\s*> \[![\w-]+\][+-]? +$)`,
		`\s`, ws))

	// Text after a span that may still be an uncommitted phonetic composition.
	composingPattern = regexp.MustCompile(`^[a-zA-Z]+[a-zA-Z' ]*[a-zA-Z]$|^[a-zA-Z]$`)

	doubledSeparator = regexp.MustCompile(`[' ]{2}`)
)

// MayBeComposing reports whether a span preceded on its line by prefix and
// followed up to the cursor by gap looks like part of an input-method
// composition that has not been committed yet.
func MayBeComposing(prefix, gap string) bool {
	if !lineStartPattern.MatchString(prefix) {
		return false
	}
	return composingPattern.MatchString(gap) && !doubledSeparator.MatchString(gap)
}
