package app

import (
	"github.com/corey/vlink/internal/config"
	"github.com/corey/vlink/internal/domain/resolver"
	"github.com/corey/vlink/internal/ports"
)

// Classes of the element wrapping a virtual link.
const (
	classEntry   = "glossary-entry"
	classVirtual = "virtual-link"
	classDefault = "virtual-link-default"
)

// NewLinkRequest turns an annotation into the request the host renders.
// text is the document the annotation's offsets refer to.
func NewLinkRequest(a resolver.Annotation, text string, s config.Settings) ports.LinkRequest {
	matched := ""
	if a.From >= 0 && a.To <= len(text) && a.From <= a.To {
		matched = text[a.From:a.To]
	}
	return ports.LinkRequest{
		From:      a.From,
		To:        a.To,
		Text:      matched,
		Target:    a.EntryID,
		IsAlias:   a.IsAlias,
		IsSubWord: a.IsSubWord,
		Suffix:    linkSuffix(a.IsAlias, a.IsSubWord, s),
		Classes:   linkClasses(s),
	}
}

// linkSuffix picks the suffix drawn after a link. Sub-word matches get none
// when suppressSuffixForSubWords is set.
func linkSuffix(isAlias, isSubWord bool, s config.Settings) string {
	if isSubWord && s.SuppressSuffixForSubWords {
		return ""
	}
	if isAlias {
		return s.VirtualLinkAliasSuffix
	}
	return s.VirtualLinkSuffix
}

func linkClasses(s config.Settings) []string {
	classes := []string{classEntry, classVirtual}
	if s.ApplyDefaultLinkStyling {
		classes = append(classes, classDefault)
	}
	return classes
}
