// Package lang canonicalizes the language tags used to filter story
// content ("en", "pt-br", ...).
//
// Matching here is exact tag equality after canonicalization. Fallback
// policy (for example showing English when a tag has no content) is a
// product decision for the layer above and deliberately not baked in.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the tag assumed when the reader never picked a language.
const Default = "en"

// Canonical normalizes a tag to the lowercase BCP 47 form used
// throughout the content pipeline. Tags x/text cannot parse are
// returned lowercased rather than rejected; story files are authored
// by hand and a odd tag should still compare against itself.
func Canonical(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	return strings.ToLower(t.String())
}

// Match reports whether a content tag matches the reader's preferred
// tag exactly.
func Match(pref, tag string) bool {
	return Canonical(pref) == Canonical(tag)
}
