// Package normalize provides utilities for normalizing user input and for
// locale-aware ordering of display titles.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Query cleans raw search input: null bytes and control characters are
// dropped, runs of whitespace collapse to one space and the ends are trimmed.
func Query(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == 0 || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			return -1
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(cleaned), " ")
}

// LanguageTag canonicalizes a locale such as "pt_br" or "PT-br" to the
// BCP 47 form the metadata API expects ("pt-BR"). Unparseable input
// yields fallback.
func LanguageTag(raw, fallback string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return fallback
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return fallback
	}
	return tag.String()
}

// RegionCode returns the upper-case region of a locale ("pt-BR" -> "BR"),
// or "" when the locale carries none.
func RegionCode(raw string) string {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	if err != nil {
		return ""
	}
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return ""
	}
	return region.String()
}

// Collator compares display titles with the rules of a language.
// It is safe for concurrent use.
type Collator struct {
	mu sync.Mutex
	c  *collate.Collator
}

// TitleCollator builds a case- and accent-insensitive collator for lang.
// An unknown language falls back to the root collation order.
func TitleCollator(lang string) *Collator {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		tag = language.Und
	}
	return &Collator{c: collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics, collate.Numeric)}
}

// Compare returns -1, 0 or 1 as a sorts before, equal to or after b.
func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}
