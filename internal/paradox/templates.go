package paradox

import (
	"fmt"
	"slices"
	"strings"
)

// #region overlays

// Overlay tags appended after category selection.
const (
	TagAccord = "accord"
	TagMemory = "memory"
)

var overlays = map[Category][]string{
	CategoryDialectical:  {"synthesis", "balance"},
	CategoryRecursive:    {"loop", "mirror", "spiral"},
	CategoryTranscendent: {"spiral", "infinity", "light"},
}

// Overlay returns a fresh copy of the base tag sequence for c.
func Overlay(c Category) []string {
	return slices.Clone(overlays[c])
}

// appendTag adds tag unless it is already present.
func appendTag(tags []string, tag string) []string {
	if slices.Contains(tags, tag) {
		return tags
	}
	return append(tags, tag)
}

// #endregion overlays

// #region statements

const maxExcerptRunes = 120

var templates = map[Category]string{
	CategoryDialectical:  "%s and %s meet in a synthesis where each holds the other in balance.",
	CategoryRecursive:    "%s folds back into %s, and the loop itself becomes the answer.",
	CategoryTranscendent: "Beyond %s and %s a third position opens that contains them both.",
}

// Statement renders the fixed template for c.
func Statement(c Category, thesis, antithesis string) string {
	tmpl, ok := templates[c]
	if !ok {
		tmpl = templates[CategoryDialectical]
	}
	return fmt.Sprintf(tmpl, quote(thesis), quote(antithesis))
}

func quote(s string) string {
	return "\"" + Excerpt(s, maxExcerptRunes) + "\""
}

// Excerpt trims s and caps it at n runes.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// #endregion statements
