package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	hashtagRe    = regexp.MustCompile(`#(\w+)`)
)

// NormalizePersonName canonicalizes a person reference: surrounding and
// internal whitespace is collapsed and each word is title-cased, so "john
// SMITH" and "John Smith" map to the same value.
func NormalizePersonName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}

	collapsed := whitespaceRe.ReplaceAllString(trimmed, " ")
	words := strings.Split(collapsed, " ")
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ExtractTags scans free text for #hashtags and returns them lowercased, in
// order of first appearance, with case-insensitive duplicates removed.
func ExtractTags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// MergeTags unions hashtags scanned from the user's text with tags proposed
// by the model. Scanned tags keep their position at the front; model tags
// follow in their returned order. Comparison is case-insensitive and the
// result is lowercase throughout.
func MergeTags(scanned, proposed []string) []string {
	merged := make([]string, 0, len(scanned)+len(proposed))
	seen := make(map[string]struct{}, len(scanned)+len(proposed))
	for _, group := range [][]string{scanned, proposed} {
		for _, t := range group {
			tag := strings.ToLower(strings.TrimSpace(t))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}
