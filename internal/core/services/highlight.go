package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// minHighlightTerm is the shortest query word worth highlighting.
const minHighlightTerm = 4

// HighlightTerms returns the distinct query words of at least four letters,
// longest first so overlapping terms prefer the longer match.
func HighlightTerms(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, w := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < minHighlightTerm {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	return terms
}

// Highlight wraps every case-insensitive occurrence of the query terms in
// text with mark.
func Highlight(query, text string, mark func(string) string) string {
	terms := HighlightTerms(query)
	if len(terms) == 0 {
		return text
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
	return re.ReplaceAllStringFunc(text, mark)
}

// Snippet collapses whitespace and shortens text to at most limit characters.
func Snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 || len([]rune(text)) <= limit {
		return text
	}
	cut := truncateRunes(text, limit)
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + " …"
}
