package templating

import "strings"

// Replacement pairs a literal token with the text that replaces it.
type Replacement struct {
	Token string
	Value string
}

// Render returns text with every non-overlapping occurrence of each token
// replaced by its value. The template is scanned once from left to right, so
// substituted values are never matched again. If two tokens match at the same
// position, the one listed first wins. Empty tokens are ignored.
func Render(text string, replacements []Replacement) string {
	pairs := make([]string, 0, 2*len(replacements))
	for _, r := range replacements {
		if r.Token == "" {
			continue
		}
		pairs = append(pairs, r.Token, r.Value)
	}
	if len(pairs) == 0 {
		return text
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
