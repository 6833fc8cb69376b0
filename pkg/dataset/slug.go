package dataset

import "strings"

// Slugify derives the URL-safe lookup key for a record name. The result is
// lowercase, "&" is spelled out as "and", every run of characters outside
// [a-z0-9] collapses to a single "-", and leading or trailing "-" are trimmed.
//
//	Slugify("Antigua & Barbuda") // "antigua-and-barbuda"
//	Slugify("Cote d'Ivoire")     // "cote-d-ivoire"
func Slugify(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), "&", " and ")

	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteByte(c)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
