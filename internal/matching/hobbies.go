package matching

import "strings"

// hobbyVocabulary is matched against a bio when a user has not listed hobbies.
// Order here is the order extracted tags come back in.
var hobbyVocabulary = []string{
	"reading",
	"painting",
	"drawing",
	"dancing",
	"writing",
	"hiking",
	"coding",
	"coffee",
	"sleeping",
	"resting",
	"editing",
	"gossiping",
}

// ExtractHobbies returns the capitalised vocabulary words that occur anywhere
// in bio, ignoring case. It is a substring test, so "overwriting" yields
// "Writing".
func ExtractHobbies(bio string) []string {
	text := strings.ToLower(bio)
	hobbies := make([]string, 0)
	for _, word := range hobbyVocabulary {
		if strings.Contains(text, word) {
			hobbies = append(hobbies, capitalize(word))
		}
	}
	return hobbies
}

// HobbyOverlap counts distinct values present in both lists. Comparison is
// exact.
func HobbyOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, h := range b {
		set[h] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a))
	overlap := 0
	for _, h := range a {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		if _, ok := set[h]; ok {
			overlap++
		}
	}
	return overlap
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
