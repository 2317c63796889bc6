package ensemble

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// tokenize lowercases text, splits it into alphanumeric runs and stems each
// token. Words the stemmer rejects are kept as-is.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		stemmed, err := snowball.Stem(word, "english", true)
		if err != nil || stemmed == "" {
			tokens = append(tokens, word)
			continue
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
