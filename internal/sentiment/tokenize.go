package sentiment

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
)

// customStopWords are dropped on top of the English stop word list.
var customStopWords = map[string]struct{}{
	"band": {},
	"they": {},
	"them": {},
}

// Tokenize lower-cases text, strips English stop words and splits it into words.
func Tokenize(text string) []string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", true)
	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := fields[:0]
	for _, w := range fields {
		if _, skip := customStopWords[w]; skip {
			continue
		}
		words = append(words, w)
	}
	return words
}
