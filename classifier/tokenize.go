package classifier

import (
	"regexp"
	"strings"
)

// Runs of two or more word characters, the usual bag-of-words token rule.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

func tokenize(text string, lowercase bool) []string {
	if lowercase {
		text = strings.ToLower(text)
	}
	return tokenPattern.FindAllString(text, -1)
}

// ngrams returns the word n-grams of tokens for every n in [lo, hi], joined
// with single spaces.
func ngrams(tokens []string, lo, hi int) []string {
	if lo == 1 && hi == 1 {
		return tokens
	}
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
