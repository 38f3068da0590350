package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer turns contract prose into comparable terms.
type Tokenizer struct {
	stopwords map[string]struct{}
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		stopwords: contractStopwords(),
	}
}

// Tokenize lowercases text, folds plurals and drops stopwords and
// one-letter words.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	terms := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.ToLower(w)
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, skip := t.stopwords[w]; skip {
			continue
		}
		terms = append(terms, singular(w))
	}

	return terms
}

// CountTokens estimates how many model tokens text costs: roughly four
// characters each, never fewer than one per word.
func (t *Tokenizer) CountTokens(text string) int {
	words := len(splitWords(text))
	if words == 0 {
		return 0
	}
	byChars := (utf8.RuneCountInString(strings.TrimSpace(text)) + 3) / 4
	return max(words, byChars)
}

// singular folds the common English plural forms so "services" and
// "service" produce the same term.
func singular(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:len(word)-1]
	}
	return word
}

// splitWords returns the runs of letters and digits in text. Punctuation,
// currency signs and underscores all separate words.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func contractStopwords() map[string]struct{} {
	groups := [][]string{
		// articles, conjunctions, prepositions
		{"a", "an", "the", "and", "or", "but", "nor", "of", "to", "in", "on", "at",
			"by", "for", "from", "with", "into", "upon", "as", "than", "if", "so"},
		// pronouns and determiners
		{"it", "its", "this", "that", "these", "those", "we", "our", "you", "your",
			"they", "their", "any", "all", "each", "such", "other"},
		// auxiliaries; "shall" and "must" carry obligations and stay
		{"is", "are", "was", "were", "be", "been", "being", "has", "have", "had",
			"do", "does", "did", "will", "would", "can", "could", "should", "may"},
		// question words
		{"what", "which", "who", "whom", "when", "where", "why", "how"},
		// legal filler
		{"herein", "hereby", "hereof", "hereto", "thereof", "therein", "whereas", "also"},
	}
	m := make(map[string]struct{})
	for _, g := range groups {
		for _, w := range g {
			m[w] = struct{}{}
		}
	}
	return m
}
