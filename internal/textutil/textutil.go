// Package textutil provides tokenization and token-level helpers for clinical sentences.
package textutil

import (
	"regexp"
	"strings"
)

// Tokenizer splits a sentence into tokens. Implementations must only split,
// never rewrite characters, so that the output can be aligned back against
// a whitespace split of the same sentence.
type Tokenizer interface {
	Tokenize(sentence string) []string
}

// TokenizerFunc adapts a plain function to the Tokenizer interface.
type TokenizerFunc func(string) []string

// Tokenize calls f(sentence).
func (f TokenizerFunc) Tokenize(sentence string) []string { return f(sentence) }

// Word runs may carry inner hyphens, slashes, apostrophes and dots ("r/o",
// "well-known", "vs.x"); everything else is a single-character token.
var tokenizeRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:[-/'.][\p{L}\p{N}_]+)*|\S`)

// RuleTokenizer is the default regexp-based Tokenizer.
type RuleTokenizer struct{}

// Tokenize extracts word and punctuation tokens from sentence.
func (RuleTokenizer) Tokenize(sentence string) []string {
	return Tokenize(sentence)
}

// Tokenize extracts word and punctuation tokens from text.
func Tokenize(text string) []string {
	return tokenizeRe.FindAllString(text, -1)
}

// SplitWhitespace splits text on runs of any whitespace. It returns nil
// for blank input.
func SplitWhitespace(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// IsPunctuation reports whether every character of tok belongs to the POSIX
// punctuation class. The empty string counts as punctuation.
func IsPunctuation(tok string) bool {
	for _, r := range tok {
		if !strings.ContainsRune(punctuation, r) {
			return false
		}
	}
	return true
}

// Flatten joins tokens with single spaces.
func Flatten(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Lower returns a lowercased copy of tokens.
func Lower(tokens []string) []string {
	res := make([]string, len(tokens))
	for i, t := range tokens {
		res[i] = strings.ToLower(t)
	}
	return res
}
