// Package storage reads annotated assertion corpora.
package storage

import (
	"strings"

	"github.com/happyhackingspace/uwassert/internal/textutil"
)

// Annotation is one concept mention with its gold assertion label.
type Annotation struct {
	Line     int    // 1-based line in the corpus file
	Sentence string // whitespace separated tokens
	Start    int    // first concept token, inclusive
	End      int    // last concept token, inclusive
	Label    string // assertion class name, empty when unlabeled
}

// Tokens splits the sentence on whitespace.
func (a Annotation) Tokens() []string {
	return textutil.SplitWhitespace(a.Sentence)
}

// Concept returns the concept tokens joined with single spaces, or "" when
// the span lies outside the sentence.
func (a Annotation) Concept() string {
	toks := a.Tokens()
	if a.Start < 0 || a.End < a.Start || a.End >= len(toks) {
		return ""
	}
	return strings.Join(toks[a.Start:a.End+1], " ")
}
