// Package negex implements a NegEx-style negation scope detector.
package negex

import (
	"strings"

	"github.com/happyhackingspace/uwassert/interval"
)

const (
	Affirmed = "Affirmed"
	Negated  = "Negated"
)

// maxPhraseLen bounds the length, in words, of every trigger phrase.
const maxPhraseLen = 4

// Detector finds negation triggers in a sentence and the token ranges they
// negate. The zero value is not usable; call New.
type Detector struct {
	pre, post, pseudo, term map[string]bool
}

// New creates a Detector with the built-in trigger lists.
func New() *Detector {
	return &Detector{
		pre:    getPreNegations(),
		post:   getPostNegations(),
		pseudo: getPseudoNegations(),
		term:   getTerminations(),
	}
}

// Clean lowercases s and strips double quotes, commas, periods, semicolons
// and colons.
func Clean(s string) string {
	return strings.NewReplacer(`"`, "", ",", "", ".", "", ";", "", ":", "").Replace(strings.ToLower(s))
}

// Negation reports Negated when every word of concept sits inside one
// negation scope of sentence, Affirmed otherwise.
func (d *Detector) Negation(sentence, concept string) string {
	toks := strings.Fields(Clean(sentence))
	words := strings.Fields(Clean(concept))
	if len(words) == 0 {
		return Affirmed
	}
	for _, scope := range d.Scopes(toks) {
		if containsSeq(toks, scope, words) {
			return Negated
		}
	}
	return Affirmed
}

// Scopes returns the token ranges negated by the triggers found in toks,
// which must already be cleaned. A pre-negation trigger scopes forward to
// the next termination term or the end of the sentence; a post-negation
// trigger scopes backward to the previous termination term or the start.
func (d *Detector) Scopes(toks []string) []interval.Interval {
	var scopes []interval.Interval
	for i := 0; i < len(toks); {
		if n := match(d.pseudo, toks, i); n > 0 {
			i += n
			continue
		}
		if n := match(d.pre, toks, i); n > 0 {
			lo := i + n
			hi := lo
			for hi < len(toks) && match(d.term, toks, hi) == 0 {
				hi++
			}
			if hi > lo {
				scopes = append(scopes, interval.New(lo, hi-1))
			}
			i += n
			continue
		}
		if n := match(d.post, toks, i); n > 0 {
			lo := i
			for lo > 0 && match(d.term, toks, lo-1) == 0 {
				lo--
			}
			if i > lo {
				scopes = append(scopes, interval.New(lo, i-1))
			}
			i += n
			continue
		}
		i++
	}
	return scopes
}

// match returns the word length of the longest phrase in set starting at
// toks[i], or 0.
func match(set map[string]bool, toks []string, i int) int {
	for n := min(maxPhraseLen, len(toks)-i); n > 0; n-- {
		if set[strings.Join(toks[i:i+n], " ")] {
			return n
		}
	}
	return 0
}

func containsSeq(toks []string, scope interval.Interval, words []string) bool {
	for i := scope.Lo; i+len(words)-1 <= scope.Hi; i++ {
		ok := true
		for j, w := range words {
			if toks[i+j] != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
