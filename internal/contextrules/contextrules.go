// Package contextrules implements ConText-style experiencer and temporality
// classification of a sentence.
package contextrules

import (
	"strings"

	"github.com/happyhackingspace/uwassert/internal/negex"
)

const (
	Patient = "Patient"
	Other   = "Other"

	Recent       = "Recent"
	Historical   = "Historical"
	Hypothetical = "Hypothetical"
)

const maxPhraseLen = 4

func set(phrases ...string) map[string]bool {
	m := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		m[p] = true
	}
	return m
}

func getOtherExperiencers() map[string]bool {
	return set(
		"mother", "mother's", "father", "father's", "brother", "brother's", "brothers",
		"sister", "sister's", "sisters", "son", "son's", "sons", "daughter", "daughter's",
		"daughters", "aunt", "aunts", "uncle", "uncles", "cousin", "cousins", "grandmother",
		"grandfather", "grandparent", "grandparents", "parent", "parents", "sibling",
		"siblings", "mom", "dad", "wife", "husband", "family history", "family hx", "fh",
		"fhx", "family member", "family members", "relative", "relatives",
	)
}

func getHypotheticals() map[string]bool {
	return set(
		"if", "in case", "should he", "should she", "should the patient", "should there be",
		"return for", "return to the ed", "return if", "as needed", "prn", "watch for",
		"look out for", "monitor for", "call for", "call if",
	)
}

func getHistoricals() map[string]bool {
	return set(
		"history", "history of", "hx", "h/o", "previous", "previously", "prior", "past",
		"status post", "s/p", "ago", "last year", "last month", "in the past", "remote",
		"childhood", "several years", "years ago", "has had", "had been",
	)
}

func getHistoricalPseudo() map[string]bool {
	return set(
		"history and physical", "history and", "history taking", "poor history", "social history",
		"sexual history", "history of present illness", "past medical history",
	)
}

// Detector classifies sentences with fixed trigger lists.
type Detector struct {
	other, hypothetical, historical, pseudoHistorical map[string]bool
}

// New creates a Detector with the built-in trigger lists.
func New() *Detector {
	return &Detector{
		other:            getOtherExperiencers(),
		hypothetical:     getHypotheticals(),
		historical:       getHistoricals(),
		pseudoHistorical: getHistoricalPseudo(),
	}
}

// Experiencer returns Other when the sentence mentions someone other than
// the patient, Patient otherwise.
func (d *Detector) Experiencer(sentence string) string {
	if d.find(strings.Fields(negex.Clean(sentence)), d.other, nil) {
		return Other
	}
	return Patient
}

// Temporality returns Hypothetical, Historical or Recent. Hypothetical
// triggers take precedence.
func (d *Detector) Temporality(sentence string) string {
	toks := strings.Fields(negex.Clean(sentence))
	switch {
	case d.find(toks, d.hypothetical, nil):
		return Hypothetical
	case d.find(toks, d.historical, d.pseudoHistorical):
		return Historical
	}
	return Recent
}

// find reports whether a phrase of triggers starts anywhere in toks. Words
// covered by a pseudo-trigger are skipped.
func (d *Detector) find(toks []string, triggers, pseudo map[string]bool) bool {
	for i := 0; i < len(toks); {
		if n := longest(pseudo, toks, i); n > 0 {
			i += n
			continue
		}
		if longest(triggers, toks, i) > 0 {
			return true
		}
		i++
	}
	return false
}

func longest(set map[string]bool, toks []string, i int) int {
	if set == nil {
		return 0
	}
	for n := min(maxPhraseLen, len(toks)-i); n > 0; n-- {
		if set[strings.Join(toks[i:i+n], " ")] {
			return n
		}
	}
	return 0
}
