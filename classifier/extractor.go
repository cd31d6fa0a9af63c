package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/happyhackingspace/uwassert/interval"
	"github.com/happyhackingspace/uwassert/internal/contextrules"
	"github.com/happyhackingspace/uwassert/internal/negex"
	"github.com/happyhackingspace/uwassert/internal/textutil"
)

// Window sizes are part of the trained model's contract.
const (
	signalWindow   = 5
	prefixWindow   = 5
	detectorWindow = 7
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor turns a sentence and a concept into tagged feature lines.
// It holds no per-call state and may be shared between goroutines.
type Extractor struct {
	Signals  *SignalCatalog
	Negation NegationDetector
	Context  ContextDetector
}

// NewExtractor creates an Extractor backed by the rule-based negation and
// context detectors.
func NewExtractor(signals *SignalCatalog) *Extractor {
	return &Extractor{
		Signals:  signals,
		Negation: negex.New(),
		Context:  contextrules.New(),
	}
}

// featureWriter accumulates lines sharing one "id label" prefix.
type featureWriter struct {
	prefix string
	lines  []string
}

func (w *featureWriter) emit(t FeatureType, value string) {
	w.lines = append(w.lines, w.prefix+" "+t.String()+"#"+value)
}

// Extract runs every detector enabled in mask over s for inst and returns
// lines of the form "0000001 ABSENT TYPE#value".
func (e *Extractor) Extract(s Sentence, inst Instance, mask FeatureSet) ([]string, error) {
	c := inst.Concept
	if err := c.Validate(s); err != nil {
		return nil, err
	}
	start, end := c.Span.Lo, c.Span.Hi
	n := len(s)
	lower := textutil.Lower(s)
	w := &featureWriter{prefix: fmt.Sprintf("%07d %s", inst.ID, inst.Label.Name())}

	sentFlat := textutil.Flatten(s)
	windowFlat := s.Window(start-detectorWindow, end+detectorWindow)

	if mask.Has(NegSignalClosestLeftCommaRestricted) {
		if neg, ok := interval.ClosestBefore(c.Span, e.Signals.Occurrences(s, true)); ok {
			pos := -1
			for i := start - 1; i >= 0; i-- {
				if s[i] == "," || lower[i] == "and" || lower[i] == "or" {
					pos = i
					break
				}
			}
			if pos != -1 && neg.Lo > pos {
				w.emit(NegSignalClosestLeftCommaRestricted, "true")
			}
		}
	}

	if mask.Has(SignalClosestLeftWindowSize) {
		if sig, ok := interval.ClosestBefore(c.Span, e.Signals.Occurrences(s, false)); ok && start-sig.Hi <= signalWindow {
			seq := signalLabel(s, sig)
			for _, label := range e.Signals.Labels() {
				if label == seq {
					w.emit(SignalClosestLeftWindowSize, label)
				}
			}
		}
	}

	if mask.Has(Stem) {
		for i, tok := range s {
			if !textutil.IsPunctuation(tok) {
				w.emit(Stem, lower[i])
			}
		}
	}

	if mask.Has(QMarkRight) && end < n-1 && s[end+1] == "?" {
		w.emit(QMarkRight, "true")
	}

	for _, pc := range phraseCatalogs {
		if mask.Has(pc.Type) && pc.matches(lower, start, end) {
			w.emit(pc.Type, "true")
		}
	}

	if mask.Has(HasKinshipInSentence) {
		for _, tok := range lower {
			if e.Signals.IsKinship(tok) {
				w.emit(HasKinshipInSentence, "true")
				break
			}
		}
	}

	if mask.Has(ConceptStemExpression) {
		var b strings.Builder
		for i := start; i <= end; i++ {
			if !textutil.IsPunctuation(s[i]) {
				b.WriteString(s[i])
				b.WriteString(SignalDelim)
			}
		}
		w.emit(ConceptStemExpression, strings.ToLower(b.String()))
	}

	if mask.HasFamily(NegPrefix) {
		e.negPrefixes(w, NegPrefix, lower, start, end+1)
	}
	if mask.HasFamily(NegPrefixLeftWindow) {
		e.negPrefixes(w, NegPrefixLeftWindow, lower, start-prefixWindow, start)
	}
	if mask.HasFamily(NegPrefixRightWindow) {
		e.negPrefixes(w, NegPrefixRightWindow, lower, end+1, end+prefixWindow+1)
	}

	if start > 0 {
		if mask.Has(WordLeft1Uncase) {
			w.emit(WordLeft1Uncase, lower[start-1])
		}
		if mask.Has(StemLeft1Uncase) {
			w.emit(StemLeft1Uncase, lower[start-1])
		}
	}
	if mask.Has(WordLeft2Uncase) && start > 1 {
		w.emit(WordLeft2Uncase, lower[start-2])
	}
	if start > 2 {
		left := lower[start-1] + "||" + lower[start-2] + "||" + lower[start-3]
		if mask.Has(StemTrigramLeftUncase) {
			w.emit(StemTrigramLeftUncase, left)
		}
		if mask.Has(TrigramLeftUncase) {
			w.emit(TrigramLeftUncase, lower[start-3]+"||"+lower[start-2]+"||"+lower[start-1])
		}
	}
	if mask.Has(TrigramRightUncase) && end+3 < n {
		w.emit(TrigramRightUncase, lower[end+1]+"||"+lower[end+2]+"||"+lower[end+3])
	}

	if mask.Has(Negex) {
		w.emit(Negex, strings.ToLower(e.Negation.Negation(sentFlat, c.Name)))
	}
	if mask.Has(NegexW6) {
		w.emit(NegexW6, strings.ToLower(e.Negation.Negation(windowFlat, c.Name)))
	}
	if mask.Has(ContextExperiencer) {
		w.emit(ContextExperiencer, whitespaceRe.ReplaceAllString(e.Context.Experiencer(sentFlat), "_"))
	}
	if mask.Has(ContextTemporalityW6) {
		w.emit(ContextTemporalityW6, e.Context.Temporality(windowFlat))
	}

	if mask.Has(WordPosition) {
		for i, tok := range s {
			if textutil.IsPunctuation(tok) {
				continue
			}
			pos := 0
			switch {
			case i < start:
				pos = i - start
			case i > end:
				pos = i - end
			}
			w.emit(WordPosition, fmt.Sprintf("%s__%d", tok, pos))
		}
	}

	return w.lines, nil
}

// negPrefixes emits, for every non-punctuation token in [lo, hi), the first
// negation prefix the token starts with without being equal to it.
func (e *Extractor) negPrefixes(w *featureWriter, family FeatureType, lower []string, lo, hi int) {
	lo = max(lo, 0)
	hi = min(hi, len(lower))
	for i := lo; i < hi; i++ {
		tok := lower[i]
		if textutil.IsPunctuation(tok) {
			continue
		}
		for p, prefix := range NegPrefixes {
			if tok != prefix && strings.HasPrefix(tok, prefix) {
				w.emit(NegPrefixVariant(family, p), "true")
				break
			}
		}
	}
}
