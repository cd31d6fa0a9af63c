package classifier

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/interval"
)

var (
	// ErrBoundary reports a concept span outside its sentence.
	ErrBoundary = errors.New("concept boundary out of range")
	// ErrNameMismatch reports a concept name that does not spell its span.
	ErrNameMismatch = errors.New("concept name does not match its tokens")
)

// Sentence is the token sequence of one sentence.
type Sentence []string

// Span joins the tokens covered by iv with sep.
func (s Sentence) Span(iv interval.Interval, sep string) string {
	iv = iv.Normalize()
	return strings.Join(s[iv.Lo:iv.Hi+1], sep)
}

// Window joins tokens in the half-open range [lo, hi) with single spaces,
// clamping both ends to the sentence.
func (s Sentence) Window(lo, hi int) string {
	lo = max(lo, 0)
	hi = min(hi, len(s))
	if lo >= hi {
		return ""
	}
	return strings.Join(s[lo:hi], " ")
}

// CheckSpan reports ErrBoundary unless 0 <= lo <= hi < len(s).
func (s Sentence) CheckSpan(iv interval.Interval) error {
	if iv.Lo < 0 || iv.Hi < iv.Lo || iv.Hi >= len(s) {
		return errors.Wrapf(ErrBoundary, "span %v in sentence of %d tokens", iv, len(s))
	}
	return nil
}

// Concept is a clinical concept mention inside one sentence.
type Concept struct {
	Name       string
	SentenceID int
	Span       interval.Interval
	Type       string
}

// Validate checks that the concept lies inside s and that its name, spaces
// removed, equals the covered tokens concatenated, ignoring case.
func (c Concept) Validate(s Sentence) error {
	if err := s.CheckSpan(c.Span); err != nil {
		return err
	}
	name := strings.ReplaceAll(c.Name, " ", "")
	covered := s.Span(c.Span, "")
	if !strings.EqualFold(name, covered) {
		return errors.Wrapf(ErrNameMismatch, "name %q, tokens %q", name, covered)
	}
	return nil
}

// Instance is a concept paired with its assertion label.
type Instance struct {
	ID      int
	Concept Concept
	Label   AssertionClass
}

// TestInstance builds the instance used at prediction time. The label is a
// placeholder; the decoder never sees it.
func TestInstance(span interval.Interval, name string) Instance {
	return Instance{
		ID:      1,
		Concept: Concept{Name: name, SentenceID: 1, Span: span},
		Label:   Absent,
	}
}
