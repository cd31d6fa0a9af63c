package textutil

import (
	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/interval"
)

// ErrAlignment reports that two token streams do not cover the same characters.
var ErrAlignment = errors.New("token streams cannot be aligned")

// AlignTokens maps every token of orig to the inclusive range of retok
// tokens that spell it. Both streams must spell the same characters once
// whitespace is removed, and no retok token may straddle two orig tokens.
func AlignTokens(orig, retok []string) ([]interval.Interval, error) {
	res := make([]interval.Interval, len(orig))
	j := 0
	for i, tok := range orig {
		if tok == "" {
			return nil, errors.Wrapf(ErrAlignment, "empty token at %d", i)
		}
		first := j
		pos := 0
		for pos < len(tok) {
			if j >= len(retok) {
				return nil, errors.Wrapf(ErrAlignment, "token %q at %d: re-tokenized stream exhausted", tok, i)
			}
			sub := retok[j]
			if sub == "" {
				return nil, errors.Wrapf(ErrAlignment, "empty re-token at %d", j)
			}
			if pos+len(sub) > len(tok) {
				return nil, errors.Wrapf(ErrAlignment, "re-token %q at %d overruns token %q", sub, j, tok)
			}
			if tok[pos:pos+len(sub)] != sub {
				return nil, errors.Wrapf(ErrAlignment, "re-token %q at %d does not match token %q", sub, j, tok)
			}
			pos += len(sub)
			j++
		}
		res[i] = interval.New(first, j-1)
	}
	return res, nil
}

// AlignSpan translates span, given in orig token indices, into retok indices.
// The span must already lie within orig.
func AlignSpan(orig, retok []string, span interval.Interval) (interval.Interval, error) {
	span = span.Normalize()
	if span.Lo < 0 || span.Hi >= len(orig) {
		return interval.Interval{}, errors.Wrapf(ErrAlignment, "span %v outside %d tokens", span, len(orig))
	}
	ranges, err := AlignTokens(orig, retok)
	if err != nil {
		return interval.Interval{}, err
	}
	return interval.New(ranges[span.Lo].Lo, ranges[span.Hi].Hi), nil
}
