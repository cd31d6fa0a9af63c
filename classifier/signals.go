package classifier

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/interval"
)

// SignalDelim joins the tokens of a multi-word signal label.
const SignalDelim = "__II__"

// maxSignalLen is the longest phrase, in tokens, looked up in a sentence.
const maxSignalLen = 5

// ErrSignalFormat reports a malformed signal list line.
var ErrSignalFormat = errors.New("malformed signal line")

// SignalCatalog holds the ranked negation and kinship cue phrases. Each
// entry's interval spans its token offsets [0, n-1].
type SignalCatalog struct {
	Negation []interval.Labeled
	Kinship  []interval.Labeled

	negSet map[string]struct{}
	kinSet map[string]struct{}
}

// NewSignalCatalog builds a catalog from already ranked lists.
func NewSignalCatalog(negation, kinship []interval.Labeled) *SignalCatalog {
	c := &SignalCatalog{
		Negation: negation,
		Kinship:  kinship,
		negSet:   make(map[string]struct{}, len(negation)),
		kinSet:   make(map[string]struct{}, len(kinship)),
	}
	for _, s := range negation {
		c.negSet[s.Label] = struct{}{}
	}
	for _, s := range kinship {
		c.kinSet[s.Label] = struct{}{}
	}
	return c
}

// LoadSignalCatalog reads the negation and kinship lists from disk.
func LoadSignalCatalog(negationPath, kinshipPath string) (*SignalCatalog, error) {
	neg, err := loadSignalFile(negationPath)
	if err != nil {
		return nil, err
	}
	kin, err := loadSignalFile(kinshipPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Signals loaded", "negation", len(neg), "kinship", len(kin))
	return NewSignalCatalog(neg, kin), nil
}

func loadSignalFile(path string) ([]interval.Labeled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open signals")
	}
	defer func() { _ = f.Close() }()
	signals, err := ReadSignals(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return signals, nil
}

// ReadSignals parses "<freq> tok1 tok2 ..." lines and ranks the result by
// descending frequency. Blank lines are skipped.
func ReadSignals(r io.Reader) ([]interval.Labeled, error) {
	var res []interval.Labeled
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, errors.Wrapf(ErrSignalFormat, "line %d: %q", lineNo, sc.Text())
		}
		freq, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(ErrSignalFormat, "line %d: frequency %q", lineNo, fields[0])
		}
		toks := fields[1:]
		res = append(res, interval.Labeled{
			Interval: interval.New(0, len(toks)-1),
			Label:    strings.Join(toks, SignalDelim),
			Freq:     freq,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan signals")
	}
	interval.SortByFreqDesc(res)
	return res, nil
}

// IsNegSignal reports whether expr is a negation cue label.
func (c *SignalCatalog) IsNegSignal(expr string) bool {
	_, ok := c.negSet[expr]
	return ok
}

// IsKinship reports whether expr is a kinship cue label.
func (c *SignalCatalog) IsKinship(expr string) bool {
	_, ok := c.kinSet[expr]
	return ok
}

// IsSignal reports whether expr is a negation or kinship cue label.
func (c *SignalCatalog) IsSignal(expr string) bool {
	return c.IsNegSignal(expr) || c.IsKinship(expr)
}

// Labels returns every cue label, negation cues first, in rank order.
func (c *SignalCatalog) Labels() []string {
	res := make([]string, 0, len(c.Negation)+len(c.Kinship))
	for _, s := range c.Negation {
		res = append(res, s.Label)
	}
	for _, s := range c.Kinship {
		res = append(res, s.Label)
	}
	return res
}

// Occurrences finds non-overlapping cue occurrences in tokens. Longer
// phrases are tried first, so a shorter cue inside a longer one is dropped.
// With negOnly set only negation cues are considered.
func (c *SignalCatalog) Occurrences(tokens []string, negOnly bool) []interval.Interval {
	var found []interval.Interval
	for limit := maxSignalLen - 1; limit >= 0; limit-- {
		for i := 0; i < len(tokens)-limit; i++ {
			expr := signalLabel(tokens, interval.New(i, i+limit))
			ok := c.IsNegSignal(expr)
			if !ok && !negOnly {
				ok = c.IsKinship(expr)
			}
			if ok {
				found = interval.InsertNonOverlapping(interval.New(i, i+limit), found)
			}
		}
	}
	return found
}

// signalLabel joins the lowercased tokens of iv with SignalDelim.
func signalLabel(tokens []string, iv interval.Interval) string {
	var b strings.Builder
	for i := iv.Lo; i <= iv.Hi; i++ {
		if i > iv.Lo {
			b.WriteString(SignalDelim)
		}
		b.WriteString(strings.ToLower(tokens[i]))
	}
	return b.String()
}
