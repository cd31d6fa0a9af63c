package classifier

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// FeatureType identifies one feature detector.
type FeatureType int

const (
	NegPrefix FeatureType = iota
	NegPrefixLeftWindow
	NegPrefixRightWindow
	PossibleSpecial
	PossibleSpecial2
	PresentSpecial
	AbsentSpecial
	SignalClosestLeftWindowSize
	HasKinshipInSentence
	ConceptStemExpression
	NegSignalClosestLeftCommaRestricted
	QMarkRight
	WordLeft1Uncase
	WordLeft2Uncase
	StemLeft1Uncase
	TrigramLeftUncase
	TrigramRightUncase
	StemTrigramLeftUncase
	Negex
	NegexW6
	ContextExperiencer
	ContextTemporalityW6
	WordPosition
	Stem

	numBaseTypes
)

// NegPrefixes are the negation prefixes tested by the NEGPREFIX families, in match order.
var NegPrefixes = [numNegPrefixes]string{"ab", "de", "di", "il", "im", "in", "ir", "re", "un", "no", "mel", "mal", "mis"}

const (
	numNegPrefixes  = 13
	numFeatureTypes = int(numBaseTypes) + 3*numNegPrefixes
)

var baseTypeNames = [numBaseTypes]string{
	"NEGPREFIX",
	"NEGPREFIX_LEFTWINDOW",
	"NEGPREFIX_RIGHTWINDOW",
	"POSSIBLE_SPECIAL",
	"POSSIBLE_SPECIAL2",
	"PRESENT_SPECIAL",
	"ABSENT_SPECIAL",
	"SIGNALCLOSESTLEFT_WINDOWSIZE",
	"HAS_KINSHIP_INSENTENCE",
	"CONCEPTSTEMEXPRESSION",
	"NEGSIGNALCLOSESTLEFT_COMMARESTRICTED",
	"QMARK_RIGHT",
	"WORDLEFT1_UNCASE",
	"WORDLEFT2_UNCASE",
	"STEMLEFT1_UNCASE",
	"TRIGRAMLEFT_UNCASE",
	"TRIGRAMRIGHT_UNCASE",
	"STEMTRIGRAMLEFT_UNCASE",
	"NEGEX",
	"NEGEX_W6",
	"CONTEXT_EXPERIENCER",
	"CONTEXT_TEMPORALITY_W6",
	"WORD_POSITION",
	"STEM",
}

var (
	featureTypeNames = buildFeatureTypeNames()
	featureTypeIndex = buildFeatureTypeIndex()
)

// Prefixed variants follow the base types: one block of 13 per family.
func buildFeatureTypeNames() []string {
	names := make([]string, 0, numFeatureTypes)
	names = append(names, baseTypeNames[:]...)
	for _, family := range []FeatureType{NegPrefix, NegPrefixLeftWindow, NegPrefixRightWindow} {
		for _, p := range NegPrefixes {
			names = append(names, baseTypeNames[family]+"__"+p)
		}
	}
	return names
}

func buildFeatureTypeIndex() map[string]FeatureType {
	m := make(map[string]FeatureType, len(featureTypeNames))
	for i, name := range featureTypeNames {
		m[name] = FeatureType(i)
	}
	return m
}

// ErrUnknownFeatureType reports a feature type name outside the closed set.
var ErrUnknownFeatureType = errors.New("unknown feature type")

func (t FeatureType) String() string {
	if t < 0 || int(t) >= len(featureTypeNames) {
		return "FeatureType(?)"
	}
	return featureTypeNames[t]
}

// NegPrefixVariant returns the prefixed variant of a NEGPREFIX family.
func NegPrefixVariant(family FeatureType, prefix int) FeatureType {
	return numBaseTypes + FeatureType(int(family)*numNegPrefixes+prefix)
}

// ParseFeatureType looks up a feature type by its exact name.
func ParseFeatureType(name string) (FeatureType, error) {
	t, ok := featureTypeIndex[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownFeatureType, "%q", name)
	}
	return t, nil
}

// FeatureSet is an allow-set of feature types.
type FeatureSet [numFeatureTypes]bool

// DefaultFeatureSetSpec is the feature configuration the bundled model was trained with.
const DefaultFeatureSetSpec = "ABSENT_SPECIAL CONCEPTSTEMEXPRESSION CONTEXT_EXPERIENCER CONTEXT_TEMPORALITY_W6 " +
	"HAS_KINSHIP_INSENTENCE NEGEX NEGEX_W6 NEGPREFIX_LEFTWINDOW__de NEGPREFIX_LEFTWINDOW__mis " +
	"NEGPREFIX_RIGHTWINDOW__ab NEGPREFIX__im NEGPREFIX__mis NEGSIGNALCLOSESTLEFT_COMMARESTRICTED " +
	"POSSIBLE_SPECIAL POSSIBLE_SPECIAL2 PRESENT_SPECIAL QMARK_RIGHT SIGNALCLOSESTLEFT_WINDOWSIZE " +
	"STEM STEMLEFT1_UNCASE STEMTRIGRAMLEFT_UNCASE WORDLEFT1_UNCASE WORDLEFT2_UNCASE WORD_POSITION"

// ParseFeatureSet parses a whitespace-separated list of feature type names.
// Order is irrelevant and duplicates are ignored.
func ParseFeatureSet(spec string) (FeatureSet, error) {
	var fs FeatureSet
	for _, name := range strings.Fields(spec) {
		t, err := ParseFeatureType(name)
		if err != nil {
			return FeatureSet{}, err
		}
		fs[t] = true
	}
	return fs, nil
}

// DefaultFeatureSet returns the set described by DefaultFeatureSetSpec.
func DefaultFeatureSet() FeatureSet {
	fs, err := ParseFeatureSet(DefaultFeatureSetSpec)
	if err != nil {
		panic(err)
	}
	return fs
}

// AllFeatures returns a set enabling every feature type.
func AllFeatures() FeatureSet {
	var fs FeatureSet
	for i := range fs {
		fs[i] = true
	}
	return fs
}

// Has reports whether t is enabled.
func (fs FeatureSet) Has(t FeatureType) bool {
	return t >= 0 && int(t) < len(fs) && fs[t]
}

// HasFamily reports whether a NEGPREFIX family or any of its prefixed variants is enabled.
func (fs FeatureSet) HasFamily(family FeatureType) bool {
	if fs.Has(family) {
		return true
	}
	for i := range NegPrefixes {
		if fs.Has(NegPrefixVariant(family, i)) {
			return true
		}
	}
	return false
}

// Len returns the number of enabled types.
func (fs FeatureSet) Len() int {
	n := 0
	for _, ok := range fs {
		if ok {
			n++
		}
	}
	return n
}

// Types returns the enabled types in declaration order.
func (fs FeatureSet) Types() []FeatureType {
	var res []FeatureType
	for i, ok := range fs {
		if ok {
			res = append(res, FeatureType(i))
		}
	}
	return res
}

// String renders the set in the configuration format, names sorted.
func (fs FeatureSet) String() string {
	var names []string
	for _, t := range fs.Types() {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}
