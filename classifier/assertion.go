// Package classifier implements assertion status classification for clinical concepts.
package classifier

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// AssertionClass is the assertion status of a concept mention.
type AssertionClass int

const (
	Present AssertionClass = iota
	Absent
	Possible
	Hypothetical
	Conditional
	AssociatedWithSomeoneElse
)

var assertionNames = []string{
	"PRESENT",
	"ABSENT",
	"POSSIBLE",
	"HYPOTHETICAL",
	"CONDITIONAL",
	"ASSOCIATED_WITH_SOMEONE_ELSE",
}

// ErrUnknownClass reports an assertion label or class id outside the taxonomy.
var ErrUnknownClass = errors.New("unknown assertion class")

// AssertionClasses returns every class in ordinal order.
func AssertionClasses() []AssertionClass {
	res := make([]AssertionClass, len(assertionNames))
	for i := range res {
		res[i] = AssertionClass(i)
	}
	return res
}

// Name returns the upper-case identifier used in feature lines.
func (c AssertionClass) Name() string {
	if c < 0 || int(c) >= len(assertionNames) {
		return "AssertionClass(" + strconv.Itoa(int(c)) + ")"
	}
	return assertionNames[c]
}

// String returns the lower-case label reported to callers.
func (c AssertionClass) String() string {
	return strings.ToLower(c.Name())
}

// ID returns the 1-based class id used by the linear model.
func (c AssertionClass) ID() int {
	return int(c) + 1
}

// ClassFromID maps a 1-based model class id back to its class.
func ClassFromID(id int) (AssertionClass, error) {
	if id < 1 || id > len(assertionNames) {
		return 0, errors.Wrapf(ErrUnknownClass, "class id %d", id)
	}
	return AssertionClass(id - 1), nil
}

// ParseAssertionClass parses a class name case-insensitively.
func ParseAssertionClass(s string) (AssertionClass, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range assertionNames {
		if name == u {
			return AssertionClass(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownClass, "%q", s)
}
