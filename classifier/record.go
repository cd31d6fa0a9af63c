package classifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrFeatureFormat reports a tagged feature line that cannot be parsed.
var ErrFeatureFormat = errors.New("malformed feature line")

// FeatureRecord is one parsed "id label type#value" line.
type FeatureRecord struct {
	InstanceID int
	Label      AssertionClass
	Type       FeatureType
	Value      string
}

// Target returns the 1-based class id written to training rows.
func (r FeatureRecord) Target() string {
	return strconv.Itoa(r.Label.ID())
}

// Key returns "type#value", the vocabulary entry of the record.
func (r FeatureRecord) Key() string {
	return r.Type.String() + "#" + r.Value
}

func (r FeatureRecord) String() string {
	return fmt.Sprintf("%07d %s %s", r.InstanceID, r.Label.Name(), r.Key())
}

// ParseRecord parses a tagged feature line. Lines without exactly three
// fields, or whose value is empty, are skipped with ok=false. An unknown
// label or feature type is an error.
func ParseRecord(line string) (rec FeatureRecord, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return FeatureRecord{}, false, nil
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return FeatureRecord{}, false, errors.Wrapf(ErrFeatureFormat, "instance id %q", fields[0])
	}
	label, err := ParseAssertionClass(fields[1])
	if err != nil {
		return FeatureRecord{}, false, errors.Wrapf(err, "line %q", line)
	}
	name, value, _ := strings.Cut(fields[2], "#")
	t, err := ParseFeatureType(name)
	if err != nil {
		return FeatureRecord{}, false, errors.Wrapf(err, "line %q", line)
	}
	if value == "" {
		return FeatureRecord{}, false, nil
	}
	return FeatureRecord{InstanceID: id, Label: label, Type: t, Value: value}, true, nil
}
