package classifier

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrModelFormat reports a linear model file that cannot be loaded.
var ErrModelFormat = errors.New("malformed linear model")

// LinearModel is a frozen multiclass linear model in liblinear layout.
type LinearModel struct {
	SolverType string
	NumClass   int
	NumFeature int
	// Label maps a weight column to its external class id.
	Label []int
	// W holds one weight vector per column; W[c][f-1] weighs feature id f.
	W [][]float64
}

// LoadLinearModel reads a liblinear model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model")
	}
	defer func() { _ = f.Close() }()
	m, err := ReadLinearModel(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	slog.Debug("Model loaded", "path", path, "classes", m.NumClass, "features", m.NumFeature)
	return m, nil
}

// ReadLinearModel parses a liblinear model. The header carries nr_class,
// nr_feature and label, optionally solver_type and bias, then a "w" line
// followed by nr_feature rows of nr_class weights. Models trained with a
// bias term are rejected.
func ReadLinearModel(r io.Reader) (*LinearModel, error) {
	m := &LinearModel{NumClass: -1, NumFeature: -1}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	inWeights := false
	row := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if inWeights {
			if len(fields) == 0 {
				if row == m.NumFeature {
					continue
				}
				return nil, errors.Wrapf(ErrModelFormat, "line %d: blank weight row", lineNo)
			}
			if row >= m.NumFeature {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: more than %d weight rows", lineNo, m.NumFeature)
			}
			if len(fields) != m.NumClass {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: %d weights, want %d", lineNo, len(fields), m.NumClass)
			}
			for c, s := range fields {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, errors.Wrapf(ErrModelFormat, "line %d: weight %q", lineNo, s)
				}
				m.W[c][row] = v
			}
			row++
			continue
		}
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solver_type":
			if len(fields) != 2 {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: solver_type", lineNo)
			}
			m.SolverType = fields[1]
		case "nr_class", "nr_feature":
			n, err := headerInt(fields, lineNo)
			if err != nil {
				return nil, err
			}
			if fields[0] == "nr_class" {
				m.NumClass = n
			} else {
				m.NumFeature = n
			}
		case "bias":
			if len(fields) != 2 {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: bias", lineNo)
			}
			b, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: bias %q", lineNo, fields[1])
			}
			if b >= 0 {
				return nil, errors.Wrapf(ErrModelFormat, "line %d: bias %v not supported", lineNo, b)
			}
		case "label":
			m.Label = make([]int, 0, len(fields)-1)
			for _, s := range fields[1:] {
				id, err := strconv.Atoi(s)
				if err != nil {
					return nil, errors.Wrapf(ErrModelFormat, "line %d: label %q", lineNo, s)
				}
				m.Label = append(m.Label, id)
			}
		case "w":
			if err := m.checkHeader(); err != nil {
				return nil, err
			}
			m.W = make([][]float64, m.NumClass)
			for c := range m.W {
				m.W[c] = make([]float64, m.NumFeature)
			}
			inWeights = true
		default:
			return nil, errors.Wrapf(ErrModelFormat, "line %d: unexpected %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan model")
	}
	if !inWeights {
		return nil, errors.Wrap(ErrModelFormat, "missing weights")
	}
	if row != m.NumFeature {
		return nil, errors.Wrapf(ErrModelFormat, "%d weight rows, want %d", row, m.NumFeature)
	}
	return m, nil
}

func headerInt(fields []string, lineNo int) (int, error) {
	if len(fields) != 2 {
		return 0, errors.Wrapf(ErrModelFormat, "line %d: %s", lineNo, fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrModelFormat, "line %d: %s %q", lineNo, fields[0], fields[1])
	}
	return n, nil
}

func (m *LinearModel) checkHeader() error {
	switch {
	case m.NumClass < 1:
		return errors.Wrap(ErrModelFormat, "missing nr_class")
	case m.NumFeature < 0:
		return errors.Wrap(ErrModelFormat, "missing nr_feature")
	case len(m.Label) != m.NumClass:
		return errors.Wrapf(ErrModelFormat, "%d labels, want %d", len(m.Label), m.NumClass)
	}
	return nil
}

// Scores returns the decision value of every weight column. Feature ids
// below 1 or beyond NumFeature contribute nothing.
func (m *LinearModel) Scores(indices []int) []float64 {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	scores := make([]float64, m.NumClass)
	for _, f := range sorted {
		if f < 1 || f > m.NumFeature {
			continue
		}
		for c := range scores {
			scores[c] += m.W[c][f-1]
		}
	}
	return scores
}

// Decode returns the external class id of the best scoring column. Ties go
// to the lowest column.
func (m *LinearModel) Decode(indices []int) int {
	scores := m.Scores(indices)
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return m.Label[best]
}

// Predict decodes indices and maps the class id onto AssertionClass.
func (m *LinearModel) Predict(indices []int) (AssertionClass, error) {
	return ClassFromID(m.Decode(indices))
}
