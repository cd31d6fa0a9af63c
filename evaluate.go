package uwassert

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/classifier"
	"github.com/happyhackingspace/uwassert/internal/storage"
)

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Verbose bool
}

// EvalResult holds the scores of a classifier on an annotated corpus.
type EvalResult struct {
	Accuracy float64
	Correct  int
	Total    int
	// Skipped counts annotations with an unknown label or an unusable span.
	Skipped int

	// Confusion is keyed by gold class, then predicted class.
	Confusion map[string]map[string]int
	Classes   []string
	Precision map[string]float64
	Recall    map[string]float64
	F1        map[string]float64
	MacroF1   float64
}

// Evaluate predicts every labeled annotation of the corpus at corpusPath and
// compares the result with the gold label.
func (c *Classifier) Evaluate(corpusPath string, config *EvalConfig) (*EvalResult, error) {
	verbose := false
	if config != nil {
		verbose = config.Verbose
	}

	store := storage.NewStorage(corpusPath)
	opts := storage.DefaultIterOptions()
	opts.DropUnlabeled = true
	opts.Verbose = verbose
	annotations, err := store.IterAnnotations(opts)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	if len(annotations) == 0 {
		return nil, errors.Newf("uwassert: no labeled annotations found in %s", corpusPath)
	}

	result := &EvalResult{Confusion: make(map[string]map[string]int)}
	for _, cls := range classifier.AssertionClasses() {
		result.Classes = append(result.Classes, cls.String())
		result.Confusion[cls.String()] = make(map[string]int)
	}

	for _, ann := range annotations {
		gold, err := classifier.ParseAssertionClass(ann.Label)
		if err != nil {
			slog.Warn("Skipping annotation", "line", ann.Line, "error", err)
			result.Skipped++
			continue
		}
		pred, err := c.predictAnnotation(ann)
		if err != nil {
			slog.Warn("Skipping annotation", "line", ann.Line, "error", err)
			result.Skipped++
			continue
		}
		if verbose && pred != gold {
			slog.Debug("Misclassified", "line", ann.Line, "concept", ann.Concept(), "gold", gold, "predicted", pred)
		}
		result.Confusion[gold.String()][pred.String()]++
		if pred == gold {
			result.Correct++
		}
		result.Total++
	}
	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	result.Precision, result.Recall, result.F1, result.MacroF1 = classScores(result.Confusion, result.Classes)
	return result, nil
}

func (c *Classifier) predictAnnotation(ann storage.Annotation) (classifier.AssertionClass, error) {
	lines, err := c.featuresWhitespace(ann.Tokens(), ann.Start, ann.End)
	if err != nil {
		return 0, err
	}
	return c.decode(lines)
}

// classScores computes per-class precision, recall and F1 from a confusion
// matrix. The macro average covers classes with gold support only.
func classScores(confusion map[string]map[string]int, classes []string) (precision, recall, f1 map[string]float64, macroF1 float64) {
	precision = make(map[string]float64, len(classes))
	recall = make(map[string]float64, len(classes))
	f1 = make(map[string]float64, len(classes))

	supported := 0
	for _, cls := range classes {
		tp := confusion[cls][cls]
		support, predicted := 0, 0
		for _, v := range confusion[cls] {
			support += v
		}
		for _, row := range confusion {
			predicted += row[cls]
		}
		if predicted > 0 {
			precision[cls] = float64(tp) / float64(predicted)
		}
		if support > 0 {
			recall[cls] = float64(tp) / float64(support)
		}
		if p, r := precision[cls], recall[cls]; p+r > 0 {
			f1[cls] = 2 * p * r / (p + r)
		}
		if support > 0 {
			supported++
			macroF1 += f1[cls]
		}
	}
	if supported > 0 {
		macroF1 /= float64(supported)
	}
	return precision, recall, f1, macroF1
}
