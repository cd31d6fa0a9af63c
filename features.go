package uwassert

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/happyhackingspace/uwassert/classifier"
	"github.com/happyhackingspace/uwassert/internal/storage"
	"github.com/happyhackingspace/uwassert/internal/textutil"
	"github.com/happyhackingspace/uwassert/internal/vectorizer"
)

// FeaturesConfig holds configuration for training-row generation.
type FeaturesConfig struct {
	// Format is "binary" (index:1, the default) or "frequency" (index:count).
	Format string
	// Vocabulary overrides the vocabulary path of the Config.
	Vocabulary string
	Verbose    bool
}

// FeaturesResult summarizes a GenerateFeatures run.
type FeaturesResult struct {
	Rows           int
	Skipped        int
	VocabularySize int
	VocabularyPath string
}

// GenerateFeatures extracts features for every labeled annotation of the
// corpus at corpusPath and writes one liblinear training row per
// annotation to w. Unseen features are added to the vocabulary, which is
// created if missing and saved when all rows are written.
func GenerateFeatures(cfg Config, corpusPath string, w io.Writer, config *FeaturesConfig, opts ...Option) (*FeaturesResult, error) {
	fc := FeaturesConfig{}
	if config != nil {
		fc = *config
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	format, ok := vectorizer.ParseRowFormat(fc.Format)
	if !ok {
		return nil, errors.Newf("uwassert: unknown row format %q", fc.Format)
	}

	mask, filter, err := cfg.FeatureSets()
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	signals, err := classifier.LoadSignalCatalog(cfg.Resolve(cfg.NegationSignals), cfg.Resolve(cfg.KinshipSignals))
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	vocabPath := fc.Vocabulary
	if vocabPath == "" {
		vocabPath = cfg.Resolve(cfg.Vocabulary)
	}
	vocab, err := vectorizer.OpenVocabulary(vocabPath)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}

	store := storage.NewStorage(corpusPath)
	iterOpts := storage.DefaultIterOptions()
	iterOpts.DropUnlabeled = true
	iterOpts.Verbose = fc.Verbose
	annotations, err := store.IterAnnotations(iterOpts)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}

	extractor := &classifier.Extractor{Signals: signals, Negation: o.negation, Context: o.context}
	indexer := &classifier.Indexer{Vocabulary: vocab, Filter: filter, Grow: true}
	bw := bufio.NewWriter(w)
	result := &FeaturesResult{VocabularyPath: vocabPath}

	for _, ann := range annotations {
		id := result.Rows + 1
		row, err := trainingRow(o.tokenizer, extractor, indexer, mask, ann, id)
		if err != nil {
			slog.Warn("Skipping annotation", "line", ann.Line, "concept", ann.Concept(), "error", err)
			result.Skipped++
			continue
		}
		if _, err := bw.WriteString(row.Row(format) + "\n"); err != nil {
			return nil, errors.Wrap(err, "uwassert: write row")
		}
		result.Rows++
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.Wrap(err, "uwassert: write rows")
	}
	if err := vocab.Save(vocabPath); err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	result.VocabularySize = vocab.Size()
	if fc.Verbose {
		slog.Info("Features generated", "rows", result.Rows, "skipped", result.Skipped, "vocabulary", result.VocabularySize)
	}
	return result, nil
}

// trainingRow extracts and indexes one annotation. An annotation without
// surviving features still yields a row holding only its target.
func trainingRow(tok textutil.Tokenizer, ex *classifier.Extractor, ix *classifier.Indexer, mask classifier.FeatureSet, ann storage.Annotation, id int) (*vectorizer.Instance, error) {
	label, err := classifier.ParseAssertionClass(ann.Label)
	if err != nil {
		return nil, err
	}
	s, span, err := realign(tok, ann.Tokens(), ann.Start, ann.End)
	if err != nil {
		return nil, err
	}
	inst := classifier.Instance{
		ID:      id,
		Concept: classifier.Concept{Name: s.Span(span, " "), SentenceID: id, Span: span},
		Label:   label,
	}
	lines, err := ex.Extract(s, inst, mask)
	if err != nil {
		return nil, err
	}
	instances, err := ix.Index(lines)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return vectorizer.NewInstance(id, strconv.Itoa(label.ID())), nil
	}
	return instances[0], nil
}
