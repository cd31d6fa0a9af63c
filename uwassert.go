// Package uwassert classifies the assertion status of clinical concepts.
//
// Given a sentence and the token span of a concept, it decides whether the
// concept is present, absent, possible, hypothetical, conditional or
// experienced by someone other than the patient.
//
//	c, _ := uwassert.New(uwassert.DefaultConfig())
//	label, _ := c.Predict("Brother has dyspnea", 2, 2)
//	fmt.Println(label) // "associated_with_someone_else"
package uwassert

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	gocache "github.com/patrickmn/go-cache"

	"github.com/happyhackingspace/uwassert/classifier"
	"github.com/happyhackingspace/uwassert/internal/contextrules"
	"github.com/happyhackingspace/uwassert/internal/negex"
	"github.com/happyhackingspace/uwassert/internal/textutil"
	"github.com/happyhackingspace/uwassert/internal/vectorizer"
	"github.com/happyhackingspace/uwassert/interval"
)

// Classifier predicts assertion classes. All state is read-only after New,
// so one Classifier may serve concurrent callers.
type Classifier struct {
	cfg       Config
	mask      classifier.FeatureSet
	filter    classifier.FeatureSet
	tokenizer textutil.Tokenizer
	extractor *classifier.Extractor
	vocab     *vectorizer.Vocabulary
	model     *classifier.LinearModel
	results   *gocache.Cache
}

type options struct {
	tokenizer textutil.Tokenizer
	negation  classifier.NegationDetector
	context   classifier.ContextDetector
}

func defaultOptions() options {
	return options{
		tokenizer: textutil.RuleTokenizer{},
		negation:  negex.New(),
		context:   contextrules.New(),
	}
}

// Option customizes the external collaborators of a Classifier.
type Option func(*options)

// WithTokenizer replaces the rule tokenizer applied to raw sentences.
func WithTokenizer(t textutil.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

// WithNegationDetector replaces the rule-based negation detector.
func WithNegationDetector(d classifier.NegationDetector) Option {
	return func(o *options) { o.negation = d }
}

// WithContextDetector replaces the rule-based experiencer and temporality detector.
func WithContextDetector(d classifier.ContextDetector) Option {
	return func(o *options) { o.context = d }
}

// New loads the signal lists, vocabulary and model named by cfg. Any
// missing or malformed resource is an error.
func New(cfg Config, opts ...Option) (*Classifier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	mask, filter, err := cfg.FeatureSets()
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	signals, err := classifier.LoadSignalCatalog(cfg.Resolve(cfg.NegationSignals), cfg.Resolve(cfg.KinshipSignals))
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	vocab, err := vectorizer.LoadVocabulary(cfg.Resolve(cfg.Vocabulary))
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	model, err := classifier.LoadLinearModel(cfg.Resolve(cfg.Model))
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	if vocab.Size()-1 < model.NumFeature {
		slog.Warn("Model knows more features than the vocabulary", "model", model.NumFeature, "vocabulary", vocab.Size()-1)
	}

	c := &Classifier{
		cfg:       cfg,
		mask:      mask,
		filter:    filter,
		tokenizer: o.tokenizer,
		extractor: &classifier.Extractor{Signals: signals, Negation: o.negation, Context: o.context},
		vocab:     vocab,
		model:     model,
	}
	if cfg.CacheTTL > 0 {
		c.results = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c, nil
}

// Load reads the configuration from configFile and the environment, then calls New.
func Load(configFile string, opts ...Option) (*Classifier, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	return New(cfg, opts...)
}

// Config returns the configuration the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Predict classifies the concept spanning whitespace tokens start..end of
// sentence. The sentence is re-tokenized and the span realigned before
// features are extracted.
func (c *Classifier) Predict(sentence string, start, end int) (classifier.AssertionClass, error) {
	lines, err := c.Features(sentence, start, end)
	if err != nil {
		return 0, err
	}
	return c.decode(lines)
}

// PredictTokens classifies the concept spanning tokens start..end. The
// tokens are used as given.
func (c *Classifier) PredictTokens(tokens []string, start, end int) (classifier.AssertionClass, error) {
	lines, err := c.FeaturesTokens(tokens, start, end)
	if err != nil {
		return 0, err
	}
	return c.decode(lines)
}

// PredictFeatures classifies a set of tagged feature lines as returned by
// Features.
func (c *Classifier) PredictFeatures(lines []string) (classifier.AssertionClass, error) {
	return c.decode(lines)
}

// Features returns the tagged feature lines Predict would score.
func (c *Classifier) Features(sentence string, start, end int) ([]string, error) {
	return c.featuresWhitespace(textutil.SplitWhitespace(sentence), start, end)
}

// featuresWhitespace extracts features for a span over whitespace tokens,
// re-tokenizing them first.
func (c *Classifier) featuresWhitespace(orig []string, start, end int) ([]string, error) {
	s, span, err := realign(c.tokenizer, orig, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	return c.extract(s, classifier.TestInstance(span, s.Span(span, " ")))
}

// FeaturesTokens returns the tagged feature lines PredictTokens would score.
func (c *Classifier) FeaturesTokens(tokens []string, start, end int) ([]string, error) {
	s := classifier.Sentence(tokens)
	span := interval.New(start, end)
	if err := s.CheckSpan(span); err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	return c.extract(s, classifier.TestInstance(span, s.Span(span, " ")))
}

// Scores returns the per-class decision values for a set of feature lines,
// keyed by class.
func (c *Classifier) Scores(lines []string) (map[classifier.AssertionClass]float64, error) {
	indices, err := c.indexer().Indices(lines)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	scores := c.model.Scores(indices)
	res := make(map[classifier.AssertionClass]float64, len(scores))
	for col, v := range scores {
		cls, err := classifier.ClassFromID(c.model.Label[col])
		if err != nil {
			return nil, errors.Wrap(err, "uwassert")
		}
		res[cls] = v
	}
	return res, nil
}

// realign checks the span against the whitespace tokens orig,
// re-tokenizes them and maps the span onto the new tokens.
func realign(tok textutil.Tokenizer, orig []string, start, end int) (classifier.Sentence, interval.Interval, error) {
	span := interval.New(start, end)
	if err := classifier.Sentence(orig).CheckSpan(span); err != nil {
		return nil, interval.Interval{}, err
	}
	retok := tok.Tokenize(textutil.Flatten(orig))
	aligned, err := textutil.AlignSpan(orig, retok, span)
	if err != nil {
		return nil, interval.Interval{}, err
	}
	return classifier.Sentence(retok), aligned, nil
}

func (c *Classifier) extract(s classifier.Sentence, inst classifier.Instance) ([]string, error) {
	lines, err := c.extractor.Extract(s, inst, c.mask)
	if err != nil {
		return nil, errors.Wrap(err, "uwassert")
	}
	return lines, nil
}

func (c *Classifier) indexer() *classifier.Indexer {
	return &classifier.Indexer{Vocabulary: c.vocab, Filter: c.filter}
}

func (c *Classifier) decode(lines []string) (classifier.AssertionClass, error) {
	indices, err := c.indexer().Indices(lines)
	if err != nil {
		return 0, errors.Wrap(err, "uwassert")
	}
	cls, err := c.model.Predict(indices)
	if err != nil {
		return 0, errors.Wrap(err, "uwassert")
	}
	return cls, nil
}
