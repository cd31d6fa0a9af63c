package uwassert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/uwassert/classifier"
	"github.com/happyhackingspace/uwassert/internal/vectorizer"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ResourceDir = filepath.Join("testdata", "resources")
	return cfg
}

func newTestClassifier(t *testing.T, opts ...Option) *Classifier {
	t.Helper()
	c, err := New(testConfig(), opts...)
	require.NoError(t, err)
	return c
}

func TestPredict(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name       string
		sentence   string
		start, end int
		want       classifier.AssertionClass
	}{
		{"family member", "Brother has dyspnea", 2, 2, classifier.AssociatedWithSomeoneElse},
		{"negated", "There is no evidence of pneumonia .", 5, 5, classifier.Absent},
		{"rule out", "Patient admitted to r/o pneumonia .", 4, 4, classifier.Possible},
		{"no known features", "Patient has a cough", 3, 3, classifier.Present},
		{"tab separated", "Brother\thas dyspnea", 2, 2, classifier.AssociatedWithSomeoneElse},
		{"mixed whitespace", "There\tis no\fevidence of\vpneumonia .", 5, 5, classifier.Absent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Predict(tt.sentence, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got, err = c.PredictTokens(strings.Fields(tt.sentence), tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredictRealignsSpan(t *testing.T) {
	c := newTestClassifier(t)

	// "pneumonia." splits into two tokens; the concept stays on "pneumonia".
	lines, err := c.Features("No evidence of pneumonia.", 3, 3)
	require.NoError(t, err)
	assert.Contains(t, lines, "0000001 ABSENT ABSENT_SPECIAL#true")
	assert.Contains(t, lines, "0000001 ABSENT CONCEPTSTEMEXPRESSION#pneumonia__II__")

	got, err := c.Predict("No evidence of pneumonia.", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, classifier.Absent, got)
}

func TestPredictErrors(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Predict("Brother has dyspnea", 2, 3)
	assert.True(t, errors.Is(err, classifier.ErrBoundary))
	assert.True(t, strings.HasPrefix(err.Error(), "uwassert: "))

	_, err = c.Predict("Brother has dyspnea", -1, 0)
	assert.True(t, errors.Is(err, classifier.ErrBoundary))

	_, err = c.PredictTokens([]string{"Brother", "has"}, 1, 2)
	assert.True(t, errors.Is(err, classifier.ErrBoundary))

	_, err = c.Predict("", 0, 0)
	assert.True(t, errors.Is(err, classifier.ErrBoundary))
}

func TestScores(t *testing.T) {
	c := newTestClassifier(t)

	lines, err := c.Features("Brother has dyspnea", 2, 2)
	require.NoError(t, err)
	scores, err := c.Scores(lines)
	require.NoError(t, err)
	assert.Len(t, scores, 6)
	assert.InDelta(t, 2.5, scores[classifier.AssociatedWithSomeoneElse], 1e-9)
	assert.InDelta(t, 0, scores[classifier.Present], 1e-9)

	got, err := c.PredictFeatures(lines)
	require.NoError(t, err)
	assert.Equal(t, classifier.AssociatedWithSomeoneElse, got)

	got, err = c.PredictFeatures(nil)
	require.NoError(t, err)
	assert.Equal(t, classifier.Present, got)

	_, err = c.PredictFeatures([]string{"0000001 ABSENT BOGUS#x"})
	assert.Error(t, err)
}

type fixedContext struct{ experiencer string }

func (f fixedContext) Experiencer(string) string { return f.experiencer }
func (f fixedContext) Temporality(string) string { return "Recent" }

func TestOptions(t *testing.T) {
	c := newTestClassifier(t, WithContextDetector(fixedContext{experiencer: "Patient"}))

	// Without the experiencer feature only the kinship weight remains.
	got, err := c.Predict("Brother has dyspnea", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, classifier.AssociatedWithSomeoneElse, got)

	lines, err := c.Features("Brother has dyspnea", 2, 2)
	require.NoError(t, err)
	assert.Contains(t, lines, "0000001 ABSENT CONTEXT_EXPERIENCER#Patient")
	assert.NotContains(t, lines, "0000001 ABSENT CONTEXT_EXPERIENCER#Other")
}

func TestFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Filter = "ABSENT_SPECIAL POSSIBLE_SPECIAL"
	c, err := New(cfg)
	require.NoError(t, err)

	got, err := c.Predict("Brother has dyspnea", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, classifier.Present, got)

	got, err = c.Predict("There is no evidence of pneumonia .", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, classifier.Absent, got)
}

func TestNewErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Model = "missing.model"
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	cfg = testConfig()
	cfg.Vocabulary = "missing.json"
	_, err = New(cfg)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	cfg = testConfig()
	cfg.Model = "bionegsignals.txt"
	_, err = New(cfg)
	assert.True(t, errors.Is(err, classifier.ErrModelFormat))

	cfg = testConfig()
	cfg.Features = "STEM NOT_A_FEATURE"
	_, err = New(cfg)
	assert.True(t, errors.Is(err, classifier.ErrUnknownFeatureType))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "testdata/resources", cfg.ResourceDir)
	assert.Equal(t, classifier.DefaultFeatureSetSpec, cfg.Features)
	assert.Equal(t, filepath.Join("testdata", "resources", "assert.model"), cfg.Resolve(cfg.Model))

	t.Setenv("UWASSERT_FILTER", "STEM")
	t.Setenv("UWASSERT_CACHE_TTL", "5m")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "resources", cfg.ResourceDir)
	assert.Equal(t, "STEM", cfg.Filter)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)

	_, err = LoadConfig(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "testdata/resources", c.Config().ResourceDir)
}

func TestResolve(t *testing.T) {
	cfg := Config{ResourceDir: "res"}
	assert.Equal(t, filepath.Join("res", "a.txt"), cfg.Resolve("a.txt"))
	assert.Equal(t, "/abs/a.txt", cfg.Resolve("/abs/a.txt"))
	assert.Equal(t, "", cfg.Resolve(""))
	assert.Equal(t, "a.txt", Config{}.Resolve("a.txt"))
}

func TestFeatureSets(t *testing.T) {
	mask, filter, err := Config{Features: "STEM QMARK_RIGHT"}.FeatureSets()
	require.NoError(t, err)
	assert.Equal(t, mask, filter)
	assert.Equal(t, 2, mask.Len())

	mask, filter, err = Config{Features: "STEM QMARK_RIGHT", Filter: "STEM"}.FeatureSets()
	require.NoError(t, err)
	assert.True(t, mask.Has(classifier.QMarkRight))
	assert.False(t, filter.Has(classifier.QMarkRight))

	_, _, err = Config{Features: "STEM", Filter: "BOGUS"}.FeatureSets()
	assert.True(t, errors.Is(err, classifier.ErrUnknownFeatureType))
}

func TestPredictBatch(t *testing.T) {
	c := newTestClassifier(t)

	reqs := []Request{
		{Sentence: "Brother has dyspnea", Start: 2, End: 2},
		{Tokens: []string{"There", "is", "no", "evidence", "of", "pneumonia", "."}, Start: 5, End: 5},
		{Sentence: "Brother has dyspnea", Start: 4, End: 4},
		{Sentence: "Patient admitted to r/o pneumonia .", Start: 4, End: 4},
	}
	results, err := c.PredictBatch(context.Background(), reqs, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, Result{Label: "associated_with_someone_else"}, results[0])
	assert.Equal(t, Result{Label: "absent"}, results[1])
	assert.Empty(t, results[2].Label)
	assert.Contains(t, results[2].Error, "boundary")
	assert.Equal(t, Result{Label: "possible"}, results[3])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.PredictBatch(ctx, reqs, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultCache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	c, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, c.results)

	req := Request{Sentence: "Brother has dyspnea", Start: 2, End: 2}
	first := c.PredictRequest(req)
	second := c.PredictRequest(req)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.results.ItemCount())

	c.PredictRequest(Request{Tokens: []string{"Brother", "has", "dyspnea"}, Start: 2, End: 2})
	c.PredictRequest(Request{Sentence: "Brother has dyspnea", Start: 4, End: 4})
	assert.Equal(t, 3, c.results.ItemCount())

	uncached := newTestClassifier(t)
	assert.Nil(t, uncached.results)
	assert.Equal(t, first, uncached.PredictRequest(req))
}

func TestEvaluate(t *testing.T) {
	c := newTestClassifier(t)

	result, err := c.Evaluate(filepath.Join("testdata", "corpus.tsv"), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 4, result.Correct)
	assert.Equal(t, 1, result.Skipped)
	assert.InDelta(t, 0.8, result.Accuracy, 1e-9)
	assert.Equal(t, 1, result.Confusion["present"]["associated_with_someone_else"])
	assert.Equal(t, 1, result.Confusion["present"]["present"])
	assert.Len(t, result.Classes, 6)
	assert.InDelta(t, 0.5, result.Precision["associated_with_someone_else"], 1e-9)
	assert.InDelta(t, 0.5, result.Recall["present"], 1e-9)
	assert.InDelta(t, 1.0, result.F1["absent"], 1e-9)

	_, err = c.Evaluate(filepath.Join("testdata", "missing.tsv"), nil)
	assert.Error(t, err)
}

func TestClassScores(t *testing.T) {
	confusion := map[string]map[string]int{
		"a": {"a": 3, "b": 1},
		"b": {"b": 2},
		"c": {},
	}
	p, r, f1, macro := classScores(confusion, []string{"a", "b", "c"})
	assert.InDelta(t, 1.0, p["a"], 1e-9)
	assert.InDelta(t, 0.75, r["a"], 1e-9)
	assert.InDelta(t, 2.0/3.0, p["b"], 1e-9)
	assert.InDelta(t, 1.0, r["b"], 1e-9)
	assert.Zero(t, f1["c"])
	assert.InDelta(t, (f1["a"]+f1["b"])/2, macro, 1e-9)
}

func TestGenerateFeatures(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")
	data, err := os.ReadFile(filepath.Join("testdata", "resources", "assert.vocab.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(vocabPath, data, 0o644))

	var buf bytes.Buffer
	result, err := GenerateFeatures(testConfig(), filepath.Join("testdata", "corpus.tsv"), &buf, &FeaturesConfig{Vocabulary: vocabPath})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Rows)
	assert.Equal(t, 1, result.Skipped)

	rows := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, rows, 5)
	targets := make([]string, len(rows))
	for i, row := range rows {
		targets[i] = strings.Fields(row)[0]
	}
	assert.Equal(t, []string{"6", "2", "3", "1", "1"}, targets)
	assert.True(t, strings.HasPrefix(rows[0], "6 1:1 "), rows[0])

	vocab, err := vectorizer.LoadVocabulary(vocabPath)
	require.NoError(t, err)
	assert.Equal(t, result.VocabularySize, vocab.Size())
	assert.Equal(t, 1, vocab.Index("CONTEXT_EXPERIENCER#Other"))
	assert.Positive(t, vocab.Index("STEM#dyspnea"))
}

func TestGenerateFeaturesFrequency(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.tsv")
	require.NoError(t, os.WriteFile(corpus, []byte("no no pneumonia\t2\t2\tabsent\n"), 0o644))
	vocabPath := filepath.Join(dir, "vocab.json")

	cfg := testConfig()
	cfg.Features = "STEM"

	var buf bytes.Buffer
	_, err := GenerateFeatures(cfg, corpus, &buf, &FeaturesConfig{Vocabulary: vocabPath, Format: "frequency"})
	require.NoError(t, err)
	assert.Equal(t, "2 1:2 2:1\n", buf.String())

	buf.Reset()
	_, err = GenerateFeatures(cfg, corpus, &buf, &FeaturesConfig{Vocabulary: vocabPath})
	require.NoError(t, err)
	assert.Equal(t, "2 1:1 2:1\n", buf.String())

	vocab, err := vectorizer.LoadVocabulary(vocabPath)
	require.NoError(t, err)
	assert.Equal(t, 3, vocab.Size())
	item, ok := vocab.Item(0)
	assert.True(t, ok)
	assert.Equal(t, vectorizer.NullFeature, item)
}

func TestGenerateFeaturesUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")

	var buf bytes.Buffer
	_, err := GenerateFeatures(testConfig(), filepath.Join(dir, "missing.tsv"), &buf, &FeaturesConfig{Vocabulary: vocabPath, Format: "tfidf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown row format")
	assert.NoFileExists(t, vocabPath)
}
