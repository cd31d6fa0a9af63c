package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/uwassert"
)

// writeConfig writes a config file pointing at the repository test resources.
func writeConfig(t *testing.T) string {
	t.Helper()
	res, err := filepath.Abs(filepath.Join("..", "..", "testdata", "resources"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "uwassert.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resource_dir: "+res+"\n"), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New("test")
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&out)
	c.rootCmd.SetArgs(append(args, "--silent"))
	err := c.Run()
	return out.String(), err
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeConfig(t)
	t.Setenv("UWASSERT_FILTER", "STEM")

	out, err := run(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)

	var cfg uwassert.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.True(t, strings.HasSuffix(cfg.ResourceDir, filepath.Join("testdata", "resources")))
	assert.Equal(t, "assert.model", cfg.Model)
	assert.Equal(t, "STEM", cfg.Filter)
}

func TestBatchCommand(t *testing.T) {
	cfgPath := writeConfig(t)
	reqPath := filepath.Join(t.TempDir(), "requests.jsonl")
	requests := `{"sentence": "Brother has dyspnea", "start": 2, "end": 2}

{"tokens": ["There", "is", "no", "evidence", "of", "pneumonia", "."], "start": 5, "end": 5}
{"sentence": "Brother has dyspnea", "start": 7, "end": 7}
`
	require.NoError(t, os.WriteFile(reqPath, []byte(requests), 0o644))

	out, err := run(t, "batch", reqPath, "--config", cfgPath, "--concurrency", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var results []uwassert.Result
	for _, line := range lines {
		var res uwassert.Result
		require.NoError(t, json.Unmarshal([]byte(line), &res))
		results = append(results, res)
	}
	assert.Equal(t, "associated_with_someone_else", results[0].Label)
	assert.Equal(t, "absent", results[1].Label)
	assert.NotEmpty(t, results[2].Error)
}

func TestBatchCommandBadRequest(t *testing.T) {
	cfgPath := writeConfig(t)
	reqPath := filepath.Join(t.TempDir(), "requests.jsonl")
	require.NoError(t, os.WriteFile(reqPath, []byte("{not json}\n"), 0o644))

	_, err := run(t, "batch", reqPath, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request line 1")
}

func TestFeaturesCommand(t *testing.T) {
	cfgPath := writeConfig(t)
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.tsv")
	require.NoError(t, os.WriteFile(corpus, []byte("no no pneumonia\t2\t2\tabsent\n"), 0o644))
	outPath := filepath.Join(dir, "train.liblinear")
	vocabPath := filepath.Join(dir, "vocab.json")
	t.Setenv("UWASSERT_FEATURES", "STEM")

	_, err := run(t, "features", corpus, outPath, "--config", cfgPath, "--vocabulary", vocabPath, "--format", "frequency")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "2 1:2 2:1\n", string(data))
	_, err = os.Stat(vocabPath)
	assert.NoError(t, err)
}

func TestFeaturesCommandBadFormat(t *testing.T) {
	cfgPath := writeConfig(t)
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.tsv")
	require.NoError(t, os.WriteFile(corpus, []byte("no pneumonia\t1\t1\tabsent\n"), 0o644))

	_, err := run(t, "features", corpus, filepath.Join(dir, "out"), "--config", cfgPath,
		"--vocabulary", filepath.Join(dir, "vocab.json"), "--format", "tfidf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown row format")
}

func TestMissingResources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uwassert.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resource_dir: /nonexistent\n"), 0o644))

	_, err := run(t, "evaluate", "corpus.tsv", "--config", path)
	assert.Error(t, err)
}

func TestReadRequests(t *testing.T) {
	reqs, err := readRequests(strings.NewReader(`{"sentence":"a b","start":1,"end":1}` + "\n\n" + `{"tokens":["x"],"start":0,"end":0}`))
	require.NoError(t, err)
	assert.Equal(t, []uwassert.Request{
		{Sentence: "a b", Start: 1, End: 1},
		{Tokens: []string{"x"}, Start: 0, End: 0},
	}, reqs)
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, []uwassert.Result{{Label: "absent"}, {Error: "boom"}}))
	assert.Equal(t, "{\"label\":\"absent\"}\n{\"error\":\"boom\"}\n", buf.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "other", short("associated_with_someone_else"))
	assert.Equal(t, "custom", short("custom"))
}
