package uwassert

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/uwassert/classifier"
)

// Request is one prediction input. Tokens, when set, take precedence over
// Sentence and are used without re-tokenization.
type Request struct {
	Sentence string   `json:"sentence,omitempty"`
	Tokens   []string `json:"tokens,omitempty"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
}

func (r Request) key() string {
	text := r.Sentence
	if r.Tokens != nil {
		text = "\x00" + strings.Join(r.Tokens, "\x1f")
	}
	return text + "\x00" + strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End)
}

// Result is the outcome of one Request.
type Result struct {
	Label string `json:"label,omitempty"`
	Error string `json:"error,omitempty"`
}

// PredictRequest runs a single request. With a CacheTTL configured,
// repeated requests are answered from the result cache.
func (c *Classifier) PredictRequest(req Request) Result {
	if c.results == nil {
		return c.predictRequest(req)
	}
	key := req.key()
	if v, found := c.results.Get(key); found {
		return v.(Result)
	}
	res := c.predictRequest(req)
	c.results.SetDefault(key, res)
	return res
}

func (c *Classifier) predictRequest(req Request) Result {
	var (
		label classifier.AssertionClass
		err   error
	)
	if req.Tokens != nil {
		label, err = c.PredictTokens(req.Tokens, req.Start, req.End)
	} else {
		label, err = c.Predict(req.Sentence, req.Start, req.End)
	}
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Label: label.String()}
}

// PredictBatch runs reqs on up to concurrency goroutines and returns the
// results in request order. Per-request failures are reported in Result;
// the returned error is only set when ctx is cancelled.
func (c *Classifier) PredictBatch(ctx context.Context, reqs []Request, concurrency int) ([]Result, error) {
	results := make([]Result, len(reqs))
	eg, gCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}
	for i, req := range reqs {
		if gCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = c.PredictRequest(req)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
