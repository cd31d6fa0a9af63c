package cli

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/uwassert"
)

func (c *CLI) newBatchCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [requests.jsonl]",
		Short: "Classify JSON lines requests, writing one JSON result per line",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # One request per line: {"sentence": "...", "start": 2, "end": 2}
  uwassert batch requests.jsonl > results.jsonl

  # Pre-tokenized requests from stdin
  echo '{"tokens": ["Brother", "has", "dyspnea"], "start": 2, "end": 2}' | uwassert batch

  # Limit the number of workers
  uwassert batch requests.jsonl --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open requests")
				}
				defer func() { _ = f.Close() }()
				in = f
			} else if isStdinTerminal() {
				return cmd.Help()
			}

			reqs, err := readRequests(in)
			if err != nil {
				return err
			}
			cl, err := c.loadClassifier()
			if err != nil {
				return err
			}

			start := time.Now()
			results, err := cl.PredictBatch(cmd.Context(), reqs, concurrency)
			if err != nil {
				return err
			}
			slog.Debug("Batch completed", "requests", len(reqs), "concurrency", concurrency, "duration", time.Since(start))
			return writeResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Maximum number of concurrent predictions")
	return cmd
}

// readRequests decodes one JSON request per non-blank line.
func readRequests(r io.Reader) ([]uwassert.Request, error) {
	var reqs []uwassert.Request
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var req uwassert.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return nil, errors.Wrapf(err, "request line %d", lineNo)
		}
		reqs = append(reqs, req)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read requests")
	}
	return reqs, nil
}

func writeResults(w io.Writer, results []uwassert.Result) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "write result")
		}
	}
	return bw.Flush()
}
