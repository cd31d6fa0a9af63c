package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// predictOutput is the JSON document printed by the predict command.
type predictOutput struct {
	Sentence string             `json:"sentence"`
	Start    int                `json:"start"`
	End      int                `json:"end"`
	Label    string             `json:"label"`
	Scores   map[string]float64 `json:"scores,omitempty"`
	Features []string           `json:"features,omitempty"`
}

func (c *CLI) newPredictCommand() *cobra.Command {
	var start, end int
	var pretokenized, showScores, showFeatures bool

	cmd := &cobra.Command{
		Use:   "predict [sentence]",
		Short: "Classify the assertion status of a concept in a sentence",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Concept spans whitespace tokens 2..2 ("dyspnea")
  uwassert predict "Brother has dyspnea" --start 2 --end 2

  # Read the sentence from stdin
  echo "There is no evidence of pneumonia ." | uwassert predict --start 5 --end 5

  # Use the whitespace tokens as they are
  uwassert predict "Patient admitted to r/o pneumonia ." --start 4 --end 4 --pretokenized

  # Show decision values and extracted features
  uwassert predict "Brother has dyspnea" --start 2 --end 2 --scores --features

  # Use a config file
  uwassert predict "Brother has dyspnea" --start 2 --end 2 -c uwassert.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sentence string
			if len(args) == 0 {
				if isStdinTerminal() {
					return cmd.Help()
				}
				var err error
				sentence, err = readFromStdin()
				if err != nil {
					return err
				}
			} else {
				sentence = args[0]
			}

			cl, err := c.loadClassifier()
			if err != nil {
				return err
			}

			t0 := time.Now()
			var lines []string
			if pretokenized {
				lines, err = cl.FeaturesTokens(strings.Fields(sentence), start, end)
			} else {
				lines, err = cl.Features(sentence, start, end)
			}
			if err != nil {
				return err
			}
			label, err := cl.PredictFeatures(lines)
			if err != nil {
				return err
			}
			slog.Debug("Prediction completed", "features", len(lines), "duration", time.Since(t0))

			out := predictOutput{Sentence: sentence, Start: start, End: end, Label: label.String()}
			if showScores {
				scores, err := cl.Scores(lines)
				if err != nil {
					return err
				}
				out.Scores = make(map[string]float64, len(scores))
				for cls, v := range scores {
					out.Scores[cls.String()] = v
				}
			}
			if showFeatures {
				out.Features = lines
			}
			output, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Index of the first concept token")
	cmd.Flags().IntVar(&end, "end", 0, "Index of the last concept token")
	cmd.Flags().BoolVar(&pretokenized, "pretokenized", false, "Use whitespace tokens without re-tokenizing")
	cmd.Flags().BoolVar(&showScores, "scores", false, "Show per-class decision values")
	cmd.Flags().BoolVar(&showFeatures, "features", false, "Show extracted feature lines")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func readFromStdin() (string, error) {
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "read stdin")
	}
	content := strings.TrimSpace(string(body))
	if content == "" {
		return "", errors.New("stdin is empty")
	}
	return content, nil
}
