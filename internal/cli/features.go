package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/uwassert"
)

func (c *CLI) newFeaturesCommand() *cobra.Command {
	var vocabPath string
	var format string

	cmd := &cobra.Command{
		Use:   "features <corpus.tsv> <output>",
		Short: "Write liblinear training rows for an annotated corpus",
		Args:  cobra.ExactArgs(2),
		Example: `  uwassert features data/train.tsv train.liblinear
  uwassert features data/train.tsv train.liblinear --vocabulary assert.vocab.json --format frequency`,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpusPath, outPath := args[0], args[1]
			cfg, err := c.config()
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return errors.Wrap(err, "create output")
			}
			defer func() { _ = out.Close() }()

			slog.Info("Generating features", "corpus", corpusPath, "output", outPath)
			start := time.Now()
			result, err := uwassert.GenerateFeatures(cfg, corpusPath, out, &uwassert.FeaturesConfig{
				Format:     format,
				Vocabulary: vocabPath,
				Verbose:    c.verbose,
			})
			if err != nil {
				return err
			}
			slog.Debug("Feature generation completed", "duration", time.Since(start))
			slog.Info("Rows written", "rows", result.Rows, "skipped", result.Skipped,
				"vocabulary", result.VocabularyPath, "size", result.VocabularySize)
			return out.Close()
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocabulary", "", "Vocabulary file to grow (default: the configured vocabulary)")
	cmd.Flags().StringVar(&format, "format", "binary", "Row format: binary or frequency")
	return cmd
}
