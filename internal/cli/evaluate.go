package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/uwassert"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "evaluate <corpus.tsv>",
		Short:   "Evaluate model accuracy on an annotated corpus",
		Args:    cobra.ExactArgs(1),
		Example: `  uwassert evaluate data/test.tsv -c uwassert.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.loadClassifier()
			if err != nil {
				return err
			}

			slog.Info("Evaluating", "corpus", args[0])
			start := time.Now()
			result, err := cl.Evaluate(args[0], &uwassert.EvalConfig{Verbose: c.verbose})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Assertion accuracy: %.1f%% (%d/%d)\n", result.Accuracy*100, result.Correct, result.Total)
			if result.Skipped > 0 {
				fmt.Printf("Skipped annotations: %d\n", result.Skipped)
			}
			fmt.Printf("Macro F1: %.1f%%\n", result.MacroF1*100)
			printConfusionMatrix(result.Confusion, result.Classes)
			printClassReport(result.Confusion, result.Classes, result.Precision, result.Recall, result.F1)
			return nil
		},
	}
	return cmd
}

// shortNames abbreviates class labels for the confusion matrix columns.
var shortNames = map[string]string{
	"present":                      "pres",
	"absent":                       "abs",
	"possible":                     "poss",
	"hypothetical":                 "hypo",
	"conditional":                  "cond",
	"associated_with_someone_else": "other",
}

func short(cls string) string {
	if s, ok := shortNames[cls]; ok {
		return s
	}
	return cls
}

func printClassReport(confusion map[string]map[string]int, classes []string, precision, recall, f1 map[string]float64) {
	fmt.Printf("\nPer-class metrics:\n")
	fmt.Printf("%8s  %6s  %6s  %6s  %7s\n", "class", "prec", "recall", "f1", "support")
	for _, cls := range classes {
		support := 0
		for _, v := range confusion[cls] {
			support += v
		}
		fmt.Printf("%8s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			short(cls), precision[cls]*100, recall[cls]*100, f1[cls]*100, support)
	}
}

func printConfusionMatrix(confusion map[string]map[string]int, classes []string) {
	if len(confusion) == 0 {
		return
	}

	classes = append([]string(nil), classes...)
	sort.SliceStable(classes, func(i, j int) bool {
		ti, tj := 0, 0
		for _, v := range confusion[classes[i]] {
			ti += v
		}
		for _, v := range confusion[classes[j]] {
			tj += v
		}
		return ti > tj
	})

	fmt.Printf("\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Printf("%8s", "")
	for _, c := range classes {
		fmt.Printf(" %5s", short(c))
	}
	fmt.Printf("  total  acc%%\n")

	for _, trueClass := range classes {
		fmt.Printf("%8s", short(trueClass))
		total := 0
		correct := 0
		for _, predClass := range classes {
			count := confusion[trueClass][predClass]
			total += count
			if trueClass == predClass {
				correct = count
			}
			if count == 0 {
				fmt.Printf(" %5s", ".")
			} else {
				fmt.Printf(" %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(correct) / float64(total) * 100
		}
		fmt.Printf("  %5d %5.1f\n", total, acc)
	}
}
