package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/archive"
	"github.com/driftforge/runweaver/pkg/rules"
	"github.com/driftforge/runweaver/pkg/stats"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
		seedsFile string
		output    string
		workers   int
		toArchive bool
	)

	cmd := &cobra.Command{
		Use:   "batch [seeds...]",
		Short: "Generate and validate a seed corpus, aggregate statistics",
		Long: `Generate and validate a seed corpus, aggregate statistics.

Seeds come from arguments, a --seeds-file (one seed per line, # comments),
or both. Every seed is generated and validated; failures are tallied, never
fatal. The aggregate is the regression gate for rule changes: run the same
corpus before and after a preset edit and compare the reports.

With --archive the report (and a fresh map per seed) is stored in the local
archive for later comparison.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}

			seeds := args
			if seedsFile != "" {
				fromFile, err := readSeedsFile(seedsFile)
				if err != nil {
					return err
				}
				seeds = append(seeds, fromFile...)
			}
			if len(seeds) == 0 {
				return fmt.Errorf("no seeds given (pass arguments or --seeds-file)")
			}

			return c.runBatch(cmd.Context(), seeds, r, output, workers, toArchive)
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	cmd.Flags().StringVar(&seedsFile, "seeds-file", "", "file with one seed per line")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the aggregate report JSON to file")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (default 8)")
	cmd.Flags().BoolVar(&toArchive, "archive", false, "store the report in the local archive")

	return cmd
}

// runBatch executes the batch and reports the aggregate.
func (c *CLI) runBatch(ctx context.Context, seeds []string, r rules.Rules, output string, workers int, toArchive bool) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d seeds...", len(seeds)))
	spinner.Start()

	agg, err := stats.RunBatch(ctx, seeds, r, stats.Options{Workers: workers})
	if err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}
	spinner.Stop()

	printSuccess("Batch complete")
	printKeyValue("seeds", fmt.Sprintf("%d", agg.TotalMapsGenerated))
	printKeyValue("successful", fmt.Sprintf("%d (%.1f%%)", agg.SuccessfulGenerations, agg.SuccessRate()*100))
	printKeyValue("gen failures", fmt.Sprintf("%d", agg.GenerationFailures))
	printKeyValue("val failures", fmt.Sprintf("%d", agg.ValidationFailures))
	printKeyValue("total nodes", fmt.Sprintf("%d", agg.TotalNodes))
	printKeyValue("total edges", fmt.Sprintf("%d", agg.TotalEdges))
	printHistogram(agg.NodeCountHistogram)

	if len(agg.ViolationCounts) > 0 {
		printNewlineWarnings(agg.ViolationCounts)
	}

	if output != "" {
		data, err := json.MarshalIndent(agg, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printFile(output)
	}

	if toArchive {
		store, err := archive.NewFileStore("")
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close(ctx)

		report := archive.NewBatchReport(r.Name, r.Fingerprint(), seeds, agg)
		if err := store.PutBatchReport(ctx, report); err != nil {
			return err
		}
		printInfo("Archived report %s", StyleDim.Render(report.ID))
	}

	return nil
}

// printHistogram renders the per-layer node-count distribution.
func printHistogram(hist map[int]int) {
	if len(hist) == 0 {
		return
	}
	counts := make([]int, 0, len(hist))
	for k := range hist {
		counts = append(counts, k)
	}
	sort.Ints(counts)

	maxVal := 0
	for _, v := range hist {
		if v > maxVal {
			maxVal = v
		}
	}

	printDetail("layer node counts:")
	for _, k := range counts {
		bar := strings.Repeat("█", scaleBar(hist[k], maxVal, 30))
		fmt.Printf("  %s %s %s\n",
			StyleNumber.Render(fmt.Sprintf("%3d", k)),
			StyleDim.Render(bar),
			StyleValue.Render(fmt.Sprintf("%d", hist[k])))
	}
}

func scaleBar(v, maxVal, width int) int {
	if maxVal == 0 {
		return 0
	}
	n := v * width / maxVal
	if n == 0 && v > 0 {
		n = 1
	}
	return n
}

// printNewlineWarnings lists violation tallies by invariant.
func printNewlineWarnings(counts map[string]int) {
	invariants := make([]string, 0, len(counts))
	for k := range counts {
		invariants = append(invariants, k)
	}
	sort.Strings(invariants)
	for _, inv := range invariants {
		printWarning("%s: %d", inv, counts[inv])
	}
}

// readSeedsFile parses a seed list: one seed per line, blank lines and
// #-comments ignored.
func readSeedsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds file: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seeds file: %w", err)
	}
	return seeds, nil
}
