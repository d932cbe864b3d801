package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/cache"
	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/mapjson"
	"github.com/driftforge/runweaver/pkg/rules"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
		output    string
		noCache   bool
		check     bool
	)

	cmd := &cobra.Command{
		Use:   "generate <seed>",
		Short: "Generate a run map from a seed",
		Long: `Generate a run map from a seed.

The seed fully determines the map: the same seed and rules always produce
an identical layer/node/connection structure, on any machine. Results are
cached locally so regenerating a seed is instant.

Use --check to run the structural validator on the result (the generator
never produces output its validator rejects; the flag exists for paranoia
and for exercising custom rule files).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), args[0], r, output, noCache, check)
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write map JSON to file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&check, "check", false, "validate the generated map and print the report")

	return cmd
}

// runGenerate builds (or loads from cache) one map and writes it out.
func (c *CLI) runGenerate(ctx context.Context, seed string, r rules.Rules, output string, noCache, check bool) error {
	store, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	data, cached, err := c.generateCached(ctx, store, seed, r)
	if err != nil {
		return err
	}

	m, err := mapjson.Read(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode cached map: %w", err)
	}

	if check {
		report := mapgen.Validate(m, r)
		if !report.Valid {
			for _, v := range report.Violations {
				printWarning("%s", v)
			}
			return fmt.Errorf("map failed validation with %d violations", len(report.Violations))
		}
		printSuccess("Map is structurally valid")
	}

	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Generated map for seed %s", StyleHighlight.Render(seed))
	printStats(m.NodeCount(), m.EdgeCount(), cached)
	printFile(output)
	printNextStep("Render it", fmt.Sprintf("runweaver render %s -f svg", output))
	return nil
}

// generateCached returns the map JSON for (seed, rules), consulting the
// cache first. Determinism makes the cache exact - an entry never goes stale.
func (c *CLI) generateCached(ctx context.Context, store cache.Cache, seed string, r rules.Rules) ([]byte, bool, error) {
	key := cache.MapKey(seed, r.Fingerprint())
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		c.Logger.Debug("map cache hit", "seed", seed)
		return data, true, nil
	}

	prog := newProgress(c.Logger)
	m, err := mapgen.Generate(seed, r)
	if err != nil {
		return nil, false, err
	}
	prog.done(fmt.Sprintf("Generated %d layers, %d nodes", m.LayerCount(), m.NodeCount()))

	data, err := mapjson.Marshal(m)
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(ctx, key, data, 0); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}
