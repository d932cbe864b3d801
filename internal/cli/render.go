package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/cache"
	"github.com/driftforge/runweaver/pkg/dot"
	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/mapjson"
	"github.com/driftforge/runweaver/pkg/rules"
)

// Output formats for render.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
		format    string
		output    string
		noCache   bool
		detailed  bool
	)

	cmd := &cobra.Command{
		Use:   "render <map.json|seed>",
		Short: "Export a map to DOT, SVG, or PNG",
		Long: `Export a map to DOT, SVG, or PNG.

The argument is a map JSON file if it exists on disk, otherwise it is
treated as a seed and the map is generated first. Rendered artifacts are
cached by map content hash, so re-rendering an unchanged map is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], r, format, output, noCache, detailed)
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: derived from input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include positions and IDs in node labels")

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatDOT, formatSVG, formatPNG:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"invalid format: %q (must be one of: svg, png, dot)", format)
}

// runRender loads or generates the map, then renders it.
func (c *CLI) runRender(ctx context.Context, input string, r rules.Rules, format, output string, noCache, detailed bool) error {
	store, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	m, base, err := c.loadOrGenerate(ctx, store, input, r)
	if err != nil {
		return err
	}

	if output == "" {
		output = base + "." + format
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	artifact, cached, err := c.renderCached(ctx, store, m, format, detailed)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if err := os.WriteFile(output, artifact, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered map for seed %s", StyleHighlight.Render(m.Seed))
	printStats(m.NodeCount(), m.EdgeCount(), cached)
	printFile(output)
	return nil
}

// loadOrGenerate reads a map file if input names one, otherwise treats input
// as a seed. Returns the map and the base name for derived output paths.
func (c *CLI) loadOrGenerate(ctx context.Context, store cache.Cache, input string, r rules.Rules) (*mapgen.Map, string, error) {
	if _, err := os.Stat(input); err == nil {
		m, err := mapjson.ReadFile(input)
		if err != nil {
			return nil, "", fmt.Errorf("load map %s: %w", input, err)
		}
		return m, strings.TrimSuffix(input, ".json"), nil
	}

	data, _, err := c.generateCached(ctx, store, input, r)
	if err != nil {
		return nil, "", err
	}
	m, err := mapjson.Read(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return m, input, nil
}

// renderCached renders the artifact, consulting the cache by map content
// hash first. Detailed labels render differently, so the flag is folded
// into the format component of the key.
func (c *CLI) renderCached(ctx context.Context, store cache.Cache, m *mapgen.Map, format string, detailed bool) ([]byte, bool, error) {
	data, err := mapjson.Marshal(m)
	if err != nil {
		return nil, false, err
	}
	variant := format
	if detailed {
		variant += "+detailed"
	}
	key := cache.ArtifactKey(cache.Hash(data), variant)

	if artifact, ok, err := store.Get(ctx, key); err == nil && ok {
		return artifact, true, nil
	}

	dotSrc := dot.ToDOT(m, dot.Options{Detailed: detailed})
	var artifact []byte
	switch format {
	case formatDOT:
		artifact = []byte(dotSrc)
	case formatSVG:
		artifact, err = dot.RenderSVG(dotSrc)
	case formatPNG:
		artifact, err = dot.RenderPNG(dotSrc)
	}
	if err != nil {
		return nil, false, err
	}

	if err := store.Set(ctx, key, artifact, 0); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return artifact, false, nil
}
