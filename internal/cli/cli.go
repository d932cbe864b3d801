// Package cli implements the runweaver command-line interface.
//
// This package provides commands for generating run maps from seeds,
// validating their structure, running batch regression statistics over seed
// corpora, and rendering maps with Graphviz. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Build a map from a seed and rules preset
//   - validate: Re-check a map file against the structural invariants
//   - batch: Generate and validate a whole seed corpus, aggregate stats
//   - render: Export a map to DOT, SVG, or PNG
//   - inspect: Browse a map's layers and nodes interactively
//   - serve: Host the generation HTTP API for editor tooling
//   - cache: Manage the local map/artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/buildinfo"
	"github.com/driftforge/runweaver/pkg/cache"
	"github.com/driftforge/runweaver/pkg/errors"
	"github.com/driftforge/runweaver/pkg/rules"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "runweaver"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "runweaver",
		Short:        "Runweaver generates deterministic roguelite run maps",
		Long:         `Runweaver builds the layered encounter topology for a roguelite run: given a seed it deterministically produces boss-labeled layers of category-tagged nodes, wired so every path leads to the terminal layer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the local cache, falling back to a null cache when the
// cache directory is unavailable or caching is disabled.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/runweaver/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Rules Helpers
// =============================================================================

// loadRules resolves the rule set for a command: an explicit rules file wins,
// otherwise the named preset. Returned rules have already passed validation.
func loadRules(rulesFile, preset string) (rules.Rules, error) {
	if rulesFile != "" {
		return rules.LoadFile(rulesFile)
	}
	switch preset {
	case "", "balanced":
		return rules.Balanced(), nil
	default:
		return rules.Rules{}, errors.New(errors.ErrCodeInvalidPreset,
			"unknown preset %q (use a --rules-file for custom rules)", preset)
	}
}

// addRulesFlags registers the shared --preset/--rules-file flag pair.
func addRulesFlags(cmd *cobra.Command, preset, rulesFile *string) {
	cmd.Flags().StringVar(preset, "preset", "balanced", "named rules preset")
	cmd.Flags().StringVar(rulesFile, "rules-file", "", "TOML rules file (overrides --preset)")
}
