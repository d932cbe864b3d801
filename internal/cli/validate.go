package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/mapjson"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "validate <map.json>",
		Short: "Re-check a map file against the structural invariants",
		Long: `Re-check a map file against the structural invariants.

Validation is a pure re-derivation from the map value: node counts within
rule bounds, minimum outgoing fan-out, no dangling connections, no orphan
nodes, and terminal closure. Violations are listed individually; the
command exits non-zero when any are found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}

			m, err := mapjson.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}

			report := mapgen.Validate(m, r)
			if report.Valid {
				printSuccess("Map is structurally valid")
				printStats(m.NodeCount(), m.EdgeCount(), false)
				return nil
			}

			for _, v := range report.Violations {
				printWarning("%s", v)
			}
			return fmt.Errorf("map failed validation with %d violations", len(report.Violations))
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	return cmd
}
