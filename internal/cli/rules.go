package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/rules"
)

// rulesCommand creates the rules management command.
func (c *CLI) rulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and scaffold rule sets",
	}

	cmd.AddCommand(c.rulesShowCommand())
	cmd.AddCommand(c.rulesInitCommand())

	return cmd
}

// rulesShowCommand creates the "rules show" subcommand.
func (c *CLI) rulesShowCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved rule set and its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}

			printInfo("Rules %s", StyleHighlight.Render(r.Name))
			printKeyValue("layers", fmt.Sprintf("%d", r.LayerCount()))
			printKeyValue("nodes/layer", fmt.Sprintf("%d–%d", r.MinNodesPerLayer, r.MaxNodesPerLayer))
			printKeyValue("min fan-out", fmt.Sprintf("%d", r.MinConnectionsPerNode))
			printKeyValue("fingerprint", r.Fingerprint())

			printDetail("category weights:")
			cats := r.Categories()
			total := 0.0
			for _, cat := range cats {
				total += r.CategoryWeights[cat]
			}
			sort.Slice(cats, func(i, j int) bool {
				return r.CategoryWeights[cats[i]] > r.CategoryWeights[cats[j]]
			})
			for _, cat := range cats {
				w := r.CategoryWeights[cat]
				printKeyValue("  "+string(cat), fmt.Sprintf("%.2f (%.0f%%)", w, w/total*100))
			}

			printDetail("layer labels:")
			for i, label := range r.LayerLabels {
				printKeyValue(fmt.Sprintf("  %d", i), label)
			}
			return nil
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	return cmd
}

// rulesInitCommand creates the "rules init" subcommand.
func (c *CLI) rulesInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file.toml>",
		Short: "Write the balanced preset as a starting point for custom rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := rules.WriteFile(rules.Balanced(), path); err != nil {
				return err
			}
			printSuccess("Wrote rules template")
			printFile(path)
			printNextStep("Try it", fmt.Sprintf("runweaver generate myseed --rules-file %s", path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
