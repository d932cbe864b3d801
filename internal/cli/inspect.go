package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/driftforge/runweaver/pkg/mapgen"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		preset    string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "inspect <map.json|seed>",
		Short: "Browse a map's layers and nodes interactively",
		Long: `Browse a map's layers and nodes interactively.

Opens a terminal browser over the map: left/right moves between layers,
up/down between nodes, showing each node's category and which nodes it
connects to in the next layer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(rulesFile, preset)
			if err != nil {
				return err
			}

			store, err := newCache(false)
			if err != nil {
				return err
			}
			defer store.Close()

			m, _, err := c.loadOrGenerate(cmd.Context(), store, args[0], r)
			if err != nil {
				return err
			}

			model := NewMapInspectModel(m)
			program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}

	addRulesFlags(cmd, &preset, &rulesFile)
	return cmd
}

// =============================================================================
// MapInspectModel - Interactive layer/node browser
// =============================================================================

// MapInspectModel is the bubbletea model for browsing a map.
type MapInspectModel struct {
	Map         *mapgen.Map
	LayerCursor int
	NodeCursor  int
}

// NewMapInspectModel creates a new map inspect model.
func NewMapInspectModel(m *mapgen.Map) MapInspectModel {
	return MapInspectModel{Map: m}
}

func (m MapInspectModel) Init() tea.Cmd {
	return nil
}

func (m MapInspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.LayerCursor > 0 {
				m.LayerCursor--
				m.NodeCursor = 0
			}
		case "right", "l":
			if m.LayerCursor < len(m.Map.Layers)-1 {
				m.LayerCursor++
				m.NodeCursor = 0
			}
		case "up", "k":
			if m.NodeCursor > 0 {
				m.NodeCursor--
			}
		case "down", "j":
			layer := m.Map.Layers[m.LayerCursor]
			if m.NodeCursor < len(layer.Nodes)-1 {
				m.NodeCursor++
			}
		}
	}
	return m, nil
}

func (m MapInspectModel) View() string {
	var b strings.Builder

	layer := m.Map.Layers[m.LayerCursor]

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Map %s", m.Map.Seed)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ layer  ↑/↓ node  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.layerTabs())
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, n := range layer.Nodes {
		cursor := "  "
		if i == m.NodeCursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", n.Position),
			string(n.Category),
			m.connectionSummary(n),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Pos", "Category", "Connects To").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.NodeCursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  layer %d/%d · node %d/%d",
		m.LayerCursor+1, len(m.Map.Layers), m.NodeCursor+1, len(layer.Nodes))))

	return b.String()
}

// layerTabs renders the layer strip with the current layer highlighted.
func (m MapInspectModel) layerTabs() string {
	parts := make([]string, len(m.Map.Layers))
	for i, l := range m.Map.Layers {
		label := fmt.Sprintf("%d %s", l.Index, l.Label)
		if i == m.LayerCursor {
			parts[i] = listSelectedStyle.Render("[" + label + "]")
		} else {
			parts[i] = listDimStyle.Render(" " + label + " ")
		}
	}
	return strings.Join(parts, listDimStyle.Render(" · "))
}

// connectionSummary lists the next-layer positions a node connects to.
func (m MapInspectModel) connectionSummary(n mapgen.Node) string {
	if len(n.Connections) == 0 {
		return "—"
	}
	if m.LayerCursor+1 >= len(m.Map.Layers) {
		return "—"
	}
	next := m.Map.Layers[m.LayerCursor+1]
	posByID := make(map[string]int, len(next.Nodes))
	for _, t := range next.Nodes {
		posByID[t.ID] = t.Position
	}
	parts := make([]string, 0, len(n.Connections))
	for _, id := range n.Connections {
		if pos, ok := posByID[id]; ok {
			parts = append(parts, fmt.Sprintf("%d", pos))
		}
	}
	return strings.Join(parts, ", ")
}
