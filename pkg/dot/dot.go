// Package dot exports generated maps to Graphviz DOT and renders them to
// SVG or PNG. This is the visualization surface editor tooling consumes;
// the map value itself stays untouched.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/driftforge/runweaver/pkg/mapgen"
	"github.com/driftforge/runweaver/pkg/rules"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes node positions and IDs in labels.
	// When false, only the category is shown.
	Detailed bool
}

// categoryFill maps the preset categories to fill colors. Categories
// outside the preset taxonomy fall back to white.
var categoryFill = map[rules.Category]string{
	rules.CategoryCombat:   "mistyrose",
	rules.CategoryElite:    "lightcoral",
	rules.CategoryEvent:    "lightyellow",
	rules.CategoryShop:     "lightblue",
	rules.CategoryRest:     "palegreen",
	rules.CategoryTreasure: "gold",
}

// ToDOT converts a map to Graphviz DOT format.
// Each layer becomes a same-rank group labeled with its boss name, so the
// rendered graph reads top-to-bottom from entry to terminal layer.
func ToDOT(m *mapgen.Map, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph runmap {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for li := range m.Layers {
		layer := &m.Layers[li]
		fmt.Fprintf(&buf, "  subgraph cluster_layer_%d {\n", li)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%d · %s", li, layer.Label))
		buf.WriteString("    style=dashed;\n")
		buf.WriteString("    rank=same;\n")
		for _, n := range layer.Nodes {
			attrs := fmtAttrs(n, opts.Detailed)
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, layer := range m.Layers {
		for _, n := range layer.Nodes {
			for _, target := range n.Connections {
				fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, target)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n mapgen.Node, detailed bool) []string {
	label := string(n.Category)
	if detailed {
		label = fmt.Sprintf("%s\npos: %d\n%.8s", n.Category, n.Position, n.ID)
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := categoryFill[n.Category]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
