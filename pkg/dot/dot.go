// Package dot renders a canonical topology graph as Graphviz DOT and SVG.
//
// The DOT export is a structural view for quick inspection: it shows what
// connects to what and lets Graphviz pick the geometry. The coordinate
// document from package diagram stays the authoritative placement; this
// package is for eyeballing a fetched topology without a rendering
// pipeline.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topolab/pkg/topo"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes management addresses and roles in node labels and
	// interface names on edges. When false, only node IDs are shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. Links become undirected
// edges; isolated nodes are still declared so they appear in the drawing.
// The resulting string can be rendered with [RenderSVG].
func ToDOT(g *topo.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", l.A.Node, l.B.Node, l.A.Name+" - "+l.B.Name)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", l.A.Node, l.B.Node)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *topo.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{n.Name}
	if n.MgmtAddress != "" {
		parts = append(parts, n.MgmtAddress)
	}
	if n.Role != topo.RoleUndetermined {
		parts = append(parts, n.Role.String())
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root tag so the drawing starts at the
// origin with explicit pixel dimensions. Graphviz emits offset viewboxes
// that some viewers clip.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
