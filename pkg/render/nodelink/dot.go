package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depscope/pkg/conflict"
	"github.com/matzehuels/depscope/pkg/deptree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the scope, the winner of omitted nodes and the archive
	// path to each label. When false, only name and version are shown.
	Detailed bool
	// HideOmitted drops omitted nodes and their subtrees.
	HideOmitted bool
}

// ToDOT converts an annotated tree to Graphviz DOT. Vertices are numbered in
// pre-order since name, version and scope may repeat across the tree.
//
// Omitted nodes are drawn dashed on grey and linked to their winner with a
// dotted edge when the winner is part of the tree. Unused nodes are red.
func ToDOT(tree *deptree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[*deptree.Node]string, tree.Len())
	for _, n := range tree.Nodes() {
		if opts.HideOmitted && hidden(n) {
			continue
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[n] = id
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, n := range tree.Nodes() {
		id, ok := ids[n]
		if !ok {
			continue
		}
		for _, c := range n.Children {
			if cid, ok := ids[c]; ok {
				fmt.Fprintf(&buf, "  %s -> %s;\n", id, cid)
			}
		}
	}
	for _, n := range tree.Omitted() {
		id, ok := ids[n]
		if !ok {
			continue
		}
		if w := winnerOf(tree, n); w != nil {
			if wid, ok := ids[w]; ok {
				fmt.Fprintf(&buf, "  %s -> %s [style=dotted, color=grey40, constraint=false];\n", id, wid)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func hidden(n *deptree.Node) bool {
	for ; n != nil; n = n.Parent() {
		if n.Omitted {
			return true
		}
	}
	return false
}

func winnerOf(tree *deptree.Tree, n *deptree.Node) *deptree.Node {
	version, scope := conflict.ParseWinner(n.Winner)
	return tree.Find(n.Name, version, scope)
}

func fmtLabel(n *deptree.Node, detailed bool) string {
	label := n.Name + "\n" + n.Version
	if !detailed {
		return label
	}
	var parts []string
	if n.Scope != "" {
		parts = append(parts, "scope: "+n.Scope)
	}
	if n.Omitted {
		parts = append(parts, "winner: "+n.Winner)
	}
	if n.Paths.Archive != "" {
		parts = append(parts, "jar: "+n.Paths.Archive)
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *deptree.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Omitted:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey30")
	case n.Unused:
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#c0392b\"", "fontcolor=\"#c0392b\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
