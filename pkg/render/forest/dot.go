package forest

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the namespace and version to node labels.
	// When false, only the artifact name is shown.
	Detailed bool
}

// ToDOT converts a classification to Graphviz DOT source.
func ToDOT(r suite.Result, opts Options) string {
	shared := make(map[module.Identity]bool)
	for _, s := range r.Shared() {
		shared[s.Module.Identity] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	declared := make(map[module.Identity]bool)
	for i, e := range r.Entries {
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", e.Root.Label())
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, m := range e.Members {
			if shared[m.Identity] || declared[m.Identity] {
				continue
			}
			declared[m.Identity] = true
			attrs := []string{fmt.Sprintf("label=%q", fmtLabel(m, opts.Detailed))}
			if m.Identity == e.Root.Identity {
				attrs = append(attrs, "penwidth=2", "fontname=\"bold\"")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(m), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	if len(shared) > 0 {
		buf.WriteString("\n")
	}
	for _, s := range r.Shared() {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=\"#ffd6a5\", color=\"#d9480f\"];\n",
			nodeID(s.Module), fmtLabel(s.Module, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range r.Entries {
		for _, m := range e.Absorbed() {
			attrs := ""
			if shared[m.Identity] {
				attrs = " [color=\"#d9480f\"]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeID(e.Root), nodeID(m), attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(m module.Module) string {
	return m.Identity.String()
}

func fmtLabel(m module.Module, detailed bool) string {
	if !detailed {
		return m.Identity.Name
	}
	return m.Identity.Name + "\n" + m.Identity.Namespace + "\n" + m.Identity.Version
}

// RenderSVG renders DOT source to SVG using Graphviz.
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

// normalizeViewBox rewrites the root element so the diagram scales from
// its viewBox origin.
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
