// Package nodelink renders annotated dependency trees as node-link diagrams.
//
// # Usage
//
// Convert a tree to DOT, then render it in-process:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Styling
//
// Omitted nodes are dashed and grey, with a dotted edge pointing at the
// dependency that replaced them. Unused nodes are drawn in red. Set
// [Options].HideOmitted to leave conflict losers out entirely.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as a
// WebAssembly module, so no external binaries are needed.
package nodelink
