// Package render holds format conversion shared by the renderers.
//
// Graph text is produced and laid out by the [dot] subpackage, which embeds
// Graphviz and encodes SVG, PNG and JPG directly. [ToPDF] converts an SVG with
// the external rsvg-convert tool (from librsvg) for the one format the
// embedded Graphviz does not write.
//
//	svg, err := dot.RenderSVG(ctx, text)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [dot]: github.com/matzehuels/gitdot/pkg/render/dot
package render
