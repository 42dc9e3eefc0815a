package dot

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gitdot/pkg/render"
)

// Format is an image format the DOT text can be rendered to.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
	JPG Format = "jpg"
	PDF Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{SVG, PNG, JPG, PDF}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "jpeg" {
		f = JPG
	}
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unsupported format %q (want svg, png, jpg or pdf)", s)
	}
	return f, nil
}

// Render lays out the DOT text with the embedded Graphviz and encodes it. PDF
// goes through SVG and needs rsvg-convert, see [render.ToPDF].
func Render(ctx context.Context, dot string, f Format) ([]byte, error) {
	switch f {
	case SVG:
		return renderGraphviz(ctx, dot, graphviz.SVG)
	case PNG:
		return renderGraphviz(ctx, dot, graphviz.PNG)
	case JPG:
		return renderGraphviz(ctx, dot, graphviz.JPG)
	case PDF:
		svg, err := renderGraphviz(ctx, dot, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// RenderSVG is Render with [SVG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, SVG)
}

func renderGraphviz(ctx context.Context, dot string, f graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, f, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return buf.Bytes(), nil
}
