package dot

import (
	"html/template"
	"io"
)

// Defaults for the pan/zoom page.
const (
	DefaultHTMLTitle     = "git2dot"
	DefaultHTMLMinHeight = "700px"
	DefaultHTMLHead      = `<script src="svg-pan-zoom.min.js"></script>`
)

// Page configures the HTML wrapper around a rendered SVG.
type Page struct {
	Title string
	// SVG is the URL of the image, usually the DOT file name plus ".svg".
	SVG       string
	MinHeight string
	// Head lines are inserted verbatim into <head>.
	Head []string
	// Reload polls URL for a changed version and reloads the page. Used by
	// the viewer; empty disables it.
	Reload string
}

// DefaultPage returns a page for the given SVG URL.
func DefaultPage(svg string) Page {
	return Page{
		Title:     DefaultHTMLTitle,
		SVG:       svg,
		MinHeight: DefaultHTMLMinHeight,
		Head:      []string{DefaultHTMLHead},
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    {{range .Head}}{{.}}
    {{end}}
  </head>
  <body>
    <h3>{{.Title}}</h3>
    <div style="border-width:3px; border-style:solid; border-color:lightgrey;">
      <object id="digraph" type="image/svg+xml" data="{{.SVG}}" style="width:100%; min-height:{{.MinHeight}};">
        SVG not supported by this browser.
      </object>
    </div>
    <script>
      var spz = null;
      window.onload = function() {
        spz = svgPanZoom('#digraph', {
          zoomEnabled: true,
          controlIconsEnabled: true,
          fit: true,
          center: true,
          maxZoom: 1000,
          zoomScaleSensitivity: 0.5
        });
      };
      window.addEventListener("resize", function() {
        if (spz != null) {
          spz.resize();
          spz.fit();
          spz.center();
        }
      });
{{- if .Reload}}
      (function() {
        var seen = null;
        setInterval(function() {
          fetch({{.Reload}}).then(function(r) { return r.text(); }).then(function(v) {
            if (seen !== null && v !== seen) { location.reload(); }
            seen = v;
          }).catch(function() {});
        }, 2000);
      })();
{{- end}}
    </script>
  </body>
</html>
`))

type pageData struct {
	Title     string
	SVG       string
	MinHeight template.CSS
	Head      []template.HTML
	Reload    string
}

// WriteHTML writes the pan/zoom page. Head lines are trusted and emitted
// unescaped.
func WriteHTML(w io.Writer, p Page) error {
	d := pageData{
		Title:     p.Title,
		SVG:       p.SVG,
		MinHeight: template.CSS(p.MinHeight),
		Reload:    p.Reload,
	}
	for _, h := range p.Head {
		d.Head = append(d.Head, template.HTML(h))
	}
	return pageTmpl.Execute(w, d)
}
