package dot

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Escape makes s safe inside a double-quoted DOT string. Newlines become the
// DOT line break \n.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func quote(id string) string { return `"` + Escape(id) + `"` }

var (
	fontSizeRe = regexp.MustCompile(`(fontsize=)[^,\]]+`)
	fontNameRe = regexp.MustCompile(`(fontsize=[^,\]]+)`)
)

// dotOptions patches the font settings into the global statements.
func (s Style) dotOptions() []string {
	out := make([]string, 0, len(s.DotOptions))
	for _, v := range s.DotOptions {
		if s.FontSize != "" && strings.Contains(v, "fontsize=") {
			v = fontSizeRe.ReplaceAllString(v, `${1}"`+s.FontSize+`"`)
		}
		if s.FontName != "" && strings.Contains(v, "fontsize=") {
			v = fontNameRe.ReplaceAllString(v, `${1}, fontname="`+Escape(s.FontName)+`"`)
		}
		out = append(out, v)
	}
	return out
}

func statement(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, ";") {
		v += ";"
	}
	return v
}

// WriteDOT writes the declarations as a complete digraph followed by the
// summary comment lines.
func (o *Output) WriteDOT(w io.Writer, s Style) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { fmt.Fprintf(bw, format, args...) }

	p("digraph G {\n")
	for _, v := range s.dotOptions() {
		p("   %s\n", statement(v))
	}

	p("\n   // label cnode, mnode and snodes\n")
	for _, n := range o.Nodes {
		p("   %s %s;\n", quote(n.ID), apply(s.nodeTemplate(n.Kind), n.Label))
	}

	p("\n   // edges\n")
	for _, e := range o.Edges {
		writeEdge(bw, e, s)
	}

	if len(o.Ranks) > 0 {
		p("\n   // annotate branches and tags\n")
		for i, rg := range o.Ranks {
			if i > 0 {
				p("\n")
			}
			for _, n := range rg.Nodes {
				p("   %s %s;\n", quote(n.ID), apply(s.nodeTemplate(n.Kind), n.Label))
			}
			for _, e := range rg.Edges {
				writeEdge(bw, e, s)
			}
			members := make([]string, len(rg.Members))
			for j, m := range rg.Members {
				members[j] = quote(m)
			}
			p("   {rank=same; %s};\n", strings.Join(members, "; "))
		}
	}

	if len(o.Hints) > 0 {
		p("\n   // rank by date using invisible constraints between groups\n")
		for _, e := range o.Hints {
			writeEdge(bw, e, s)
		}
	}

	if s.GraphLabel != "" {
		p("\n   // graph label\n")
		p("   %s\n", statement(s.GraphLabel))
	}
	p("}\n")

	for _, kv := range o.Summary.fields() {
		p("// summary:%s %d\n", kv.key, kv.value)
	}
	return bw.Flush()
}

func writeEdge(w io.Writer, e EdgeDecl, s Style) {
	attrs := s.edgeTemplate(e.Kind)
	if attrs != "" {
		attrs = " " + apply(attrs, e.Label)
	}
	fmt.Fprintf(w, "   %s -> %s%s;\n", quote(e.From), quote(e.To), attrs)
}

type summaryField struct {
	key   string
	value int
}

// fields returns the summary in the order it is written.
func (s Summary) fields() []summaryField {
	return []summaryField{
		{"num_graph_commit_nodes", s.Plain},
		{"num_graph_merge_nodes", s.Merge},
		{"num_graph_squash_nodes", s.SquashAnchor},
		{"total_commits", s.Logical},
		{"total_graph_commit_nodes", s.Visible},
	}
}

// DOT renders the DOT text with the given style.
func (o *Output) DOT(s Style) string {
	var b strings.Builder
	_ = o.WriteDOT(&b, s)
	return b.String()
}
