// Package dot turns a commit graph into Graphviz DOT text and renders it.
//
// # Emission
//
// [Emit] walks a pruned and squashed graph in discovery order and returns an
// [Output] holding plain declarations, independent of any styling:
//
//   - one [NodeDecl] per visible commit, classified merge, squash anchor or
//     plain commit (in that order of precedence)
//   - one [EdgeDecl] per parent relationship, plus a summary edge from each
//     chain head to its tail labeled with the chain length
//   - one [RankGroup] per commit with refs: satellite branch and tag nodes
//     kept on the commit's rank
//   - optional invisible ordering hints from [Options.Align]
//
// Hidden (squashed) commits never appear. The [Summary] counts each class and
// the number of commits the picture stands for.
//
// # Writing
//
// [Output.WriteDOT] formats the declarations with a [Style]: attribute
// templates per node and edge kind, in which {label} is replaced by the
// escaped label, and global statements such as graph[rankdir="LR"].
//
//	out := dot.Emit(g, dot.Options{Align: dot.AlignDay})
//	err := out.WriteDOT(w, dot.DefaultStyle())
//
// # Rendering
//
// [Render] lays the text out with the embedded Graphviz (goccy/go-graphviz) and
// encodes SVG, PNG or JPG. [WriteHTML] writes a pan/zoom page around an SVG.
package dot
