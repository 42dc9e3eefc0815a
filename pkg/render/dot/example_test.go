package dot_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
	"github.com/matzehuels/gitdot/pkg/render/dot"
)

func ExampleEmit() {
	g := commitgraph.New()
	_, _ = g.AddNode(commitgraph.Node{ID: "b", ParentIDs: []string{"a"}, Tags: []string{"v1"}})
	_, _ = g.AddNode(commitgraph.Node{ID: "a"})
	_ = g.DeriveChildren()

	out := dot.Emit(g, dot.Options{})
	style := dot.DefaultStyle()
	style.DotOptions = nil
	_ = out.WriteDOT(os.Stdout, style)
	fmt.Println("visible:", out.Summary.Visible)
	// Output:
	// digraph G {
	//
	//    // label cnode, mnode and snodes
	//    "b" [label="b", color="bisque"];
	//    "a" [label="a", color="bisque"];
	//
	//    // edges
	//    "a" -> "b";
	//
	//    // annotate branches and tags
	//    "b+v1" [label="v1", color="thistle", style=filled, shape=box, height=0.15];
	//    "b+v1" -> "b" [arrowhead=normal, color="thistle", dir=none];
	//    {rank=same; "b"; "b+v1"};
	// }
	// // summary:num_graph_commit_nodes 2
	// // summary:num_graph_merge_nodes 0
	// // summary:num_graph_squash_nodes 0
	// // summary:total_commits 2
	// // summary:total_graph_commit_nodes 2
	// visible: 2
}
