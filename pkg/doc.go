// Package pkg provides the libraries behind gitdot, which draws git commit
// graphs with Graphviz.
//
// # Overview
//
// gitdot turns a commit log into a directed graph of commits, shapes it and
// writes it as DOT text. The pkg directory is organized by stage:
//
//  1. [source] - Obtain the raw log (git, go-git or a kept file)
//  2. [record] - Parse record lines into commits with refs and labels
//  3. [commitgraph] - Graph structure, pruning and squashing
//  4. [render] - DOT emission, Graphviz rendering and the HTML page
//  5. [pipeline] - Orchestration (read → graph → render) with caching
//
// Supporting packages: [cache] (file and Redis caches), [config] (TOML
// settings), [errors] (error codes and input validation), [observability]
// (hooks) and [buildinfo] (version data).
//
// # Architecture
//
// The typical data flow through gitdot:
//
//	git log / go-git walk
//	         ↓
//	    [record] package (records with branches, tags, labels, variables)
//	         ↓
//	    [commitgraph] package (build, prune by date and choice, squash)
//	         ↓
//	    [render/dot] package (declarations → DOT → SVG/PNG/JPG/PDF)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, source.GitCommand{Dir: "."}, pipeline.Options{
//	    DotFile: "git.dot",
//	    Squash:  true,
//	    Formats: []string{"svg"},
//	})
//
// [source]: github.com/matzehuels/gitdot/pkg/source
// [record]: github.com/matzehuels/gitdot/pkg/record
// [commitgraph]: github.com/matzehuels/gitdot/pkg/commitgraph
// [render]: github.com/matzehuels/gitdot/pkg/render
// [pipeline]: github.com/matzehuels/gitdot/pkg/pipeline
// [cache]: github.com/matzehuels/gitdot/pkg/cache
// [config]: github.com/matzehuels/gitdot/pkg/config
// [errors]: github.com/matzehuels/gitdot/pkg/errors
// [observability]: github.com/matzehuels/gitdot/pkg/observability
// [buildinfo]: github.com/matzehuels/gitdot/pkg/buildinfo
package pkg
