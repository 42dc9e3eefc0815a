// Package source produces the raw commit log gitdot parses.
//
// Every [Source] returns text in the record line format of package record.
// Three implementations exist:
//
//   - [GitCommand] runs git log (or a custom shell command) in a directory
//   - [Repository] reads the history in-process with go-git and renders the
//     same format itself, so no git binary is needed
//   - [File] reads a log saved earlier with [Keep]
//
// [Repository] also implements [Fingerprinter], which lets the pipeline cache
// logs keyed by the repository's ref state.
package source
