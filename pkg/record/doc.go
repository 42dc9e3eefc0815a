// Package record turns raw commit log text into normalized commit records.
//
// # Input Format
//
// The log is produced by git with a fixed record format (see [RecordFormat]):
//
//	|Record:|a1b2c3d|9f8e7d6 5a4b3c2|(HEAD -> main, tag: v1.0)|2017-05-01 10:11:12 -0700
//	commit body lines ...
//	@@@git2dot-label@@@:|a1b2c3d|Fix the parser
//
// Each record line starts a new commit. Body lines are only scanned for
// variables. The optional label line, identified by a record ID, carries the
// label fields requested with a label spec such as "%h|%s|%cr".
//
// # Variables
//
// A [Variable] pairs a name (for example @CHID@) with a regular expression
// whose first group is captured from any line of the commit. Label fields that
// mention the name get the captured value substituted. When one commit
// captures several values they are rendered as a literal list, e.g.
// ['I12', 'I34'], rather than picking one.
package record
