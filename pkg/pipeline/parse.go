package pipeline

import (
	"bytes"
	stderrors "errors"

	"github.com/matzehuels/gitdot/pkg/commitgraph"
	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
)

// ParseLog turns the raw log into records.
func ParseLog(data []byte, opts Options) ([]record.Record, error) {
	records, err := record.Parse(bytes.NewReader(data), opts.parseOptions())
	if err != nil {
		if stderrors.Is(err, record.ErrNoRecords) {
			return nil, errors.Wrap(errors.ErrCodeNoRecords, err, "the log contains no commits")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse log")
	}
	return records, nil
}

// BuildGraph parses the log and builds the commit graph with its child
// lists.
func BuildGraph(data []byte, opts Options) (*commitgraph.Graph, int, error) {
	records, err := ParseLog(data, opts)
	if err != nil {
		return nil, 0, err
	}

	var gopts []commitgraph.Option
	if opts.Strict {
		gopts = append(gopts, commitgraph.WithStrictParents())
	}
	g, err := commitgraph.Build(records, gopts...)
	if err != nil {
		var dup *commitgraph.DuplicateIDError
		if stderrors.As(err, &dup) {
			return nil, len(records), errors.Wrap(errors.ErrCodeDuplicateCommit, err, "commit %s appears twice in the log", dup.ID)
		}
		return nil, len(records), errors.Wrap(errors.ErrCodeInvalidInput, err, "build graph")
	}
	return g, len(records), nil
}
