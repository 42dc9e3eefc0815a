package source

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
)

// DefaultRange is passed to git log when no range is given.
const DefaultRange = "--all --topo-order"

// Source produces a raw commit log in the record line format understood by
// record.Parse.
type Source interface {
	// Read returns the complete log.
	Read(ctx context.Context) ([]byte, error)
	// Describe names the source for log messages.
	Describe() string
}

// Fingerprinter is implemented by sources that can name the exact state they
// would read, for use as a cache key. Two equal fingerprints must produce the
// same log.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Warner is implemented by sources that ignore some of their options.
type Warner interface {
	Warnings() []string
}

// Options are the log selection settings shared by the sources.
type Options struct {
	// Since and Until are git date expressions for GitCommand. Repository
	// accepts only absolute dates (see record.ParseDate).
	Since string
	Until string
	// Range is the revision range, e.g. "--all --topo-order" or "v1.0..main".
	Range string
	// LabelSpec is the label line format, e.g. "%h|%s". Empty means no label
	// line.
	LabelSpec string
	// LabelRecordID marks the label line. Empty means
	// record.DefaultLabelRecordID.
	LabelRecordID string
}

func (o Options) recordID() string {
	if o.LabelRecordID == "" {
		return record.DefaultLabelRecordID
	}
	return o.LabelRecordID
}

// Format returns the full git log format: the record line plus the label
// line when a label spec is set.
func (o Options) Format() string {
	return record.LabelFormat(record.RecordFormat, o.recordID(), o.LabelSpec)
}

// File reads a log saved earlier, for example with --keep. The log is used
// as saved; Options only serve to warn about selections it cannot apply.
type File struct {
	Path    string
	Options Options
}

// Warnings lists the log selections a saved log ignores.
func (f File) Warnings() []string {
	var out []string
	if f.Options.Since != "" {
		out = append(out, "--since is ignored for -i input")
	}
	if f.Options.Until != "" {
		out = append(out, "--until is ignored for -i input")
	}
	if f.Options.Range != "" && f.Options.Range != DefaultRange {
		out = append(out, "--range is ignored for -i input")
	}
	return out
}

// Read implements Source.
func (f File) Read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input file %s", f.Path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input file %s", f.Path)
	}
	return data, nil
}

// Describe implements Source.
func (f File) Describe() string { return fmt.Sprintf("file %s", f.Path) }

// Keep writes the raw log next to the DOT file as <dotFile>.keep and returns
// the path written.
func Keep(dotFile string, data []byte) (string, error) {
	path := dotFile + ".keep"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return path, nil
}
