package pipeline

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/render/dot"
	"github.com/matzehuels/gitdot/pkg/source"
)

// formats returns the parsed output formats without duplicates, in the
// order given. The options must have been validated.
func (o *Options) formats() []dot.Format {
	var out []dot.Format
	seen := make(map[dot.Format]bool)
	for _, s := range o.Formats {
		f, _ := dot.ParseFormat(s)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ImagePath returns where an image of the DOT file is written:
// the DOT file name plus the format, e.g. git.dot.svg.
func ImagePath(dotFile string, f dot.Format) string {
	return dotFile + "." + string(f)
}

// WriteFiles writes the DOT file, the kept log, the rendered images and the
// HTML page, and returns the paths written.
func WriteFiles(opts Options, res *Result) ([]string, error) {
	var files []string
	write := func(path string, data []byte) error {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		files = append(files, path)
		return nil
	}

	if err := write(opts.DotFile, []byte(res.DOT)); err != nil {
		return files, err
	}
	if opts.Keep {
		path, err := source.Keep(opts.DotFile, res.Log)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}
	for _, f := range opts.formats() {
		data, ok := res.Artifacts[f]
		if !ok {
			continue
		}
		if err := write(ImagePath(opts.DotFile, f), data); err != nil {
			return files, err
		}
	}
	if opts.HTML != "" {
		page, err := HTMLPage(opts)
		if err != nil {
			return files, err
		}
		if err := write(opts.HTML, page); err != nil {
			return files, err
		}
	}
	return files, nil
}

// HTMLPage renders the pan/zoom page for the SVG of opts.DotFile. The image
// is referenced relative to the page.
func HTMLPage(opts Options) ([]byte, error) {
	page := opts.Page
	if page.Title == "" {
		page = dot.DefaultPage("")
	}
	svg := ImagePath(opts.DotFile, dot.SVG)
	if rel, err := filepath.Rel(filepath.Dir(opts.HTML), svg); err == nil {
		svg = rel
	}
	page.SVG = filepath.ToSlash(svg)

	var buf bytes.Buffer
	if err := dot.WriteHTML(&buf, page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render html page")
	}
	return buf.Bytes(), nil
}

// describeFormats names formats for log messages.
func describeFormats(fs []dot.Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func renderError(f dot.Format, err error) error {
	return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", f)
}
