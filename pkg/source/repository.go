package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
)

// Repository reads the log in-process with go-git, without a git binary. It
// walks every ref in committer-time order and renders each commit through
// the same record format GitCommand asks git for.
//
// Since and Until must be absolute dates. Range is not supported; setting
// it produces a warning and the whole history is read.
type Repository struct {
	repo    *git.Repository
	path    string
	Options Options
	// Now is the reference time for relative dates (%cr); zero means
	// time.Now.
	Now time.Time
}

// OpenRepository opens the repository containing path.
func OpenRepository(path string, opts Options) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no git repository at %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open repository %s", path)
	}
	return &Repository{repo: repo, path: path, Options: opts}, nil
}

// NewRepository wraps an already opened repository.
func NewRepository(repo *git.Repository, opts Options) *Repository {
	return &Repository{repo: repo, path: "(in memory)", Options: opts}
}

// Describe implements Source.
func (r *Repository) Describe() string { return "repository " + r.path }

// Warnings lists options the in-process reader cannot honor.
func (r *Repository) Warnings() []string {
	if r.Options.Range != "" && r.Options.Range != DefaultRange {
		return []string{"--range is not supported by the built-in reader; reading all refs"}
	}
	return nil
}

func (r *Repository) window() (since, until *time.Time, err error) {
	if r.Options.Since != "" {
		t, err := record.ParseDate(r.Options.Since)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--since")
		}
		since = &t
	}
	if r.Options.Until != "" {
		t, err := record.ParseDate(r.Options.Until)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--until")
		}
		until = &t
	}
	return since, until, nil
}

// Read implements Source.
func (r *Repository) Read(ctx context.Context) ([]byte, error) {
	since, until, err := r.window()
	if err != nil {
		return nil, err
	}
	decorations, err := r.decorations()
	if err != nil {
		return nil, err
	}

	iter, err := r.repo.Log(&git.LogOptions{
		All:   true,
		Order: git.LogOrderCommitterTime,
		Since: since,
		Until: until,
	})
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, errors.New(errors.ErrCodeNoRecords, "repository %s has no commits", r.path)
		}
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "read log of %s", r.path)
	}
	defer iter.Close()

	now := r.now()
	format := r.Options.Format()

	var buf bytes.Buffer
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := expand(format, commitFields{
			commit:      c,
			decorations: strings.Join(decorations[c.Hash], ", "),
			now:         now,
		})
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteByte('\n')
		}
		return nil
	})
	if err != nil && !stderrors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "walk history of %s", r.path)
	}
	return buf.Bytes(), nil
}

// decorations maps each decorated commit to its refs in git's %d order:
// HEAD, tags, local branches, remote branches.
func (r *Repository) decorations() (map[plumbing.Hash][]string, error) {
	type decoration struct {
		rank int
		name string
	}
	byCommit := make(map[plumbing.Hash][]decoration)

	head, err := r.repo.Reference(plumbing.HEAD, false)
	headBranch := plumbing.ReferenceName("")
	if err == nil {
		if head.Type() == plumbing.SymbolicReference {
			headBranch = head.Target()
		} else {
			byCommit[head.Hash()] = append(byCommit[head.Hash()], decoration{0, "HEAD"})
		}
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "list refs of %s", r.path)
	}
	err = refs.ForEach(func(rf *plumbing.Reference) error {
		if rf.Type() != plumbing.HashReference {
			return nil
		}
		name := rf.Name()
		switch {
		case name.IsTag():
			target := rf.Hash()
			if tag, err := r.repo.TagObject(target); err == nil {
				target = tag.Target
			}
			byCommit[target] = append(byCommit[target], decoration{1, "tag: " + name.Short()})
		case name.IsBranch():
			if name == headBranch {
				byCommit[rf.Hash()] = append(byCommit[rf.Hash()], decoration{0, "HEAD -> " + name.Short()})
			} else {
				byCommit[rf.Hash()] = append(byCommit[rf.Hash()], decoration{2, name.Short()})
			}
		case name.IsRemote():
			byCommit[rf.Hash()] = append(byCommit[rf.Hash()], decoration{3, name.Short()})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "list refs of %s", r.path)
	}

	out := make(map[plumbing.Hash][]string, len(byCommit))
	for h, rs := range byCommit {
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].rank != rs[j].rank {
				return rs[i].rank < rs[j].rank
			}
			return rs[i].name < rs[j].name
		})
		names := make([]string, len(rs))
		for i, x := range rs {
			names[i] = x.name
		}
		out[h] = names
	}
	return out, nil
}

func (r *Repository) now() time.Time {
	if r.Now.IsZero() {
		return time.Now()
	}
	return r.Now
}

// Fingerprint implements Fingerprinter: a digest of every ref target and the
// options, so a new commit, branch or tag invalidates cached logs.
func (r *Repository) Fingerprint(context.Context) (string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailed, err, "list refs of %s", r.path)
	}
	var lines []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		lines = append(lines, ref.Strings()[0]+" "+ref.Strings()[1])
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailed, err, "list refs of %s", r.path)
	}
	slices.Sort(lines)

	h := sha256.New()
	fmt.Fprintf(h, "format=%s\nsince=%s\nuntil=%s\n", r.Options.Format(), r.Options.Since, r.Options.Until)
	if spec := r.Options.LabelSpec; strings.Contains(spec, "%cr") || strings.Contains(spec, "%ar") {
		// Relative dates go stale; keep entries for a day at most.
		fmt.Fprintf(h, "day=%s\n", r.now().Format(time.DateOnly))
	}
	for _, l := range lines {
		fmt.Fprintln(h, l)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
