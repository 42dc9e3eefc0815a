package source

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/matzehuels/gitdot/pkg/errors"
	"github.com/matzehuels/gitdot/pkg/record"
)

var t0 = time.Date(2017, 5, 1, 10, 0, 0, 0, time.FixedZone("", -7*3600))

func TestGitCommand_Args(t *testing.T) {
	g := GitCommand{Options: Options{Since: "2017-01-01", LabelSpec: "%s"}}

	args := g.Args()

	want := []string{
		"log",
		"--format=|Record:|%h|%p|%d|%ci%n%b%n@@@git2dot-label@@@:|%s",
		"--since=2017-01-01",
		"--all",
		"--topo-order",
	}
	if !slices.Equal(args, want) {
		t.Errorf("Args() = %q, want %q", args, want)
	}
	if w := g.Warnings(); len(w) != 0 {
		t.Errorf("Warnings() = %v, want none", w)
	}
}

func TestGitCommand_CustomWarnings(t *testing.T) {
	g := GitCommand{
		Command: "git log --format='|Record:|%h|%p|%d|%ci%n%b' main",
		Options: Options{LabelSpec: "%s", Since: "x", Until: "y", Range: "main"},
	}
	if got := len(g.Warnings()); got != 4 {
		t.Errorf("Warnings() = %v, want 4 entries", g.Warnings())
	}
	if g.Describe() != g.Command {
		t.Errorf("Describe() = %q, want the custom command", g.Describe())
	}
}

func TestGitCommand_Failure(t *testing.T) {
	g := GitCommand{Command: "echo boom >&2; exit 3"}
	_, err := g.Read(context.Background())
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Fatalf("Read() error = %v, want COMMAND_FAILED", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestFileAndKeep(t *testing.T) {
	dir := t.TempDir()
	dotFile := filepath.Join(dir, "git.dot")

	path, err := Keep(dotFile, []byte("|Record:|a||| 2017-05-01 10:00:00 +0000\n"))
	if err != nil {
		t.Fatalf("Keep() error: %v", err)
	}
	if path != dotFile+".keep" {
		t.Errorf("Keep() path = %s", path)
	}

	data, err := File{Path: path}.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !strings.HasPrefix(string(data), record.Marker) {
		t.Errorf("Read() = %q", data)
	}

	_, err = File{Path: filepath.Join(dir, "missing")}.Read(context.Background())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Read(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestFile_Warnings(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"none", Options{}, 0},
		{"default range", Options{Range: DefaultRange}, 0},
		{"window", Options{Since: "2017-01-01", Until: "2018-01-01"}, 2},
		{"range", Options{Range: "v1..main"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := File{Path: "git.dot.keep", Options: tt.opts}
			if got := f.Warnings(); len(got) != tt.want {
				t.Errorf("Warnings() = %q, want %d entries", got, tt.want)
			}
		})
	}
}

func sig(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@example.com", When: when}
}

// testRepo builds master: c1 <- c2 with an annotated tag v1 and a branch
// topic on c1.
func testRepo(t *testing.T) (*git.Repository, plumbing.Hash, plumbing.Hash) {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	c1, err := w.Commit("first commit\n\nChange-Id: I111\n", &git.CommitOptions{
		Author: sig(t0), Committer: sig(t0), AllowEmptyCommits: true,
	})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	c2, err := w.Commit("second commit", &git.CommitOptions{
		Author: sig(t0.Add(time.Hour)), Committer: sig(t0.Add(time.Hour)), AllowEmptyCommits: true,
	})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if _, err := repo.CreateTag("v1", c1, &git.CreateTagOptions{Tagger: sig(t0), Message: "release"}); err != nil {
		t.Fatalf("CreateTag() error: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("topic"), c1)
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatal(err)
	}
	return repo, c1, c2
}

func TestRepository_Read(t *testing.T) {
	repo, c1, c2 := testRepo(t)
	src := NewRepository(repo, Options{LabelSpec: "%s|%an"})

	data, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	v, _ := record.NewVariable("@CHID@", `Change-Id: (\w+)`)
	recs, err := record.Parse(strings.NewReader(string(data)), record.Options{Variables: []record.Variable{v}})
	if err != nil {
		t.Fatalf("Parse() error: %v\n%s", err, data)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2\n%s", len(recs), data)
	}

	second, first := recs[0], recs[1]
	if second.ID != c2.String()[:7] || !slices.Equal(second.Parents, []string{c1.String()[:7]}) {
		t.Errorf("record 0 = %s %v", second.ID, second.Parents)
	}
	if !slices.Equal(second.Branches, []string{"master"}) {
		t.Errorf("record 0 branches = %v, want [master]", second.Branches)
	}
	if !slices.Equal(second.Labels, []string{"second commit", "Test"}) {
		t.Errorf("record 0 labels = %q", second.Labels)
	}
	if !second.Time.Equal(t0.Add(time.Hour)) {
		t.Errorf("record 0 time = %v", second.Time)
	}
	if !slices.Equal(first.Tags, []string{"v1"}) || !slices.Equal(first.Branches, []string{"topic"}) {
		t.Errorf("record 1 refs = %v %v, want [topic] [v1]", first.Branches, first.Tags)
	}
	if got := first.Vars["@CHID@"]; !slices.Equal(got, []string{"I111"}) {
		t.Errorf("record 1 vars = %v, want [I111]", got)
	}
}

func TestRepository_Since(t *testing.T) {
	repo, _, c2 := testRepo(t)
	src := NewRepository(repo, Options{Since: t0.Add(30 * time.Minute).Format("2006-01-02 15:04:05 -0700")})

	data, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	recs, err := record.Parse(strings.NewReader(string(data)), record.Options{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != c2.String()[:7] {
		t.Errorf("records = %+v, want only the second commit", recs)
	}
}

func TestRepository_Fingerprint(t *testing.T) {
	repo, c1, _ := testRepo(t)
	src := NewRepository(repo, Options{})

	a, err := src.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	b, _ := src.Fingerprint(context.Background())
	if a != b {
		t.Errorf("Fingerprint() not stable: %s != %s", a, b)
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("new"), c1)
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatal(err)
	}
	c, _ := src.Fingerprint(context.Background())
	if c == a {
		t.Error("Fingerprint() unchanged after adding a branch")
	}
}

func TestOpenRepository_NotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := OpenRepository(dir, Options{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("OpenRepository() error = %v, want NOT_FOUND", err)
	}
}

func TestExpand(t *testing.T) {
	c := &object.Commit{
		Hash:      plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"),
		Author:    *sig(t0),
		Committer: *sig(t0.Add(time.Hour)),
		Message:   "Fix parser\nsecond subject line\n\nBody line.\n",
		ParentHashes: []plumbing.Hash{
			plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		},
	}
	f := commitFields{commit: c, decorations: "tag: v1", now: t0.Add(49 * time.Hour)}

	tests := []struct {
		format string
		want   string
	}{
		{"%h", "0123456"},
		{"%p", "aaaaaaa"},
		{"[%d]", "[ (tag: v1)]"},
		{"%s", "Fix parser second subject line"},
		{"%b", "Body line.\n"},
		{"%an <%ae>", "Test <test@example.com>"},
		{"%ci", "2017-05-01 11:00:00 -0700"},
		{"%cr", "2 days ago"},
		{"100%% %x", "100% %x"},
		{"a%nb", "a\nb"},
	}
	for _, tt := range tests {
		if got := expand(tt.format, f); got != tt.want {
			t.Errorf("expand(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
