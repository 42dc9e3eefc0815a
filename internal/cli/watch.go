package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/gitdot/pkg/errors"
)

// defaultDebounce is used when neither the config nor a flag sets one.
const defaultDebounce = 500 * time.Millisecond

// gitDir returns the .git directory of the working tree at repo.
func gitDir(repo string) (string, error) {
	dir := filepath.Join(repo, ".git")
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeNotFound, "no .git directory in %s to watch", repo)
	}
	return dir, nil
}

// watchRepo calls onChange once per burst of ref changes in the repository
// until ctx is done. HEAD, packed-refs and everything under refs/ are
// watched; object writes are not, as a commit always moves a ref as well.
func watchRepo(ctx context.Context, dir string, debounce time.Duration, logger *log.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}
	if err := addTree(watcher, filepath.Join(dir, "refs")); err != nil {
		return err
	}
	logger.Debug("watching repository", "dir", dir)

	if debounce <= 0 {
		debounce = defaultDebounce
	}
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
				}
			}
			if shouldIgnoreEvent(dir, event) {
				continue
			}
			logger.Debug("change detected", "file", filepath.Base(event.Name))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", root)
	}
	return nil
}

// shouldIgnoreEvent drops events that cannot change the commit graph.
func shouldIgnoreEvent(dir string, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, ".lock") {
		return true
	}
	rel, err := filepath.Rel(dir, event.Name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == "HEAD", rel == "packed-refs":
		return false
	case strings.HasPrefix(rel, "refs/"):
		return false
	}
	return true
}
