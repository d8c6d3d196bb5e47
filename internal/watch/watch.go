// Package watch re-runs a callback when files under a repository change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/milkvcs/milk/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// A stream of events that never pauses still redraws this often, in units
// of the debounce delay.
const maxWaitFactor = 4

// Run calls onChange once, then again after every burst of filesystem
// events under root, until ctx is cancelled. onChange always runs on the
// calling goroutine.
func Run(ctx context.Context, root string, delay time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	paths, err := watchPaths(root)
	if err != nil {
		return err
	}
	for _, path := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	pending := make(chan struct{}, 1)
	d := debounce.New(delay, func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}).WithMaxWait(maxWaitFactor * delay)
	defer d.Stop()

	onChange()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			onChange()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			if ev.Op&fsnotify.Create != 0 {
				addIfDir(watcher, ev.Name)
			}
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

// watchPaths lists every worktree directory below root plus the parts of
// .git that change when refs or the index move. fsnotify is not recursive.
func watchPaths(root string) ([]string, error) {
	if root == "" {
		return nil, errors.New("repository root not set")
	}
	var paths []string
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		paths = append(paths, gitDir)
		if heads := filepath.Join(gitDir, "refs", "heads"); isDir(heads) {
			paths = append(paths, heads)
		}
	}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if entry.Name() == ".git" {
			return filepath.SkipDir
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

func addIfDir(w *fsnotify.Watcher, path string) {
	if !isDir(path) || strings.Contains(path, string(filepath.Separator)+".git"+string(filepath.Separator)) {
		return
	}
	if err := w.Add(path); err != nil {
		slog.Debug("watch new directory", slog.String("path", path), slog.Any("error", err))
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func shouldIgnoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	return false
}
