package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// runWatch synthesizes once, then again after each burst of changes to the
// config file or the application team manifests.
func runWatch(ctx context.Context, out, errOut io.Writer, opts synthOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dirs, err := watchDirs(opts.configPath)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fmt.Fprintf(out, "Watching: %s\n", dir)
	}

	filter, err := newWatchFilter(opts)
	if err != nil {
		return err
	}

	rebuild := func() {
		if err := runSynth(out, opts); err != nil {
			fmt.Fprintf(errOut, "Synth error: %v\n", err)
		}
	}

	fmt.Fprintln(out, "Running initial synth...")
	rebuild()
	fmt.Fprintln(out, "\nWatching for changes... (Ctrl+C to stop)")

	watchLoop(ctx, watcher, filter, opts.debounce, errOut, func() {
		fmt.Fprintf(out, "\n[%s] Change detected, re-synthesizing...\n", time.Now().Format("15:04:05"))
		rebuild()
	})
	fmt.Fprintln(out, "\nStopping watch...")
	return nil
}

// watchDirs returns the directories holding the config file and the team manifests.
func watchDirs(configPath string) ([]string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var candidates []string
	if configPath != "" {
		candidates = append(candidates, filepath.Dir(configPath))
	}
	if cfg.ApplicationTeam.ManifestDir != "" {
		candidates = append(candidates, cfg.ApplicationTeam.ManifestDir)
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, dir := range candidates {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("nothing to watch: no config file or manifest directory")
	}
	return dirs, nil
}

// watchFilter decides which file events trigger a rebuild. Events under the
// assembly directory are synth output and are ignored, except for the config
// file itself.
type watchFilter struct {
	outdir string
	config string
}

func newWatchFilter(opts synthOptions) (watchFilter, error) {
	var f watchFilter
	if opts.outdir != "" && opts.outdir != "-" {
		abs, err := filepath.Abs(opts.outdir)
		if err != nil {
			return f, err
		}
		f.outdir = abs
	}
	if opts.configPath != "" {
		abs, err := filepath.Abs(opts.configPath)
		if err != nil {
			return f, err
		}
		f.config = abs
	}
	return f, nil
}

// isWatched reports whether an event should trigger a rebuild.
func (f watchFilter) isWatched(event fsnotify.Event) bool {
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".yaml", ".yml", ".json":
	default:
		return false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if path == f.config {
		return true
	}
	return f.outdir == "" || !within(f.outdir, path)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// watchLoop calls rebuild once per debounced burst of events until ctx is done.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, filter watchFilter, debounce time.Duration, errOut io.Writer, rebuild func()) {
	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !filter.isWatched(event) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(errOut, "Watch error: %v\n", err)

		case <-ctx.Done():
			return
		}
	}
}
