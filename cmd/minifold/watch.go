package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/minifold/minifold/internal/logger"
)

// runWatch handles the watch subcommand: rerun the optimizer whenever the
// asset directory changes, debounced so one build rewrite triggers one run.
func runWatch() {
	watchFlags := flag.NewFlagSet("watch", flag.ExitOnError)
	configFile := watchFlags.String("config", "", "Path to config file")
	root := watchFlags.String("root", "", "Asset directory, overriding the configured one")
	if err := watchFlags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	rt, err := setup(*configFile, *root)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}

	debounce, err := time.ParseDuration(rt.cfg.Watch.Debounce)
	if err != nil {
		// Validation already checked this; keep a sane fallback anyway.
		debounce = 300 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, rt.cfg.Assets.Root); err != nil {
		log.Fatalf("Failed to watch %s: %v", rt.cfg.Assets.Root, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer rt.shutdown(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// First pass before waiting for changes.
	if result, err := optimizeOnce(ctx, rt); err != nil {
		logger.Error("Initial run failed", logger.Err(err))
	} else {
		printSummary(result)
	}

	logger.Info("Watching for changes", logger.KeyPath, rt.cfg.Assets.Root)

	var timer *time.Timer
	runs := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			// New directories need their own watches.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() { runs <- struct{}{} })
			} else {
				timer.Reset(debounce)
			}

		case <-runs:
			timer = nil
			if result, err := optimizeOnce(ctx, rt); err != nil {
				logger.Error("Run failed", logger.Err(err))
			} else {
				printSummary(result)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", logger.Err(err))

		case <-sigChan:
			logger.Info("Shutdown signal received")
			return
		}
	}
}

// relevantEvent filters out events the optimizer should not rerun for:
// chmod noise and rewrites of the optimizer's own outputs.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.Contains(name, ".LICENSE.") {
		return false
	}
	return true
}

// watchRecursive adds watches for dir and every directory below it.
func watchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return watcher.Add(path)
	})
}
