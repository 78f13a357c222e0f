// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the write bursts editors produce when saving.
const debounceWindow = 250 * time.Millisecond

// Watch monitors the config file and invokes onChange with the freshly
// loaded config after each modification. Invalid intermediate states are
// skipped; onError (optional) receives load failures. Watch blocks until
// the context is cancelled.
//
// The parent directory is watched rather than the file itself, so
// rename-based atomic saves are picked up too.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := LoadFromPath(path)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
