// Copyright (C) 2026 BoxOps Systems (oss@boxops.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package build

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/boxops/confdb/services/confdb/configpath"
)

// Watch builds the target once, then rebuilds whenever the target or any of
// its discovered dependencies changes on disk. The watch set is re-derived
// after every successful build, so newly introduced imports are picked up.
//
// A failing rebuild is logged and watching continues; only watcher failures
// and context cancellation end the loop.
func (b *Builder) Watch(ctx context.Context, configFile string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	res, err := b.Build(ctx, configFile)
	if err != nil {
		return err
	}

	watched, err := b.rewatch(watcher, res)
	if err != nil {
		return err
	}
	b.logger.Info("watching config target", "target", res.Target.String(), "files", len(watched))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if _, hit := watched[filepath.Clean(event.Name)]; !hit {
				continue
			}
			b.logger.Info("config changed, rebuilding", "file", event.Name)

			next, err := b.Build(ctx, configFile)
			if err != nil {
				b.logger.Error("rebuild failed", "error", err.Error())
				continue
			}
			if watched, err = b.rewatch(watcher, next); err != nil {
				return err
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher: %w", werr)
		}
	}
}

// rewatch points the watcher at the directories holding the target and its
// current dependency set, and returns the exact files to react to. Watching
// directories instead of files survives editors that replace files on save.
func (b *Builder) rewatch(watcher *fsnotify.Watcher, res *Result) (map[string]struct{}, error) {
	for _, dir := range watcher.WatchList() {
		_ = watcher.Remove(dir)
	}

	files := make(map[string]struct{}, len(res.Deps)+1)
	dirs := make(map[string]struct{})

	add := func(p configpath.Path) {
		full := filepath.Join(b.root, filepath.FromSlash(p.String()))
		files[filepath.Clean(full)] = struct{}{}
		dirs[filepath.Dir(full)] = struct{}{}
	}
	add(res.Target)
	for _, dep := range res.Deps {
		add(dep)
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}
	return files, nil
}
