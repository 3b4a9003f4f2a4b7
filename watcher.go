package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const contentDebounce = 300 * time.Millisecond

// ContentWatcher reloads the content file into a ContentSource whenever it
// changes on disk. An invalid file leaves the previous content in place.
type ContentWatcher struct {
	path     string
	source   *ContentSource
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// reloaded, when set, is called after each reload attempt.
	reloaded func(err error)
}

// NewContentWatcher watches the directory holding path, since editors often
// replace files instead of writing them in place.
func NewContentWatcher(path string, source *ContentSource, logger *zap.Logger) (*ContentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve content path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &ContentWatcher{
		path:     abs,
		source:   source,
		logger:   logger,
		debounce: contentDebounce,
		watcher:  w,
	}, nil
}

// Run processes file events until ctx is done, then closes the watcher.
func (cw *ContentWatcher) Run(ctx context.Context) error {
	defer cw.watcher.Close()

	timer := time.NewTimer(cw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != cw.path {
				continue
			}
			if evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename) {
				timer.Reset(cw.debounce)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			cw.logger.Warn("Erreur de surveillance du contenu", zap.Error(err))

		case <-timer.C:
			cw.reload()
		}
	}
}

func (cw *ContentWatcher) reload() {
	c, err := LoadContentFile(cw.path)
	if err != nil {
		cw.logger.Error("Contenu invalide, version précédente conservée",
			zap.String("path", cw.path), zap.Error(err))
	} else {
		cw.source.Set(c)
		cw.logger.Info("Contenu rechargé",
			zap.String("path", cw.path),
			zap.Int("words", len(c.Words)),
			zap.Int("pairs", len(c.Pairs)))
	}
	if cw.reloaded != nil {
		cw.reloaded(err)
	}
}
