package recipeindex

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/pygr-project/pygr/pkg/observability"
)

// Watch invalidates cached recipe parses when files under repoDirs change
// on disk, and reloads the index on every event. It is intended for
// long-lived callers only (e.g. a future daemon mode); the single-shot CLI
// path never calls it, preserving the no-background-workers model. Watch
// blocks until ctx is canceled or the watcher fails to start.
func (idx *Index) Watch(ctx context.Context, repoDirs []string, log *observability.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range repoDirs {
		if err := watcher.Add(dir); err != nil {
			log.WithError(err).Warnf("recipeindex: could not watch %s", dir)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				idx.Invalidate(event.Name)
				if err := idx.Load(repoDirs); err != nil {
					log.WithError(err).Warn("recipeindex: reload after fs event failed")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("recipeindex: watcher error")
		}
	}
}
