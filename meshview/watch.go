package meshview

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchResults watches dir and merges result files into v as a solver
// writes them, until ctx is done. New files passing filter (PosFilter if
// nil) are merged once, by absolute path, in arrival order; the working
// directory is left alone. A failing merge is logged and does not stop
// the watch.
//
// A file is merged on its first create or write event, so writers should
// produce result files atomically (write under a temporary name, then
// rename).
func WatchResults(ctx context.Context, v Viewer, dir string, filter FilterFunc) error {
	if filter == nil {
		filter = PosFilter
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	merged := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if len(filter([]string{name})) == 0 {
				continue
			}
			if _, ok := merged[name]; ok {
				continue
			}
			merged[name] = struct{}{}

			path, err := filepath.Abs(event.Name)
			if err != nil {
				path = event.Name
			}
			if err := v.Merge(path); err != nil {
				log.Printf("meshview: merge %s: %v", path, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
