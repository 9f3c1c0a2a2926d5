// Package guard detects whether the target application is still running
// by watching its data directory for writes. The tool requires the app to
// be closed during a reset; that precondition cannot be enforced, but a
// live app touches its globalStorage files often enough that a short
// observation window catches it.
package guard

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Probe watches dir for the given window and reports whether any write or
// create event arrived. A missing directory probes as quiet: there is
// nothing for an app to be writing to.
func Probe(dir string, window time.Duration) (bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return false, nil
	}

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return false, nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				return true, nil
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return false, nil
			}
			// Watch errors are not evidence either way; keep observing.
		case <-deadline.C:
			return false, nil
		}
	}
}
