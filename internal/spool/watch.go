package spool

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spoolio/spoolio/internal/errors"
)

// Event reports that an element became visible in a state directory.
type Event struct {
	Key    Key
	Status Status
}

// Watch invokes fn whenever an element arrives in new/, wip/ or cur/.
// Arrivals in tmp/ are producer-private and not reported. Events are
// delivered from a single goroutine, so fn need not be safe for
// concurrent use; it must not block for long or events may be dropped by
// the OS notification queue.
//
// The returned cancel function stops the watcher and releases its OS
// resources; it is safe to call more than once.
func (s *Spool) Watch(fn func(Event)) (cancel func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewSpoolError("create watcher", err).WithPath(s.path)
	}

	// Map watched directory path -> status, for event routing.
	watched := map[string]Status{}
	for _, status := range [...]Status{StatusNew, StatusWip, StatusCur} {
		dir := s.Dir(status)
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, errors.NewSpoolError("watch "+status.String()+" directory", err).WithPath(s.path)
		}
		watched[dir] = status
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Elements enter a state directory by rename (commit,
				// rollback) or link (claim); both surface as Create.
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				name := filepath.Base(ev.Name)
				if hidden(name) {
					continue
				}
				status, ok := watched[filepath.Dir(ev.Name)]
				if !ok {
					continue
				}
				fn(Event{Key: Key(name), Status: status})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watch errors are not fatal to the spool; the caller
				// polls with HasStatus/Pick regardless.
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
		})
	}, nil
}
