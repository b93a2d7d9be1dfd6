package manifest

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/uibus/uibus/internal/logging"
	"github.com/uibus/uibus/pkg/eventbus"
)

// Watcher re-applies a manifest file to a bus whenever the file changes.
// The containing directory is watched rather than the file itself, so
// editors that replace the file on save are still observed.
type Watcher struct {
	path string
	bus  *eventbus.Bus
	fw   *fsnotify.Watcher
	log  zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Watch loads and applies the manifest at path, then starts watching it.
func Watch(path string, b *eventbus.Bus) (*Watcher, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(b); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path: path,
		bus:  b,
		fw:   fw,
		log:  logging.Component("manifest"),
		done: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case evt, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(w.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watch error")
		case <-w.done:
			return
		}
	}
}

// reload parses and re-applies the manifest, keeping the previous state when
// the file is mid-write or malformed.
func (w *Watcher) reload() {
	m, err := Load(w.path)
	if err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("manifest reload failed")
		return
	}
	if err := m.Apply(w.bus); err != nil {
		w.log.Error().Err(err).Str("path", w.path).Msg("manifest apply failed")
		return
	}
	w.log.Debug().Str("path", w.path).Int("events", len(m.Events)).Msg("manifest reloaded")
}

// Close stops the watcher. It is idempotent.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}
