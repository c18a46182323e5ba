package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LocaleWatcher reloads a locales file whenever it changes on disk.
type LocaleWatcher struct {
	Path    string
	Updates <-chan Locales // Read-only external channel

	updates chan Locales // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewLocaleWatcher creates a watcher for the locales file at path.
func NewLocaleWatcher(path string) (*LocaleWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Locales, 4)
	return &LocaleWatcher{
		Path:    filepath.Clean(path),
		Updates: ch,
		updates: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start watches the file's directory, so editors that replace the file
// on save are still seen.
func (w *LocaleWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Updates channel.
func (w *LocaleWatcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.updates)
}

func (w *LocaleWatcher) loop() {
	defer close(w.done)

	const debounce = 100 * time.Millisecond
	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= debounce {
				pending = time.Time{}
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[CONFIG] watch %s: %v", w.Path, err)
		}
	}
}

func (w *LocaleWatcher) reload() {
	l, err := LoadLocales(w.Path)
	if err != nil {
		// Half-written files fail to parse; the next write retries.
		log.Printf("[CONFIG] reload locales: %v", err)
		return
	}
	select {
	case w.updates <- l:
	default:
		log.Printf("[CONFIG] locales update dropped, consumer is behind")
	}
}

// WatchLocales calls onChange with the reloaded locales every time the file
// at path changes, until ctx ends. It returns once the watch is in place.
func WatchLocales(ctx context.Context, path string, onChange func(Locales)) error {
	w, err := NewLocaleWatcher(path)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.watcher.Close()
		return err
	}

	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case l := <-w.Updates:
				onChange(l)
			}
		}
	}()
	return nil
}
