package theme

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileSource reads the system appearance from a file containing "light" or
// "dark" and delivers change events when the file is rewritten. Desktop
// environments that expose their appearance through a file (or a script
// bridging their settings daemon) plug in here.
type FileSource struct {
	path string
	log  *zap.Logger

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	listeners map[int]func(Appearance)
	nextID    int
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewFileSource creates a FileSource for the given appearance file.
func NewFileSource(path string, log *zap.Logger) *FileSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileSource{
		path:      path,
		log:       log,
		listeners: make(map[int]func(Appearance)),
	}
}

// Current reads the file. A missing or unreadable file, or contents outside
// light/dark, fall back to light.
func (s *FileSource) Current() Appearance {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Light
	}
	if strings.TrimSpace(strings.ToLower(string(data))) == string(Dark) {
		return Dark
	}
	return Light
}

// Subscribe registers cb for appearance changes, starting the file watcher
// on first use. The cancel function releases the subscription; the watcher
// itself is stopped by Close.
func (s *FileSource) Subscribe(cb func(Appearance)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = cb

	if s.watcher == nil {
		if err := s.startWatcher(); err != nil {
			// No watcher means no live events; Current still works, so the
			// subscription stays registered and silent.
			s.log.Warn("appearance watch unavailable", zap.String("path", s.path), zap.Error(err))
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// startWatcher must be called with s.mu held. It watches the parent
// directory so editors that replace the file via rename are still seen.
func (s *FileSource) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return err
	}

	s.watcher = w
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(w, s.stopCh, s.doneCh)
	return nil
}

func (s *FileSource) run(w *fsnotify.Watcher, stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.notify(s.Current())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("appearance watch error", zap.Error(err))
		}
	}
}

func (s *FileSource) notify(a Appearance) {
	s.mu.Lock()
	cbs := make([]func(Appearance), 0, len(s.listeners))
	for _, cb := range s.listeners {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(a)
	}
}

// Close stops the watcher goroutine and waits for it to exit, so no event
// can be delivered after Close returns.
func (s *FileSource) Close() error {
	s.mu.Lock()
	w, stopCh, doneCh := s.watcher, s.stopCh, s.doneCh
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stopCh)
	err := w.Close()
	<-doneCh
	return err
}
