package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind says what sort of prefab file changed on disk.
type ChangeKind int

const (
	SpecChanged ChangeKind = iota
	ScriptChanged
)

// Change is one debounced filesystem event.
type Change struct {
	Path string
	Kind ChangeKind
}

// Watcher reports edits to prefab yaml and platform scripts so the game
// can re-apply tuning and recompile scripts at runtime.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Events and Errors stay open so a send racing the
// shutdown can never panic; they simply go quiet.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	// Editors fire several events per save; collapse bursts per path.
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind, ok := changeKind(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func changeKind(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SpecChanged, true
	case ".tengo":
		return ScriptChanged, true
	}
	return 0, false
}
