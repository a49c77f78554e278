package config

import (
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// ChangeHandler receives the previous and the newly loaded config.
type ChangeHandler func(previous, current *Config)

// Watcher reloads the config file when it changes. Bursts of writes are
// debounced into one reload.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	current  *Config
	handlers []ChangeHandler
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. current is the config the handlers
// will see as previous on the first reload.
func NewWatcher(path string, current *Config) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		watcher:  w,
		debounce: defaultDebounce,
		current:  current,
	}, nil
}

func (cw *Watcher) OnChange(handler ChangeHandler) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.handlers = append(cw.handlers, handler)
}

// Start watches the directory holding the file, so editors that replace the
// file on save are still seen.
func (cw *Watcher) Start() error {
	if err := cw.watcher.Add(filepath.Dir(cw.path)); err != nil {
		return err
	}

	cw.stopChan = make(chan struct{})
	go cw.watchLoop(cw.stopChan)

	logger.Info("config watcher started", "path", cw.path)
	return nil
}

func (cw *Watcher) Stop() {
	cw.stopOnce.Do(func() {
		if cw.stopChan != nil {
			close(cw.stopChan)
		}
		cw.watcher.Close()
		logger.Info("config watcher stopped")
	})
}

func (cw *Watcher) watchLoop(stop chan struct{}) {
	var debounceTimer *time.Timer

	for {
		select {
		case <-stop:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(cw.debounce, cw.reload)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("config watcher error", "error", err)
		}
	}
}

func (cw *Watcher) reload() {
	logger.Info("config file changed, reloading", "path", cw.path)

	cfg, err := Load(cw.path)
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}

	cw.mu.Lock()
	previous := cw.current
	cw.current = cfg
	handlers := make([]ChangeHandler, len(cw.handlers))
	copy(handlers, cw.handlers)
	cw.mu.Unlock()

	for _, h := range handlers {
		h(previous, cfg)
	}
}

// SessionChanged reports whether the part of the config that goes into the
// session instructions differs.
func SessionChanged(previous, current *Config) bool {
	if previous == nil || current == nil {
		return previous != current
	}
	return !reflect.DeepEqual(previous.Session, current.Session)
}
