package loader

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/omnicall/omnicall/internal/logger"
)

// Watcher hot-reloads handles when their source files change on disk: a
// write to a watched path re-runs load and discover for the owning handle
// and swaps its context atomically under the manager lock.
type Watcher struct {
	manager *Manager
	fs      *fsnotify.Watcher
	mu      sync.Mutex
	byPath  map[string]*Handle
	done    chan struct{}
}

// EnableWatch attaches a filesystem watcher to the manager. Handles loaded
// from files after this call reload automatically on change.
func (m *Manager) EnableWatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w := &Watcher{
		manager: m,
		fs:      fs,
		byPath:  make(map[string]*Handle),
		done:    make(chan struct{}),
	}
	m.watcher = w
	go w.run()
	return nil
}

func (w *Watcher) watch(h *Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range h.paths {
		if err := w.fs.Add(p); err != nil {
			logger.Warn("watch failed", logger.KeyPath, p, logger.KeyError, err.Error())
			continue
		}
		w.byPath[p] = h
	}
}

func (w *Watcher) unwatch(h *Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range h.paths {
		if w.byPath[p] == h {
			_ = w.fs.Remove(p)
			delete(w.byPath, p)
		}
	}
}

func (w *Watcher) close() {
	close(w.done)
	_ = w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			h := w.byPath[event.Name]
			w.mu.Unlock()
			if h == nil {
				continue
			}
			if err := w.manager.reload(h); err != nil {
				logger.Error("hot reload failed",
					logger.KeyTag, h.impl.tag,
					logger.KeyPath, event.Name,
					logger.KeyError, err.Error())
			} else {
				logger.Info("handle reloaded",
					logger.KeyTag, h.impl.tag,
					logger.KeyHandle, h.id,
					logger.KeyPath, event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", logger.KeyError, err.Error())
		}
	}
}

// reload re-runs load and discover for a handle and swaps its symbols in
// place. The handle keeps its identity; only the inner adapter handle and
// the context change.
func (m *Manager) reload(h *Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.cleared || len(h.paths) == 0 {
		return nil
	}

	inner, err := h.impl.loader.LoadFromFile(h.paths)
	if err != nil {
		return err
	}

	// Discover into a replacement context before touching the live one.
	replacement := newHandle(h.name, h.impl, inner, h.paths)
	if err := h.impl.loader.Discover(inner, replacement.ctx); err != nil {
		_ = h.impl.loader.Clear(inner)
		return err
	}

	oldCtx := h.ctx
	h.impl.ctx.Remove(oldCtx)
	oldCtx.Destroy()

	oldInner := h.inner
	h.inner = inner
	h.ctx = replacement.ctx

	if err := h.impl.ctx.Merge(h.ctx); err != nil {
		return err
	}
	return h.impl.loader.Clear(oldInner)
}
