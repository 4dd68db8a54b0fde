// Package hostcfg hot-reloads the YAML host configuration file via
// fsnotify. This is deliberately separate machinery from the Change
// Monitor's own 250ms polling loop — the core detection path never
// touches an OS notification API (see SPEC_FULL.md's Non-goals); this
// watcher only exists to save an operator a restart when they edit
// config.yaml.
package hostcfg

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"pipewatch/internal/config"
	"pipewatch/internal/logx"
)

// Watcher reloads config from path whenever the file changes, invoking
// onChange with the newly parsed configuration. Parse errors are
// logged and otherwise ignored — the previous configuration stays live.
type Watcher struct {
	path     string
	onChange func(config.Config)
	log      *logx.Logger
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// New starts watching the directory containing path (fsnotify watches
// directories, not bare files, so renames-over-the-top are caught too).
func New(path string, onChange func(config.Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		log:      logx.New("hostcfg"),
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := config.Load(w.path)
			if err != nil {
				w.log.Warn("reload %s: %v", w.path, err)
				continue
			}
			w.log.Info("reloaded %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
