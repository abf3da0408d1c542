package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/observability"
)

// Watcher clears the cache of a directory store whenever one of its
// configuration files is written, created, removed or renamed.
type Watcher struct {
	store   *Store
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	files   map[string]bool
	reloads chan string
}

// NewWatcher starts watching the directory of store. The store must have
// been created with [NewDirStore].
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	if store == nil || store.Dir() == "" {
		return nil, apierr.New(apierr.ErrInvalidParameter, "config.NewWatcher", "store is not backed by a directory")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrConfigLoad, "config.NewWatcher", err, "failed to create file watcher")
	}
	// Watch the directory, not the files: editors replace files on save.
	if err := fsw.Add(store.Dir()); err != nil {
		_ = fsw.Close()
		return nil, apierr.Wrap(apierr.ErrConfigLoad, "config.NewWatcher", err, "failed to watch %s", store.Dir())
	}

	files := make(map[string]bool, 3)
	for _, kind := range []Kind{KindProviders, KindSecrets, KindDefaults} {
		files[filepath.Base(store.FileName(kind))] = true
	}

	return &Watcher{
		store:   store,
		fsw:     fsw,
		logger:  logger,
		files:   files,
		reloads: make(chan string, 1),
	}, nil
}

// Reloads delivers the name of a changed file after the cache was cleared.
// Notifications are dropped while a previous one is still unread.
func (w *Watcher) Reloads() <-chan string {
	return w.reloads
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watcher error", slog.String(observability.AttrError, err.Error()))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !w.files[name] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.store.ClearCache()
	w.logger.Info("Configuration changed, cache cleared",
		slog.String(observability.AttrConfigFile, name),
		slog.String("op", event.Op.String()))

	select {
	case w.reloads <- name:
	default:
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
