// Package watchfolder discovers datasheet files, tracks their processing
// status, and dispatches Ready files to the analysis pipeline on a periodic
// sweep. File-system changes arrive via fsnotify; consumers observe progress
// through a typed event channel.
package watchfolder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sheetwatch/internal/config"
	"sheetwatch/internal/descriptor"
	"sheetwatch/internal/logging"
	"sheetwatch/internal/services"
	"sheetwatch/internal/store"
)

// Runner executes one full analysis for a file path.
type Runner interface {
	Run(ctx context.Context, path string) error
}

// Controller owns the descriptor registry and the dispatch loop.
type Controller struct {
	cfg      *config.Config
	store    *store.Store
	registry *descriptor.Registry
	runner   Runner
	logger   *slog.Logger

	pollInterval time.Duration
	events       chan Event

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// New builds a controller. The runner may be nil for read-only consumers
// (status listing), in which case the sweep never dispatches work.
func New(cfg *config.Config, st *store.Store, runner Runner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(cfg.Analyzer.PollInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &Controller{
		cfg:          cfg,
		store:        st,
		registry:     descriptor.NewRegistry(),
		runner:       runner,
		logger:       logging.NewComponentLogger(logger, "watchfolder"),
		pollInterval: interval,
		events:       make(chan Event, 64),
	}
}

// Events returns the notification channel. Events are dropped rather than
// blocking the controller when the consumer falls behind.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Registry exposes the descriptor set for status queries.
func (c *Controller) Registry() *descriptor.Registry {
	return c.registry
}

// Start scans the watch folder, subscribes to file-system events, and begins
// the periodic dispatch sweep. It returns immediately; background goroutines
// stop when ctx is cancelled.
func (c *Controller) Start(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("watchfolder: already started")
	}
	c.started = true
	c.mu.Unlock()

	// A failed start leaves the controller startable again.
	defer func() {
		if err != nil {
			c.mu.Lock()
			c.started = false
			c.mu.Unlock()
		}
	}()

	if err := os.MkdirAll(c.cfg.ResultsDir(), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "watchfolder", "start", "failed to create results folder", err)
	}
	if err := c.scan(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watchfolder", "start", "failed to create fs watcher", err)
	}
	for _, dir := range []string{c.cfg.Paths.WatchDir, c.cfg.ResultsDir()} {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return services.Wrap(services.ErrConfiguration, "watchfolder", "start", "failed to watch "+dir, err)
		}
	}

	c.wg.Add(2)
	go c.eventLoop(ctx, watcher)
	go c.sweepLoop(ctx)
	c.logger.Info("watching folder",
		logging.String("dir", c.cfg.Paths.WatchDir),
		logging.Duration("poll_interval", c.pollInterval))
	return nil
}

// Wait blocks until the background loops have exited. In-flight analysis
// workers are allowed to finish; Wait covers them too.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// scan seeds the registry from the current folder contents. Files that
// already have a store record start in Finish, the rest in Ready.
func (c *Controller) scan(ctx context.Context) error {
	entries, err := os.ReadDir(c.cfg.Paths.WatchDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watchfolder", "scan", "failed to read watch folder", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !c.cfg.RecognizedExtension(entry.Name()) {
			continue
		}
		status := descriptor.StatusReady
		record, err := c.store.GetByFilename(ctx, entry.Name())
		if err != nil {
			return err
		}
		if record != nil {
			status = descriptor.StatusFinish
		}
		if c.registry.Upsert(entry.Name(), c.cfg.Paths.WatchDir, status) {
			c.emit(Event{Type: EventFileAdded, Filename: entry.Name(), Status: status})
		}
	}
	c.logger.Info("initial scan complete", logging.Int("files", c.registry.Len()))
	return nil
}

func (c *Controller) eventLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer c.wg.Done()
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			c.handleFSEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				c.logger.Warn("fs watcher error", logging.Error(err))
			}
		}
	}
}

func (c *Controller) handleFSEvent(ev fsnotify.Event) {
	if c.insideResults(ev.Name) {
		c.emit(Event{Type: EventResultsChanged, Filename: filepath.Base(ev.Name)})
		return
	}
	name := filepath.Base(ev.Name)
	if !c.cfg.RecognizedExtension(name) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create):
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return
		}
		if c.registry.Upsert(name, c.cfg.Paths.WatchDir, descriptor.StatusReady) {
			c.logger.Info("file discovered", logging.String(logging.FieldFilename, name))
			c.emit(Event{Type: EventFileAdded, Filename: name, Status: descriptor.StatusReady})
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if c.registry.Remove(name) {
			c.logger.Info("file removed", logging.String(logging.FieldFilename, name))
			c.emit(Event{Type: EventFileRemoved, Filename: name})
		}
	}
}

func (c *Controller) insideResults(path string) bool {
	rel, err := filepath.Rel(c.cfg.ResultsDir(), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Controller) sweepLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// Dispatch once immediately so startup work is not delayed a full tick.
	c.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep reconciles descriptors against the store and dispatches every Ready
// file to its own worker goroutine.
func (c *Controller) Sweep(ctx context.Context) {
	for _, d := range c.registry.Snapshot() {
		switch d.Status {
		case descriptor.StatusFinish:
			// A Finish descriptor with no backing record was reset out of
			// band (reanalyze, manual delete). Make it eligible again.
			record, err := c.store.GetByFilename(ctx, d.Filename)
			if err != nil {
				c.logger.Warn("reconcile lookup failed",
					logging.String(logging.FieldFilename, d.Filename),
					logging.Error(err))
				continue
			}
			if record == nil && c.registry.SetStatus(d.Filename, descriptor.StatusReady) {
				c.logger.Info("record gone, descriptor reset",
					logging.String(logging.FieldFilename, d.Filename))
				c.emit(Event{Type: EventStatusChanged, Filename: d.Filename, Status: descriptor.StatusReady})
			}
		case descriptor.StatusReady:
			if c.runner == nil {
				continue
			}
			if !c.registry.BeginProcessing(d.Filename) {
				continue
			}
			c.emit(Event{Type: EventStatusChanged, Filename: d.Filename, Status: descriptor.StatusProcessing})
			c.wg.Add(1)
			go c.runOne(ctx, d.Filename, d.Dir)
		}
	}
}

func (c *Controller) runOne(ctx context.Context, filename, dir string) {
	defer c.wg.Done()
	path := filepath.Join(dir, filename)
	log := c.logger.With(logging.String(logging.FieldFilename, filename))
	log.Info("analysis started")

	if err := c.runner.Run(ctx, path); err != nil {
		// Failed runs revert to Ready and retry on a later sweep.
		log.Error("analysis failed", logging.Error(err))
		c.registry.SetStatus(filename, descriptor.StatusReady)
		c.emit(Event{Type: EventStatusChanged, Filename: filename, Status: descriptor.StatusReady})
		return
	}
	log.Info("analysis finished")
	c.registry.SetStatus(filename, descriptor.StatusFinish)
	c.emit(Event{Type: EventStatusChanged, Filename: filename, Status: descriptor.StatusFinish})
}

// Reanalyze deletes the stored records for a filename so the next sweep
// reprocesses it. The descriptor, when present, reverts to Ready right away;
// a daemon in another process converges through sweep reconciliation.
func (c *Controller) Reanalyze(ctx context.Context, filename string) error {
	removed, err := c.store.DeleteByFilename(ctx, filename)
	if err != nil {
		return err
	}
	if removed == 0 {
		c.logger.Info("no stored records to remove",
			logging.String(logging.FieldFilename, filename))
	}
	if c.registry.SetStatus(filename, descriptor.StatusReady) {
		c.emit(Event{Type: EventStatusChanged, Filename: filename, Status: descriptor.StatusReady})
	}
	return nil
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
