package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"sheetwatch/internal/config"
	"sheetwatch/internal/descriptor"
	"sheetwatch/internal/logging"
	"sheetwatch/internal/store"
	"sheetwatch/internal/watchfolder"
)

// Daemon owns the long-running analyzer process: the folder controller, the
// store handle, and a file lock that prevents a second instance from racing
// the first on the shared codegen output file.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.Store
	controller *watchfolder.Controller

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running     bool
	LockPath    string
	Descriptors []descriptor.Descriptor
}

// New wires a daemon from its collaborators.
func New(cfg *config.Config, st *store.Store, ctrl *watchfolder.Controller, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || ctrl == nil {
		return nil, errors.New("daemon requires config, store and controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "sheetwatch.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		store:      st,
		controller: ctrl,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the folder controller.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another sheetwatch instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.controller.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start watch controller: %w", err)
	}
	go d.logEvents(d.ctx)

	d.running.Store(true)
	d.logger.Info("sheetwatch daemon started", logging.String("lock", d.lockPath))
	return nil
}

// logEvents mirrors controller notifications into the daemon log.
func (d *Daemon) logEvents(ctx context.Context) {
	events := d.controller.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			d.logger.Info("event",
				logging.String(logging.FieldEventType, string(ev.Type)),
				logging.String(logging.FieldFilename, ev.Filename),
				logging.String(logging.FieldStatus, string(ev.Status)))
		}
	}
}

// Stop halts background processing and releases the instance lock. In-flight
// analysis workers finish before Stop returns.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.controller.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("sheetwatch daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status snapshots the daemon and its tracked files.
func (d *Daemon) Status() Status {
	return Status{
		Running:     d.running.Load(),
		LockPath:    d.lockPath,
		Descriptors: d.controller.Registry().Snapshot(),
	}
}
