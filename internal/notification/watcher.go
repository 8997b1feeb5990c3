package notification

import (
	"context"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/guuisouza/smartlocker-backend-api/config"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// Watcher periodically scans for movements that crossed the overdue
// threshold and hands them to the worker pool. Each open movement is
// alerted once; when it is finally returned it drops out of the tracking
// set so a later checkout can alert again.
type Watcher struct {
	cfg      *config.Config
	store    store.Store
	pool     *WorkerPool
	notified map[int64]struct{}
}

// NewWatcher creates a watcher with its own worker pool.
func NewWatcher(cfg *config.Config, s store.Store) *Watcher {
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	return &Watcher{
		cfg:      cfg,
		store:    s,
		pool:     NewWorkerPool(cfg.WorkerPool.Size, s.DB(), &webpushOptions, cfg.Analytics.Location),
		notified: make(map[int64]struct{}),
	}
}

// Run starts the sweep loop and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	if !w.cfg.Watcher.Enabled {
		log.Println("Overdue watcher is disabled. Not starting.")
		return
	}
	log.Println("Starting overdue watcher...")

	w.pool.Start(ctx)

	w.SweepOnce(ctx)

	timer := time.NewTimer(w.cfg.Watcher.Interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			w.SweepOnce(ctx)
			timer.Reset(w.cfg.Watcher.Interval)
		case <-ctx.Done():
			log.Println("Overdue watcher stopped")
			return
		}
	}
}

// SweepOnce runs a single overdue scan and dispatches new offenders.
func (w *Watcher) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.cfg.Watcher.Overdue)
	loans, err := w.store.OverdueMovements(ctx, cutoff)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}

	current := make(map[int64]struct{}, len(loans))
	for _, loan := range loans {
		current[loan.MovementID] = struct{}{}
		if _, seen := w.notified[loan.MovementID]; seen {
			continue
		}
		w.notified[loan.MovementID] = struct{}{}
		w.pool.Dispatch(loan)
	}

	// Movements returned since the last sweep no longer need tracking.
	for id := range w.notified {
		if _, stillOpen := current[id]; !stillOpen {
			delete(w.notified, id)
		}
	}
}
