package application

import (
	"context"
	"errors"
	"sync"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/rs/zerolog/log"
)

// Syncer runs a single reconciliation pass.
type Syncer interface {
	Sync(ctx context.Context) (domain.SyncResult, error)
}

// SyncRunner runs syncs in the background for triggers that must not block their caller,
// such as webhooks, file watchers and the scheduler.
type SyncRunner struct {
	syncer Syncer

	// Runner lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewSyncRunner(syncer Syncer) *SyncRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyncRunner{
		syncer: syncer,
		ctx:    ctx,
		cancel: cancel,
		wg:     &sync.WaitGroup{},
	}
}

// Trigger starts a sync and returns immediately. The sync uses the runner's
// lifecycle context, not the caller's.
func (r *SyncRunner) Trigger(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		log.Warn().Str("reason", reason).Msg("Sync trigger ignored, runner closed")
		return
	}

	r.wg.Go(func() {
		r.run(reason)
	})
}

// RunNow runs a sync on the calling goroutine, still bounded by the runner lifecycle.
func (r *SyncRunner) RunNow(reason string) {
	r.run(reason)
}

func (r *SyncRunner) run(reason string) {
	result, err := r.syncer.Sync(r.ctx)
	if err != nil {
		var busy *domain.SyncInProgressError
		if errors.As(err, &busy) {
			log.Warn().Str("reason", reason).Msg("Sync skipped, another run is in progress")
			return
		}
		log.Error().Err(err).Str("reason", reason).Msg("Triggered sync failed")
		return
	}

	log.Debug().
		Str("reason", reason).
		Bool("changed", result.Changed()).
		Msg("Triggered sync completed")
}

// Close gracefully shuts down the runner, cancelling in-flight syncs and waiting for them
func (r *SyncRunner) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()

	return nil
}
