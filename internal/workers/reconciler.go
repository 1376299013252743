// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/galionhq/nexus/internal/logger"
)

// defaultReconcileInterval applies when the configured interval is missing
// or non-positive.
const defaultReconcileInterval = time.Minute

// Reconciler advances due subscriptions and purges expired credentials on a
// fixed interval. It is idle until Run is called.
type Reconciler struct {
	billing       subscriptionReconciler
	refreshTokens expiryPurger
	codes         expiryPurger

	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a Reconciler that sweeps every interval.
func NewReconciler(billing subscriptionReconciler, refreshTokens, codes expiryPurger, interval time.Duration, logger *logger.Logger) *Reconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}

	return &Reconciler{
		billing:       billing,
		refreshTokens: refreshTokens,
		codes:         codes,
		interval:      interval,
		logger:        logger,
	}
}

// Run implements Worker. It stops any previous run, performs one pass right
// away so work that piled up while the server was down is drained without
// waiting a full interval, then keeps sweeping on every tick until Stop is
// called.
func (r *Reconciler) Run() {
	r.Stop()

	r.mu.Lock()
	jobCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		r.pass(jobCtx)

		t := time.NewTicker(r.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				r.pass(jobCtx)
			}
		}
	}()
}

// Stop implements Worker. It cancels the sweep loop and blocks until the
// goroutine has exited. Safe to call when the worker is not running.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// pass runs one sweep: subscription transitions first, then the credential
// purges. A failed step is logged and retried on the next tick.
func (r *Reconciler) pass(ctx context.Context) {
	ctx = r.logger.WithContext(ctx)
	now := time.Now()

	stats, err := r.billing.Reconcile(ctx, now)
	switch {
	case err != nil:
		r.logger.Err(err).Msg("subscription reconcile pass failed")
	case stats.Total() > 0:
		r.logger.Info().
			Int("renewed", stats.Renewed).
			Int("converted", stats.Converted).
			Int("canceled", stats.Canceled).
			Int("expired", stats.Expired).
			Msg("subscription reconcile pass")
	}

	// The repositories log their own failures; here only the effect matters.
	if n, err := r.refreshTokens.DeleteExpired(ctx, now); err == nil && n > 0 {
		r.logger.Info().Int64("deleted", n).Msg("purged expired refresh tokens")
	}
	if n, err := r.codes.DeleteExpired(ctx, now); err == nil && n > 0 {
		r.logger.Info().Int64("deleted", n).Msg("purged expired verification codes")
	}
}
