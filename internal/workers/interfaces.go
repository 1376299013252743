// Package workers runs the platform's background maintenance loops.
//
// It defines the Worker lifecycle contract and a Workers aggregate that
// starts and stops every configured worker together.
package workers

import (
	"context"
	"time"

	"github.com/galionhq/nexus/models"
)

// Worker is a long-running background job. Run starts the job and returns
// immediately; the work happens on goroutines owned by the worker. Stop
// cancels the job and blocks until it has fully wound down. Both are safe to
// call more than once.
type Worker interface {
	Run()
	Stop()
}

// subscriptionReconciler is the slice of the billing service the reconciler
// worker drives on every tick.
type subscriptionReconciler interface {
	Reconcile(ctx context.Context, now time.Time) (models.ReconcileStats, error)
}

// expiryPurger deletes rows whose lifetime lapsed before the cutoff and
// reports how many went away. The refresh token and verification code
// repositories both satisfy it.
type expiryPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
