package workers

import (
	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/store"
)

// Workers bundles every background worker behind a single lifecycle.
type Workers struct {
	workers []Worker
}

// NewWorkers wires the background workers over the shared services and
// storages.
func NewWorkers(services *service.Services, storages *store.Storages, cfg config.Workers, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			NewReconciler(
				services.BillingService,
				storages.RefreshTokens,
				storages.VerificationCodes,
				cfg.ReconcileInterval,
				logger,
			),
		},
	}
}

// Run starts every worker in order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop stops every worker in reverse start order and blocks until all have
// wound down.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
