package service

import (
	"context"
	"time"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// healthCheckTimeout bounds one dependency probe so a hung backend cannot
// stall the health endpoint.
const healthCheckTimeout = 2 * time.Second

// StoragePinger is the slice of store.Storages the health service needs.
type StoragePinger interface {
	PingDB(ctx context.Context) error
	PingRedis(ctx context.Context) error
}

// healthService pings the platform's backing stores.
type healthService struct {
	storages StoragePinger
	logger   *logger.Logger
}

// NewHealthService constructs a HealthService over the shared storages.
func NewHealthService(storages StoragePinger, logger *logger.Logger) HealthService {
	return &healthService{storages: storages, logger: logger}
}

// Check probes the database and Redis. Status is "ok" only when every
// dependency answers; otherwise "degraded", with the failing checks carrying
// their errors.
func (h *healthService) Check(ctx context.Context) models.HealthResponse {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status: "ok",
		Checks: map[string]string{},
	}

	if err := h.storages.PingDB(ctx); err != nil {
		log.Err(err).Str("func", "*healthService.Check").Msg("database ping failed")
		resp.Status = "degraded"
		resp.Checks["database"] = err.Error()
	} else {
		resp.Checks["database"] = "ok"
	}

	if err := h.storages.PingRedis(ctx); err != nil {
		log.Err(err).Str("func", "*healthService.Check").Msg("redis ping failed")
		resp.Status = "degraded"
		resp.Checks["redis"] = err.Error()
	} else {
		resp.Checks["redis"] = "ok"
	}

	return resp
}
