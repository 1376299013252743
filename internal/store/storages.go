package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
)

// Storages bundles every persistence dependency of the platform: the SQL
// repositories for durable account data and the Redis stores for short-lived
// login state.
type Storages struct {
	Users             UserRepository
	RefreshTokens     RefreshTokenRepository
	TwoFA             TwoFARepository
	VerificationCodes VerificationCodeRepository
	Plans             PlanRepository
	Subscriptions     SubscriptionRepository
	QRSessions        QRSessionStore
	TwoFATickets      TwoFATicketStore

	db    *DB
	redis *redis.Client
}

// NewStorages connects to the database and Redis, runs schema migrations and
// wires every repository. It fails fast: an unreachable backend is returned
// as an error instead of surfacing later on the first request.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnect(ctx, cfg.DB, log)
	if err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error connecting to database")
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	redisClient, err := NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error connecting to redis")
		return nil, err
	}

	return &Storages{
		Users:             NewUserRepository(db, log),
		RefreshTokens:     NewRefreshTokenRepository(db, log),
		TwoFA:             NewTwoFARepository(db, log),
		VerificationCodes: NewVerificationCodeRepository(db, log),
		Plans:             NewPlanRepository(db, log),
		Subscriptions:     NewSubscriptionRepository(db, log),
		QRSessions:        NewQRSessionStore(redisClient, log),
		TwoFATickets:      NewTwoFATicketStore(redisClient, log),
		db:                db,
		redis:             redisClient,
	}, nil
}

// PingDB reports database reachability for health checks.
func (s *Storages) PingDB(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PingRedis reports Redis reachability for health checks.
func (s *Storages) PingRedis(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close releases both backend connections. Safe to call once during
// shutdown.
func (s *Storages) Close() error {
	var firstErr error
	if err := s.db.Close(); err != nil {
		firstErr = err
	}
	if err := s.redis.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
