package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// qrSessionKeyPrefix namespaces QR session keys so the shared Redis instance
// can also hold 2FA tickets and anything operations may add later.
const qrSessionKeyPrefix = "qr:session:"

// transitionRetries bounds how often a Transition re-runs after losing an
// optimistic WATCH race before giving up.
const transitionRetries = 3

// redisQRSessionStore is the Redis-backed implementation of [QRSessionStore].
// Sessions are stored as JSON values under a TTL; state transitions use
// WATCH-guarded transactions so concurrent requests on the same session
// serialise instead of overwriting each other.
type redisQRSessionStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewQRSessionStore constructs a [QRSessionStore] backed by the provided
// Redis client and logger.
func NewQRSessionStore(client *redis.Client, logger *logger.Logger) QRSessionStore {
	logger.Debug().Msg("creating qr session store")
	return &redisQRSessionStore{
		client: client,
		logger: logger,
	}
}

// Save writes the session keyed by its ID. The key expires at
// session.ExpiresAt, enforcing the session lifetime without a sweeper.
func (s *redisQRSessionStore) Save(ctx context.Context, session models.QRSession) error {
	log := logger.FromContext(ctx)

	data, err := json.Marshal(session)
	if err != nil {
		log.Err(err).Str("func", "*redisQRSessionStore.Save").Msg("error marshaling qr session")
		return fmt.Errorf("marshal qr session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("qr session expires in the past: %s", session.ExpiresAt)
	}

	if err := s.client.Set(ctx, qrSessionKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		log.Err(err).Str("func", "*redisQRSessionStore.Save").Msg("error saving qr session")
		return fmt.Errorf("save qr session: %w", err)
	}

	return nil
}

// Get returns the session with the given ID, or ErrQRSessionNotFound if the
// key is missing — which covers both "never existed" and "TTL lapsed".
func (s *redisQRSessionStore) Get(ctx context.Context, sessionID string) (models.QRSession, error) {
	log := logger.FromContext(ctx)

	data, err := s.client.Get(ctx, qrSessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.QRSession{}, ErrQRSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*redisQRSessionStore.Get").Msg("error reading qr session")
		return models.QRSession{}, fmt.Errorf("get qr session: %w", err)
	}

	var session models.QRSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Err(err).Str("func", "*redisQRSessionStore.Get").Msg("error unmarshaling qr session")
		return models.QRSession{}, fmt.Errorf("unmarshal qr session: %w", err)
	}

	return session, nil
}

// Transition atomically moves the session from state `from` to state `to`,
// applying mutate in between. It WATCHes the session key and writes inside a
// MULTI/EXEC block, retrying a bounded number of times when a concurrent
// writer invalidates the watch. The TTL of the key is preserved.
//
// Returns ErrQRSessionNotFound if the session does not exist and
// ErrQRSessionConflict if it is not in the expected `from` state.
func (s *redisQRSessionStore) Transition(ctx context.Context, sessionID, from, to string, mutate func(*models.QRSession)) (models.QRSession, error) {
	log := logger.FromContext(ctx)
	key := qrSessionKeyPrefix + sessionID

	var result models.QRSession

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrQRSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get qr session: %w", err)
		}

		var session models.QRSession
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("unmarshal qr session: %w", err)
		}

		if session.State != from {
			return ErrQRSessionConflict
		}

		session.State = to
		if mutate != nil {
			mutate(&session)
		}

		updated, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal qr session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		result = session
		return nil
	}

	for i := 0; i < transitionRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrQRSessionNotFound) && !errors.Is(err, ErrQRSessionConflict) {
				log.Err(err).Str("func", "*redisQRSessionStore.Transition").
					Str("from", from).Str("to", to).Msg("error transitioning qr session")
			}
			return models.QRSession{}, err
		}
		return result, nil
	}

	// Every retry lost its watch; a concurrent transition owns the session.
	return models.QRSession{}, ErrQRSessionConflict
}

// Delete removes the session immediately. Deleting an unknown session is not
// an error: expiry may have beaten the caller to it.
func (s *redisQRSessionStore) Delete(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx)

	if err := s.client.Del(ctx, qrSessionKeyPrefix+sessionID).Err(); err != nil {
		log.Err(err).Str("func", "*redisQRSessionStore.Delete").Msg("error deleting qr session")
		return fmt.Errorf("delete qr session: %w", err)
	}

	return nil
}
