// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/galionhq/nexus/internal/logger"
)

const twoFATicketKeyPrefix = "twofa:ticket:"

// redisTwoFATicketStore keeps short-lived 2FA login tickets in Redis. Only
// the HMAC of the ticket is used as the key, so a Redis dump never exposes
// usable tickets.
type redisTwoFATicketStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewTwoFATicketStore constructs a [TwoFATicketStore] backed by Redis.
func NewTwoFATicketStore(client *redis.Client, logger *logger.Logger) TwoFATicketStore {
	logger.Debug().Msg("creating twofa ticket store")
	return &redisTwoFATicketStore{
		client: client,
		logger: logger,
	}
}

// Save stores the ticket hash mapped to the user it belongs to for ttl.
func (s *redisTwoFATicketStore) Save(ctx context.Context, ticketHash string, userID int64, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	err := s.client.Set(ctx, twoFATicketKeyPrefix+ticketHash, strconv.FormatInt(userID, 10), ttl).Err()
	if err != nil {
		log.Err(err).Str("func", "*redisTwoFATicketStore.Save").Msg("error saving twofa ticket")
		return fmt.Errorf("save twofa ticket: %w", err)
	}

	return nil
}

// Lookup returns the user the ticket was issued for without consuming it,
// so a mistyped TOTP code does not force the user back to the password step.
func (s *redisTwoFATicketStore) Lookup(ctx context.Context, ticketHash string) (int64, error) {
	log := logger.FromContext(ctx)

	value, err := s.client.Get(ctx, twoFATicketKeyPrefix+ticketHash).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTwoFATicketNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*redisTwoFATicketStore.Lookup").Msg("error reading twofa ticket")
		return 0, fmt.Errorf("lookup twofa ticket: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Err(err).Str("func", "*redisTwoFATicketStore.Lookup").Msg("corrupt twofa ticket value")
		return 0, fmt.Errorf("parse twofa ticket value: %w", err)
	}

	return userID, nil
}

// Consume atomically removes the ticket and returns the user it belonged to.
// GETDEL guarantees a single winner when the same ticket is raced.
func (s *redisTwoFATicketStore) Consume(ctx context.Context, ticketHash string) (int64, error) {
	log := logger.FromContext(ctx)

	value, err := s.client.GetDel(ctx, twoFATicketKeyPrefix+ticketHash).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTwoFATicketNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*redisTwoFATicketStore.Consume").Msg("error consuming twofa ticket")
		return 0, fmt.Errorf("consume twofa ticket: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Err(err).Str("func", "*redisTwoFATicketStore.Consume").Msg("corrupt twofa ticket value")
		return 0, fmt.Errorf("parse twofa ticket value: %w", err)
	}

	return userID, nil
}
