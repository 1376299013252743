package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// subscriptionColumns is the canonical column order shared by every
// subscription query and by scanSubscription.
var subscriptionColumns = []string{
	"id", "user_id", "plan_id", "status", "current_period_start",
	"current_period_end", "cancel_at_period_end", "created_at", "updated_at",
}

// liveStatuses are the states that grant access and block a second
// subscription, mirrored by the partial unique index on the table.
var liveStatuses = []string{models.SubStatusTrialing, models.SubStatusActive}

// subscriptionRepository is the SQL-backed implementation of
// [SubscriptionRepository] against the "subscriptions" table.
type subscriptionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSubscriptionRepository constructs a [SubscriptionRepository] backed by
// the provided database connection and logger.
func NewSubscriptionRepository(db *DB, logger *logger.Logger) SubscriptionRepository {
	logger.Debug().Msg("creating subscription repository")
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a subscription row. The partial unique index on live
// subscriptions turns a concurrent double-subscribe into a unique violation,
// reported as [ErrActiveSubscriptionExists].
func (r *subscriptionRepository) Create(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	log := logger.FromContext(ctx)

	query, args, err := planBuilder.
		Insert(sub.TableName()).
		Columns(subscriptionColumns...).
		Values(sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.CurrentPeriodStart,
			sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd, sub.CreatedAt, sub.UpdatedAt).
		Suffix("RETURNING " + strings.Join(subscriptionColumns, ", ")).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*subscriptionRepository.Create").Msg("error building insert query")
		return models.Subscription{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	created, err := scanSubscription(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Subscription{}, ErrActiveSubscriptionExists
		}

		log.Err(err).Str("func", "*subscriptionRepository.Create").Msg("error inserting subscription")
		return models.Subscription{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// GetByID returns the subscription with the given ID.
func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (models.Subscription, error) {
	return r.getSubscriptionWhere(ctx, "GetByID", sq.Eq{"id": id})
}

// GetLiveByUserID returns the user's trialing or active subscription. The
// partial unique index guarantees at most one row can match.
func (r *subscriptionRepository) GetLiveByUserID(ctx context.Context, userID int64) (models.Subscription, error) {
	return r.getSubscriptionWhere(ctx, "GetLiveByUserID", sq.Eq{"user_id": userID, "status": liveStatuses})
}

// Update rewrites the mutable fields of an existing subscription row and
// returns the stored result.
func (r *subscriptionRepository) Update(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	log := logger.FromContext(ctx)

	query, args, err := planBuilder.
		Update(sub.TableName()).
		Set("plan_id", sub.PlanID).
		Set("status", sub.Status).
		Set("current_period_start", sub.CurrentPeriodStart).
		Set("current_period_end", sub.CurrentPeriodEnd).
		Set("cancel_at_period_end", sub.CancelAtPeriodEnd).
		Set("updated_at", sub.UpdatedAt).
		Where(sq.Eq{"id": sub.ID}).
		Suffix("RETURNING " + strings.Join(subscriptionColumns, ", ")).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*subscriptionRepository.Update").Msg("error building update query")
		return models.Subscription{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	updated, err := scanSubscription(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}

		log.Err(err).Str("func", "*subscriptionRepository.Update").Msg("error updating subscription")
		return models.Subscription{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return updated, nil
}

// ListDue returns live subscriptions whose current period has ended as of
// the given time, oldest period end first, capped at limit.
func (r *subscriptionRepository) ListDue(ctx context.Context, asOf time.Time, limit uint64) ([]models.Subscription, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListDueSubscriptionsQuery(asOf, limit)
	if err != nil {
		log.Err(err).Str("func", "*subscriptionRepository.ListDue").Msg("error building list query")
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*subscriptionRepository.ListDue").Msg("error executing list query")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			log.Err(err).Str("func", "*subscriptionRepository.ListDue").Msg("error scanning subscription row")
			return nil, errors.Join(ErrScanningRows, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*subscriptionRepository.ListDue").Msg("error iterating subscription rows")
		return nil, errors.Join(ErrScanningRows, err)
	}

	return subs, nil
}

func (r *subscriptionRepository) getSubscriptionWhere(ctx context.Context, op string, cond sq.Eq) (models.Subscription, error) {
	log := logger.FromContext(ctx)

	query, args, err := planBuilder.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(cond).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*subscriptionRepository."+op).Msg("error building select query")
		return models.Subscription{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}

		log.Err(err).Str("func", "*subscriptionRepository."+op).Msg("error scanning subscription")
		return models.Subscription{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return sub, nil
}

// buildListDueSubscriptionsQuery assembles the reconciler's due-subscription
// sweep. Kept separate from the repository method so the generated SQL is
// testable without a database.
func buildListDueSubscriptionsQuery(asOf time.Time, limit uint64) (string, []any, error) {
	return planBuilder.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"status": liveStatuses}).
		Where(sq.LtOrEq{"current_period_end": asOf}).
		OrderBy("current_period_end ASC").
		Limit(limit).
		ToSql()
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}
