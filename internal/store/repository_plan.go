package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// planColumns is the canonical column order shared by every plan query and
// by scanPlan.
var planColumns = []string{
	"id", "code", "name", "description", "price_cents",
	"currency", "interval", "trial_days", "active", "created_at",
}

// planBuilder is the squirrel statement builder used for all plan queries.
// Dollar placeholders work on both supported backends.
var planBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// planRepository is the SQL-backed implementation of [PlanRepository]
// against the "plans" table. Queries are built with squirrel because plan
// updates are partial: admins patch individual fields.
type planRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewPlanRepository constructs a [PlanRepository] backed by the provided
// database connection and logger.
func NewPlanRepository(db *DB, logger *logger.Logger) PlanRepository {
	logger.Debug().Msg("creating plan repository")
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a plan row and returns it as persisted.
func (r *planRepository) Create(ctx context.Context, plan models.Plan) (models.Plan, error) {
	log := logger.FromContext(ctx)

	query, args, err := planBuilder.
		Insert(plan.TableName()).
		Columns(planColumns...).
		Values(plan.ID, plan.Code, plan.Name, plan.Description, plan.PriceCents,
			plan.Currency, plan.Interval, plan.TrialDays, plan.Active, plan.CreatedAt).
		Suffix("RETURNING " + strings.Join(planColumns, ", ")).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*planRepository.Create").Msg("error building insert query")
		return models.Plan{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	created, err := scanPlan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Plan{}, ErrPlanCodeAlreadyExists
		}

		log.Err(err).Str("func", "*planRepository.Create").Msg("error inserting plan")
		return models.Plan{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// Update applies the non-nil fields of the patch and returns the updated
// row. An empty patch degenerates into a plain read.
func (r *planRepository) Update(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error) {
	log := logger.FromContext(ctx)

	if patch.Empty() {
		return r.GetByID(ctx, planID)
	}

	query, args, err := buildUpdatePlanQuery(planID, patch)
	if err != nil {
		log.Err(err).Str("func", "*planRepository.Update").Msg("error building update query")
		return models.Plan{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	updated, err := scanPlan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Plan{}, ErrPlanNotFound
		}

		log.Err(err).Str("func", "*planRepository.Update").Msg("error updating plan")
		return models.Plan{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return updated, nil
}

// GetByID returns the plan with the given ID.
func (r *planRepository) GetByID(ctx context.Context, planID string) (models.Plan, error) {
	return r.getPlanWhere(ctx, "GetByID", sq.Eq{"id": planID})
}

// GetByCode returns the plan with the given code.
func (r *planRepository) GetByCode(ctx context.Context, code string) (models.Plan, error) {
	return r.getPlanWhere(ctx, "GetByCode", sq.Eq{"code": code})
}

// List returns plans cheapest first, optionally restricted to active ones.
func (r *planRepository) List(ctx context.Context, onlyActive bool) ([]models.Plan, error) {
	log := logger.FromContext(ctx)

	builder := planBuilder.
		Select(planColumns...).
		From("plans").
		OrderBy("price_cents ASC", "code ASC")
	if onlyActive {
		builder = builder.Where(sq.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*planRepository.List").Msg("error building list query")
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*planRepository.List").Msg("error executing list query")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			log.Err(err).Str("func", "*planRepository.List").Msg("error scanning plan row")
			return nil, errors.Join(ErrScanningRows, err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*planRepository.List").Msg("error iterating plan rows")
		return nil, errors.Join(ErrScanningRows, err)
	}

	return plans, nil
}

func (r *planRepository) getPlanWhere(ctx context.Context, op string, cond sq.Eq) (models.Plan, error) {
	log := logger.FromContext(ctx)

	query, args, err := planBuilder.
		Select(planColumns...).
		From("plans").
		Where(cond).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*planRepository."+op).Msg("error building select query")
		return models.Plan{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Plan{}, ErrPlanNotFound
		}

		log.Err(err).Str("func", "*planRepository."+op).Msg("error scanning plan")
		return models.Plan{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return plan, nil
}

// buildUpdatePlanQuery assembles the dynamic UPDATE for a plan patch. Kept
// separate from the repository method so the generated SQL is testable
// without a database.
func buildUpdatePlanQuery(planID string, patch models.PlanPatch) (string, []any, error) {
	builder := planBuilder.Update("plans")

	if patch.Name != nil {
		builder = builder.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		builder = builder.Set("description", *patch.Description)
	}
	if patch.PriceCents != nil {
		builder = builder.Set("price_cents", *patch.PriceCents)
	}
	if patch.Currency != nil {
		builder = builder.Set("currency", *patch.Currency)
	}
	if patch.Interval != nil {
		builder = builder.Set("interval", *patch.Interval)
	}
	if patch.TrialDays != nil {
		builder = builder.Set("trial_days", *patch.TrialDays)
	}
	if patch.Active != nil {
		builder = builder.Set("active", *patch.Active)
	}

	return builder.
		Where(sq.Eq{"id": planID}).
		Suffix("RETURNING " + strings.Join(planColumns, ", ")).
		ToSql()
}

// rowScanner is the subset of *sql.Row and *sql.Rows the scan helpers need.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (models.Plan, error) {
	var plan models.Plan
	err := row.Scan(&plan.ID, &plan.Code, &plan.Name, &plan.Description, &plan.PriceCents,
		&plan.Currency, &plan.Interval, &plan.TrialDays, &plan.Active, &plan.CreatedAt)
	return plan, err
}
