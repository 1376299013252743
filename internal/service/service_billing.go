// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/metrics"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

// reconcileBatchSize caps how many due subscriptions one reconcile query
// pulls. The pass loops until the backlog drains, so the cap bounds memory,
// not throughput.
const reconcileBatchSize = 100

// billingService implements BillingService. All transitions are pure state
// changes; there is no payment provider behind any of them.
type billingService struct {
	plans     store.PlanRepository
	subs      store.SubscriptionRepository
	uuidGen   *utils.UUIDGenerator
	validator validators.Validator

	logger *logger.Logger
}

// NewBillingService constructs a BillingService.
func NewBillingService(plans store.PlanRepository, subs store.SubscriptionRepository, logger *logger.Logger) BillingService {
	return &billingService{
		plans:     plans,
		subs:      subs,
		uuidGen:   utils.NewUUIDGenerator(),
		validator: validators.NewBillingValidator(),
		logger:    logger,
	}
}

func (b *billingService) ListPlans(ctx context.Context, includeInactive bool) ([]models.Plan, error) {
	log := logger.FromContext(ctx)

	plans, err := b.plans.List(ctx, !includeInactive)
	if err != nil {
		log.Err(err).Str("func", "*billingService.ListPlans").Msg("error listing plans")
		return nil, fmt.Errorf("error listing plans: %w", err)
	}

	return plans, nil
}

func (b *billingService) CreatePlan(ctx context.Context, req models.PlanRequest) (models.Plan, error) {
	log := logger.FromContext(ctx)

	if err := b.validator.Validate(ctx, req); err != nil {
		return models.Plan{}, fmt.Errorf("error during plan data validation: %w", err)
	}

	// New plans are listed unless the request says otherwise.
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	plan := models.Plan{
		ID:          b.uuidGen.Generate(),
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    strings.ToUpper(req.Currency),
		Interval:    req.Interval,
		TrialDays:   req.TrialDays,
		Active:      active,
		CreatedAt:   time.Now(),
	}

	created, err := b.plans.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, store.ErrPlanCodeAlreadyExists) {
			return models.Plan{}, err
		}

		log.Err(err).Str("func", "*billingService.CreatePlan").Msg("error creating plan")
		return models.Plan{}, fmt.Errorf("error creating plan: %w", err)
	}

	return created, nil
}

func (b *billingService) UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error) {
	log := logger.FromContext(ctx)

	if err := b.validator.Validate(ctx, patch); err != nil {
		return models.Plan{}, fmt.Errorf("error during plan patch validation: %w", err)
	}

	if patch.Currency != nil {
		upper := strings.ToUpper(*patch.Currency)
		patch.Currency = &upper
	}

	updated, err := b.plans.Update(ctx, planID, patch)
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return models.Plan{}, err
		}

		log.Err(err).Str("func", "*billingService.UpdatePlan").Msg("error updating plan")
		return models.Plan{}, fmt.Errorf("error updating plan: %w", err)
	}

	return updated, nil
}

// Subscribe opens a subscription to an active plan. Plans with trial days
// start in the trialing state; the store enforces one live subscription per
// user.
func (b *billingService) Subscribe(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error) {
	log := logger.FromContext(ctx)

	if err := b.validator.Validate(ctx, models.SubscribeRequest{PlanCode: planCode}); err != nil {
		return models.SubscriptionView{}, fmt.Errorf("error during subscribe data validation: %w", err)
	}

	plan, err := b.plans.GetByCode(ctx, strings.TrimSpace(planCode))
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return models.SubscriptionView{}, err
		}

		log.Err(err).Str("func", "*billingService.Subscribe").Msg("error loading plan")
		return models.SubscriptionView{}, fmt.Errorf("error loading plan: %w", err)
	}
	if !plan.Active {
		// Retired plans stay valid for existing subscribers but are
		// invisible to new ones.
		return models.SubscriptionView{}, store.ErrPlanNotFound
	}

	now := time.Now()
	start, end := plan.PeriodFrom(now)

	status := models.SubStatusActive
	if plan.TrialDays > 0 {
		status = models.SubStatusTrialing
	}

	sub := models.Subscription{
		ID:                 b.uuidGen.Generate(),
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             status,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := b.subs.Create(ctx, sub)
	if err != nil {
		if errors.Is(err, store.ErrActiveSubscriptionExists) {
			return models.SubscriptionView{}, err
		}

		log.Err(err).Str("func", "*billingService.Subscribe").Msg("error creating subscription")
		return models.SubscriptionView{}, fmt.Errorf("error creating subscription: %w", err)
	}

	return models.SubscriptionView{Subscription: created, Plan: plan}, nil
}

func (b *billingService) MySubscription(ctx context.Context, userID int64) (models.SubscriptionView, error) {
	return b.liveView(ctx, userID, "*billingService.MySubscription")
}

// Cancel flags the live subscription to lapse when its period ends. Access
// continues until then. Canceling twice is a no-op. With immediate set the
// subscription is put into the canceled state right away; the row and its
// period are kept for history.
func (b *billingService) Cancel(ctx context.Context, userID int64, immediate bool) (models.SubscriptionView, error) {
	if !immediate {
		return b.setCancelFlag(ctx, userID, true, "*billingService.Cancel")
	}

	log := logger.FromContext(ctx)

	sub, err := b.live(ctx, userID, "*billingService.Cancel")
	if err != nil {
		return models.SubscriptionView{}, err
	}

	sub.Status = models.SubStatusCanceled
	sub.CancelAtPeriodEnd = true
	sub.UpdatedAt = time.Now()

	updated, err := b.subs.Update(ctx, sub)
	if err != nil {
		log.Err(err).Str("func", "*billingService.Cancel").Msg("error updating subscription")
		return models.SubscriptionView{}, fmt.Errorf("error updating subscription: %w", err)
	}

	plan, err := b.plans.GetByID(ctx, updated.PlanID)
	if err != nil {
		log.Err(err).Str("func", "*billingService.Cancel").Msg("error loading plan")
		return models.SubscriptionView{}, fmt.Errorf("error loading plan: %w", err)
	}

	return models.SubscriptionView{Subscription: updated, Plan: plan}, nil
}

// Resume clears a pending cancellation. Resuming a subscription that was
// not canceling is a no-op.
func (b *billingService) Resume(ctx context.Context, userID int64) (models.SubscriptionView, error) {
	return b.setCancelFlag(ctx, userID, false, "*billingService.Resume")
}

// ChangePlan switches the live subscription to another active plan,
// starting a fresh period immediately. A running trial becomes a regular
// active period — switching plans is a commitment, not a second trial — and
// any pending cancellation is cleared.
func (b *billingService) ChangePlan(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error) {
	log := logger.FromContext(ctx)

	sub, err := b.live(ctx, userID, "*billingService.ChangePlan")
	if err != nil {
		return models.SubscriptionView{}, err
	}

	plan, err := b.plans.GetByCode(ctx, strings.TrimSpace(planCode))
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return models.SubscriptionView{}, err
		}

		log.Err(err).Str("func", "*billingService.ChangePlan").Msg("error loading plan")
		return models.SubscriptionView{}, fmt.Errorf("error loading plan: %w", err)
	}
	if !plan.Active {
		return models.SubscriptionView{}, store.ErrPlanNotFound
	}

	if plan.ID == sub.PlanID {
		return models.SubscriptionView{Subscription: sub, Plan: plan}, nil
	}

	now := time.Now()
	sub.PlanID = plan.ID
	sub.Status = models.SubStatusActive
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = plan.NextRenewal(now)
	sub.CancelAtPeriodEnd = false
	sub.UpdatedAt = now

	updated, err := b.subs.Update(ctx, sub)
	if err != nil {
		log.Err(err).Str("func", "*billingService.ChangePlan").Msg("error updating subscription")
		return models.SubscriptionView{}, fmt.Errorf("error updating subscription: %w", err)
	}

	return models.SubscriptionView{Subscription: updated, Plan: plan}, nil
}

// Reconcile advances every subscription whose period ended as of now. It
// drains the backlog in batches; a subscription that fails to advance is
// left for the next pass.
func (b *billingService) Reconcile(ctx context.Context, now time.Time) (models.ReconcileStats, error) {
	log := logger.FromContext(ctx)

	var stats models.ReconcileStats
	for {
		due, err := b.subs.ListDue(ctx, now, reconcileBatchSize)
		if err != nil {
			log.Err(err).Str("func", "*billingService.Reconcile").Msg("error listing due subscriptions")
			return stats, fmt.Errorf("error listing due subscriptions: %w", err)
		}
		if len(due) == 0 {
			return stats, nil
		}

		progressed := false
		for _, sub := range due {
			if err := b.advance(ctx, sub, now, &stats); err != nil {
				log.Err(err).Str("func", "*billingService.Reconcile").
					Str("subscription_id", sub.ID).Msg("error advancing subscription")
				continue
			}
			progressed = true
		}

		// Nothing in the batch advanced: bail out rather than spin on the
		// same rows. The next scheduled pass retries.
		if !progressed {
			return stats, nil
		}
		if len(due) < reconcileBatchSize {
			return stats, nil
		}
	}
}

// advance applies one lifecycle transition to a due subscription and counts
// it in stats.
func (b *billingService) advance(ctx context.Context, sub models.Subscription, now time.Time, stats *models.ReconcileStats) error {
	plan, err := b.plans.GetByID(ctx, sub.PlanID)
	if err != nil && !errors.Is(err, store.ErrPlanNotFound) {
		return fmt.Errorf("error loading plan: %w", err)
	}

	var outcome string
	switch {
	case errors.Is(err, store.ErrPlanNotFound):
		// Orphaned subscription; nothing to renew against.
		sub.Status = models.SubStatusExpired
		outcome = "expired"

	case sub.CancelAtPeriodEnd:
		sub.Status = models.SubStatusCanceled
		outcome = "canceled"

	case sub.Status == models.SubStatusTrialing:
		// Trial ended without a cancellation: convert to a paid period
		// starting exactly where the trial stopped.
		sub.Status = models.SubStatusActive
		sub.CurrentPeriodStart = sub.CurrentPeriodEnd
		sub.CurrentPeriodEnd = plan.NextRenewal(sub.CurrentPeriodEnd)
		outcome = "converted"

	default:
		sub.CurrentPeriodStart = sub.CurrentPeriodEnd
		sub.CurrentPeriodEnd = plan.NextRenewal(sub.CurrentPeriodEnd)
		outcome = "renewed"
	}

	sub.UpdatedAt = now
	if _, err := b.subs.Update(ctx, sub); err != nil {
		return fmt.Errorf("error updating subscription: %w", err)
	}

	switch outcome {
	case "renewed":
		stats.Renewed++
	case "converted":
		stats.Converted++
	case "canceled":
		stats.Canceled++
	case "expired":
		stats.Expired++
	}
	metrics.IncSubscriptionRenewal(outcome)

	return nil
}

// live loads the user's live subscription.
func (b *billingService) live(ctx context.Context, userID int64, funcName string) (models.Subscription, error) {
	log := logger.FromContext(ctx)

	sub, err := b.subs.GetLiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return models.Subscription{}, err
		}

		log.Err(err).Str("func", funcName).Msg("error loading subscription")
		return models.Subscription{}, fmt.Errorf("error loading subscription: %w", err)
	}

	return sub, nil
}

// liveView loads the user's live subscription joined with its plan.
func (b *billingService) liveView(ctx context.Context, userID int64, funcName string) (models.SubscriptionView, error) {
	log := logger.FromContext(ctx)

	sub, err := b.live(ctx, userID, funcName)
	if err != nil {
		return models.SubscriptionView{}, err
	}

	plan, err := b.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error loading plan")
		return models.SubscriptionView{}, fmt.Errorf("error loading plan: %w", err)
	}

	return models.SubscriptionView{Subscription: sub, Plan: plan}, nil
}

// setCancelFlag loads the live subscription and writes the cancel flag when
// it differs.
func (b *billingService) setCancelFlag(ctx context.Context, userID int64, cancel bool, funcName string) (models.SubscriptionView, error) {
	log := logger.FromContext(ctx)

	sub, err := b.live(ctx, userID, funcName)
	if err != nil {
		return models.SubscriptionView{}, err
	}

	if sub.CancelAtPeriodEnd != cancel {
		sub.CancelAtPeriodEnd = cancel
		sub.UpdatedAt = time.Now()

		sub, err = b.subs.Update(ctx, sub)
		if err != nil {
			log.Err(err).Str("func", funcName).Msg("error updating subscription")
			return models.SubscriptionView{}, fmt.Errorf("error updating subscription: %w", err)
		}
	}

	plan, err := b.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error loading plan")
		return models.SubscriptionView{}, fmt.Errorf("error loading plan: %w", err)
	}

	return models.SubscriptionView{Subscription: sub, Plan: plan}, nil
}
