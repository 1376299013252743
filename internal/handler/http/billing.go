// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	// Retired plans are visible to admins only. The route is public, so the
	// flag is honoured just when the optional bearer token names an admin.
	includeInactive := false
	if r.URL.Query().Get("include_inactive") == "true" {
		if userID, found := utils.GetUserIDFromContext(ctx); found {
			user, err := h.services.AuthService.GetUser(ctx, userID)
			if err != nil {
				log.Err(err).Msg("error loading account")
				writeError(w, err)
				return
			}
			includeInactive = user.IsAdmin()
		}
	}

	plans, err := h.services.BillingService.ListPlans(ctx, includeInactive)
	if err != nil {
		log.Err(err).Msg("unexpected error occurred listing plans")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, plans, http.StatusOK)
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	plan, err := h.services.BillingService.CreatePlan(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPlanCodeAlreadyExists):
			log.Err(err).Msg("plan code already exists")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred creating plan")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, plan, http.StatusCreated)
}

func (h *Handler) updatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var patch models.PlanPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	plan, err := h.services.BillingService.UpdatePlan(ctx, chi.URLParam(r, "planID"), patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPlanNotFound):
			log.Err(err).Msg("plan not found")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred updating plan")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, plan, http.StatusOK)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.subscribe").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	view, err := h.services.BillingService.Subscribe(ctx, userID, req.PlanCode)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPlanNotFound):
			log.Err(err).Msg("plan not found")
		case errors.Is(err, store.ErrActiveSubscriptionExists):
			log.Err(err).Msg("live subscription already exists")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred subscribing")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, view, http.StatusCreated)
}

func (h *Handler) mySubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionAction(w, r, "*Handler.mySubscription", h.services.BillingService.MySubscription)
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	immediate := r.URL.Query().Get("immediate") == "true"
	h.subscriptionAction(w, r, "*Handler.cancelSubscription", func(ctx context.Context, userID int64) (models.SubscriptionView, error) {
		return h.services.BillingService.Cancel(ctx, userID, immediate)
	})
}

func (h *Handler) resumeSubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionAction(w, r, "*Handler.resumeSubscription", h.services.BillingService.Resume)
}

func (h *Handler) changePlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	h.subscriptionAction(w, r, "*Handler.changePlan", func(ctx context.Context, userID int64) (models.SubscriptionView, error) {
		return h.services.BillingService.ChangePlan(ctx, userID, req.PlanCode)
	})
}

// subscriptionAction is the shared body of the /subscriptions/me handlers:
// resolve the authenticated user, apply the action to their live
// subscription and render the updated view.
func (h *Handler) subscriptionAction(w http.ResponseWriter, r *http.Request, funcName string, action func(context.Context, int64) (models.SubscriptionView, error)) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", funcName).Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	view, err := action(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSubscriptionNotFound):
			log.Debug().Err(err).Msg("no live subscription")
		case errors.Is(err, store.ErrPlanNotFound):
			log.Err(err).Msg("plan not found")
		default:
			log.Err(err).Msg("unexpected error occurred on subscription")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, view, http.StatusOK)
}
