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
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) qrCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.QRCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	// The self-reported device name is what the approving user sees; the
	// User-Agent stands in when the client does not send one.
	device := deviceFromRequest(r)
	if req.DeviceName != "" {
		device.UserAgent = req.DeviceName
	}

	created, err := h.services.QRLoginService.Create(ctx, device)
	if err != nil {
		log.Err(err).Msg("unexpected error occurred creating qr session")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) qrPoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	sessionID := chi.URLParam(r, "sessionID")
	secret := r.URL.Query().Get("secret")

	result, err := h.services.QRLoginService.Poll(ctx, sessionID, secret)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrQRSessionNotFound):
			log.Debug().Err(err).Msg("qr session gone")
		default:
			log.Err(err).Msg("unexpected error occurred polling qr session")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) qrClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.qrClaim").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	var req models.QRClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	info, err := h.services.QRLoginService.Claim(ctx, userID, chi.URLParam(r, "sessionID"), req.ScanToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQRScanTokenInvalid):
			log.Err(err).Msg("qr scan token rejected")
		case errors.Is(err, store.ErrQRSessionConflict):
			log.Err(err).Msg("qr session already claimed")
		case errors.Is(err, store.ErrQRSessionNotFound):
			log.Debug().Err(err).Msg("qr session gone")
		default:
			log.Err(err).Msg("unexpected error occurred claiming qr session")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, info, http.StatusOK)
}

func (h *Handler) qrApprove(w http.ResponseWriter, r *http.Request) {
	h.resolveQRSession(w, r, "*Handler.qrApprove", h.services.QRLoginService.Approve)
}

func (h *Handler) qrDeny(w http.ResponseWriter, r *http.Request) {
	h.resolveQRSession(w, r, "*Handler.qrDeny", h.services.QRLoginService.Deny)
}

// resolveQRSession is the shared body of approve and deny: both take the
// claimed session of the authenticated user and finish with no content.
func (h *Handler) resolveQRSession(w http.ResponseWriter, r *http.Request, funcName string, resolve func(context.Context, int64, string) error) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", funcName).Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	if err := resolve(ctx, userID, chi.URLParam(r, "sessionID")); err != nil {
		switch {
		case errors.Is(err, service.ErrNotSessionOwner):
			log.Warn().Err(err).Msg("qr session resolution by non-owner")
		case errors.Is(err, store.ErrQRSessionConflict):
			log.Err(err).Msg("qr session in wrong state")
		case errors.Is(err, store.ErrQRSessionNotFound):
			log.Debug().Err(err).Msg("qr session gone")
		default:
			log.Err(err).Msg("unexpected error occurred resolving qr session")
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
