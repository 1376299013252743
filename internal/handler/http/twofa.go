// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) twoFASetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.twoFASetup").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	setup, err := h.services.TwoFAService.Setup(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFAAlreadyOn):
			log.Err(err).Msg("twofa already enabled")
		default:
			log.Err(err).Msg("unexpected error occurred during twofa setup")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, setup, http.StatusOK)
}

func (h *Handler) twoFAActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.twoFAActivate").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	var req models.CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	backupCodes, err := h.services.TwoFAService.Activate(ctx, userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTwoFACode):
			log.Err(err).Msg("activation code rejected")
		case errors.Is(err, service.ErrTwoFAAlreadyOn):
			log.Err(err).Msg("twofa already enabled")
		default:
			log.Err(err).Msg("unexpected error occurred during twofa activation")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.ActivateResponse{Enabled: true, BackupCodes: backupCodes}, http.StatusOK)
}

func (h *Handler) twoFADisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.twoFADisable").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	var req models.TwoFADisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	if err := h.services.TwoFAService.Disable(ctx, userID, req.Password, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Err(err).Msg("password rejected")
		case errors.Is(err, service.ErrInvalidTwoFACode):
			log.Err(err).Msg("second factor rejected")
		case errors.Is(err, service.ErrTwoFANotEnabled):
			log.Err(err).Msg("twofa is not enabled")
		default:
			log.Err(err).Msg("unexpected error occurred during twofa disable")
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) twoFAStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.twoFAStatus").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	status, err := h.services.TwoFAService.Status(ctx, userID)
	if err != nil {
		log.Err(err).Msg("error loading twofa status")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) twoFARegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.twoFARegenerateBackupCodes").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	var req models.CodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	codes, err := h.services.TwoFAService.RegenerateBackupCodes(ctx, userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTwoFACode):
			log.Err(err).Msg("second factor rejected")
		case errors.Is(err, service.ErrTwoFANotEnabled):
			log.Err(err).Msg("twofa is not enabled")
		default:
			log.Err(err).Msg("unexpected error occurred regenerating backup codes")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.BackupCodesResponse{BackupCodes: codes}, http.StatusOK)
}
