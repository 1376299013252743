package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) requestEmailVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.requestEmailVerification").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	if err := h.services.VerificationService.IssueEmailVerification(ctx, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyVerified):
			log.Err(err).Msg("email already verified")
		default:
			log.Err(err).Msg("unexpected error occurred issuing verification code")
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	if err := h.services.VerificationService.VerifyEmail(ctx, req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationCodeInvalid):
			log.Err(err).Msg("verification code rejected")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred verifying email")
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	// Unknown emails are not an error: the service stays silent and the
	// response is the same 202 either way. Only malformed input is rejected.
	if err := h.services.VerificationService.RequestPasswordReset(ctx, req.Email); err != nil {
		switch {
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred requesting password reset")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]string{"message": app.MsgResetCodeIssued}, http.StatusAccepted)
}

func (h *Handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.PasswordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	if err := h.services.VerificationService.ConfirmPasswordReset(ctx, req); err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationCodeInvalid):
			log.Err(err).Msg("reset code rejected")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred confirming password reset")
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
