package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	user, err := h.services.AuthService.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailAlreadyExists):
			log.Err(err).Msg("email already exists")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred during registration")
		}
		writeError(w, err)
		return
	}

	// The verification code is best effort: the account exists either way
	// and the code can be re-requested.
	if err := h.services.VerificationService.IssueEmailVerification(ctx, user.UserID); err != nil {
		log.Err(err).Msg("error issuing email verification code")
	}

	utils.WriteJSON(w, user, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	resp, err := h.services.AuthService.Login(ctx, req, deviceFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Err(err).Msg(app.MsgInvalidCredentials)
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred during login")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) loginTwoFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.TwoFALoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	pair, err := h.services.AuthService.LoginTwoFA(ctx, req, deviceFromRequest(r))
	if err != nil {
		// A wrong second factor is an authentication failure on this route,
		// not a bad request: the ticket survives for another attempt.
		if errors.Is(err, service.ErrInvalidTwoFACode) {
			log.Err(err).Msg("second factor rejected")
			writeAPIError(w, http.StatusUnauthorized, "invalid_twofa_code", err.Error())
			return
		}

		switch {
		case errors.Is(err, service.ErrTwoFATicketInvalid):
			log.Err(err).Msg("twofa ticket rejected")
		case validators.IsValidationError(err):
			log.Err(err).Msg(app.MsgInvalidDataProvided)
		default:
			log.Err(err).Msg("unexpected error occurred during two-factor login")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, pair, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	pair, err := h.services.AuthService.Refresh(ctx, req.RefreshToken, deviceFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenReused):
			log.Warn().Err(err).Msg("refresh token reuse detected")
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			log.Err(err).Msg("refresh token rejected")
		default:
			log.Err(err).Msg("unexpected error occurred during token refresh")
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, pair, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidRequestBody)
		writeAPIError(w, http.StatusBadRequest, "invalid_request", app.MsgInvalidRequestBody)
		return
	}

	if err := h.services.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Err(err).Msg("unexpected error occurred during logout")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.me").Msg(app.MsgNoUserIDProvided)
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
		return
	}

	user, err := h.services.AuthService.GetUser(ctx, userID)
	if err != nil {
		log.Err(err).Msg("error loading account")
		writeError(w, err)
		return
	}

	resp := models.MeResponse{User: user}

	// Accounts without a live subscription are a normal state, not an error.
	sub, err := h.services.BillingService.MySubscription(ctx, userID)
	switch {
	case err == nil:
		resp.Subscription = &sub
	case errors.Is(err, store.ErrSubscriptionNotFound):
	default:
		log.Err(err).Msg("error loading subscription")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

// deviceFromRequest describes the calling device for session records and the
// QR approval screen. The client IP honours reverse-proxy headers before
// falling back to the socket address.
func deviceFromRequest(r *http.Request) models.DeviceInfo {
	return models.DeviceInfo{
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The first entry is the originating client; the rest are proxies.
		if i := strings.Index(forwarded, ","); i >= 0 {
			forwarded = forwarded[:i]
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
