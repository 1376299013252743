// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"net/http"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/utils"
)

// admin gates plan management routes. It runs after auth, loads the
// authenticated account and rejects with HTTP 403 Forbidden unless the
// account holds the admin role.
func (h *Handler) admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromRequest(r)

		userID, found := utils.GetUserIDFromContext(ctx)
		if !found {
			log.Error().Str("func", "*Handler.admin").Msg(app.MsgNoUserIDProvided)
			writeAPIError(w, http.StatusUnauthorized, "unauthorized", app.MsgNoUserIDProvided)
			return
		}

		user, err := h.services.AuthService.GetUser(ctx, userID)
		if err != nil {
			log.Err(err).Str("func", "*Handler.admin").Msg("error loading account")
			writeError(w, err)
			return
		}

		if !user.IsAdmin() {
			log.Warn().Int64("userID", userID).Msg("admin route rejected")
			writeAPIError(w, http.StatusForbidden, "forbidden", app.MsgAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
