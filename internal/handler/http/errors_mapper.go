package http

import (
	"errors"
	"net/http"

	"github.com/galionhq/nexus/internal/app"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/internal/validators"
	"github.com/galionhq/nexus/models"
)

// apiFailure pairs an HTTP status with the stable snake_case error code
// written into the response body for one sentinel error.
type apiFailure struct {
	status int
	code   string
}

var errorFailureMap = map[error]apiFailure{
	service.ErrInvalidDataProvided:     {http.StatusBadRequest, "invalid_request"},
	service.ErrInvalidCredentials:      {http.StatusUnauthorized, "invalid_credentials"},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, "invalid_token"},
	service.ErrRefreshTokenInvalid:     {http.StatusUnauthorized, "invalid_refresh_token"},
	service.ErrRefreshTokenReused:      {http.StatusUnauthorized, "refresh_token_reused"},
	service.ErrTwoFATicketInvalid:      {http.StatusUnauthorized, "invalid_twofa_ticket"},
	service.ErrInvalidTwoFACode:        {http.StatusBadRequest, "invalid_twofa_code"},
	service.ErrTwoFAAlreadyOn:          {http.StatusConflict, "twofa_already_enabled"},
	service.ErrTwoFANotEnabled:         {http.StatusBadRequest, "twofa_not_enabled"},
	service.ErrNotSessionOwner:         {http.StatusForbidden, "not_session_owner"},
	service.ErrVerificationCodeInvalid: {http.StatusBadRequest, "invalid_verification_code"},
	service.ErrEmailAlreadyVerified:    {http.StatusConflict, "email_already_verified"},

	// A wrong scan token answers exactly like a missing session so the
	// endpoint cannot be used to probe which session IDs exist.
	service.ErrQRScanTokenInvalid: {http.StatusNotFound, "qr_session_not_found"},

	store.ErrEmailAlreadyExists:       {http.StatusConflict, "email_already_exists"},
	store.ErrNoUserWasFound:           {http.StatusNotFound, "user_not_found"},
	store.ErrPlanNotFound:             {http.StatusNotFound, "plan_not_found"},
	store.ErrPlanCodeAlreadyExists:    {http.StatusConflict, "plan_code_already_exists"},
	store.ErrSubscriptionNotFound:     {http.StatusNotFound, "subscription_not_found"},
	store.ErrActiveSubscriptionExists: {http.StatusConflict, "subscription_already_exists"},
	store.ErrQRSessionNotFound:        {http.StatusNotFound, "qr_session_not_found"},
	store.ErrQRSessionConflict:        {http.StatusConflict, "qr_session_conflict"},
}

// failureFromError resolves err to the status and error code of the API
// response. Validation failures collapse to one generic 400 code; anything
// unmapped is a 500.
func failureFromError(err error) apiFailure {
	if validators.IsValidationError(err) {
		return apiFailure{http.StatusBadRequest, "invalid_request"}
	}

	for target, failure := range errorFailureMap {
		if errors.Is(err, target) {
			return failure
		}
	}

	return apiFailure{http.StatusInternalServerError, "internal_error"}
}

// writeError renders err as the uniform JSON error body
// {"error": code, "detail": text}. The detail of an unmapped error is
// replaced with a generic message: wrapped driver errors never reach the
// client.
func writeError(w http.ResponseWriter, err error) {
	failure := failureFromError(err)

	detail := err.Error()
	if failure.status == http.StatusInternalServerError {
		detail = app.MsgInternalServerError
	}

	utils.WriteJSON(w, models.APIError{Error: failure.code, Detail: detail}, failure.status)
}

// writeAPIError renders an explicit status/code/detail triple, for failures
// that do not originate in a service call (bad JSON, missing context values).
func writeAPIError(w http.ResponseWriter, status int, code, detail string) {
	utils.WriteJSON(w, models.APIError{Error: code, Detail: detail}, status)
}
