package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the HTTP implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL and
// request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests. The session log is labelled with the token's subject; the claim
// is read unverified, which is fine client-side.
func (h *httpServerAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)

	if h.token == "" {
		h.logger.Debug().Msg("session token cleared")
		return
	}
	if userID, err := utils.ParseUserIDFromJWT(h.token); err == nil {
		h.logger.Debug().Int64("user_id", userID).Msg("session token set")
	}
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the sign-up form to
// POST /api/v1/auth/register and returns the created profile. No token is
// stored: the account must sign in (and typically verify its email) first.
func (h *httpServerAdapter) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var user models.User

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&user).
		Post("/api/v1/auth/register")
	if err != nil {
		return models.User{}, fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login implements [ServerAdapter]. It POSTs the credentials to
// POST /api/v1/auth/login. When the response carries a completed pair the
// access token is stored via SetToken; when the account is 2FA-protected the
// response instead carries the ticket for LoginTwoFA and no token is stored.
func (h *httpServerAdapter) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var result models.LoginResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/api/v1/auth/login")
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginResponse{}, err
	}

	if result.TokenPair != nil {
		h.SetToken(result.AccessToken)
	}

	return result, nil
}

// LoginTwoFA implements [ServerAdapter]. It exchanges the ticket and code at
// POST /api/v1/auth/login/2fa and stores the minted access token.
func (h *httpServerAdapter) LoginTwoFA(ctx context.Context, ticket, code string) (models.TokenPair, error) {
	var pair models.TokenPair

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TwoFALoginRequest{Ticket: ticket, Code: code}).
		SetResult(&pair).
		Post("/api/v1/auth/login/2fa")
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("login 2fa request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	h.SetToken(pair.AccessToken)
	return pair, nil
}

// Refresh implements [ServerAdapter]. It rotates refreshToken at
// POST /api/v1/auth/refresh and stores the new access token. The previous
// refresh token is dead after this call whether it succeeds or not.
func (h *httpServerAdapter) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.RefreshRequest{RefreshToken: refreshToken}).
		SetResult(&pair).
		Post("/api/v1/auth/refresh")
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	h.SetToken(pair.AccessToken)
	return pair, nil
}

// Logout implements [ServerAdapter]. It revokes the session at
// POST /api/v1/auth/logout and clears the stored access token on success.
func (h *httpServerAdapter) Logout(ctx context.Context, refreshToken string) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.RefreshRequest{RefreshToken: refreshToken}).
		Post("/api/v1/auth/logout")
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	h.SetToken("")
	return nil
}

// Me implements [ServerAdapter]. It GETs /api/v1/users/me.
func (h *httpServerAdapter) Me(ctx context.Context) (models.MeResponse, error) {
	var me models.MeResponse

	resp, err := h.authedRequest(ctx).
		SetResult(&me).
		Get("/api/v1/users/me")
	if err != nil {
		return models.MeResponse{}, fmt.Errorf("me request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.MeResponse{}, err
	}

	return me, nil
}

// TwoFAStatus implements [ServerAdapter]. It GETs /api/v1/2fa.
func (h *httpServerAdapter) TwoFAStatus(ctx context.Context) (models.TwoFAStatus, error) {
	var status models.TwoFAStatus

	resp, err := h.authedRequest(ctx).
		SetResult(&status).
		Get("/api/v1/2fa")
	if err != nil {
		return models.TwoFAStatus{}, fmt.Errorf("2fa status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TwoFAStatus{}, err
	}

	return status, nil
}

// TwoFASetup implements [ServerAdapter]. It POSTs to /api/v1/2fa/setup and
// returns the freshly generated secret. The response is the only time the
// plaintext secret crosses the wire.
func (h *httpServerAdapter) TwoFASetup(ctx context.Context) (models.TwoFASetup, error) {
	var setup models.TwoFASetup

	resp, err := h.authedRequest(ctx).
		SetResult(&setup).
		Post("/api/v1/2fa/setup")
	if err != nil {
		return models.TwoFASetup{}, fmt.Errorf("2fa setup request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TwoFASetup{}, err
	}

	return setup, nil
}

// TwoFAActivate implements [ServerAdapter]. It POSTs the proving code to
// /api/v1/2fa/activate and returns the initial backup code set.
func (h *httpServerAdapter) TwoFAActivate(ctx context.Context, code string) (models.ActivateResponse, error) {
	var activated models.ActivateResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.CodeRequest{Code: code}).
		SetResult(&activated).
		Post("/api/v1/2fa/activate")
	if err != nil {
		return models.ActivateResponse{}, fmt.Errorf("2fa activate request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ActivateResponse{}, err
	}

	return activated, nil
}

// QRCreate implements [ServerAdapter]. It opens a sign-in session at
// POST /api/v1/auth/qr. The call is unauthenticated: it runs on the device
// that has no session yet.
func (h *httpServerAdapter) QRCreate(ctx context.Context, deviceName string) (models.QRCreated, error) {
	var created models.QRCreated

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.QRCreateRequest{DeviceName: deviceName}).
		SetResult(&created).
		Post("/api/v1/auth/qr")
	if err != nil {
		return models.QRCreated{}, fmt.Errorf("qr create request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.QRCreated{}, err
	}

	return created, nil
}

// QRPoll implements [ServerAdapter]. It GETs /api/v1/auth/qr/{sessionID}
// authenticated by the poll secret. On the poll that observes approval the
// minted access token is stored via SetToken.
func (h *httpServerAdapter) QRPoll(ctx context.Context, sessionID, secret string) (models.QRPollResult, error) {
	var result models.QRPollResult

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("secret", secret).
		SetResult(&result).
		Get("/api/v1/auth/qr/" + url.PathEscape(sessionID))
	if err != nil {
		return models.QRPollResult{}, fmt.Errorf("qr poll request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.QRPollResult{}, err
	}

	if result.Tokens != nil {
		h.SetToken(result.Tokens.AccessToken)
	}

	return result, nil
}

// QRClaim implements [ServerAdapter]. It presents the scanned token at
// POST /api/v1/auth/qr/{sessionID}/claim and returns the initiating device's
// description for the approval prompt.
func (h *httpServerAdapter) QRClaim(ctx context.Context, sessionID, scanToken string) (models.QRSessionInfo, error) {
	var info models.QRSessionInfo

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.QRClaimRequest{ScanToken: scanToken}).
		SetResult(&info).
		Post("/api/v1/auth/qr/" + url.PathEscape(sessionID) + "/claim")
	if err != nil {
		return models.QRSessionInfo{}, fmt.Errorf("qr claim request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.QRSessionInfo{}, err
	}

	return info, nil
}

// QRApprove implements [ServerAdapter].
func (h *httpServerAdapter) QRApprove(ctx context.Context, sessionID string) error {
	return h.resolveQR(ctx, sessionID, "approve")
}

// QRDeny implements [ServerAdapter].
func (h *httpServerAdapter) QRDeny(ctx context.Context, sessionID string) error {
	return h.resolveQR(ctx, sessionID, "deny")
}

// resolveQR is the shared body of QRApprove and QRDeny: both POST to the
// claimed session and expect no content back.
func (h *httpServerAdapter) resolveQR(ctx context.Context, sessionID, action string) error {
	resp, err := h.authedRequest(ctx).
		Post("/api/v1/auth/qr/" + url.PathEscape(sessionID) + "/" + action)
	if err != nil {
		return fmt.Errorf("qr %s request: %w", action, err)
	}

	return mapHTTPError(resp)
}

// ListPlans implements [ServerAdapter]. It GETs /api/v1/plans and decodes the
// response into a [models.Plan] slice.
func (h *httpServerAdapter) ListPlans(ctx context.Context) ([]models.Plan, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/v1/plans")
	if err != nil {
		return nil, fmt.Errorf("list plans request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var plans []models.Plan
	if err = json.Unmarshal(resp.Body(), &plans); err != nil {
		return nil, fmt.Errorf("decode plans response: %w", err)
	}

	return plans, nil
}

// Subscribe implements [ServerAdapter]. It POSTs the plan code to
// POST /api/v1/subscriptions. Returns [ErrConflict] (wrapped) when a live
// subscription already exists.
func (h *httpServerAdapter) Subscribe(ctx context.Context, planCode string) (models.SubscriptionView, error) {
	var view models.SubscriptionView

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SubscribeRequest{PlanCode: planCode}).
		SetResult(&view).
		Post("/api/v1/subscriptions")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("subscribe request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscriptionView{}, err
	}

	return view, nil
}

// MySubscription implements [ServerAdapter]. It GETs /api/v1/subscriptions/me.
// Returns [ErrNotFound] (wrapped) when the account has no live subscription.
func (h *httpServerAdapter) MySubscription(ctx context.Context) (models.SubscriptionView, error) {
	var view models.SubscriptionView

	resp, err := h.authedRequest(ctx).
		SetResult(&view).
		Get("/api/v1/subscriptions/me")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("my subscription request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscriptionView{}, err
	}

	return view, nil
}

// CancelSubscription implements [ServerAdapter]. It DELETEs
// /api/v1/subscriptions/me; immediate ends the subscription now instead of
// at the period end.
func (h *httpServerAdapter) CancelSubscription(ctx context.Context, immediate bool) (models.SubscriptionView, error) {
	var view models.SubscriptionView

	resp, err := h.authedRequest(ctx).
		SetQueryParam("immediate", strconv.FormatBool(immediate)).
		SetResult(&view).
		Delete("/api/v1/subscriptions/me")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("cancel subscription request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscriptionView{}, err
	}

	return view, nil
}

// ResumeSubscription implements [ServerAdapter]. It POSTs to
// /api/v1/subscriptions/me/resume to clear a pending cancellation.
func (h *httpServerAdapter) ResumeSubscription(ctx context.Context) (models.SubscriptionView, error) {
	var view models.SubscriptionView

	resp, err := h.authedRequest(ctx).
		SetResult(&view).
		Post("/api/v1/subscriptions/me/resume")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("resume subscription request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscriptionView{}, err
	}

	return view, nil
}

// ChangePlan implements [ServerAdapter]. It POSTs the new plan code to
// /api/v1/subscriptions/me/plan.
func (h *httpServerAdapter) ChangePlan(ctx context.Context, planCode string) (models.SubscriptionView, error) {
	var view models.SubscriptionView

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SubscribeRequest{PlanCode: planCode}).
		SetResult(&view).
		Post("/api/v1/subscriptions/me/plan")
	if err != nil {
		return models.SubscriptionView{}, fmt.Errorf("change plan request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscriptionView{}, err
	}

	return view, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
