// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// newTestAdapter builds an httpServerAdapter pointed at the test server.
func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second}

	a, err := NewHTTPServerAdapter(adapterCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func writeAPIError(t *testing.T, w http.ResponseWriter, status int, code, detail string) {
	t.Helper()
	writeJSON(t, w, status, models.APIError{Error: code, Detail: detail})
}

// ── Register ────────────────────────────────────────────────────────────────

// TestRegister_Success verifies that Register posts the sign-up form, returns
// the created profile and does not store a token.
func TestRegister_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)

		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.com", req.Email)

		writeJSON(t, w, http.StatusCreated, models.User{UserID: 1, Email: req.Email, Name: req.Name, Role: models.RoleUser})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Register(context.Background(), models.RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct horse battery staple",
	})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Empty(t, a.Token())
}

// TestRegister_EmailTaken verifies that a 409 maps to ErrConflict and that
// the server's detail survives in the error message.
func TestRegister_EmailTaken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusConflict, "email_taken", "email already registered")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Register(context.Background(), models.RegisterRequest{Email: "ada@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "email already registered")
}

// TestRegister_InternalServerError verifies the 500 mapping.
func TestRegister_InternalServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Register(context.Background(), models.RegisterRequest{Email: "ada@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternalServerError)
}

// ── Login ────────────────────────────────────────────────────────────────────

// TestLogin_Success verifies that a completed pair is returned and the access
// token is stored for subsequent requests.
func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		pair := models.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-opaque"}
		writeJSON(t, w, http.StatusOK, models.LoginResponse{TokenPair: &pair})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	require.NotNil(t, got.TokenPair)
	assert.Equal(t, "refresh-opaque", got.RefreshToken)
	assert.Equal(t, "access-jwt", a.Token())
}

// TestLogin_TwoFARequired verifies that the 2FA branch carries the ticket and
// stores no token.
func TestLogin_TwoFARequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.LoginResponse{TwoFARequired: true, TwoFATicket: "ticket-1"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.True(t, got.TwoFARequired)
	assert.Equal(t, "ticket-1", got.TwoFATicket)
	assert.Nil(t, got.TokenPair)
	assert.Empty(t, a.Token())
}

// TestLogin_BadCredentials verifies the 401 mapping.
func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "nope"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// TestLogin_RateLimited verifies the 429 mapping.
func TestLogin_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeAPIError(t, w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many login attempts")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), models.LoginRequest{Email: "ada@example.com", Password: "pw"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

// ── LoginTwoFA ───────────────────────────────────────────────────────────────

// TestLoginTwoFA_Success verifies the ticket exchange and token storage.
func TestLoginTwoFA_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login/2fa", r.URL.Path)

		var req models.TwoFALoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ticket-1", req.Ticket)
		assert.Equal(t, "123456", req.Code)

		writeJSON(t, w, http.StatusOK, models.TokenPair{AccessToken: "access-after-2fa", RefreshToken: "r"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	pair, err := a.LoginTwoFA(context.Background(), "ticket-1", "123456")

	require.NoError(t, err)
	assert.Equal(t, "access-after-2fa", pair.AccessToken)
	assert.Equal(t, "access-after-2fa", a.Token())
}

// TestLoginTwoFA_BadCode verifies that a rejected code maps to ErrUnauthorized
// and leaves no token behind.
func TestLoginTwoFA_BadCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "invalid_code", "code rejected")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.LoginTwoFA(context.Background(), "ticket-1", "000000")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, a.Token())
}

// ── Refresh ──────────────────────────────────────────────────────────────────

// TestRefresh_Success verifies that the rotated access token replaces the
// stored one.
func TestRefresh_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)

		var req models.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-refresh", req.RefreshToken)

		writeJSON(t, w, http.StatusOK, models.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("old-access")

	pair, err := a.Refresh(context.Background(), "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
	assert.Equal(t, "new-access", a.Token())
}

// TestRefresh_Reused verifies that a reused token maps to ErrUnauthorized.
func TestRefresh_Reused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token reuse detected")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Refresh(context.Background(), "stolen-refresh")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── Logout ───────────────────────────────────────────────────────────────────

// TestLogout_Success verifies that logout sends the bearer header plus the
// refresh token and clears the stored token.
func TestLogout_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer access-jwt", r.Header.Get("Authorization"))

		var req models.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-opaque", req.RefreshToken)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	require.NoError(t, a.Logout(context.Background(), "refresh-opaque"))
	assert.Empty(t, a.Token())
}

// TestLogout_Failed verifies that a failed logout keeps the token so the
// caller can retry.
func TestLogout_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusInternalServerError, "internal_error", "store down")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	err := a.Logout(context.Background(), "refresh-opaque")

	require.Error(t, err)
	assert.Equal(t, "access-jwt", a.Token())
}

// ── Me ───────────────────────────────────────────────────────────────────────

// TestMe_Success verifies the authenticated profile fetch.
func TestMe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/users/me", r.URL.Path)
		assert.Equal(t, "Bearer access-jwt", r.Header.Get("Authorization"))

		writeJSON(t, w, http.StatusOK, models.MeResponse{
			User: models.User{UserID: 7, Email: "ada@example.com", Name: "Ada"},
			Subscription: &models.SubscriptionView{
				Subscription: models.Subscription{Status: models.SubStatusActive},
				Plan:         models.Plan{Code: "pro-monthly"},
			},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	me, err := a.Me(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.User.Email)
	require.NotNil(t, me.Subscription)
	assert.Equal(t, "pro-monthly", me.Subscription.Plan.Code)
}

// TestMe_TokenExpired verifies the 401 mapping on an expired session.
func TestMe_TokenExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "unauthorized", "token is expired")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("stale")

	_, err := a.Me(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── TwoFA ────────────────────────────────────────────────────────────────────

// TestTwoFASetup_Success verifies the enrollment start call.
func TestTwoFASetup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/2fa/setup", r.URL.Path)

		writeJSON(t, w, http.StatusOK, models.TwoFASetup{
			Secret:     "JBSWY3DPEHPK3PXP",
			OTPAuthURL: "otpauth://totp/nexus:ada@example.com?secret=JBSWY3DPEHPK3PXP",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	setup, err := a.TwoFASetup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", setup.Secret)
	assert.Contains(t, setup.OTPAuthURL, "otpauth://totp/")
}

// TestTwoFAActivate_Success verifies that activation returns the backup code
// set.
func TestTwoFAActivate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/2fa/activate", r.URL.Path)

		var req models.CodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "123456", req.Code)

		writeJSON(t, w, http.StatusOK, models.ActivateResponse{
			Enabled:     true,
			BackupCodes: []string{"aaaa-bbbb", "cccc-dddd"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	activated, err := a.TwoFAActivate(context.Background(), "123456")

	require.NoError(t, err)
	assert.True(t, activated.Enabled)
	assert.Len(t, activated.BackupCodes, 2)
}

// TestTwoFAStatus_Success verifies the status fetch.
func TestTwoFAStatus_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/2fa", r.URL.Path)

		writeJSON(t, w, http.StatusOK, models.TwoFAStatus{Enabled: true, BackupCodesRemaining: 8})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	status, err := a.TwoFAStatus(context.Background())

	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, 8, status.BackupCodesRemaining)
}

// ── QR sign-in ───────────────────────────────────────────────────────────────

// TestQRCreate_Success verifies that the session is opened without a bearer
// token.
func TestQRCreate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/qr", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req models.QRCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "work laptop", req.DeviceName)

		writeJSON(t, w, http.StatusCreated, models.QRCreated{
			SessionID: "sess-1",
			Secret:    "poll-secret",
			ExpiresIn: 120,
			QRContent: "nexus://qr/sess-1/scan-token",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	created, err := a.QRCreate(context.Background(), "work laptop")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", created.SessionID)
	assert.NotEmpty(t, created.QRContent)
}

// TestQRPoll_Pending verifies the poll before approval: state only, no token.
func TestQRPoll_Pending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/qr/sess-1", r.URL.Path)
		assert.Equal(t, "poll-secret", r.URL.Query().Get("secret"))

		writeJSON(t, w, http.StatusOK, models.QRPollResult{State: models.QRStatePending})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	result, err := a.QRPoll(context.Background(), "sess-1", "poll-secret")

	require.NoError(t, err)
	assert.Equal(t, models.QRStatePending, result.State)
	assert.Nil(t, result.Tokens)
	assert.Empty(t, a.Token())
}

// TestQRPoll_Approved verifies that the approving poll stores the minted
// access token.
func TestQRPoll_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.QRPollResult{
			State:  models.QRStateApproved,
			Tokens: &models.TokenPair{AccessToken: "qr-access", RefreshToken: "qr-refresh"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	result, err := a.QRPoll(context.Background(), "sess-1", "poll-secret")

	require.NoError(t, err)
	require.NotNil(t, result.Tokens)
	assert.Equal(t, "qr-access", a.Token())
}

// TestQRPoll_Expired verifies that a vanished session maps to ErrNotFound.
func TestQRPoll_Expired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusNotFound, "qr_session_not_found", "session expired or does not exist")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.QRPoll(context.Background(), "sess-gone", "poll-secret")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestQRClaim_Success verifies the claim call and the returned device info.
func TestQRClaim_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/qr/sess-1/claim", r.URL.Path)
		assert.Equal(t, "Bearer access-jwt", r.Header.Get("Authorization"))

		var req models.QRClaimRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "scan-token", req.ScanToken)

		writeJSON(t, w, http.StatusOK, models.QRSessionInfo{DeviceName: "work laptop", IP: "203.0.113.9"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	info, err := a.QRClaim(context.Background(), "sess-1", "scan-token")

	require.NoError(t, err)
	assert.Equal(t, "work laptop", info.DeviceName)
}

// TestQRApprove_Success verifies the approve call.
func TestQRApprove_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/qr/sess-1/approve", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	require.NoError(t, a.QRApprove(context.Background(), "sess-1"))
}

// TestQRDeny_Success verifies the deny call.
func TestQRDeny_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/qr/sess-1/deny", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	require.NoError(t, a.QRDeny(context.Background(), "sess-1"))
}

// TestQRApprove_WrongState verifies that approving an unclaimed session maps
// to ErrConflict.
func TestQRApprove_WrongState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusConflict, "qr_session_conflict", "session is not in the claimed state")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	err := a.QRApprove(context.Background(), "sess-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

// ── Plans ────────────────────────────────────────────────────────────────────

// TestListPlans_Success verifies the public plan catalogue fetch.
func TestListPlans_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/plans", r.URL.Path)

		writeJSON(t, w, http.StatusOK, []models.Plan{
			{Code: "pro-monthly", Name: "Pro", PriceCents: 990, Currency: "USD", Interval: models.IntervalMonth, Active: true},
			{Code: "pro-yearly", Name: "Pro (annual)", PriceCents: 9900, Currency: "USD", Interval: models.IntervalYear, Active: true},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	plans, err := a.ListPlans(context.Background())

	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "pro-monthly", plans[0].Code)
}

// ── Subscriptions ────────────────────────────────────────────────────────────

// TestSubscribe_Success verifies the subscribe call and the returned view.
func TestSubscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/subscriptions", r.URL.Path)

		var req models.SubscribeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pro-monthly", req.PlanCode)

		writeJSON(t, w, http.StatusCreated, models.SubscriptionView{
			Subscription: models.Subscription{Status: models.SubStatusActive},
			Plan:         models.Plan{Code: "pro-monthly"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	view, err := a.Subscribe(context.Background(), "pro-monthly")

	require.NoError(t, err)
	assert.Equal(t, models.SubStatusActive, view.Status)
	assert.Equal(t, "pro-monthly", view.Plan.Code)
}

// TestSubscribe_UnknownPlan verifies the 404 mapping.
func TestSubscribe_UnknownPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusNotFound, "plan_not_found", "no such plan")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	_, err := a.Subscribe(context.Background(), "no-such-plan")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestMySubscription_None verifies that an account without a subscription
// maps to ErrNotFound, which callers treat as a normal state.
func TestMySubscription_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subscriptions/me", r.URL.Path)
		writeAPIError(t, w, http.StatusNotFound, "subscription_not_found", "no live subscription")
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	_, err := a.MySubscription(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestCancelSubscription_Immediate verifies the DELETE call and the immediate
// query flag.
func TestCancelSubscription_Immediate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/subscriptions/me", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("immediate"))

		writeJSON(t, w, http.StatusOK, models.SubscriptionView{
			Subscription: models.Subscription{Status: models.SubStatusCanceled},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	view, err := a.CancelSubscription(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, models.SubStatusCanceled, view.Status)
}

// TestCancelSubscription_AtPeriodEnd verifies the default cancel mode.
func TestCancelSubscription_AtPeriodEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("immediate"))

		writeJSON(t, w, http.StatusOK, models.SubscriptionView{
			Subscription: models.Subscription{Status: models.SubStatusActive, CancelAtPeriodEnd: true},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	view, err := a.CancelSubscription(context.Background(), false)

	require.NoError(t, err)
	assert.True(t, view.CancelAtPeriodEnd)
}

// TestResumeSubscription_Success verifies the resume call.
func TestResumeSubscription_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/subscriptions/me/resume", r.URL.Path)

		writeJSON(t, w, http.StatusOK, models.SubscriptionView{
			Subscription: models.Subscription{Status: models.SubStatusActive},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	view, err := a.ResumeSubscription(context.Background())

	require.NoError(t, err)
	assert.False(t, view.CancelAtPeriodEnd)
}

// TestChangePlan_Success verifies the plan change call.
func TestChangePlan_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subscriptions/me/plan", r.URL.Path)

		var req models.SubscribeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pro-yearly", req.PlanCode)

		writeJSON(t, w, http.StatusOK, models.SubscriptionView{
			Subscription: models.Subscription{Status: models.SubStatusActive},
			Plan:         models.Plan{Code: "pro-yearly"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("access-jwt")

	view, err := a.ChangePlan(context.Background(), "pro-yearly")

	require.NoError(t, err)
	assert.Equal(t, "pro-yearly", view.Plan.Code)
}

// ── SetToken ─────────────────────────────────────────────────────────────────

// TestSetToken_TrimsWhitespace verifies token normalisation.
func TestSetToken_TrimsWhitespace(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:8080")

	a.SetToken("  access-jwt\n")
	assert.Equal(t, "access-jwt", a.Token())

	a.SetToken("")
	assert.Empty(t, a.Token())
}

// ── normalizeBaseURL ─────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", "http://localhost:8080", false},
		{"valid https", "https://nexus.example.com", "https://nexus.example.com", false},
		{"no scheme", "localhost:8080", "http://localhost:8080", false},
		{"trailing slash", "http://localhost:8080/", "http://localhost:8080", false},
		{"surrounding space", " http://localhost:8080 ", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// ── mapHTTPError ─────────────────────────────────────────────────────────────

// TestMapHTTPError_PlainBody verifies the fallback when the body is not the
// uniform JSON error envelope.
func TestMapHTTPError_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.ListPlans(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "404 page not found")
}
