// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/service"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

// Function-field mocks for every service the handlers touch. Each method
// delegates to its Fn field; tests set exactly the calls they expect, and an
// unexpected call panics the test.

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

type mockAuthService struct {
	registerFn   func(ctx context.Context, req models.RegisterRequest) (models.User, error)
	loginFn      func(ctx context.Context, req models.LoginRequest, device models.DeviceInfo) (models.LoginResponse, error)
	loginTwoFAFn func(ctx context.Context, req models.TwoFALoginRequest, device models.DeviceInfo) (models.TokenPair, error)
	refreshFn    func(ctx context.Context, refreshToken string, device models.DeviceInfo) (models.TokenPair, error)
	logoutFn     func(ctx context.Context, refreshToken string) error
	getUserFn    func(ctx context.Context, userID int64) (models.User, error)
	parseTokenFn func(ctx context.Context, tokenString string) (models.Token, error)
	mintPairFn   func(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error)
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	return m.registerFn(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest, device models.DeviceInfo) (models.LoginResponse, error) {
	return m.loginFn(ctx, req, device)
}

func (m *mockAuthService) LoginTwoFA(ctx context.Context, req models.TwoFALoginRequest, device models.DeviceInfo) (models.TokenPair, error) {
	return m.loginTwoFAFn(ctx, req, device)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (models.TokenPair, error) {
	return m.refreshFn(ctx, refreshToken, device)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.logoutFn(ctx, refreshToken)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return m.getUserFn(ctx, userID)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

func (m *mockAuthService) MintPair(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error) {
	return m.mintPairFn(ctx, userID, issuedVia, device)
}

// ─────────────────────────────────────────────
// Mock TwoFAService
// ─────────────────────────────────────────────

type mockTwoFAService struct {
	setupFn           func(ctx context.Context, userID int64) (models.TwoFASetup, error)
	activateFn        func(ctx context.Context, userID int64, code string) ([]string, error)
	disableFn         func(ctx context.Context, userID int64, password, code string) error
	statusFn          func(ctx context.Context, userID int64) (models.TwoFAStatus, error)
	regenerateFn      func(ctx context.Context, userID int64, code string) ([]string, error)
	verifyLoginCodeFn func(ctx context.Context, userID int64, code string) error
}

func (m *mockTwoFAService) Setup(ctx context.Context, userID int64) (models.TwoFASetup, error) {
	return m.setupFn(ctx, userID)
}

func (m *mockTwoFAService) Activate(ctx context.Context, userID int64, code string) ([]string, error) {
	return m.activateFn(ctx, userID, code)
}

func (m *mockTwoFAService) Disable(ctx context.Context, userID int64, password, code string) error {
	return m.disableFn(ctx, userID, password, code)
}

func (m *mockTwoFAService) Status(ctx context.Context, userID int64) (models.TwoFAStatus, error) {
	return m.statusFn(ctx, userID)
}

func (m *mockTwoFAService) RegenerateBackupCodes(ctx context.Context, userID int64, code string) ([]string, error) {
	return m.regenerateFn(ctx, userID, code)
}

func (m *mockTwoFAService) VerifyLoginCode(ctx context.Context, userID int64, code string) error {
	return m.verifyLoginCodeFn(ctx, userID, code)
}

// ─────────────────────────────────────────────
// Mock QRLoginService
// ─────────────────────────────────────────────

type mockQRLoginService struct {
	createFn  func(ctx context.Context, device models.DeviceInfo) (models.QRCreated, error)
	pollFn    func(ctx context.Context, sessionID, secret string) (models.QRPollResult, error)
	claimFn   func(ctx context.Context, userID int64, sessionID, scanToken string) (models.QRSessionInfo, error)
	approveFn func(ctx context.Context, userID int64, sessionID string) error
	denyFn    func(ctx context.Context, userID int64, sessionID string) error
}

func (m *mockQRLoginService) Create(ctx context.Context, device models.DeviceInfo) (models.QRCreated, error) {
	return m.createFn(ctx, device)
}

func (m *mockQRLoginService) Poll(ctx context.Context, sessionID, secret string) (models.QRPollResult, error) {
	return m.pollFn(ctx, sessionID, secret)
}

func (m *mockQRLoginService) Claim(ctx context.Context, userID int64, sessionID, scanToken string) (models.QRSessionInfo, error) {
	return m.claimFn(ctx, userID, sessionID, scanToken)
}

func (m *mockQRLoginService) Approve(ctx context.Context, userID int64, sessionID string) error {
	return m.approveFn(ctx, userID, sessionID)
}

func (m *mockQRLoginService) Deny(ctx context.Context, userID int64, sessionID string) error {
	return m.denyFn(ctx, userID, sessionID)
}

// ─────────────────────────────────────────────
// Mock BillingService
// ─────────────────────────────────────────────

type mockBillingService struct {
	listPlansFn      func(ctx context.Context, includeInactive bool) ([]models.Plan, error)
	createPlanFn     func(ctx context.Context, req models.PlanRequest) (models.Plan, error)
	updatePlanFn     func(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error)
	subscribeFn      func(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error)
	mySubscriptionFn func(ctx context.Context, userID int64) (models.SubscriptionView, error)
	cancelFn         func(ctx context.Context, userID int64, immediate bool) (models.SubscriptionView, error)
	resumeFn         func(ctx context.Context, userID int64) (models.SubscriptionView, error)
	changePlanFn     func(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error)
	reconcileFn      func(ctx context.Context, now time.Time) (models.ReconcileStats, error)
}

func (m *mockBillingService) ListPlans(ctx context.Context, includeInactive bool) ([]models.Plan, error) {
	return m.listPlansFn(ctx, includeInactive)
}

func (m *mockBillingService) CreatePlan(ctx context.Context, req models.PlanRequest) (models.Plan, error) {
	return m.createPlanFn(ctx, req)
}

func (m *mockBillingService) UpdatePlan(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error) {
	return m.updatePlanFn(ctx, planID, patch)
}

func (m *mockBillingService) Subscribe(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error) {
	return m.subscribeFn(ctx, userID, planCode)
}

func (m *mockBillingService) MySubscription(ctx context.Context, userID int64) (models.SubscriptionView, error) {
	return m.mySubscriptionFn(ctx, userID)
}

func (m *mockBillingService) Cancel(ctx context.Context, userID int64, immediate bool) (models.SubscriptionView, error) {
	return m.cancelFn(ctx, userID, immediate)
}

func (m *mockBillingService) Resume(ctx context.Context, userID int64) (models.SubscriptionView, error) {
	return m.resumeFn(ctx, userID)
}

func (m *mockBillingService) ChangePlan(ctx context.Context, userID int64, planCode string) (models.SubscriptionView, error) {
	return m.changePlanFn(ctx, userID, planCode)
}

func (m *mockBillingService) Reconcile(ctx context.Context, now time.Time) (models.ReconcileStats, error) {
	return m.reconcileFn(ctx, now)
}

// ─────────────────────────────────────────────
// Mock VerificationService
// ─────────────────────────────────────────────

type mockVerificationService struct {
	issueEmailVerificationFn func(ctx context.Context, userID int64) error
	verifyEmailFn            func(ctx context.Context, email, code string) error
	requestPasswordResetFn   func(ctx context.Context, email string) error
	confirmPasswordResetFn   func(ctx context.Context, req models.PasswordResetConfirmRequest) error
}

func (m *mockVerificationService) IssueEmailVerification(ctx context.Context, userID int64) error {
	return m.issueEmailVerificationFn(ctx, userID)
}

func (m *mockVerificationService) VerifyEmail(ctx context.Context, email, code string) error {
	return m.verifyEmailFn(ctx, email, code)
}

func (m *mockVerificationService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.requestPasswordResetFn(ctx, email)
}

func (m *mockVerificationService) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmRequest) error {
	return m.confirmPasswordResetFn(ctx, req)
}

// ─────────────────────────────────────────────
// Mock AppInfoService / HealthService
// ─────────────────────────────────────────────

type mockAppInfoService struct {
	version string
}

func (m *mockAppInfoService) GetAppVersion(context.Context) string {
	return m.version
}

type mockHealthService struct {
	checkFn func(ctx context.Context) models.HealthResponse
}

func (m *mockHealthService) Check(ctx context.Context) models.HealthResponse {
	return m.checkFn(ctx)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler over the given service set; tests populate
// only the services their handler touches.
func newTestHandler(services *service.Services) *Handler {
	return &Handler{
		services: services,
		logger:   logger.Nop(),
	}
}

// withUserID simulates the auth middleware having verified a bearer token.
func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, utils.UserIDCtxKey, userID)
}

// jsonBody serialises v to a JSON request body string.
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
