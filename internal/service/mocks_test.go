// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"context"
	"sync"
	"time"

	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/models"
)

// ─────────────────────────────────────────────
// Mock: store.UserRepository
// ─────────────────────────────────────────────

type mockUserRepo struct {
	createUserFn       func(ctx context.Context, user models.User) (models.User, error)
	findByEmailFn      func(ctx context.Context, email string) (models.User, error)
	getByIDFn          func(ctx context.Context, userID int64) (models.User, error)
	setEmailVerifiedFn func(ctx context.Context, userID int64) error
	setTwoFAEnabledFn  func(ctx context.Context, userID int64, enabled bool) error
	updatePasswordFn   func(ctx context.Context, userID int64, passwordHash string) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return models.User{}, store.ErrNoUserWasFound
}

func (m *mockUserRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	if m.setEmailVerifiedFn != nil {
		return m.setEmailVerifiedFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepo) SetTwoFAEnabled(ctx context.Context, userID int64, enabled bool) error {
	if m.setTwoFAEnabledFn != nil {
		return m.setTwoFAEnabledFn(ctx, userID, enabled)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, passwordHash)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.RefreshTokenRepository
// ─────────────────────────────────────────────

type mockRefreshTokenRepo struct {
	saveFn             func(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)
	findByHashFn       func(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	revokeFn           func(ctx context.Context, id int64, at time.Time) error
	revokeAllForUserFn func(ctx context.Context, userID int64, at time.Time) (int64, error)
	deleteExpiredFn    func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockRefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, token)
	}
	token.ID = 1
	return token, nil
}

func (m *mockRefreshTokenRepo) FindByHash(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	if m.findByHashFn != nil {
		return m.findByHashFn(ctx, tokenHash)
	}
	return models.RefreshToken{}, store.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id int64, at time.Time) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id, at)
	}
	return nil
}

func (m *mockRefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	if m.revokeAllForUserFn != nil {
		return m.revokeAllForUserFn(ctx, userID, at)
	}
	return 0, nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, before)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Mock: store.TwoFARepository
// ─────────────────────────────────────────────

type mockTwoFARepo struct {
	upsertEnrollmentFn       func(ctx context.Context, enrollment models.TwoFA) error
	getByUserIDFn            func(ctx context.Context, userID int64) (models.TwoFA, error)
	confirmFn                func(ctx context.Context, userID int64, at time.Time) error
	updateLastUsedStepFn     func(ctx context.Context, userID int64, step int64) error
	deleteFn                 func(ctx context.Context, userID int64) error
	replaceBackupCodesFn     func(ctx context.Context, userID int64, codeHashes []string) error
	consumeBackupCodeFn      func(ctx context.Context, userID int64, codeHash string, at time.Time) error
	countUnusedBackupCodesFn func(ctx context.Context, userID int64) (int, error)
}

func (m *mockTwoFARepo) UpsertEnrollment(ctx context.Context, enrollment models.TwoFA) error {
	if m.upsertEnrollmentFn != nil {
		return m.upsertEnrollmentFn(ctx, enrollment)
	}
	return nil
}

func (m *mockTwoFARepo) GetByUserID(ctx context.Context, userID int64) (models.TwoFA, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return models.TwoFA{}, store.ErrTwoFANotFound
}

func (m *mockTwoFARepo) Confirm(ctx context.Context, userID int64, at time.Time) error {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, userID, at)
	}
	return nil
}

func (m *mockTwoFARepo) UpdateLastUsedStep(ctx context.Context, userID int64, step int64) error {
	if m.updateLastUsedStepFn != nil {
		return m.updateLastUsedStepFn(ctx, userID, step)
	}
	return nil
}

func (m *mockTwoFARepo) Delete(ctx context.Context, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

func (m *mockTwoFARepo) ReplaceBackupCodes(ctx context.Context, userID int64, codeHashes []string) error {
	if m.replaceBackupCodesFn != nil {
		return m.replaceBackupCodesFn(ctx, userID, codeHashes)
	}
	return nil
}

func (m *mockTwoFARepo) ConsumeBackupCode(ctx context.Context, userID int64, codeHash string, at time.Time) error {
	if m.consumeBackupCodeFn != nil {
		return m.consumeBackupCodeFn(ctx, userID, codeHash, at)
	}
	return store.ErrBackupCodeNotFound
}

func (m *mockTwoFARepo) CountUnusedBackupCodes(ctx context.Context, userID int64) (int, error) {
	if m.countUnusedBackupCodesFn != nil {
		return m.countUnusedBackupCodesFn(ctx, userID)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Mock: store.VerificationCodeRepository
// ─────────────────────────────────────────────

type mockVerificationCodeRepo struct {
	createFn        func(ctx context.Context, code models.VerificationCode) (models.VerificationCode, error)
	consumeFn       func(ctx context.Context, userID int64, purpose, codeHash string, now time.Time) error
	deleteExpiredFn func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockVerificationCodeRepo) Create(ctx context.Context, code models.VerificationCode) (models.VerificationCode, error) {
	if m.createFn != nil {
		return m.createFn(ctx, code)
	}
	code.ID = 1
	return code, nil
}

func (m *mockVerificationCodeRepo) Consume(ctx context.Context, userID int64, purpose, codeHash string, now time.Time) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, userID, purpose, codeHash, now)
	}
	return store.ErrVerificationCodeNotFound
}

func (m *mockVerificationCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, before)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Mock: store.PlanRepository
// ─────────────────────────────────────────────

type mockPlanRepo struct {
	createFn    func(ctx context.Context, plan models.Plan) (models.Plan, error)
	updateFn    func(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error)
	getByIDFn   func(ctx context.Context, planID string) (models.Plan, error)
	getByCodeFn func(ctx context.Context, code string) (models.Plan, error)
	listFn      func(ctx context.Context, onlyActive bool) ([]models.Plan, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, plan models.Plan) (models.Plan, error) {
	if m.createFn != nil {
		return m.createFn(ctx, plan)
	}
	return plan, nil
}

func (m *mockPlanRepo) Update(ctx context.Context, planID string, patch models.PlanPatch) (models.Plan, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, planID, patch)
	}
	return models.Plan{}, store.ErrPlanNotFound
}

func (m *mockPlanRepo) GetByID(ctx context.Context, planID string) (models.Plan, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, planID)
	}
	return models.Plan{}, store.ErrPlanNotFound
}

func (m *mockPlanRepo) GetByCode(ctx context.Context, code string) (models.Plan, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return models.Plan{}, store.ErrPlanNotFound
}

func (m *mockPlanRepo) List(ctx context.Context, onlyActive bool) ([]models.Plan, error) {
	if m.listFn != nil {
		return m.listFn(ctx, onlyActive)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.SubscriptionRepository
// ─────────────────────────────────────────────

type mockSubscriptionRepo struct {
	createFn          func(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	getByIDFn         func(ctx context.Context, id string) (models.Subscription, error)
	getLiveByUserIDFn func(ctx context.Context, userID int64) (models.Subscription, error)
	updateFn          func(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	listDueFn         func(ctx context.Context, asOf time.Time, limit uint64) ([]models.Subscription, error)
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	if m.createFn != nil {
		return m.createFn(ctx, sub)
	}
	return sub, nil
}

func (m *mockSubscriptionRepo) GetByID(ctx context.Context, id string) (models.Subscription, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return models.Subscription{}, store.ErrSubscriptionNotFound
}

func (m *mockSubscriptionRepo) GetLiveByUserID(ctx context.Context, userID int64) (models.Subscription, error) {
	if m.getLiveByUserIDFn != nil {
		return m.getLiveByUserIDFn(ctx, userID)
	}
	return models.Subscription{}, store.ErrSubscriptionNotFound
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, sub)
	}
	return sub, nil
}

func (m *mockSubscriptionRepo) ListDue(ctx context.Context, asOf time.Time, limit uint64) ([]models.Subscription, error) {
	if m.listDueFn != nil {
		return m.listDueFn(ctx, asOf, limit)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.TwoFATicketStore
// ─────────────────────────────────────────────

// memoryTicketStore is a map-backed TwoFATicketStore; Consume is atomic like
// the Redis GETDEL it stands in for.
type memoryTicketStore struct {
	mu      sync.Mutex
	tickets map[string]int64
}

func newMemoryTicketStore() *memoryTicketStore {
	return &memoryTicketStore{tickets: map[string]int64{}}
}

func (m *memoryTicketStore) Save(_ context.Context, ticketHash string, userID int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticketHash] = userID
	return nil
}

func (m *memoryTicketStore) Lookup(_ context.Context, ticketHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tickets[ticketHash]
	if !ok {
		return 0, store.ErrTwoFATicketNotFound
	}
	return userID, nil
}

func (m *memoryTicketStore) Consume(_ context.Context, ticketHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tickets[ticketHash]
	if !ok {
		return 0, store.ErrTwoFATicketNotFound
	}
	delete(m.tickets, ticketHash)
	return userID, nil
}

// ─────────────────────────────────────────────
// Mock: store.QRSessionStore
// ─────────────────────────────────────────────

// memoryQRStore is a map-backed QRSessionStore with honest Transition
// semantics, standing in for the Redis implementation.
type memoryQRStore struct {
	mu       sync.Mutex
	sessions map[string]models.QRSession
}

func newMemoryQRStore() *memoryQRStore {
	return &memoryQRStore{sessions: map[string]models.QRSession{}}
}

func (m *memoryQRStore) Save(_ context.Context, session models.QRSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *memoryQRStore) Get(_ context.Context, sessionID string) (models.QRSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return models.QRSession{}, store.ErrQRSessionNotFound
	}
	return session, nil
}

func (m *memoryQRStore) Transition(_ context.Context, sessionID, from, to string, mutate func(*models.QRSession)) (models.QRSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return models.QRSession{}, store.ErrQRSessionNotFound
	}
	if session.State != from {
		return models.QRSession{}, store.ErrQRSessionConflict
	}

	session.State = to
	if mutate != nil {
		mutate(&session)
	}
	m.sessions[sessionID] = session
	return session, nil
}

func (m *memoryQRStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// ─────────────────────────────────────────────
// Mock: TwoFAService / AuthService / CodeSender
// ─────────────────────────────────────────────

type mockTwoFAService struct {
	TwoFAService

	verifyLoginCodeFn func(ctx context.Context, userID int64, code string) error
}

func (m *mockTwoFAService) VerifyLoginCode(ctx context.Context, userID int64, code string) error {
	if m.verifyLoginCodeFn != nil {
		return m.verifyLoginCodeFn(ctx, userID, code)
	}
	return nil
}

type mockAuthService struct {
	AuthService

	mintPairFn func(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error)
	logoutFn   func(ctx context.Context, refreshToken string) error
}

func (m *mockAuthService) MintPair(ctx context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error) {
	if m.mintPairFn != nil {
		return m.mintPairFn(ctx, userID, issuedVia, device)
	}
	return models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, refreshToken)
	}
	return nil
}

// recordingCodeSender captures every code handed to it.
type recordingCodeSender struct {
	mu    sync.Mutex
	sent  []sentCode
	errFn func() error
}

type sentCode struct {
	email   string
	purpose string
	code    string
}

func (s *recordingCodeSender) SendCode(_ context.Context, email, purpose, code string) error {
	if s.errFn != nil {
		if err := s.errFn(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{email: email, purpose: purpose, code: code})
	return nil
}

func (s *recordingCodeSender) last() (sentCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentCode{}, false
	}
	return s.sent[len(s.sent)-1], true
}
