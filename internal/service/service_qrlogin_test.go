// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

var initiatingDevice = models.DeviceInfo{UserAgent: "nexus-cli/1.0 (linux)", IP: "198.51.100.4"}

func newTestQRLoginService(t *testing.T, sessions store.QRSessionStore, auth AuthService) QRLoginService {
	t.Helper()

	if sessions == nil {
		sessions = newMemoryQRStore()
	}
	if auth == nil {
		auth = &mockAuthService{}
	}

	return NewQRLoginService(sessions, auth, "test-hash-key", 2*time.Minute, logger.Nop())
}

// scanTokenFromQR extracts the scan token the way a scanning device would:
// by parsing the URI encoded in the QR code.
func scanTokenFromQR(t *testing.T, content string) string {
	t.Helper()

	u, err := url.Parse(content)
	require.NoError(t, err)

	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	return token
}

// ─────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────

func TestQRLoginService_Create(t *testing.T) {
	sessions := newMemoryQRStore()
	svc := newTestQRLoginService(t, sessions, nil)

	created, err := svc.Create(context.Background(), initiatingDevice)

	require.NoError(t, err)
	assert.NotEmpty(t, created.SessionID)
	assert.NotEmpty(t, created.Secret)
	assert.Equal(t, int64(120), created.ExpiresIn)
	assert.True(t, strings.HasPrefix(created.QRContent, "nexus://qr-login?"))
	assert.Contains(t, created.QRContent, "session="+created.SessionID)

	png, err := base64.StdEncoding.DecodeString(created.QRPNGBase64)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, png[:8])

	stored, err := sessions.Get(context.Background(), created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatePending, stored.State)
	assert.Equal(t, initiatingDevice.UserAgent, stored.DeviceName)
	assert.Equal(t, initiatingDevice.IP, stored.IP)

	// Only hashes of the two credentials may be stored.
	assert.Equal(t, utils.HashString(created.Secret, "test-hash-key"), stored.SecretHash)
	assert.Equal(t, utils.HashString(scanTokenFromQR(t, created.QRContent), "test-hash-key"), stored.ScanTokenHash)
}

// ─────────────────────────────────────────────
// Full handshake
// ─────────────────────────────────────────────

func TestQRLoginService_FullHandshake(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryQRStore()

	grant := models.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-opaque"}
	var mintedFor int64
	var mintedVia string
	var mintedDevice models.DeviceInfo
	auth := &mockAuthService{
		mintPairFn: func(_ context.Context, userID int64, issuedVia string, device models.DeviceInfo) (models.TokenPair, error) {
			mintedFor = userID
			mintedVia = issuedVia
			mintedDevice = device
			return grant, nil
		},
	}
	svc := newTestQRLoginService(t, sessions, auth)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)

	// Before anyone scans, the initiating device sees pending.
	poll, err := svc.Poll(ctx, created.SessionID, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatePending, poll.State)
	assert.Nil(t, poll.Tokens)

	// A logged-in phone scans the code and claims the session.
	info, err := svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)
	assert.Equal(t, initiatingDevice.UserAgent, info.DeviceName)
	assert.Equal(t, initiatingDevice.IP, info.IP)

	poll, err = svc.Poll(ctx, created.SessionID, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, models.QRStateClaimed, poll.State)

	// The phone approves; the pair is minted for the initiating device.
	require.NoError(t, svc.Approve(ctx, 7, created.SessionID))
	assert.Equal(t, int64(7), mintedFor)
	assert.Equal(t, models.IssuedViaQR, mintedVia)
	assert.Equal(t, initiatingDevice.UserAgent, mintedDevice.UserAgent)
	assert.Equal(t, initiatingDevice.IP, mintedDevice.IP)

	// The next poll collects the tokens and consumes the session.
	poll, err = svc.Poll(ctx, created.SessionID, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, models.QRStateApproved, poll.State)
	require.NotNil(t, poll.Tokens)
	assert.Equal(t, grant, *poll.Tokens)

	// Exactly once: the session is gone afterwards.
	_, err = svc.Poll(ctx, created.SessionID, created.Secret)
	require.ErrorIs(t, err, store.ErrQRSessionNotFound)
}

// ─────────────────────────────────────────────
// Poll
// ─────────────────────────────────────────────

func TestQRLoginService_Poll_WrongSecret(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryQRStore()
	svc := newTestQRLoginService(t, sessions, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)

	_, err = svc.Poll(ctx, created.SessionID, "a guessed secret")

	require.ErrorIs(t, err, store.ErrQRSessionNotFound, "a wrong secret must not confirm the session exists")

	// The session itself is untouched.
	stored, err := sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.QRStatePending, stored.State)
}

func TestQRLoginService_Poll_UnknownSession(t *testing.T) {
	svc := newTestQRLoginService(t, nil, nil)

	_, err := svc.Poll(context.Background(), "never-created", "a secret")

	require.ErrorIs(t, err, store.ErrQRSessionNotFound)
}

func TestQRLoginService_Poll_DeniedSessionIsDropped(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryQRStore()
	svc := newTestQRLoginService(t, sessions, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)
	require.NoError(t, svc.Deny(ctx, 7, created.SessionID))

	poll, err := svc.Poll(ctx, created.SessionID, created.Secret)

	require.NoError(t, err)
	assert.Equal(t, models.QRStateDenied, poll.State)
	assert.Nil(t, poll.Tokens)

	// Observing the denial drops the session.
	_, err = sessions.Get(ctx, created.SessionID)
	require.ErrorIs(t, err, store.ErrQRSessionNotFound)
}

// ─────────────────────────────────────────────
// Claim
// ─────────────────────────────────────────────

func TestQRLoginService_Claim_WrongScanToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestQRLoginService(t, nil, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)

	_, err = svc.Claim(ctx, 7, created.SessionID, "a guessed token")

	require.ErrorIs(t, err, ErrQRScanTokenInvalid)
}

func TestQRLoginService_Claim_AlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	svc := newTestQRLoginService(t, nil, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	scanToken := scanTokenFromQR(t, created.QRContent)

	_, err = svc.Claim(ctx, 7, created.SessionID, scanToken)
	require.NoError(t, err)

	// A second device scanning the same code loses the race.
	_, err = svc.Claim(ctx, 8, created.SessionID, scanToken)
	require.ErrorIs(t, err, store.ErrQRSessionConflict)
}

func TestQRLoginService_Claim_UnknownSession(t *testing.T) {
	svc := newTestQRLoginService(t, nil, nil)

	_, err := svc.Claim(context.Background(), 7, "never-created", "a token")

	require.ErrorIs(t, err, store.ErrQRSessionNotFound)
}

// ─────────────────────────────────────────────
// Approve / Deny
// ─────────────────────────────────────────────

func TestQRLoginService_Approve_NotOwner(t *testing.T) {
	ctx := context.Background()
	svc := newTestQRLoginService(t, nil, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)

	err = svc.Approve(ctx, 8, created.SessionID)

	require.ErrorIs(t, err, ErrNotSessionOwner)
}

func TestQRLoginService_Approve_BeforeClaim(t *testing.T) {
	ctx := context.Background()
	svc := newTestQRLoginService(t, nil, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)

	err = svc.Approve(ctx, 7, created.SessionID)

	require.ErrorIs(t, err, store.ErrQRSessionConflict, "only a claimed session can be approved")
}

func TestQRLoginService_Approve_MintFailureLeavesSessionClaimed(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryQRStore()
	auth := &mockAuthService{
		mintPairFn: func(_ context.Context, _ int64, _ string, _ models.DeviceInfo) (models.TokenPair, error) {
			return models.TokenPair{}, errStorage
		},
	}
	svc := newTestQRLoginService(t, sessions, auth)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)

	err = svc.Approve(ctx, 7, created.SessionID)

	require.ErrorIs(t, err, errStorage)

	stored, err := sessions.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.QRStateClaimed, stored.State, "a failed mint must not advance the session")
}

func TestQRLoginService_Approve_LostTransitionRevokesPair(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryQRStore()

	var revoked []string
	auth := &mockAuthService{
		logoutFn: func(_ context.Context, refreshToken string) error {
			revoked = append(revoked, refreshToken)
			return nil
		},
	}
	svc := newTestQRLoginService(t, sessions, auth)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)

	// A concurrent deny slips in between the ownership check and the
	// approve transition.
	auth.mintPairFn = func(_ context.Context, _ int64, _ string, _ models.DeviceInfo) (models.TokenPair, error) {
		_, err := sessions.Transition(ctx, created.SessionID, models.QRStateClaimed, models.QRStateDenied, nil)
		require.NoError(t, err)
		return models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
	}

	err = svc.Approve(ctx, 7, created.SessionID)

	require.ErrorIs(t, err, store.ErrQRSessionConflict)
	assert.Equal(t, []string{"refresh"}, revoked, "a pair the session cannot carry must be revoked")
}

func TestQRLoginService_Deny_NotOwner(t *testing.T) {
	ctx := context.Background()
	svc := newTestQRLoginService(t, nil, nil)

	created, err := svc.Create(ctx, initiatingDevice)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, 7, created.SessionID, scanTokenFromQR(t, created.QRContent))
	require.NoError(t, err)

	err = svc.Deny(ctx, 8, created.SessionID)

	require.ErrorIs(t, err, ErrNotSessionOwner)
}
