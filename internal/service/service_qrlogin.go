package service

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/metrics"
	"github.com/galionhq/nexus/internal/store"
	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

// qrContentScheme is the URI scheme encoded into sign-in QR codes. The
// terminal client and the mobile deep-link handler both parse it.
const qrContentScheme = "nexus://qr-login"

const qrTokenBytes = 32

// qrLoginService implements the QR cross-device sign-in handshake on top of
// the Redis session store. State moves pending → claimed → approved →
// consumed (or denied), every hop a compare-and-set in the store.
type qrLoginService struct {
	sessions store.QRSessionStore
	auth     AuthService
	uuidGen  *utils.UUIDGenerator

	hashKey    string
	sessionTTL time.Duration

	logger *logger.Logger
}

// NewQRLoginService constructs a QRLoginService. The auth service mints the
// token pair handed over on approval.
func NewQRLoginService(sessions store.QRSessionStore, auth AuthService, hashKey string, sessionTTL time.Duration, logger *logger.Logger) QRLoginService {
	return &qrLoginService{
		sessions:   sessions,
		auth:       auth,
		uuidGen:    utils.NewUUIDGenerator(),
		hashKey:    hashKey,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Create opens a sign-in session for a logged-out device and returns the QR
// payload plus the poll secret. The scan token travels only inside the QR
// content; the server keeps hashes of both credentials.
func (s *qrLoginService) Create(ctx context.Context, device models.DeviceInfo) (models.QRCreated, error) {
	log := logger.FromContext(ctx)

	secret, err := utils.RandomToken(qrTokenBytes)
	if err != nil {
		log.Err(err).Str("func", "*qrLoginService.Create").Msg("error generating poll secret")
		return models.QRCreated{}, fmt.Errorf("error generating poll secret: %w", err)
	}
	scanToken, err := utils.RandomToken(qrTokenBytes)
	if err != nil {
		log.Err(err).Str("func", "*qrLoginService.Create").Msg("error generating scan token")
		return models.QRCreated{}, fmt.Errorf("error generating scan token: %w", err)
	}

	now := time.Now()
	session := models.QRSession{
		ID:            s.uuidGen.Generate(),
		SecretHash:    utils.HashString(secret, s.hashKey),
		ScanTokenHash: utils.HashString(scanToken, s.hashKey),
		State:         models.QRStatePending,
		DeviceName:    device.UserAgent,
		IP:            device.IP,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		log.Err(err).Str("func", "*qrLoginService.Create").Msg("error saving session")
		return models.QRCreated{}, fmt.Errorf("error saving session: %w", err)
	}

	// Both values are base64url / UUID, so the query needs no escaping.
	content := fmt.Sprintf("%s?session=%s&token=%s", qrContentScheme, session.ID, scanToken)

	png, err := qrcode.Encode(content, qrcode.Medium, qrCodePixels)
	if err != nil {
		log.Err(err).Str("func", "*qrLoginService.Create").Msg("error rendering qr code")
		return models.QRCreated{}, fmt.Errorf("error rendering qr code: %w", err)
	}

	metrics.IncQRSessionEvent("created")

	return models.QRCreated{
		SessionID:   session.ID,
		Secret:      secret,
		ExpiresIn:   int64(s.sessionTTL.Seconds()),
		QRContent:   content,
		QRPNGBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Poll reports the session state to the device that created it. The poll
// that first observes the approved state consumes the session and collects
// the minted tokens; everyone after that sees it gone.
func (s *qrLoginService) Poll(ctx context.Context, sessionID, secret string) (models.QRPollResult, error) {
	log := logger.FromContext(ctx)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrQRSessionNotFound) {
			// The only device polling is the one that created the session,
			// so a miss means the TTL ran out.
			metrics.IncQRSessionEvent("expired")
			return models.QRPollResult{}, err
		}

		log.Err(err).Str("func", "*qrLoginService.Poll").Msg("error loading session")
		return models.QRPollResult{}, fmt.Errorf("error loading session: %w", err)
	}

	if !hashMatches(secret, session.SecretHash, s.hashKey) {
		// Do not confirm the session's existence to a caller without the
		// poll secret.
		return models.QRPollResult{}, store.ErrQRSessionNotFound
	}

	switch session.State {
	case models.QRStatePending, models.QRStateClaimed:
		return models.QRPollResult{State: session.State}, nil

	case models.QRStateDenied:
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			log.Err(err).Str("func", "*qrLoginService.Poll").Msg("error deleting denied session")
		}
		return models.QRPollResult{State: models.QRStateDenied}, nil

	case models.QRStateApproved:
		consumed, err := s.sessions.Transition(ctx, sessionID, models.QRStateApproved, models.QRStateConsumed, nil)
		if err != nil {
			if errors.Is(err, store.ErrQRSessionConflict) || errors.Is(err, store.ErrQRSessionNotFound) {
				return models.QRPollResult{}, store.ErrQRSessionNotFound
			}

			log.Err(err).Str("func", "*qrLoginService.Poll").Msg("error consuming session")
			return models.QRPollResult{}, fmt.Errorf("error consuming session: %w", err)
		}

		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			log.Err(err).Str("func", "*qrLoginService.Poll").Msg("error deleting consumed session")
		}

		if consumed.Grant == nil {
			return models.QRPollResult{}, fmt.Errorf("approved session %s carries no grant", sessionID)
		}

		metrics.IncQRSessionEvent("consumed")
		metrics.IncLogin("qr", true)

		return models.QRPollResult{State: models.QRStateApproved, Tokens: consumed.Grant}, nil

	default:
		// A consumed session still present (deletion raced) reads as gone.
		return models.QRPollResult{}, store.ErrQRSessionNotFound
	}
}

// Claim binds a logged-in user to a pending session after checking the scan
// token from the QR code. The response tells the user what device they are
// about to sign in.
func (s *qrLoginService) Claim(ctx context.Context, userID int64, sessionID, scanToken string) (models.QRSessionInfo, error) {
	log := logger.FromContext(ctx)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrQRSessionNotFound) {
			return models.QRSessionInfo{}, err
		}

		log.Err(err).Str("func", "*qrLoginService.Claim").Msg("error loading session")
		return models.QRSessionInfo{}, fmt.Errorf("error loading session: %w", err)
	}

	if !hashMatches(scanToken, session.ScanTokenHash, s.hashKey) {
		return models.QRSessionInfo{}, ErrQRScanTokenInvalid
	}

	claimed, err := s.sessions.Transition(ctx, sessionID, models.QRStatePending, models.QRStateClaimed, func(qs *models.QRSession) {
		qs.UserID = userID
	})
	if err != nil {
		if errors.Is(err, store.ErrQRSessionConflict) || errors.Is(err, store.ErrQRSessionNotFound) {
			return models.QRSessionInfo{}, err
		}

		log.Err(err).Str("func", "*qrLoginService.Claim").Msg("error claiming session")
		return models.QRSessionInfo{}, fmt.Errorf("error claiming session: %w", err)
	}

	metrics.IncQRSessionEvent("claimed")

	return models.QRSessionInfo{
		DeviceName: claimed.DeviceName,
		IP:         claimed.IP,
		CreatedAt:  claimed.CreatedAt,
	}, nil
}

// Approve mints a token pair for the claimed session's user and parks it on
// the session for the initiating device's next poll. Only the user who
// claimed the session may approve it.
func (s *qrLoginService) Approve(ctx context.Context, userID int64, sessionID string) error {
	log := logger.FromContext(ctx)

	session, err := s.guardClaimed(ctx, userID, sessionID, "*qrLoginService.Approve")
	if err != nil {
		return err
	}

	// The pair belongs to the initiating device, so the session records its
	// user agent and address rather than the approving device's.
	pair, err := s.auth.MintPair(ctx, session.UserID, models.IssuedViaQR, models.DeviceInfo{
		UserAgent: session.DeviceName,
		IP:        session.IP,
	})
	if err != nil {
		log.Err(err).Str("func", "*qrLoginService.Approve").Msg("error minting token pair")
		return fmt.Errorf("error minting token pair: %w", err)
	}

	if _, err := s.sessions.Transition(ctx, sessionID, models.QRStateClaimed, models.QRStateApproved, func(qs *models.QRSession) {
		qs.Grant = &pair
	}); err != nil {
		// The pair was already persisted; without the approved session its
		// raw refresh token goes nowhere, so revoke the orphaned row.
		if revokeErr := s.auth.Logout(ctx, pair.RefreshToken); revokeErr != nil {
			log.Err(revokeErr).Str("func", "*qrLoginService.Approve").Msg("error revoking orphaned token pair")
		}

		if errors.Is(err, store.ErrQRSessionConflict) || errors.Is(err, store.ErrQRSessionNotFound) {
			return err
		}

		log.Err(err).Str("func", "*qrLoginService.Approve").Msg("error approving session")
		return fmt.Errorf("error approving session: %w", err)
	}

	metrics.IncQRSessionEvent("approved")
	return nil
}

// Deny rejects a claimed session. The initiating device learns on its next
// poll and the session is dropped.
func (s *qrLoginService) Deny(ctx context.Context, userID int64, sessionID string) error {
	log := logger.FromContext(ctx)

	if _, err := s.guardClaimed(ctx, userID, sessionID, "*qrLoginService.Deny"); err != nil {
		return err
	}

	if _, err := s.sessions.Transition(ctx, sessionID, models.QRStateClaimed, models.QRStateDenied, nil); err != nil {
		if errors.Is(err, store.ErrQRSessionConflict) || errors.Is(err, store.ErrQRSessionNotFound) {
			return err
		}

		log.Err(err).Str("func", "*qrLoginService.Deny").Msg("error denying session")
		return fmt.Errorf("error denying session: %w", err)
	}

	metrics.IncQRSessionEvent("denied")
	return nil
}

// guardClaimed loads a session and checks it is claimed by this user.
func (s *qrLoginService) guardClaimed(ctx context.Context, userID int64, sessionID, funcName string) (models.QRSession, error) {
	log := logger.FromContext(ctx)

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrQRSessionNotFound) {
			return models.QRSession{}, err
		}

		log.Err(err).Str("func", funcName).Msg("error loading session")
		return models.QRSession{}, fmt.Errorf("error loading session: %w", err)
	}

	if session.State != models.QRStateClaimed {
		return models.QRSession{}, store.ErrQRSessionConflict
	}
	if session.UserID != userID {
		return models.QRSession{}, ErrNotSessionOwner
	}

	return session, nil
}

// hashMatches compares a presented credential against its stored keyed hash
// in constant time.
func hashMatches(presented, storedHash, hashKey string) bool {
	computed := utils.HashString(presented, hashKey)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
