// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package service

import (
	"encoding/hex"
	"fmt"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/crypto"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/store"
)

// Services aggregates every domain service behind one wiring point.
type Services struct {
	AuthService         AuthService
	TwoFAService        TwoFAService
	QRLoginService      QRLoginService
	BillingService      BillingService
	VerificationService VerificationService
	AppInfoService      AppInfoService
	HealthService       HealthService
}

// NewServices wires the service layer over the shared storages. The
// dependency order matters: the auth service delegates second-factor checks
// to the 2FA service, and the QR login service mints through auth.
func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	secretsKey, err := hex.DecodeString(cfg.App.SecretsKey)
	if err != nil {
		return nil, fmt.Errorf("error decoding secrets key: %w", err)
	}
	secretBox, err := crypto.NewSecretBox(secretsKey)
	if err != nil {
		return nil, fmt.Errorf("error building secret cipher: %w", err)
	}

	twoFA := NewTwoFAService(storages.Users, storages.TwoFA, secretBox, cfg.App.TokenIssuer, cfg.App.HashKey, logger)

	auth, err := NewAuthService(storages, twoFA, cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("error building auth service: %w", err)
	}

	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("error building app info service: %w", err)
	}

	return &Services{
		AuthService:         auth,
		TwoFAService:        twoFA,
		QRLoginService:      NewQRLoginService(storages.QRSessions, auth, cfg.App.HashKey, cfg.QR.SessionTTL, logger),
		BillingService:      NewBillingService(storages.Plans, storages.Subscriptions, logger),
		VerificationService: NewVerificationService(storages.Users, storages.VerificationCodes, storages.RefreshTokens, NewLogCodeSender(logger), cfg.App.HashKey, logger),
		AppInfoService:      appInfo,
		HealthService:       NewHealthService(storages, logger),
	}, nil
}
