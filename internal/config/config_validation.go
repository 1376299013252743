// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package config

import "encoding/hex"

// validate checks that the final merged [StructuredConfig] satisfies all
// server invariants before it is used at startup.
//
// Secret material is required and never defaulted: a server that starts
// without explicit keys would mint forgeable tokens.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" || cfg.App.HashKey == "" {
		return ErrInvalidAppConfigs
	}

	if key, err := hex.DecodeString(cfg.App.SecretsKey); err != nil || len(key) != 32 {
		return ErrInvalidSecretsKey
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.QR.SessionTTL <= 0 {
		return ErrInvalidQRConfigs
	}

	if cfg.Workers.ReconcileInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
