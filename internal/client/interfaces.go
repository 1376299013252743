// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts the client application and blocks until exit.
	// startWithQR opens the UI directly on the QR sign-in screen.
	Run(ctx context.Context, startWithQR bool) error
}
