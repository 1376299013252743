// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

// Package client implements the interactive client application runtime.
//
// It ties the terminal UI and the server adapter into a single process
// lifecycle with structured logging around the session.
package client
