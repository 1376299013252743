// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

// Package tui is the interactive terminal front end of the account client.
// It is a single bubbletea program: one root model dispatches to per-screen
// sub-models, and all server traffic runs through adapter.ServerAdapter in
// command closures so the UI never blocks.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/galionhq/nexus/internal/adapter"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// ErrUserQuit reports that the user left the program deliberately, as
// opposed to the UI dying on an error.
var ErrUserQuit = errors.New("user quit")

// TUI runs the terminal client UI.
type TUI struct {
	server    adapter.ServerAdapter
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(server adapter.ServerAdapter, buildInfo models.AppBuildInfo, log *logger.Logger) (*TUI, error) {
	if server == nil {
		return nil, errors.New("tui: server adapter is required")
	}
	if log == nil {
		return nil, errors.New("tui: logger is required")
	}
	return &TUI{server: server, buildInfo: buildInfo, logger: log}, nil
}

// Run drives the whole interactive session in one program: sign-in flows,
// the account screen and everything reachable from it. startWithQR opens
// directly on the QR sign-in screen instead of the welcome menu.
//
// Returns ErrUserQuit when the user quit on purpose.
func (t *TUI) Run(ctx context.Context, startWithQR bool) error {
	deviceName, err := os.Hostname()
	if err != nil || deviceName == "" {
		deviceName = "terminal"
	}

	model := newAppModel(ctx, t.server, t.buildInfo.BuildVersion(), deviceName)
	if startWithQR {
		model.currentScreen = screenQRLogin
		model.qrLogin = model.qrLogin.reset()
	}

	t.logger.Debug().Bool("start_with_qr", startWithQR).Str("device", deviceName).Msg("starting terminal UI")

	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if runErr != nil {
		return runErr
	}

	result, ok := finalModel.(appModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.err != nil {
		return result.err
	}
	return nil
}
