package client

import (
	"context"
	"errors"

	"github.com/galionhq/nexus/internal/adapter"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/internal/tui"
)

// App is the terminal client runtime: the REST adapter and the UI tied into
// one process lifecycle.
type App struct {
	server adapter.ServerAdapter
	ui     *tui.TUI
	logger *logger.Logger
}

func NewApp(server adapter.ServerAdapter, ui *tui.TUI, log *logger.Logger) (*App, error) {
	if server == nil {
		return nil, errors.New("client: server adapter is required")
	}
	if ui == nil {
		return nil, errors.New("client: terminal UI is required")
	}
	if log == nil {
		return nil, errors.New("client: logger is required")
	}

	return &App{server: server, ui: ui, logger: log}, nil
}

// Run drives the UI until the user leaves. A deliberate quit is a clean
// exit; anything else is returned to the caller.
func (a *App) Run(ctx context.Context, startWithQR bool) error {
	a.logger.Info().Msg("client session starting")

	err := a.ui.Run(ctx, startWithQR)
	if err != nil && !errors.Is(err, tui.ErrUserQuit) {
		a.logger.Error().Err(err).Msg("terminal UI failed")
		return err
	}

	a.logger.Info().Msg("client session ended")
	return nil
}
