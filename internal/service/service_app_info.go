package service

import (
	"context"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
)

// appInfoService serves static application metadata. The version string is
// injected at build time through the config layer.
type appInfoService struct {
	appVersion string

	logger *logger.Logger
}

func NewAppInfoService(cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
