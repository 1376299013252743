package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// LogFile is where the terminal client writes structured logs.
	LogFile string
	// Version is the client build version shown in the UI.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the nexus server endpoint the client talks to.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via the same env/flags/json/defaults pipeline the
// server uses — skipping the server-only validation rules — maps only the
// fields relevant to the client runtime, and validates the resulting
// [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	builder := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults()

	if builder.err != nil {
		return nil, fmt.Errorf("error get structured config: %w", builder.err)
	}

	cfg, err := builder.merge()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogFile: cfg.App.LogFile,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
	}

	return clientCfg, clientCfg.validate()
}
