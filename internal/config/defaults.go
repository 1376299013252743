package config

import "time"

// Defaults applied when no other configuration source sets a value. Secret
// material (sign key, hash key, secrets key) deliberately has no default:
// validation fails loudly instead of shipping a well-known key.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:     "nexus",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 720 * time.Hour,
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Storage: Storage{
			Redis: Redis{
				Addr: "localhost:6379",
			},
		},
		QR: QR{
			SessionTTL: 5 * time.Minute,
		},
		Adapter: Adapter{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 10 * time.Second,
		},
		Workers: Workers{
			ReconcileInterval: time.Minute,
		},
	}
}
