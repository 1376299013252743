package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-d database DSN (postgres:// URI or SQLite path)
//	-redis redis address in format [host]:[port]
//	-server address of the nexus server (terminal client only)
//	-c/-config json file path with configs
//	-token-sign-key JWT signing key
//	-token-issuer token issuer name
//	-access-token-ttl access token lifetime (e.g., "15m")
//	-refresh-token-ttl refresh token lifetime (e.g., "720h")
//	-hash-key HMAC key for stored secrets
//	-secrets-key hex AES-256 key for TOTP secrets at rest
//	-qr-session-ttl QR sign-in session lifetime (e.g., "5m")
//	-reconcile-interval subscription reconciler tick (e.g., "1m")
//	-request-timeout request timeout (e.g., "30s", "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress, redisAddress, upstreamAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var accessTokenTTL time.Duration
	var refreshTokenTTL time.Duration
	var hashKey string
	var secretsKey string
	var qrSessionTTL time.Duration
	var reconcileInterval time.Duration
	var requestTimeout time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.Var(&redisAddress, "redis", "Redis address host:port")
	flag.Var(&upstreamAddress, "server", "Nexus server address host:port (client)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&accessTokenTTL, "access-token-ttl", 0, "Access token TTL (e.g., 15m)")
	flag.DurationVar(&refreshTokenTTL, "refresh-token-ttl", 0, "Refresh token TTL (e.g., 720h)")
	flag.StringVar(&hashKey, "hash-key", "", "HMAC key for stored secrets")
	flag.StringVar(&secretsKey, "secrets-key", "", "Hex AES-256 key for TOTP secrets")
	flag.DurationVar(&qrSessionTTL, "qr-session-ttl", 0, "QR session TTL (e.g., 5m)")
	flag.DurationVar(&reconcileInterval, "reconcile-interval", 0, "Reconciler tick (e.g., 1m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:    tokenSignKey,
			TokenIssuer:     tokenIssuer,
			AccessTokenTTL:  accessTokenTTL,
			RefreshTokenTTL: refreshTokenTTL,
			HashKey:         hashKey,
			SecretsKey:      secretsKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Redis: Redis{
				Addr: redisAddress.String(),
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		QR: QR{
			SessionTTL: qrSessionTTL,
		},
		Adapter: Adapter{
			HTTPAddress: upstreamAddress.String(),
		},
		Workers: Workers{
			ReconcileInterval: reconcileInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string so the value
// does not shadow lower-priority sources during merging.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
