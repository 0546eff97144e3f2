package config

import (
	"os"
	"strings"
	"time"
)

// Storage selects where the identity directory is mirrored.
type StorageMode string

const (
	StorageFile     StorageMode = "file"
	StoragePostgres StorageMode = "postgres"
)

// WalletMode selects the wallet connector implementation.
type WalletMode string

const (
	WalletMock      WalletMode = "mock"
	WalletExtension WalletMode = "extension"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	Storage     StorageMode
	DataDir     string
	PostgresDSN string
	RedisURL    string

	Wallet               WalletMode
	WalletAddress        string
	WalletConnectDelay   time.Duration
	AuthenticatorURL     string
	WalletInstallPageURL string

	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 getenv("BITID_ADDR", ":8080"),
		JWTSigningKey:        getenv("BITID_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Storage:              StorageMode(getenv("BITID_STORAGE", string(StorageFile))),
		DataDir:              getenv("BITID_DATA_DIR", "./data"),
		PostgresDSN:          os.Getenv("BITID_POSTGRES_DSN"),
		RedisURL:             os.Getenv("BITID_REDIS_URL"),
		Wallet:               WalletMode(getenv("BITID_WALLET", string(WalletMock))),
		WalletAddress:        getenv("BITID_WALLET_ADDRESS", "bc1q9h805z6vkn87zx584ngnj88tn4vsp7hdzwqf45"),
		WalletConnectDelay:   1500 * time.Millisecond,
		AuthenticatorURL:     os.Getenv("BITID_AUTHENTICATOR_URL"),
		WalletInstallPageURL: getenv("BITID_WALLET_INSTALL_URL", "https://wallet.example.com/install"),
		AuditTopic:           getenv("BITID_AUDIT_TOPIC", "bitid.audit"),
	}

	if brokers := os.Getenv("BITID_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if d, err := time.ParseDuration(os.Getenv("BITID_WALLET_CONNECT_DELAY")); err == nil {
		cfg.WalletConnectDelay = d
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
