// Package config assembles the service configuration from environment
// variables. Every knob has a default so a zero-config run against testnet
// works out of the box.
package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/go-near/internal/near/rpc"
)

var loadDotEnvOnce sync.Once

// Network selects one of the well-known chains, or "custom" together with
// an explicit RPC URL.
type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkTestnet  Network = "testnet"
	NetworkLocalnet Network = "localnet"
)

// Logger configures the zerolog global logger.
type Logger struct {
	Level              string `json:"level"`
	PrettyPrintConsole bool   `json:"pretty_print_console"`
}

// Retry mirrors the transport retry policy.
type Retry struct {
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
}

// Service is the full configuration surface of the CLI and client.
type Service struct {
	Network        Network `json:"network"`
	RPCURL         string  `json:"rpc_url"`
	AccountID      string  `json:"account_id"`
	PrivateKey     string  `json:"-"` // never serialized
	CredentialsDir string  `json:"credentials_dir"`
	WaitUntil      string  `json:"wait_until"`
	Retry          Retry   `json:"retry"`
	Logger         Logger  `json:"logger"`
}

// DefaultServiceConfigFromEnv returns the configuration resolved from the
// environment, loading a local .env file first if one exists.
func DefaultServiceConfigFromEnv() Service {
	loadDotEnvOnce.Do(func() {
		// Missing .env is the normal case, not an error.
		_ = gotenv.Load()
	})

	retryDefaults := rpc.DefaultRetryConfig()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("NEAR_NETWORK", string(NetworkTestnet))
	v.SetDefault("NEAR_RPC_URL", "")
	v.SetDefault("NEAR_ACCOUNT_ID", "")
	v.SetDefault("NEAR_PRIVATE_KEY", "")
	v.SetDefault("NEAR_CREDENTIALS_DIR", "")
	v.SetDefault("NEAR_WAIT_UNTIL", "")
	v.SetDefault("NEAR_RPC_MAX_RETRIES", retryDefaults.MaxRetries)
	v.SetDefault("NEAR_RPC_INITIAL_DELAY", retryDefaults.InitialDelay)
	v.SetDefault("NEAR_RPC_MAX_DELAY", retryDefaults.MaxDelay)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY_PRINT_CONSOLE", false)

	return Service{
		Network:        Network(v.GetString("NEAR_NETWORK")),
		RPCURL:         v.GetString("NEAR_RPC_URL"),
		AccountID:      v.GetString("NEAR_ACCOUNT_ID"),
		PrivateKey:     v.GetString("NEAR_PRIVATE_KEY"),
		CredentialsDir: v.GetString("NEAR_CREDENTIALS_DIR"),
		WaitUntil:      v.GetString("NEAR_WAIT_UNTIL"),
		Retry: Retry{
			MaxRetries:   v.GetInt("NEAR_RPC_MAX_RETRIES"),
			InitialDelay: v.GetDuration("NEAR_RPC_INITIAL_DELAY"),
			MaxDelay:     v.GetDuration("NEAR_RPC_MAX_DELAY"),
		},
		Logger: Logger{
			Level:              v.GetString("LOG_LEVEL"),
			PrettyPrintConsole: v.GetBool("LOG_PRETTY_PRINT_CONSOLE"),
		},
	}
}

// Endpoint resolves the RPC URL: an explicit NEAR_RPC_URL wins, otherwise
// the network's well-known endpoint.
func (s Service) Endpoint() string {
	if s.RPCURL != "" {
		return s.RPCURL
	}
	switch s.Network {
	case NetworkMainnet:
		return rpc.MainnetRPC
	case NetworkLocalnet:
		return rpc.LocalnetRPC
	default:
		return rpc.TestnetRPC
	}
}

// RetryConfig converts the configured retry knobs to the transport type.
func (s Service) RetryConfig() rpc.RetryConfig {
	return rpc.RetryConfig{
		MaxRetries:   s.Retry.MaxRetries,
		InitialDelay: s.Retry.InitialDelay,
		MaxDelay:     s.Retry.MaxDelay,
	}
}
