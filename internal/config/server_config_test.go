package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/rpc"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestPrivateKeyNeverSerialized(t *testing.T) {
	t.Setenv("NEAR_PRIVATE_KEY", "ed25519:supersecret")

	cfg := config.DefaultServiceConfigFromEnv()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotContains(t, string(raw), "supersecret")
}

func TestEndpointResolution(t *testing.T) {
	cfg := config.Service{Network: config.NetworkMainnet}
	assert.Equal(t, rpc.MainnetRPC, cfg.Endpoint())

	cfg.Network = config.NetworkLocalnet
	assert.Equal(t, rpc.LocalnetRPC, cfg.Endpoint())

	cfg.Network = config.NetworkTestnet
	assert.Equal(t, rpc.TestnetRPC, cfg.Endpoint())

	cfg.RPCURL = "https://rpc.example.com"
	assert.Equal(t, "https://rpc.example.com", cfg.Endpoint())
}

func TestRetryConfigFromEnv(t *testing.T) {
	t.Setenv("NEAR_RPC_MAX_RETRIES", "5")
	t.Setenv("NEAR_RPC_INITIAL_DELAY", "1s")

	cfg := config.DefaultServiceConfigFromEnv()
	rc := cfg.RetryConfig()
	assert.Equal(t, 5, rc.MaxRetries)
	assert.Equal(t, "1s", rc.InitialDelay.String())
}
