package signer

import (
	"os"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// Environment variables consumed by NewEnvSigner.
const (
	EnvAccountID  = "NEAR_ACCOUNT_ID"
	EnvPrivateKey = "NEAR_PRIVATE_KEY"
)

// NewEnvSigner reads the account id and secret key from the environment at
// construction. Nothing re-reads the environment afterwards.
func NewEnvSigner() (*InMemorySigner, error) {
	accountText := os.Getenv(EnvAccountID)
	if accountText == "" {
		return nil, errors.Errorf("%s is not set", EnvAccountID)
	}
	keyText := os.Getenv(EnvPrivateKey)
	if keyText == "" {
		return nil, errors.Errorf("%s is not set", EnvPrivateKey)
	}

	accountID, err := types.ParseAccountID(accountText)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvAccountID)
	}

	return NewInMemorySignerFromString(accountID, keyText)
}
