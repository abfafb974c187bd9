package client

import (
	"github.com/pkg/errors"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

// FromEnv builds a client from the environment-derived configuration.
//
// The signer is resolved in order: an inline private key, then the
// credentials directory. Without either the client comes up read-only.
func FromEnv() (*Client, error) {
	return FromConfig(config.DefaultServiceConfigFromEnv())
}

// FromConfig builds a client from an explicit configuration.
func FromConfig(cfg config.Service) (*Client, error) {
	b := Custom(cfg.Endpoint()).
		WithRetryConfig(cfg.RetryConfig()).
		WithWaitUntil(types.TxExecutionStatus(cfg.WaitUntil))

	s, err := signerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if s != nil {
		b.WithSigner(s)
	}

	return b.Build()
}

func signerFromConfig(cfg config.Service) (signer.Signer, error) {
	if cfg.AccountID == "" {
		return nil, nil
	}
	accountID, err := types.ParseAccountID(cfg.AccountID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid NEAR_ACCOUNT_ID")
	}

	if cfg.PrivateKey != "" {
		return signer.NewInMemorySignerFromString(accountID, cfg.PrivateKey)
	}
	if cfg.CredentialsDir != "" {
		return signer.NewCredentialsSigner(cfg.CredentialsDir, string(cfg.Network), accountID)
	}
	return nil, nil
}
