package signer

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/keystore"
	"github/chapool/go-near/internal/near/types"
)

// NewFileSigner loads credentials from path at construction. Plaintext
// credential files load directly; sealed keystore envelopes require a
// passphrase via NewEncryptedFileSigner.
func NewFileSigner(path string) (*InMemorySigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credentials file %s", path)
	}

	if keystore.IsEnvelope(raw) {
		return nil, errors.Errorf("credentials file %s is passphrase-sealed", path)
	}

	accountID, key, err := ParseCredentials(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid credentials file %s", path)
	}

	return NewInMemorySigner(accountID, key)
}

// NewEncryptedFileSigner loads a sealed keystore envelope, unsealing it with
// the passphrase.
func NewEncryptedFileSigner(path, passphrase string) (*InMemorySigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keystore file %s", path)
	}

	var env keystore.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrapf(err, "invalid keystore file %s", path)
	}

	key, err := keystore.Open(&env, passphrase)
	if err != nil {
		return nil, err
	}

	return NewInMemorySigner(env.AccountID, key)
}

// NewCredentialsSigner loads an account's credentials from the conventional
// location <dir>/<network>/<account>.json. An empty dir means
// ~/.near-credentials.
func NewCredentialsSigner(dir, network string, accountID types.AccountID) (*InMemorySigner, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCredentialsDir(); err != nil {
			return nil, err
		}
	}
	return NewFileSigner(CredentialsPath(dir, network, accountID))
}
