package signer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// CredentialsFile is the plaintext credential format used by NEAR tooling.
// Both "private_key" and the older "secret_key" field name are accepted.
type CredentialsFile struct {
	AccountID  types.AccountID `json:"account_id"`
	PublicKey  types.PublicKey `json:"public_key"`
	PrivateKey string          `json:"private_key,omitempty"`
	SecretKey  string          `json:"secret_key,omitempty"`
}

// DefaultCredentialsDir returns ~/.near-credentials.
func DefaultCredentialsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, ".near-credentials"), nil
}

// CredentialsPath returns the conventional path for an account's credentials
// within dir: <dir>/<network>/<account>.json.
func CredentialsPath(dir, network string, accountID types.AccountID) string {
	return filepath.Join(dir, network, accountID.String()+".json")
}

// ParseCredentials decodes a plaintext credentials file and extracts the
// secret key.
func ParseCredentials(raw []byte) (types.AccountID, types.SecretKey, error) {
	var file CredentialsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return types.AccountID{}, types.SecretKey{}, errors.Wrap(err, "failed to parse credentials file")
	}

	keyText := file.PrivateKey
	if keyText == "" {
		keyText = file.SecretKey
	}
	if keyText == "" {
		return types.AccountID{}, types.SecretKey{}, errors.New("credentials file has no private key")
	}

	key, err := types.ParseSecretKey(keyText)
	if err != nil {
		return types.AccountID{}, types.SecretKey{}, errors.Wrap(err, "failed to parse secret key")
	}
	if file.AccountID.IsZero() {
		return types.AccountID{}, types.SecretKey{}, errors.New("credentials file has no account id")
	}
	if !file.PublicKey.IsZero() && !key.PublicKey().Equal(file.PublicKey) {
		return types.AccountID{}, types.SecretKey{}, errors.New("credentials file public key does not match the private key")
	}

	return file.AccountID, key, nil
}

// WriteCredentialsFile writes plaintext credentials at the conventional path
// under dir, creating the network directory with owner-only permissions.
func WriteCredentialsFile(dir, network string, accountID types.AccountID, key types.SecretKey) (string, error) {
	if key.IsZero() {
		return "", ErrNoKeyMaterial
	}

	file := CredentialsFile{
		AccountID:  accountID,
		PublicKey:  key.PublicKey(),
		PrivateKey: key.Export(),
	}
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode credentials")
	}

	path := CredentialsPath(dir, network, accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create credentials directory")
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write credentials file")
	}

	return path, nil
}
