package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// InMemorySigner holds one secret key in process memory.
//
// It carries no concurrency guard: two concurrent submissions for the same
// account would observe the same starting nonce and race. Callers that need
// concurrency on one account should use a RotatingSigner instead.
type InMemorySigner struct {
	accountID types.AccountID
	key       types.SecretKey
}

// NewInMemorySigner wraps an account id and its secret key.
func NewInMemorySigner(accountID types.AccountID, key types.SecretKey) (*InMemorySigner, error) {
	if accountID.IsZero() {
		return nil, errors.New("account id is required")
	}
	if key.IsZero() {
		return nil, ErrNoKeyMaterial
	}
	return &InMemorySigner{accountID: accountID, key: key}, nil
}

// NewInMemorySignerFromString parses the secret key text form, e.g.
// "ed25519:<base58>".
func NewInMemorySignerFromString(accountID types.AccountID, secretKey string) (*InMemorySigner, error) {
	key, err := types.ParseSecretKey(secretKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse secret key")
	}
	return NewInMemorySigner(accountID, key)
}

func (s *InMemorySigner) AccountID() types.AccountID {
	return s.accountID
}

func (s *InMemorySigner) PublicKey() types.PublicKey {
	return s.key.PublicKey()
}

func (s *InMemorySigner) ClaimKey() ClaimedKey {
	return claimedSecretKey{key: s.key}
}

func (s *InMemorySigner) Sign(ctx context.Context, msg []byte) (types.Signature, types.PublicKey, error) {
	return signWithClaim(ctx, s, msg)
}
