package signer

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// RotatingSigner holds N keys for one account and claims them round-robin.
//
// Each physical key has an independent nonce sequence on the ledger, so up
// to N fully concurrent submissions proceed without colliding on a nonce.
// The claim is a single atomic fetch-and-increment; N concurrent claims in
// one round always select pairwise distinct keys.
type RotatingSigner struct {
	accountID types.AccountID
	keys      []types.SecretKey
	counter   atomic.Uint64
}

// NewRotatingSigner wraps an account id and its key pool.
func NewRotatingSigner(accountID types.AccountID, keys []types.SecretKey) (*RotatingSigner, error) {
	if accountID.IsZero() {
		return nil, errors.New("account id is required")
	}
	if len(keys) == 0 {
		return nil, errors.New("rotating signer needs at least one key")
	}
	for i, k := range keys {
		if k.IsZero() {
			return nil, errors.Errorf("key %d has no material", i)
		}
	}

	pool := make([]types.SecretKey, len(keys))
	copy(pool, keys)
	return &RotatingSigner{accountID: accountID, keys: pool}, nil
}

func (s *RotatingSigner) AccountID() types.AccountID {
	return s.accountID
}

// Len returns the number of keys in the pool.
func (s *RotatingSigner) Len() int {
	return len(s.keys)
}

// PublicKey returns the key the next claim would select, without consuming a
// rotation slot. Indicative only under concurrency.
func (s *RotatingSigner) PublicKey() types.PublicKey {
	idx := s.counter.Load() % uint64(len(s.keys))
	return s.keys[idx].PublicKey()
}

// ClaimKey atomically selects the next key in rotation.
func (s *RotatingSigner) ClaimKey() ClaimedKey {
	idx := (s.counter.Add(1) - 1) % uint64(len(s.keys))
	return claimedSecretKey{key: s.keys[idx]}
}

func (s *RotatingSigner) Sign(ctx context.Context, msg []byte) (types.Signature, types.PublicKey, error) {
	return signWithClaim(ctx, s, msg)
}
