// Package signer provides the signing capability used by the transaction
// pipeline: given a payload digest, produce a signature and report the
// public key it was made under. Implementations range from a single in-memory
// key to a rotating multi-key pool; remote or hardware signers satisfy the
// same contract.
package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// ErrNoKeyMaterial is returned when a signer has no usable key.
var ErrNoKeyMaterial = errors.New("signer has no key material")

// Signer signs submission payloads on behalf of one account.
//
// Signing failures are never retried here; retry policy belongs to the
// pipeline, which may re-derive nonce and block hash before re-signing.
type Signer interface {
	// AccountID is the account this signer acts for.
	AccountID() types.AccountID

	// PublicKey is the key the next ClaimKey would select. For rotating
	// signers this is indicative only; use the claimed key's PublicKey
	// for anything that must match the produced signature.
	PublicKey() types.PublicKey

	// ClaimKey atomically claims a concrete key for one submission. The
	// claim is the only shared-mutable-state step in a submission and is
	// performed before any I/O.
	ClaimKey() ClaimedKey

	// Sign claims a key and signs msg with it, returning the signature
	// and the public key it was made under.
	Sign(ctx context.Context, msg []byte) (types.Signature, types.PublicKey, error)
}

// ClaimedKey is one concrete key claimed for a single submission. The same
// claimed key is reused when the submission is rebuilt during nonce
// recovery, so all attempts stay on one nonce sequence.
type ClaimedKey interface {
	PublicKey() types.PublicKey
	Sign(ctx context.Context, msg []byte) (types.Signature, error)
}

// claimedSecretKey is a ClaimedKey over a locally held secret key.
type claimedSecretKey struct {
	key types.SecretKey
}

func (c claimedSecretKey) PublicKey() types.PublicKey {
	return c.key.PublicKey()
}

func (c claimedSecretKey) Sign(_ context.Context, msg []byte) (types.Signature, error) {
	if c.key.IsZero() {
		return types.Signature{}, ErrNoKeyMaterial
	}
	sig, err := c.key.Sign(msg)
	if err != nil {
		return types.Signature{}, errors.Wrap(err, "failed to sign payload")
	}
	return sig, nil
}

func signWithClaim(ctx context.Context, s Signer, msg []byte) (types.Signature, types.PublicKey, error) {
	claimed := s.ClaimKey()
	sig, err := claimed.Sign(ctx, msg)
	if err != nil {
		return types.Signature{}, types.PublicKey{}, err
	}
	return sig, claimed.PublicKey(), nil
}
