package types

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
)

// CryptoHash is a 32-byte SHA-256 digest. It identifies blocks and
// transactions and is freely copyable.
type CryptoHash [32]byte

// HashBytes returns the SHA-256 digest of b.
func HashBytes(b []byte) CryptoHash {
	return sha256.Sum256(b)
}

// ParseCryptoHash decodes the canonical base58 text form of a hash.
func ParseCryptoHash(s string) (CryptoHash, error) {
	raw := base58.Decode(s)
	if len(raw) != 32 {
		return CryptoHash{}, errors.Errorf("hash %q does not decode to 32 bytes", s)
	}
	var h CryptoHash
	copy(h[:], raw)
	return h, nil
}

// String returns the base58 text form.
func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

// Bytes returns the digest as a fresh slice.
func (h CryptoHash) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

// MarshalJSON encodes the hash as a base58 JSON string.
func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a base58 JSON string.
func (h *CryptoHash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCryptoHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
