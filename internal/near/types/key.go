package types

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

// KeyType tags keys and signatures with their curve. The numeric values are
// wire discriminants and must never change.
type KeyType uint8

const (
	KeyTypeEd25519   KeyType = 0
	KeyTypeSecp256k1 KeyType = 1
)

// ParseKeyType parses the textual curve name ("ed25519" or "secp256k1").
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "ed25519":
		return KeyTypeEd25519, nil
	case "secp256k1":
		return KeyTypeSecp256k1, nil
	default:
		return 0, errors.Errorf("unknown key type %q", s)
	}
}

func (t KeyType) String() string {
	switch t {
	case KeyTypeEd25519:
		return "ed25519"
	case KeyTypeSecp256k1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// PublicKeyLen returns the raw public key length for the curve: 32 bytes for
// ed25519, 33 bytes (compressed SEC1) for secp256k1.
func (t KeyType) PublicKeyLen() int {
	switch t {
	case KeyTypeSecp256k1:
		return 33
	default:
		return 32
	}
}

// SignatureLen returns the raw signature length for the curve: 64 bytes for
// ed25519, 65 bytes (r ‖ s ‖ recovery id) for secp256k1.
func (t KeyType) SignatureLen() int {
	switch t {
	case KeyTypeSecp256k1:
		return 65
	default:
		return 64
	}
}

// PublicKey is a curve-tagged public key. Value type; the canonical text
// form is "<curve>:<base58 raw bytes>".
type PublicKey struct {
	keyType KeyType
	data    []byte
}

// ParsePublicKey parses the canonical text form. A bare base58 string
// without a curve prefix is treated as ed25519. The raw bytes are validated
// as a curve point where the curve permits it.
func ParsePublicKey(s string) (PublicKey, error) {
	keyType, payload, err := splitKeyText(s)
	if err != nil {
		return PublicKey{}, err
	}

	data := base58.Decode(payload)
	if len(data) == 0 && payload != "" {
		return PublicKey{}, errors.Errorf("public key %q is not valid base58", s)
	}
	if len(data) != keyType.PublicKeyLen() {
		return PublicKey{}, errors.Errorf("%s public key must be %d bytes, got %d", keyType, keyType.PublicKeyLen(), len(data))
	}
	if keyType == KeyTypeSecp256k1 {
		if _, err := ethcrypto.DecompressPubkey(data); err != nil {
			return PublicKey{}, errors.Wrap(err, "invalid secp256k1 curve point")
		}
	}

	return PublicKey{keyType: keyType, data: data}, nil
}

// Ed25519PublicKeyFromBytes wraps raw 32-byte ed25519 key material.
func Ed25519PublicKeyFromBytes(b [32]byte) PublicKey {
	return PublicKey{keyType: KeyTypeEd25519, data: b[:]}
}

func splitKeyText(s string) (KeyType, string, error) {
	if curve, payload, ok := strings.Cut(s, ":"); ok {
		keyType, err := ParseKeyType(curve)
		if err != nil {
			return 0, "", err
		}
		return keyType, payload, nil
	}
	return KeyTypeEd25519, s, nil
}

// KeyType returns the curve tag.
func (p PublicKey) KeyType() KeyType {
	return p.keyType
}

// Bytes returns the raw key material as a fresh slice.
func (p PublicKey) Bytes() []byte {
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out
}

// IsZero reports whether p is the uninitialized zero value.
func (p PublicKey) IsZero() bool {
	return len(p.data) == 0
}

// Equal reports byte-wise equality of curve tag and key material.
func (p PublicKey) Equal(other PublicKey) bool {
	return p.keyType == other.keyType && string(p.data) == string(other.data)
}

// ImplicitAccountID derives the implicit account id (64 lowercase hex chars)
// controlled by an ed25519 key. Returns the zero AccountID for other curves.
func (p PublicKey) ImplicitAccountID() AccountID {
	if p.keyType != KeyTypeEd25519 || len(p.data) != 32 {
		return AccountID{}
	}
	return AccountID{id: hex.EncodeToString(p.data)}
}

func (p PublicKey) String() string {
	return p.keyType.String() + ":" + base58.Encode(p.data)
}

// MarshalJSON encodes the canonical text form.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes and validates the canonical text form.
func (p *PublicKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PublicKey) borshEncode(e *borsh.Encoder) {
	e.U8(uint8(p.keyType))
	e.FixedBytes(p.data)
}

func publicKeyFromBorsh(d *borsh.Decoder) (PublicKey, error) {
	tag, err := d.U8()
	if err != nil {
		return PublicKey{}, err
	}
	if tag > uint8(KeyTypeSecp256k1) {
		return PublicKey{}, errors.Errorf("unknown public key tag %d", tag)
	}
	keyType := KeyType(tag)
	data, err := d.FixedBytes(keyType.PublicKeyLen())
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{keyType: keyType, data: data}, nil
}

// SecretKey holds private key material. It never leaves its owner except
// through Export; String and the "%v" verbs print a redacted form.
type SecretKey struct {
	keyType KeyType
	data    []byte // ed25519: 32-byte seed; secp256k1: 32-byte scalar
}

// GenerateSecretKey creates a fresh random key on the given curve.
func GenerateSecretKey(keyType KeyType) (SecretKey, error) {
	switch keyType {
	case KeyTypeEd25519:
		var seed [32]byte
		if _, err := rand.Read(seed[:]); err != nil {
			return SecretKey{}, errors.Wrap(err, "failed to read entropy")
		}
		return SecretKey{keyType: keyType, data: seed[:]}, nil
	case KeyTypeSecp256k1:
		priv, err := ethcrypto.GenerateKey()
		if err != nil {
			return SecretKey{}, errors.Wrap(err, "failed to generate secp256k1 key")
		}
		return SecretKey{keyType: keyType, data: ethcrypto.FromECDSA(priv)}, nil
	default:
		return SecretKey{}, errors.Errorf("unknown key type %d", keyType)
	}
}

// Ed25519SecretKeyFromSeed wraps a raw 32-byte ed25519 seed.
func Ed25519SecretKeyFromSeed(seed [32]byte) SecretKey {
	data := make([]byte, 32)
	copy(data, seed[:])
	return SecretKey{keyType: KeyTypeEd25519, data: data}
}

// ParseSecretKey parses "<curve>:<base58>". Ed25519 payloads may be 32 bytes
// (a seed) or 64 bytes (expanded seed ‖ public key, as written by most NEAR
// tooling); the seed half is kept. Secp256k1 payloads must be 32 bytes.
func ParseSecretKey(s string) (SecretKey, error) {
	keyType, payload, err := splitKeyText(s)
	if err != nil {
		return SecretKey{}, err
	}

	data := base58.Decode(payload)
	if len(data) == 0 {
		return SecretKey{}, errors.New("secret key is not valid base58")
	}

	switch keyType {
	case KeyTypeEd25519:
		if len(data) != 32 && len(data) != 64 {
			return SecretKey{}, errors.Errorf("ed25519 secret key must be 32 or 64 bytes, got %d", len(data))
		}
		data = data[:32]
	case KeyTypeSecp256k1:
		if len(data) != 32 {
			return SecretKey{}, errors.Errorf("secp256k1 secret key must be 32 bytes, got %d", len(data))
		}
		if _, err := ethcrypto.ToECDSA(data); err != nil {
			return SecretKey{}, errors.Wrap(err, "invalid secp256k1 scalar")
		}
	}

	return SecretKey{keyType: keyType, data: data}, nil
}

// KeyType returns the curve tag.
func (k SecretKey) KeyType() KeyType {
	return k.keyType
}

// IsZero reports whether k holds no key material.
func (k SecretKey) IsZero() bool {
	return len(k.data) == 0
}

// PublicKey derives the public half.
func (k SecretKey) PublicKey() PublicKey {
	switch k.keyType {
	case KeyTypeEd25519:
		priv := ed25519.NewKeyFromSeed(k.data)
		pub := make([]byte, 32)
		copy(pub, priv[32:])
		return PublicKey{keyType: KeyTypeEd25519, data: pub}
	case KeyTypeSecp256k1:
		priv, err := ethcrypto.ToECDSA(k.data)
		if err != nil {
			return PublicKey{}
		}
		return PublicKey{keyType: KeyTypeSecp256k1, data: ethcrypto.CompressPubkey(&priv.PublicKey)}
	default:
		return PublicKey{}
	}
}

// Sign produces a signature over msg. For secp256k1 msg must be a 32-byte
// digest (the transaction hash); ed25519 signs msg as given.
func (k SecretKey) Sign(msg []byte) (Signature, error) {
	switch k.keyType {
	case KeyTypeEd25519:
		priv := ed25519.NewKeyFromSeed(k.data)
		return Signature{keyType: KeyTypeEd25519, data: ed25519.Sign(priv, msg)}, nil
	case KeyTypeSecp256k1:
		if len(msg) != 32 {
			return Signature{}, errors.Errorf("secp256k1 signing requires a 32-byte digest, got %d bytes", len(msg))
		}
		priv, err := ethcrypto.ToECDSA(k.data)
		if err != nil {
			return Signature{}, errors.Wrap(err, "invalid secp256k1 scalar")
		}
		sig, err := ethcrypto.Sign(msg, priv)
		if err != nil {
			return Signature{}, errors.Wrap(err, "secp256k1 signing failed")
		}
		return Signature{keyType: KeyTypeSecp256k1, data: sig}, nil
	default:
		return Signature{}, errors.Errorf("unknown key type %d", k.keyType)
	}
}

// Export returns the canonical text form carrying the full key material.
// Only credential writers call this.
func (k SecretKey) Export() string {
	if k.keyType == KeyTypeEd25519 {
		// Write the conventional 64-byte seed ‖ public form.
		priv := ed25519.NewKeyFromSeed(k.data)
		return k.keyType.String() + ":" + base58.Encode(priv)
	}
	return k.keyType.String() + ":" + base58.Encode(k.data)
}

// Zero wipes the key material in place.
func (k *SecretKey) Zero() {
	for i := range k.data {
		k.data[i] = 0
	}
	k.data = nil
}

// String returns a redacted form. Secret material is never printed.
func (k SecretKey) String() string {
	return k.keyType.String() + ":<redacted>"
}

// Format implements fmt.Formatter so that %v, %+v, %s and %q all print the
// redacted form.
func (k SecretKey) Format(f fmt.State, verb rune) {
	_, _ = f.Write([]byte(k.String()))
}

// Signature is a curve-tagged signature. Value type; canonical text form is
// "<curve>:<base58 raw bytes>".
type Signature struct {
	keyType KeyType
	data    []byte
}

// ParseSignature parses the canonical text form.
func ParseSignature(s string) (Signature, error) {
	keyType, payload, err := splitKeyText(s)
	if err != nil {
		return Signature{}, err
	}
	data := base58.Decode(payload)
	if len(data) != keyType.SignatureLen() {
		return Signature{}, errors.Errorf("%s signature must be %d bytes, got %d", keyType, keyType.SignatureLen(), len(data))
	}
	return Signature{keyType: keyType, data: data}, nil
}

// KeyType returns the curve tag.
func (s Signature) KeyType() KeyType {
	return s.keyType
}

// Bytes returns the raw signature as a fresh slice.
func (s Signature) Bytes() []byte {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// IsZero reports whether s is the uninitialized zero value.
func (s Signature) IsZero() bool {
	return len(s.data) == 0
}

// Verify reports whether s is a valid signature over msg by pub. The curve
// tags must match.
func (s Signature) Verify(msg []byte, pub PublicKey) bool {
	if s.keyType != pub.keyType {
		return false
	}
	switch s.keyType {
	case KeyTypeEd25519:
		if len(pub.data) != ed25519.PublicKeySize || len(s.data) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pub.data), msg, s.data)
	case KeyTypeSecp256k1:
		if len(msg) != 32 || len(s.data) != 65 {
			return false
		}
		return ethcrypto.VerifySignature(pub.data, msg, s.data[:64])
	default:
		return false
	}
}

func (s Signature) String() string {
	return s.keyType.String() + ":" + base58.Encode(s.data)
}

// MarshalJSON encodes the canonical text form.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the canonical text form.
func (s *Signature) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return err
	}
	parsed, err := ParseSignature(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Signature) borshEncode(e *borsh.Encoder) {
	e.U8(uint8(s.keyType))
	e.FixedBytes(s.data)
}

func signatureFromBorsh(d *borsh.Decoder) (Signature, error) {
	tag, err := d.U8()
	if err != nil {
		return Signature{}, err
	}
	if tag > uint8(KeyTypeSecp256k1) {
		return Signature{}, errors.Errorf("unknown signature tag %d", tag)
	}
	keyType := KeyType(tag)
	data, err := d.FixedBytes(keyType.SignatureLen())
	if err != nil {
		return Signature{}, err
	}
	return Signature{keyType: keyType, data: data}, nil
}
