// Package keystore seals secret keys under a passphrase: an scrypt-derived
// key encrypts the secret key text with AES-256-GCM. The JSON envelope
// carries the account id and public key in the clear so tooling can list
// credentials without the passphrase.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
	"github/chapool/go-near/internal/near/types"
)

// ScryptParams are the KDF cost parameters recorded in the envelope.
type ScryptParams struct {
	N     int `json:"n"`
	R     int `json:"r"`
	P     int `json:"p"`
	DKLen int `json:"dklen"`
}

// DefaultScryptParams returns interactive-grade scrypt parameters.
func DefaultScryptParams() ScryptParams {
	return ScryptParams{N: 1 << 15, R: 8, P: 1, DKLen: 32}
}

// Envelope is the sealed credential file format.
type Envelope struct {
	AccountID types.AccountID `json:"account_id"`
	PublicKey types.PublicKey `json:"public_key"`
	Crypto    struct {
		Cipher     string       `json:"cipher"`
		Ciphertext string       `json:"ciphertext"`
		Nonce      string       `json:"nonce"`
		KDF        string       `json:"kdf"`
		KDFParams  ScryptParams `json:"kdfparams"`
		Salt       string       `json:"salt"`
	} `json:"crypto"`
}

const cipherName = "aes-256-gcm"

// Seal encrypts key under passphrase into an Envelope.
func Seal(accountID types.AccountID, key types.SecretKey, passphrase string) (*Envelope, error) {
	if key.IsZero() {
		return nil, errors.New("no key material to seal")
	}
	if passphrase == "" {
		return nil, errors.New("passphrase is empty")
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	params := DefaultScryptParams()
	derived, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	plaintext := []byte(key.Export())
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	for i := range plaintext {
		plaintext[i] = 0
	}

	env := &Envelope{AccountID: accountID, PublicKey: key.PublicKey()}
	env.Crypto.Cipher = cipherName
	env.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	env.Crypto.Nonce = hex.EncodeToString(nonce)
	env.Crypto.KDF = "scrypt"
	env.Crypto.KDFParams = params
	env.Crypto.Salt = hex.EncodeToString(salt)

	return env, nil
}

// Open decrypts the envelope with passphrase and returns the secret key.
func Open(env *Envelope, passphrase string) (types.SecretKey, error) {
	if env.Crypto.Cipher != cipherName {
		return types.SecretKey{}, errors.Errorf("unsupported cipher %q", env.Crypto.Cipher)
	}
	if env.Crypto.KDF != "scrypt" {
		return types.SecretKey{}, errors.Errorf("unsupported KDF %q", env.Crypto.KDF)
	}

	salt, err := hex.DecodeString(env.Crypto.Salt)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to decode salt")
	}
	nonce, err := hex.DecodeString(env.Crypto.Nonce)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to decode nonce")
	}
	ciphertext, err := hex.DecodeString(env.Crypto.Ciphertext)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to decode ciphertext")
	}

	p := env.Crypto.KDFParams
	derived, err := scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to derive key")
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to create GCM")
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return types.SecretKey{}, errors.New("invalid passphrase or corrupted keystore")
	}

	key, err := types.ParseSecretKey(string(plaintext))
	for i := range plaintext {
		plaintext[i] = 0
	}
	if err != nil {
		return types.SecretKey{}, errors.Wrap(err, "failed to parse sealed key")
	}

	if !key.PublicKey().Equal(env.PublicKey) {
		return types.SecretKey{}, errors.New("sealed key does not match envelope public key")
	}

	return key, nil
}

// IsEnvelope reports whether raw looks like a sealed credential file rather
// than a plaintext one.
func IsEnvelope(raw []byte) bool {
	var probe struct {
		Crypto *json.RawMessage `json:"crypto"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Crypto != nil
}
