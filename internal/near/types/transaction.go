package types

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

// transactionVersionV1 is the leading version byte of the priority-fee
// transaction format. The legacy format has no version byte; its first byte
// is the low byte of the signer id length, which is always >= 2, so the two
// layouts cannot collide.
const transactionVersionV1 uint8 = 1

// Transaction is the unsigned transaction envelope. Field order is fixed by
// the wire contract. A non-zero PriorityFee selects the newer versioned
// layout with the fee as a trailing field.
type Transaction struct {
	SignerID   AccountID
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID AccountID
	BlockHash  CryptoHash
	Actions    []Action

	PriorityFee uint64

	// versioned records that this transaction was decoded from a versioned
	// envelope carrying a zero fee, so re-encoding reproduces that envelope.
	// A non-zero PriorityFee selects the versioned layout on its own.
	versioned bool
}

// Encode returns the canonical byte encoding. Deterministic: byte-identical
// output for identical input, forever.
func (t *Transaction) Encode() ([]byte, error) {
	if t.SignerID.IsZero() {
		return nil, errors.New("transaction has no signer id")
	}
	if t.ReceiverID.IsZero() {
		return nil, errors.New("transaction has no receiver id")
	}
	if t.PublicKey.IsZero() {
		return nil, errors.New("transaction has no public key")
	}

	e := borsh.NewEncoder()
	v1 := t.PriorityFee != 0 || t.versioned
	if v1 {
		e.U8(transactionVersionV1)
	}
	t.SignerID.borshEncode(e)
	t.PublicKey.borshEncode(e)
	e.U64(t.Nonce)
	t.ReceiverID.borshEncode(e)
	e.FixedBytes(t.BlockHash[:])
	e.VecLen(len(t.Actions))
	for i, a := range t.Actions {
		if err := encodeAction(e, a); err != nil {
			return nil, errors.Wrapf(err, "failed to encode action %d", i)
		}
	}
	if v1 {
		e.U64(t.PriorityFee)
	}

	return e.Bytes(), nil
}

// Hash encodes the transaction and returns the SHA-256 digest together with
// the encoded bytes. The digest is the message that gets signed.
func (t *Transaction) Hash() (CryptoHash, []byte, error) {
	encoded, err := t.Encode()
	if err != nil {
		return CryptoHash{}, nil, err
	}
	return HashBytes(encoded), encoded, nil
}

// Sign hashes the transaction and signs the digest with key, returning the
// signed envelope. The key must match the transaction's public key.
func (t *Transaction) Sign(key SecretKey) (*SignedTransaction, error) {
	if !key.PublicKey().Equal(t.PublicKey) {
		return nil, errors.New("signing key does not match the transaction's public key")
	}
	hash, _, err := t.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(hash.Bytes())
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{Transaction: *t, Signature: sig}, nil
}

// DecodeTransaction is the inverse of Encode. Re-encoding the result
// reproduces the input bytes exactly.
func DecodeTransaction(b []byte) (*Transaction, error) {
	d := borsh.NewDecoder(b)
	tx, err := transactionFromBorsh(d)
	if err != nil {
		return nil, err
	}
	if err := d.Done(); err != nil {
		return nil, err
	}
	return tx, nil
}

func transactionFromBorsh(d *borsh.Decoder) (*Transaction, error) {
	var tx Transaction
	var err error

	versioned := false
	if b, err := d.U8(); err != nil {
		return nil, err
	} else if b == transactionVersionV1 {
		versioned = true
		if tx.SignerID, err = accountIDFromBorsh(d); err != nil {
			return nil, err
		}
	} else {
		// Legacy layout: the byte was the start of the signer id length.
		rest, err := restoreLength(d, b)
		if err != nil {
			return nil, err
		}
		if tx.SignerID, err = ParseAccountID(rest); err != nil {
			return nil, err
		}
	}

	if tx.PublicKey, err = publicKeyFromBorsh(d); err != nil {
		return nil, err
	}
	if tx.Nonce, err = d.U64(); err != nil {
		return nil, err
	}
	if tx.ReceiverID, err = accountIDFromBorsh(d); err != nil {
		return nil, err
	}
	raw, err := d.FixedBytes(32)
	if err != nil {
		return nil, err
	}
	copy(tx.BlockHash[:], raw)
	n, err := d.VecLen()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		a, err := actionFromBorsh(d)
		if err != nil {
			return nil, err
		}
		tx.Actions = append(tx.Actions, a)
	}
	if versioned {
		if tx.PriorityFee, err = d.U64(); err != nil {
			return nil, err
		}
		tx.versioned = tx.PriorityFee == 0
	}

	return &tx, nil
}

// restoreLength finishes reading a u32 string length whose first byte was
// already consumed while probing for the version discriminant, then reads
// the string itself.
func restoreLength(d *borsh.Decoder, first uint8) (string, error) {
	tail, err := d.FixedBytes(3)
	if err != nil {
		return "", err
	}
	n := uint32(first) | uint32(tail[0])<<8 | uint32(tail[1])<<16 | uint32(tail[2])<<24
	if uint64(n) > uint64(d.Remaining()) {
		return "", errors.Errorf("string length %d exceeds remaining input", n)
	}
	raw, err := d.FixedBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SignedTransaction is the transaction plus its signature, the only payload
// ever sent to the network.
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

// Encode appends the signature to the transaction encoding.
func (s *SignedTransaction) Encode() ([]byte, error) {
	encoded, err := s.Transaction.Encode()
	if err != nil {
		return nil, err
	}
	e := borsh.NewEncoder()
	e.FixedBytes(encoded)
	s.Signature.borshEncode(e)
	return e.Bytes(), nil
}

// Hash returns the transaction hash, the network-wide identity of this
// transaction.
func (s *SignedTransaction) Hash() (CryptoHash, error) {
	hash, _, err := s.Transaction.Hash()
	return hash, err
}

// ToBase64 encodes the signed transaction for JSON transport.
func (s *SignedTransaction) ToBase64() (string, error) {
	encoded, err := s.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(encoded), nil
}

// DecodeSignedTransaction is the inverse of Encode.
func DecodeSignedTransaction(b []byte) (*SignedTransaction, error) {
	d := borsh.NewDecoder(b)
	tx, err := transactionFromBorsh(d)
	if err != nil {
		return nil, err
	}
	sig, err := signatureFromBorsh(d)
	if err != nil {
		return nil, err
	}
	if err := d.Done(); err != nil {
		return nil, err
	}
	return &SignedTransaction{Transaction: *tx, Signature: sig}, nil
}

// SignedTransactionFromBase64 decodes the base64 form produced by ToBase64.
func SignedTransactionFromBase64(s string) (*SignedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64")
	}
	return DecodeSignedTransaction(raw)
}
