package types

import (
	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

// DelegateActionPrefix (2^30 + 366) is prepended, little-endian, to an
// encoded DelegateAction before signing, so delegate signatures can never be
// confused with transaction signatures.
const DelegateActionPrefix uint32 = 1_073_742_190

// DelegateAction describes work a relayer may submit and pay gas for on the
// sender's behalf. Nonce and max block height bound its validity.
type DelegateAction struct {
	SenderID       AccountID
	ReceiverID     AccountID
	Actions        []Action
	Nonce          uint64
	MaxBlockHeight uint64
	PublicKey      PublicKey
}

func (a DelegateAction) borshEncode(e *borsh.Encoder) error {
	a.SenderID.borshEncode(e)
	a.ReceiverID.borshEncode(e)
	e.VecLen(len(a.Actions))
	for _, inner := range a.Actions {
		// Nested delegation is not representable on the wire.
		if _, ok := inner.(Delegate); ok {
			return errors.New("a delegate action cannot contain another delegate action")
		}
		if err := encodeAction(e, inner); err != nil {
			return err
		}
	}
	e.U64(a.Nonce)
	e.U64(a.MaxBlockHeight)
	a.PublicKey.borshEncode(e)
	return nil
}

func delegateActionFromBorsh(d *borsh.Decoder) (DelegateAction, error) {
	var a DelegateAction
	var err error
	if a.SenderID, err = accountIDFromBorsh(d); err != nil {
		return DelegateAction{}, err
	}
	if a.ReceiverID, err = accountIDFromBorsh(d); err != nil {
		return DelegateAction{}, err
	}
	n, err := d.VecLen()
	if err != nil {
		return DelegateAction{}, err
	}
	for i := 0; i < int(n); i++ {
		inner, err := actionFromBorsh(d)
		if err != nil {
			return DelegateAction{}, err
		}
		if _, ok := inner.(Delegate); ok {
			return DelegateAction{}, errors.New("a delegate action cannot contain another delegate action")
		}
		a.Actions = append(a.Actions, inner)
	}
	if a.Nonce, err = d.U64(); err != nil {
		return DelegateAction{}, err
	}
	if a.MaxBlockHeight, err = d.U64(); err != nil {
		return DelegateAction{}, err
	}
	if a.PublicKey, err = publicKeyFromBorsh(d); err != nil {
		return DelegateAction{}, err
	}
	return a, nil
}

// SigningPayload returns the bytes a delegate signature covers: the NEP-461
// prefix followed by the encoded action.
func (a DelegateAction) SigningPayload() ([]byte, error) {
	e := borsh.NewEncoder()
	e.U32(DelegateActionPrefix)
	if err := a.borshEncode(e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Hash returns the SHA-256 digest of the signing payload. This digest, not
// the payload itself, is what gets signed.
func (a DelegateAction) Hash() (CryptoHash, error) {
	payload, err := a.SigningPayload()
	if err != nil {
		return CryptoHash{}, err
	}
	return HashBytes(payload), nil
}

// SignedDelegateAction pairs a DelegateAction with the sender's signature,
// ready to be wrapped in a Delegate action by a relayer.
type SignedDelegateAction struct {
	DelegateAction DelegateAction
	Signature      Signature
}

// Verify reports whether the signature matches the delegate action and its
// declared public key.
func (s SignedDelegateAction) Verify() bool {
	hash, err := s.DelegateAction.Hash()
	if err != nil {
		return false
	}
	return s.Signature.Verify(hash.Bytes(), s.DelegateAction.PublicKey)
}

func (s SignedDelegateAction) borshEncode(e *borsh.Encoder) error {
	if err := s.DelegateAction.borshEncode(e); err != nil {
		return err
	}
	s.Signature.borshEncode(e)
	return nil
}

func signedDelegateActionFromBorsh(d *borsh.Decoder) (SignedDelegateAction, error) {
	action, err := delegateActionFromBorsh(d)
	if err != nil {
		return SignedDelegateAction{}, err
	}
	sig, err := signatureFromBorsh(d)
	if err != nil {
		return SignedDelegateAction{}, err
	}
	return SignedDelegateAction{DelegateAction: action, Signature: sig}, nil
}

// Delegate submits a relayer-wrapped SignedDelegateAction as a transaction
// action.
type Delegate struct {
	SignedDelegate SignedDelegateAction
}

func (Delegate) actionTag() uint8 { return tagDelegate }

func (a Delegate) encodePayload(e *borsh.Encoder) error {
	return a.SignedDelegate.borshEncode(e)
}
