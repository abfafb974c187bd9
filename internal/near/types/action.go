package types

import (
	"encoding/hex"
	"fmt"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/borsh"
)

// Action discriminants. These are part of the wire contract with the ledger:
// assigned once, never reordered, never reused.
const (
	tagCreateAccount          uint8 = 0
	tagDeployContract         uint8 = 1
	tagFunctionCall           uint8 = 2
	tagTransfer               uint8 = 3
	tagStake                  uint8 = 4
	tagAddKey                 uint8 = 5
	tagDeleteKey              uint8 = 6
	tagDeleteAccount          uint8 = 7
	tagDelegate               uint8 = 8
	tagDeployGlobalContract   uint8 = 9
	tagUseGlobalContract      uint8 = 10
	tagDeterministicStateInit uint8 = 11
)

// MaxContractCodeSize is the protocol limit on deployed contract size.
const MaxContractCodeSize = 4 * 1024 * 1024

// Action is one unit of work inside a transaction. The set of
// implementations is closed; actions execute in order within one receipt and
// a failure aborts the remainder of the batch.
type Action interface {
	actionTag() uint8
	encodePayload(e *borsh.Encoder) error
}

// CreateAccount creates the receiver account.
type CreateAccount struct{}

func (CreateAccount) actionTag() uint8 { return tagCreateAccount }

func (CreateAccount) encodePayload(*borsh.Encoder) error { return nil }

// DeployContract deploys WASM code to the receiver account.
type DeployContract struct {
	Code []byte
}

func (DeployContract) actionTag() uint8 { return tagDeployContract }

func (a DeployContract) encodePayload(e *borsh.Encoder) error {
	if len(a.Code) > MaxContractCodeSize {
		return &EncodingError{Reason: fmt.Sprintf("contract code is %d bytes, limit is %d", len(a.Code), MaxContractCodeSize)}
	}
	e.Bytes32(a.Code)
	return nil
}

// FunctionCall invokes a method on the receiver's contract.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        Gas
	Deposit    Balance
}

func (FunctionCall) actionTag() uint8 { return tagFunctionCall }

func (a FunctionCall) encodePayload(e *borsh.Encoder) error {
	if a.MethodName == "" {
		return errors.New("function call has no method name")
	}
	e.String(a.MethodName)
	e.Bytes32(a.Args)
	e.U64(uint64(a.Gas))
	return a.Deposit.borshEncode(e)
}

// Transfer moves tokens to the receiver account.
type Transfer struct {
	Deposit Balance
}

func (Transfer) actionTag() uint8 { return tagTransfer }

func (a Transfer) encodePayload(e *borsh.Encoder) error {
	return a.Deposit.borshEncode(e)
}

// Stake locks tokens for validation with the given validator key.
type Stake struct {
	Stake     Balance
	PublicKey PublicKey
}

func (Stake) actionTag() uint8 { return tagStake }

func (a Stake) encodePayload(e *borsh.Encoder) error {
	if err := a.Stake.borshEncode(e); err != nil {
		return err
	}
	a.PublicKey.borshEncode(e)
	return nil
}

// AddKey authorizes a new access key on the receiver account.
type AddKey struct {
	PublicKey PublicKey
	AccessKey AccessKey
}

func (AddKey) actionTag() uint8 { return tagAddKey }

func (a AddKey) encodePayload(e *borsh.Encoder) error {
	a.PublicKey.borshEncode(e)
	return a.AccessKey.borshEncode(e)
}

// DeleteKey removes an access key from the receiver account.
type DeleteKey struct {
	PublicKey PublicKey
}

func (DeleteKey) actionTag() uint8 { return tagDeleteKey }

func (a DeleteKey) encodePayload(e *borsh.Encoder) error {
	a.PublicKey.borshEncode(e)
	return nil
}

// DeleteAccount deletes the receiver account, sending remaining funds to the
// beneficiary.
type DeleteAccount struct {
	BeneficiaryID AccountID
}

func (DeleteAccount) actionTag() uint8 { return tagDeleteAccount }

func (a DeleteAccount) encodePayload(e *borsh.Encoder) error {
	a.BeneficiaryID.borshEncode(e)
	return nil
}

// GlobalContractDeployMode selects how a global contract is later
// referenced.
type GlobalContractDeployMode uint8

const (
	// GlobalDeployModeCodeHash pins users to the exact code hash.
	GlobalDeployModeCodeHash GlobalContractDeployMode = 0
	// GlobalDeployModeAccountID lets users track the deployer's updates.
	GlobalDeployModeAccountID GlobalContractDeployMode = 1
)

// DeployGlobalContract publishes contract code for reuse by other accounts.
type DeployGlobalContract struct {
	Code       []byte
	DeployMode GlobalContractDeployMode
}

func (DeployGlobalContract) actionTag() uint8 { return tagDeployGlobalContract }

func (a DeployGlobalContract) encodePayload(e *borsh.Encoder) error {
	if len(a.Code) > MaxContractCodeSize {
		return &EncodingError{Reason: fmt.Sprintf("contract code is %d bytes, limit is %d", len(a.Code), MaxContractCodeSize)}
	}
	if a.DeployMode > GlobalDeployModeAccountID {
		return errors.Errorf("unknown global contract deploy mode %d", a.DeployMode)
	}
	e.Bytes32(a.Code)
	e.U8(uint8(a.DeployMode))
	return nil
}

// GlobalContractIdentifier points at previously published global contract
// code, either by hash or by publisher account. Exactly one field is set.
type GlobalContractIdentifier struct {
	CodeHash  *CryptoHash
	AccountID *AccountID
}

func (id GlobalContractIdentifier) borshEncode(e *borsh.Encoder) error {
	switch {
	case id.CodeHash != nil:
		e.U8(0)
		e.FixedBytes(id.CodeHash[:])
	case id.AccountID != nil:
		e.U8(1)
		id.AccountID.borshEncode(e)
	default:
		return errors.New("global contract identifier has no selector")
	}
	return nil
}

func globalContractIdentifierFromBorsh(d *borsh.Decoder) (GlobalContractIdentifier, error) {
	tag, err := d.U8()
	if err != nil {
		return GlobalContractIdentifier{}, err
	}
	switch tag {
	case 0:
		raw, err := d.FixedBytes(32)
		if err != nil {
			return GlobalContractIdentifier{}, err
		}
		var h CryptoHash
		copy(h[:], raw)
		return GlobalContractIdentifier{CodeHash: &h}, nil
	case 1:
		id, err := accountIDFromBorsh(d)
		if err != nil {
			return GlobalContractIdentifier{}, err
		}
		return GlobalContractIdentifier{AccountID: &id}, nil
	default:
		return GlobalContractIdentifier{}, errors.Errorf("unknown global contract identifier tag %d", tag)
	}
}

// UseGlobalContract attaches previously published global contract code to
// the receiver account.
type UseGlobalContract struct {
	Identifier GlobalContractIdentifier
}

func (UseGlobalContract) actionTag() uint8 { return tagUseGlobalContract }

func (a UseGlobalContract) encodePayload(e *borsh.Encoder) error {
	return a.Identifier.borshEncode(e)
}

// StateInit describes the initial code and storage of a deterministic
// account. Storage entries are encoded in sorted key order so that the
// derived account id is reproducible.
type StateInit struct {
	Code GlobalContractIdentifier
	Data map[string][]byte
}

// stateInitVersionV1 is the only state-init format version so far.
const stateInitVersionV1 uint8 = 0

func (s StateInit) borshEncode(e *borsh.Encoder) error {
	e.U8(stateInitVersionV1)
	if err := s.Code.borshEncode(e); err != nil {
		return err
	}
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.U32(uint32(len(keys)))
	for _, k := range keys {
		e.Bytes32([]byte(k))
		e.Bytes32(s.Data[k])
	}
	return nil
}

func stateInitFromBorsh(d *borsh.Decoder) (StateInit, error) {
	version, err := d.U8()
	if err != nil {
		return StateInit{}, err
	}
	if version != stateInitVersionV1 {
		return StateInit{}, errors.Errorf("unknown state init version %d", version)
	}
	var s StateInit
	if s.Code, err = globalContractIdentifierFromBorsh(d); err != nil {
		return StateInit{}, err
	}
	n, err := d.VecLen()
	if err != nil {
		return StateInit{}, err
	}
	if n > 0 {
		s.Data = make(map[string][]byte, n)
	}
	for i := 0; i < int(n); i++ {
		k, err := d.Bytes32()
		if err != nil {
			return StateInit{}, err
		}
		v, err := d.Bytes32()
		if err != nil {
			return StateInit{}, err
		}
		s.Data[string(k)] = v
	}
	return s, nil
}

// DeriveAccountID computes the deterministic account id for this state:
// "0s" followed by the hex of the last 20 bytes of keccak256 over the
// encoded state init.
func (s StateInit) DeriveAccountID() (AccountID, error) {
	e := borsh.NewEncoder()
	if err := s.borshEncode(e); err != nil {
		return AccountID{}, err
	}
	digest := ethcrypto.Keccak256(e.Bytes())
	return AccountID{id: "0s" + hex.EncodeToString(digest[12:])}, nil
}

// DeterministicStateInit creates an account whose id is derived from its
// initial code and storage, making the deployment reproducible.
type DeterministicStateInit struct {
	StateInit StateInit
	Deposit   Balance
}

func (DeterministicStateInit) actionTag() uint8 { return tagDeterministicStateInit }

func (a DeterministicStateInit) encodePayload(e *borsh.Encoder) error {
	if err := a.StateInit.borshEncode(e); err != nil {
		return err
	}
	return a.Deposit.borshEncode(e)
}

// AccessKey pairs a nonce with a permission scope, as stored on chain per
// (account, public key).
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// FullAccessKey returns an AccessKey granting unrestricted access.
func FullAccessKey() AccessKey {
	return AccessKey{Permission: AccessKeyPermission{FullAccess: true}}
}

// FunctionCallKey returns an AccessKey restricted to calling the given
// methods on receiverID. An empty methodNames list allows all methods. A nil
// allowance means unlimited spending on gas.
func FunctionCallKey(receiverID AccountID, methodNames []string, allowance *Balance) AccessKey {
	return AccessKey{Permission: AccessKeyPermission{
		FunctionCall: &FunctionCallPermission{
			Allowance:   allowance,
			ReceiverID:  receiverID.String(),
			MethodNames: methodNames,
		},
	}}
}

func (k AccessKey) borshEncode(e *borsh.Encoder) error {
	e.U64(k.Nonce)
	return k.Permission.borshEncode(e)
}

func accessKeyFromBorsh(d *borsh.Decoder) (AccessKey, error) {
	nonce, err := d.U64()
	if err != nil {
		return AccessKey{}, err
	}
	perm, err := accessKeyPermissionFromBorsh(d)
	if err != nil {
		return AccessKey{}, err
	}
	return AccessKey{Nonce: nonce, Permission: perm}, nil
}

// AccessKeyPermission is either a restricted function-call scope
// (discriminant 0) or full access (discriminant 1).
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission
	FullAccess   bool
}

// FunctionCallPermission scopes a key to calling methods on one receiver,
// with an optional gas-spending allowance.
type FunctionCallPermission struct {
	Allowance   *Balance
	ReceiverID  string
	MethodNames []string
}

func (p AccessKeyPermission) borshEncode(e *borsh.Encoder) error {
	if p.FunctionCall != nil {
		e.U8(0)
		if p.FunctionCall.Allowance != nil {
			e.OptionTag(true)
			if err := p.FunctionCall.Allowance.borshEncode(e); err != nil {
				return err
			}
		} else {
			e.OptionTag(false)
		}
		e.String(p.FunctionCall.ReceiverID)
		e.VecLen(len(p.FunctionCall.MethodNames))
		for _, m := range p.FunctionCall.MethodNames {
			e.String(m)
		}
		return nil
	}
	if p.FullAccess {
		e.U8(1)
		return nil
	}
	return errors.New("access key permission has no selector")
}

func accessKeyPermissionFromBorsh(d *borsh.Decoder) (AccessKeyPermission, error) {
	tag, err := d.U8()
	if err != nil {
		return AccessKeyPermission{}, err
	}
	switch tag {
	case 0:
		var perm FunctionCallPermission
		present, err := d.OptionTag()
		if err != nil {
			return AccessKeyPermission{}, err
		}
		if present {
			allowance, err := balanceFromBorsh(d)
			if err != nil {
				return AccessKeyPermission{}, err
			}
			perm.Allowance = &allowance
		}
		if perm.ReceiverID, err = d.String(); err != nil {
			return AccessKeyPermission{}, err
		}
		n, err := d.VecLen()
		if err != nil {
			return AccessKeyPermission{}, err
		}
		for i := 0; i < int(n); i++ {
			m, err := d.String()
			if err != nil {
				return AccessKeyPermission{}, err
			}
			perm.MethodNames = append(perm.MethodNames, m)
		}
		return AccessKeyPermission{FunctionCall: &perm}, nil
	case 1:
		return AccessKeyPermission{FullAccess: true}, nil
	default:
		return AccessKeyPermission{}, errors.Errorf("unknown access key permission tag %d", tag)
	}
}

// IsFullAccess reports whether the permission is unrestricted.
func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FullAccess
}

func encodeAction(e *borsh.Encoder, a Action) error {
	if a == nil {
		return errors.New("nil action")
	}
	e.U8(a.actionTag())
	return a.encodePayload(e)
}

func actionFromBorsh(d *borsh.Decoder) (Action, error) {
	tag, err := d.U8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagCreateAccount:
		return CreateAccount{}, nil

	case tagDeployContract:
		code, err := d.Bytes32()
		if err != nil {
			return nil, err
		}
		return DeployContract{Code: code}, nil

	case tagFunctionCall:
		var a FunctionCall
		if a.MethodName, err = d.String(); err != nil {
			return nil, err
		}
		if a.Args, err = d.Bytes32(); err != nil {
			return nil, err
		}
		gas, err := d.U64()
		if err != nil {
			return nil, err
		}
		a.Gas = Gas(gas)
		if a.Deposit, err = balanceFromBorsh(d); err != nil {
			return nil, err
		}
		return a, nil

	case tagTransfer:
		deposit, err := balanceFromBorsh(d)
		if err != nil {
			return nil, err
		}
		return Transfer{Deposit: deposit}, nil

	case tagStake:
		var a Stake
		if a.Stake, err = balanceFromBorsh(d); err != nil {
			return nil, err
		}
		if a.PublicKey, err = publicKeyFromBorsh(d); err != nil {
			return nil, err
		}
		return a, nil

	case tagAddKey:
		var a AddKey
		if a.PublicKey, err = publicKeyFromBorsh(d); err != nil {
			return nil, err
		}
		if a.AccessKey, err = accessKeyFromBorsh(d); err != nil {
			return nil, err
		}
		return a, nil

	case tagDeleteKey:
		pub, err := publicKeyFromBorsh(d)
		if err != nil {
			return nil, err
		}
		return DeleteKey{PublicKey: pub}, nil

	case tagDeleteAccount:
		id, err := accountIDFromBorsh(d)
		if err != nil {
			return nil, err
		}
		return DeleteAccount{BeneficiaryID: id}, nil

	case tagDelegate:
		signed, err := signedDelegateActionFromBorsh(d)
		if err != nil {
			return nil, err
		}
		return Delegate{SignedDelegate: signed}, nil

	case tagDeployGlobalContract:
		var a DeployGlobalContract
		if a.Code, err = d.Bytes32(); err != nil {
			return nil, err
		}
		mode, err := d.U8()
		if err != nil {
			return nil, err
		}
		if mode > uint8(GlobalDeployModeAccountID) {
			return nil, errors.Errorf("unknown global contract deploy mode %d", mode)
		}
		a.DeployMode = GlobalContractDeployMode(mode)
		return a, nil

	case tagUseGlobalContract:
		id, err := globalContractIdentifierFromBorsh(d)
		if err != nil {
			return nil, err
		}
		return UseGlobalContract{Identifier: id}, nil

	case tagDeterministicStateInit:
		var a DeterministicStateInit
		if a.StateInit, err = stateInitFromBorsh(d); err != nil {
			return nil, err
		}
		if a.Deposit, err = balanceFromBorsh(d); err != nil {
			return nil, err
		}
		return a, nil

	default:
		return nil, errors.Errorf("unknown action discriminant %d", tag)
	}
}
