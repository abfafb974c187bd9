package txn

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// TransactionBuilder accumulates the actions and overrides of one
// submission. Zero-value fields are resolved by the pipeline at send time:
// nonce from the nonce cache, block hash from the latest final block.
type TransactionBuilder struct {
	receiverID  types.AccountID
	actions     []types.Action
	nonce       *uint64
	blockHash   *types.CryptoHash
	priorityFee uint64
	waitUntil   types.TxExecutionStatus
	err         error
}

// NewTransactionBuilder starts a transaction addressed to receiverID.
func NewTransactionBuilder(receiverID types.AccountID) *TransactionBuilder {
	b := &TransactionBuilder{receiverID: receiverID}
	if receiverID.IsZero() {
		b.err = errors.New("receiver account id is required")
	}
	return b
}

// Action appends a prepared action.
func (b *TransactionBuilder) Action(action types.Action) *TransactionBuilder {
	b.actions = append(b.actions, action)
	return b
}

// Transfer appends a token transfer.
func (b *TransactionBuilder) Transfer(amount types.Balance) *TransactionBuilder {
	return b.Action(types.Transfer{Deposit: amount})
}

// CreateAccount appends account creation for the receiver.
func (b *TransactionBuilder) CreateAccount() *TransactionBuilder {
	return b.Action(types.CreateAccount{})
}

// DeployContract appends a contract deployment.
func (b *TransactionBuilder) DeployContract(code []byte) *TransactionBuilder {
	return b.Action(types.DeployContract{Code: code})
}

// FunctionCall appends a contract call with raw argument bytes.
func (b *TransactionBuilder) FunctionCall(method string, args []byte, gas types.Gas, deposit types.Balance) *TransactionBuilder {
	if gas == 0 {
		gas = types.DefaultFunctionCallGas
	}
	return b.Action(types.FunctionCall{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	})
}

// FunctionCallJSON appends a contract call with JSON-encoded arguments.
func (b *TransactionBuilder) FunctionCallJSON(method string, args any, gas types.Gas, deposit types.Balance) *TransactionBuilder {
	raw, err := json.Marshal(args)
	if err != nil {
		b.err = errors.Wrapf(err, "failed to encode arguments for %s", method)
		return b
	}
	return b.FunctionCall(method, raw, gas, deposit)
}

// Stake appends a staking action.
func (b *TransactionBuilder) Stake(stake types.Balance, validatorKey types.PublicKey) *TransactionBuilder {
	return b.Action(types.Stake{Stake: stake, PublicKey: validatorKey})
}

// AddFullAccessKey appends an AddKey action granting full access.
func (b *TransactionBuilder) AddFullAccessKey(publicKey types.PublicKey) *TransactionBuilder {
	return b.Action(types.AddKey{PublicKey: publicKey, AccessKey: types.FullAccessKey()})
}

// AddFunctionCallKey appends an AddKey action scoped to methods on a
// receiver contract. A nil allowance means unlimited.
func (b *TransactionBuilder) AddFunctionCallKey(publicKey types.PublicKey, receiverID types.AccountID, allowance *types.Balance, methodNames ...string) *TransactionBuilder {
	return b.Action(types.AddKey{
		PublicKey: publicKey,
		AccessKey: types.FunctionCallKey(receiverID, methodNames, allowance),
	})
}

// DeleteKey appends removal of an access key.
func (b *TransactionBuilder) DeleteKey(publicKey types.PublicKey) *TransactionBuilder {
	return b.Action(types.DeleteKey{PublicKey: publicKey})
}

// DeleteAccount appends account deletion, sending the remaining balance to
// the beneficiary.
func (b *TransactionBuilder) DeleteAccount(beneficiaryID types.AccountID) *TransactionBuilder {
	return b.Action(types.DeleteAccount{BeneficiaryID: beneficiaryID})
}

// WithNonce pins the nonce instead of resolving it from the cache.
func (b *TransactionBuilder) WithNonce(nonce uint64) *TransactionBuilder {
	b.nonce = &nonce
	return b
}

// WithBlockHash pins the reference block hash instead of resolving the
// latest final block.
func (b *TransactionBuilder) WithBlockHash(hash types.CryptoHash) *TransactionBuilder {
	b.blockHash = &hash
	return b
}

// WithPriorityFee sets the priority fee, switching the wire format to the
// versioned layout.
func (b *TransactionBuilder) WithPriorityFee(fee uint64) *TransactionBuilder {
	b.priorityFee = fee
	return b
}

// WithWaitUntil sets the execution level the submission waits for.
func (b *TransactionBuilder) WithWaitUntil(status types.TxExecutionStatus) *TransactionBuilder {
	b.waitUntil = status
	return b
}

func (b *TransactionBuilder) build(signerID types.AccountID, publicKey types.PublicKey, nonce uint64, blockHash types.CryptoHash) (*types.Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.actions) == 0 {
		return nil, errors.New("transaction has no actions")
	}
	return &types.Transaction{
		SignerID:    signerID,
		PublicKey:   publicKey,
		Nonce:       nonce,
		ReceiverID:  b.receiverID,
		BlockHash:   blockHash,
		Actions:     b.actions,
		PriorityFee: b.priorityFee,
	}, nil
}
