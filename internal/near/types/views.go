package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// storageAmountPerByte is the protocol's storage staking price, 10^19
// yoctoNEAR per byte.
var storageAmountPerByte = new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)

// AccountView is the on-chain state of an account as returned by the
// view_account query.
type AccountView struct {
	Amount        Balance    `json:"amount"`
	Locked        Balance    `json:"locked"`
	CodeHash      CryptoHash `json:"code_hash"`
	StorageUsage  uint64     `json:"storage_usage"`
	StoragePaidAt uint64     `json:"storage_paid_at"`
	BlockHeight   uint64     `json:"block_height"`
	BlockHash     CryptoHash `json:"block_hash"`
}

// StorageCost returns the balance locked for storage staking.
func (v AccountView) StorageCost() Balance {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(v.StorageUsage), storageAmountPerByte)
	b, err := BalanceFromBigInt(cost)
	if err != nil {
		return Balance{}
	}
	return b
}

// Available returns the spendable balance: total minus validator locks and
// storage cost.
func (v AccountView) Available() Balance {
	return v.Amount.SaturatingSub(v.Locked).SaturatingSub(v.StorageCost())
}

// AccountBalance is the balance breakdown derived from an AccountView.
type AccountBalance struct {
	Total        Balance
	Available    Balance
	Locked       Balance
	StorageCost  Balance
	StorageUsage uint64
}

// BalanceBreakdown computes the balance summary for this account view.
func (v AccountView) BalanceBreakdown() AccountBalance {
	return AccountBalance{
		Total:        v.Amount,
		Available:    v.Available(),
		Locked:       v.Locked,
		StorageCost:  v.StorageCost(),
		StorageUsage: v.StorageUsage,
	}
}

// AccessKeyPermissionView is the RPC JSON form of an access key permission:
// either the string "FullAccess" or a FunctionCall object.
type AccessKeyPermissionView struct {
	FullAccess   bool
	FunctionCall *FunctionCallPermissionView
}

// FunctionCallPermissionView mirrors the RPC function-call permission
// object.
type FunctionCallPermissionView struct {
	Allowance   *Balance `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

// UnmarshalJSON accepts both the "FullAccess" string and the FunctionCall
// object form.
func (p *AccessKeyPermissionView) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "FullAccess" {
			return errors.Errorf("unknown access key permission %q", s)
		}
		*p = AccessKeyPermissionView{FullAccess: true}
		return nil
	}

	var obj struct {
		FunctionCall *FunctionCallPermissionView `json:"FunctionCall"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.FunctionCall == nil {
		return errors.New("access key permission has no recognized form")
	}
	*p = AccessKeyPermissionView{FunctionCall: obj.FunctionCall}
	return nil
}

// AccessKeyView is the state of a single access key, from the
// view_access_key query. The nonce is the last one used; the next
// transaction must carry nonce+1.
type AccessKeyView struct {
	Nonce       uint64                  `json:"nonce"`
	Permission  AccessKeyPermissionView `json:"permission"`
	BlockHeight uint64                  `json:"block_height"`
	BlockHash   CryptoHash              `json:"block_hash"`
}

// AccessKeyInfoView pairs a public key with its access key state.
type AccessKeyInfoView struct {
	PublicKey PublicKey `json:"public_key"`
	AccessKey struct {
		Nonce      uint64                  `json:"nonce"`
		Permission AccessKeyPermissionView `json:"permission"`
	} `json:"access_key"`
}

// AccessKeyListView is the result of the view_access_key_list query.
type AccessKeyListView struct {
	Keys        []AccessKeyInfoView `json:"keys"`
	BlockHeight uint64              `json:"block_height"`
	BlockHash   CryptoHash          `json:"block_hash"`
}

// CallResult is the result of a read-only function call.
type CallResult struct {
	Result      []byte     `json:"result"`
	Logs        []string   `json:"logs"`
	BlockHeight uint64     `json:"block_height"`
	BlockHash   CryptoHash `json:"block_hash"`
}

// JSON decodes the result bytes into out.
func (r CallResult) JSON(out any) error {
	return json.Unmarshal(r.Result, out)
}

// String returns the result bytes as text.
func (r CallResult) String() string {
	return string(r.Result)
}

// BlockHeaderView carries the header fields the client consumes. Unknown
// fields in the RPC response are ignored.
type BlockHeaderView struct {
	Height                uint64     `json:"height"`
	PrevHeight            *uint64    `json:"prev_height"`
	Hash                  CryptoHash `json:"hash"`
	PrevHash              CryptoHash `json:"prev_hash"`
	Timestamp             uint64     `json:"timestamp"`
	TimestampNanosec      string     `json:"timestamp_nanosec"`
	GasPrice              Balance    `json:"gas_price"`
	TotalSupply           Balance    `json:"total_supply"`
	LastFinalBlock        CryptoHash `json:"last_final_block"`
	LastDSFinalBlock      CryptoHash `json:"last_ds_final_block"`
	EpochID               CryptoHash `json:"epoch_id"`
	NextEpochID           CryptoHash `json:"next_epoch_id"`
	LatestProtocolVersion uint32     `json:"latest_protocol_version"`
}

// BlockView is the result of the block RPC method.
type BlockView struct {
	Author string          `json:"author"`
	Header BlockHeaderView `json:"header"`
}

// GasPriceView is the result of the gas_price RPC method.
type GasPriceView struct {
	GasPrice Balance `json:"gas_price"`
}

// StatusSyncInfo is the chain-head portion of the node status.
type StatusSyncInfo struct {
	LatestBlockHash   CryptoHash `json:"latest_block_hash"`
	LatestBlockHeight uint64     `json:"latest_block_height"`
	LatestBlockTime   string     `json:"latest_block_time"`
	Syncing           bool       `json:"syncing"`
}

// StatusResponse is the result of the status RPC method.
type StatusResponse struct {
	ChainID         string         `json:"chain_id"`
	ProtocolVersion uint32         `json:"protocol_version"`
	SyncInfo        StatusSyncInfo `json:"sync_info"`
}

// ExecutionStatus is the outcome of one execution step: one of Unknown,
// Pending, Failure, SuccessValue or SuccessReceiptID.
type ExecutionStatus struct {
	Unknown          bool
	Pending          bool
	Failure          *ExecutionFailure
	SuccessValue     *string // base64
	SuccessReceiptID *CryptoHash
}

// ExecutionFailure is the raw failure payload of an execution step. For
// action failures the ledger reports which action in the batch failed.
type ExecutionFailure struct {
	ActionError *struct {
		Index *uint64         `json:"index"`
		Kind  json.RawMessage `json:"kind"`
	} `json:"ActionError"`
	InvalidTxError json.RawMessage `json:"InvalidTxError"`
	Raw            json.RawMessage `json:"-"`
}

// ActionIndex returns the index of the failing action, if the ledger
// reported one.
func (f *ExecutionFailure) ActionIndex() (uint64, bool) {
	if f == nil || f.ActionError == nil || f.ActionError.Index == nil {
		return 0, false
	}
	return *f.ActionError.Index, true
}

// Message renders a human-readable failure description.
func (f *ExecutionFailure) Message() string {
	if f == nil {
		return "unknown execution failure"
	}
	if f.ActionError != nil {
		if idx, ok := f.ActionIndex(); ok {
			return fmt.Sprintf("action %d failed: %s", idx, string(f.ActionError.Kind))
		}
		return fmt.Sprintf("action failed: %s", string(f.ActionError.Kind))
	}
	if len(f.InvalidTxError) > 0 {
		return fmt.Sprintf("invalid transaction: %s", string(f.InvalidTxError))
	}
	return string(f.Raw)
}

// UnmarshalJSON accepts the RPC's externally tagged representation: unit
// variants as strings, payload variants as single-key objects.
func (s *ExecutionStatus) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		switch tag {
		case "Unknown":
			*s = ExecutionStatus{Unknown: true}
			return nil
		case "Pending":
			*s = ExecutionStatus{Pending: true}
			return nil
		default:
			return errors.Errorf("unknown execution status %q", tag)
		}
	}

	var obj struct {
		Failure          json.RawMessage `json:"Failure"`
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID *CryptoHash     `json:"SuccessReceiptId"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}

	switch {
	case obj.Failure != nil:
		failure := &ExecutionFailure{Raw: obj.Failure}
		// Best effort: the payload shape varies by failure kind.
		_ = json.Unmarshal(obj.Failure, failure)
		*s = ExecutionStatus{Failure: failure}
	case obj.SuccessValue != nil:
		*s = ExecutionStatus{SuccessValue: obj.SuccessValue}
	case obj.SuccessReceiptID != nil:
		*s = ExecutionStatus{SuccessReceiptID: obj.SuccessReceiptID}
	default:
		*s = ExecutionStatus{Unknown: true}
	}
	return nil
}

// IsSuccess reports whether the step succeeded.
func (s ExecutionStatus) IsSuccess() bool {
	return s.SuccessValue != nil || s.SuccessReceiptID != nil
}

// IsFailure reports whether the step failed.
func (s ExecutionStatus) IsFailure() bool {
	return s.Failure != nil
}

// ExecutionOutcome is the result of executing one transaction or receipt.
type ExecutionOutcome struct {
	ExecutorID  AccountID       `json:"executor_id"`
	GasBurnt    Gas             `json:"gas_burnt"`
	TokensBurnt Balance         `json:"tokens_burnt"`
	Logs        []string        `json:"logs"`
	ReceiptIDs  []CryptoHash    `json:"receipt_ids"`
	Status      ExecutionStatus `json:"status"`
}

// ExecutionOutcomeWithID pairs an outcome with the transaction or receipt it
// belongs to.
type ExecutionOutcomeWithID struct {
	ID        CryptoHash       `json:"id"`
	Outcome   ExecutionOutcome `json:"outcome"`
	BlockHash CryptoHash       `json:"block_hash"`
}

// TransactionInfoView is the echo of the submitted transaction inside an
// outcome. Actions come back in the RPC's JSON form, which the client does
// not re-interpret.
type TransactionInfoView struct {
	SignerID   AccountID       `json:"signer_id"`
	PublicKey  string          `json:"public_key"`
	Nonce      uint64          `json:"nonce"`
	ReceiverID AccountID       `json:"receiver_id"`
	Hash       CryptoHash      `json:"hash"`
	Actions    json.RawMessage `json:"actions"`
}

// FinalExecutionOutcome is the terminal result of a submitted transaction.
// Fields beyond FinalExecutionStatus are only present once execution
// happened; with wait level NONE they stay empty.
type FinalExecutionOutcome struct {
	FinalExecutionStatus TxExecutionStatus        `json:"final_execution_status"`
	Status               *ExecutionStatus         `json:"status"`
	Transaction          *TransactionInfoView     `json:"transaction"`
	TransactionOutcome   *ExecutionOutcomeWithID  `json:"transaction_outcome"`
	ReceiptsOutcome      []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// IsSuccess reports whether the transaction executed successfully.
func (o *FinalExecutionOutcome) IsSuccess() bool {
	return o.Status != nil && o.Status.IsSuccess()
}

// IsFailure reports whether the transaction executed and failed.
func (o *FinalExecutionOutcome) IsFailure() bool {
	return o.Status != nil && o.Status.IsFailure()
}

// IsPending reports whether execution had not completed when the node
// responded, for the lower wait levels.
func (o *FinalExecutionOutcome) IsPending() bool {
	switch o.FinalExecutionStatus {
	case TxStatusNone, TxStatusIncluded, TxStatusIncludedFinal:
		return true
	default:
		return false
	}
}

// SuccessValue returns the decoded return value of a successful execution.
func (o *FinalExecutionOutcome) SuccessValue() ([]byte, bool) {
	if o.Status == nil || o.Status.SuccessValue == nil {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(*o.Status.SuccessValue)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// FailureMessage returns a readable description of the failure, naming the
// failing action index when the ledger reported one.
func (o *FinalExecutionOutcome) FailureMessage() string {
	if o.Status == nil || o.Status.Failure == nil {
		return ""
	}
	return o.Status.Failure.Message()
}

// TransactionHash returns the network identity of the transaction, when
// present in the outcome.
func (o *FinalExecutionOutcome) TransactionHash() (CryptoHash, bool) {
	if o.TransactionOutcome == nil {
		return CryptoHash{}, false
	}
	return o.TransactionOutcome.ID, true
}

// TotalGasBurnt sums gas across the transaction and all its receipts.
func (o *FinalExecutionOutcome) TotalGasBurnt() Gas {
	var total Gas
	if o.TransactionOutcome != nil {
		total += o.TransactionOutcome.Outcome.GasBurnt
	}
	for _, r := range o.ReceiptsOutcome {
		total += r.Outcome.GasBurnt
	}
	return total
}
