package rpc

import (
	"encoding/json"
	"fmt"

	"github/chapool/go-near/internal/near/types"
)

// JSON-RPC error codes the node is known to return for conditions that
// clear up on their own: the generic server error and internal error.
const (
	codeServerError   = -32000
	codeInternalError = -32603
)

// Error cause names carried in the error payload for conditions that no
// amount of retrying will fix.
const (
	causeUnknownAccount     = "UNKNOWN_ACCOUNT"
	causeUnknownAccessKey   = "UNKNOWN_ACCESS_KEY"
	causeInvalidTransaction = "INVALID_TRANSACTION"
	causeTimeoutError       = "TIMEOUT_ERROR"
)

// Error is a JSON-RPC error returned by the node. The Name/Cause pair is
// the structured NEAR error taxonomy; Code/Message is the JSON-RPC layer.
type Error struct {
	Name    string          `json:"name"`
	Cause   ErrorCause      `json:"cause"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorCause narrows an Error to a concrete condition.
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause.Name != "" {
		return fmt.Sprintf("rpc error %s/%s: %s (code %d)", e.Name, e.Cause.Name, e.Message, e.Code)
	}
	return fmt.Sprintf("rpc error: %s (code %d)", e.Message, e.Code)
}

// IsRetryable reports whether the error is a transient server-side
// condition. Structured handler errors (unknown account, invalid
// transaction and the like) are never retryable.
func (e *Error) IsRetryable() bool {
	switch e.Cause.Name {
	case causeUnknownAccount, causeUnknownAccessKey, causeInvalidTransaction:
		return false
	case causeTimeoutError:
		return true
	}
	return e.Code == codeServerError || e.Code == codeInternalError
}

// AccountNotFoundError reports a query against an account that does not
// exist at the referenced block.
type AccountNotFoundError struct {
	AccountID types.AccountID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s does not exist", e.AccountID)
}

// AccessKeyNotFoundError reports a query for a public key that is not
// registered on the account.
type AccessKeyNotFoundError struct {
	AccountID types.AccountID
	PublicKey types.PublicKey
}

func (e *AccessKeyNotFoundError) Error() string {
	return fmt.Sprintf("access key %s does not exist on account %s", e.PublicKey, e.AccountID)
}

// InvalidNonceError reports a submission rejected because its nonce was not
// ahead of the access key's current nonce. The pipeline corrects its cached
// nonce from AccessKeyNonce and rebuilds the transaction.
type InvalidNonceError struct {
	TxNonce        uint64
	AccessKeyNonce uint64
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid nonce: transaction carried %d but the access key is at %d", e.TxNonce, e.AccessKeyNonce)
}

// TimeoutExceededError reports that the retry budget ran out. Err is the
// error from the final attempt.
type TimeoutExceededError struct {
	Attempts int
	Err      error
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TimeoutExceededError) Unwrap() error {
	return e.Err
}

// invalidTxData is the shape of the error data carried alongside an
// INVALID_TRANSACTION cause.
type invalidTxData struct {
	TxExecutionError struct {
		InvalidTxError struct {
			InvalidNonce *struct {
				TxNonce uint64 `json:"tx_nonce"`
				AkNonce uint64 `json:"ak_nonce"`
			} `json:"InvalidNonce"`
		} `json:"InvalidTxError"`
	} `json:"TxExecutionError"`
}

// structuredError maps a node error to one of the typed errors above when
// its cause identifies a concrete condition, or returns the Error itself.
func structuredError(rpcErr *Error, accountID types.AccountID, publicKey types.PublicKey) error {
	switch rpcErr.Cause.Name {
	case causeUnknownAccount:
		return &AccountNotFoundError{AccountID: accountID}
	case causeUnknownAccessKey:
		return &AccessKeyNotFoundError{AccountID: accountID, PublicKey: publicKey}
	case causeInvalidTransaction:
		if nonceErr := parseInvalidNonce(rpcErr); nonceErr != nil {
			return nonceErr
		}
	}
	return rpcErr
}

func parseInvalidNonce(rpcErr *Error) *InvalidNonceError {
	for _, raw := range []json.RawMessage{rpcErr.Data, rpcErr.Cause.Info} {
		if len(raw) == 0 {
			continue
		}
		var data invalidTxData
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		if n := data.TxExecutionError.InvalidTxError.InvalidNonce; n != nil {
			return &InvalidNonceError{TxNonce: n.TxNonce, AccessKeyNonce: n.AkNonce}
		}
	}
	return nil
}
