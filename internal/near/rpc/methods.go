package rpc

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// queryParams assembles the params for the unified query method: the
// request type, its arguments, and the block reference.
func queryParams(requestType string, ref types.BlockReference, fields map[string]any) map[string]any {
	params := ref.Params()
	params["request_type"] = requestType
	for k, v := range fields {
		params[k] = v
	}
	return params
}

// ViewAccount returns the account's state at the referenced block.
func (c *Client) ViewAccount(ctx context.Context, accountID types.AccountID, ref types.BlockReference) (*types.AccountView, error) {
	params := queryParams("view_account", ref, map[string]any{
		"account_id": accountID,
	})
	var view types.AccountView
	if err := c.Call(ctx, "query", params, &view); err != nil {
		return nil, narrowError(err, accountID, types.PublicKey{})
	}
	return &view, nil
}

// ViewAccessKey returns the state of one access key, including its current
// nonce.
func (c *Client) ViewAccessKey(ctx context.Context, accountID types.AccountID, publicKey types.PublicKey, ref types.BlockReference) (*types.AccessKeyView, error) {
	params := queryParams("view_access_key", ref, map[string]any{
		"account_id": accountID,
		"public_key": publicKey,
	})
	var view types.AccessKeyView
	if err := c.Call(ctx, "query", params, &view); err != nil {
		return nil, narrowError(err, accountID, publicKey)
	}
	return &view, nil
}

// ViewAccessKeyList returns all access keys on the account.
func (c *Client) ViewAccessKeyList(ctx context.Context, accountID types.AccountID, ref types.BlockReference) (*types.AccessKeyListView, error) {
	params := queryParams("view_access_key_list", ref, map[string]any{
		"account_id": accountID,
	})
	var view types.AccessKeyListView
	if err := c.Call(ctx, "query", params, &view); err != nil {
		return nil, narrowError(err, accountID, types.PublicKey{})
	}
	return &view, nil
}

// CallFunction invokes a read-only contract method. Args are the raw
// argument bytes, conventionally JSON.
func (c *Client) CallFunction(ctx context.Context, contractID types.AccountID, method string, args []byte, ref types.BlockReference) (*types.CallResult, error) {
	params := queryParams("call_function", ref, map[string]any{
		"account_id":  contractID,
		"method_name": method,
		"args_base64": base64.StdEncoding.EncodeToString(args),
	})
	var result types.CallResult
	if err := c.Call(ctx, "query", params, &result); err != nil {
		return nil, narrowError(err, contractID, types.PublicKey{})
	}
	return &result, nil
}

// Block returns the block at the given reference.
func (c *Client) Block(ctx context.Context, ref types.BlockReference) (*types.BlockView, error) {
	var view types.BlockView
	if err := c.Call(ctx, "block", ref.Params(), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Status returns the node status, including the chain head.
func (c *Client) Status(ctx context.Context) (*types.StatusResponse, error) {
	var status types.StatusResponse
	if err := c.Call(ctx, "status", []any{}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GasPrice returns the gas price at the given block, or at the latest block
// when ref is zero.
func (c *Client) GasPrice(ctx context.Context, ref types.BlockReference) (*types.GasPriceView, error) {
	params := []any{nil}
	if !ref.IsZero() {
		if id, ok := ref.Params()["block_id"]; ok {
			params = []any{id}
		}
	}
	var view types.GasPriceView
	if err := c.Call(ctx, "gas_price", params, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SendTransaction submits a signed transaction and waits until the
// requested execution level.
func (c *Client) SendTransaction(ctx context.Context, signed *types.SignedTransaction, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error) {
	b64, err := signed.ToBase64()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode signed transaction")
	}
	params := map[string]any{
		"signed_tx_base64": b64,
		"wait_until":       waitUntil.OrDefault(),
	}
	var outcome types.FinalExecutionOutcome
	if err := c.Call(ctx, "send_tx", params, &outcome); err != nil {
		return nil, narrowError(err, signed.Transaction.SignerID, signed.Transaction.PublicKey)
	}
	return &outcome, nil
}

// TxStatus fetches the execution outcome of a previously submitted
// transaction.
func (c *Client) TxStatus(ctx context.Context, hash types.CryptoHash, sender types.AccountID, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error) {
	params := map[string]any{
		"tx_hash":           hash,
		"sender_account_id": sender,
		"wait_until":        waitUntil.OrDefault(),
	}
	var outcome types.FinalExecutionOutcome
	if err := c.Call(ctx, "tx", params, &outcome); err != nil {
		return nil, narrowError(err, sender, types.PublicKey{})
	}
	return &outcome, nil
}

// narrowError narrows a Call error to the typed error set when the
// node reported a structured cause; other errors pass through unchanged.
func narrowError(err error, accountID types.AccountID, publicKey types.PublicKey) error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return structuredError(rpcErr, accountID, publicKey)
	}
	return err
}
