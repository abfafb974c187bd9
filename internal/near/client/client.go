// Package client is the high-level entry point: a Client bound to one
// network and optionally one signer, exposing read queries and common
// transactions without exposing the pipeline mechanics.
package client

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/rpc"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/txn"
	"github/chapool/go-near/internal/near/types"
)

// ErrNoSigner is returned by transactional operations on a read-only client.
var ErrNoSigner = errors.New("client has no signer configured")

// Client wraps the RPC transport and submission pipeline for one network.
type Client struct {
	rpc      *rpc.Client
	pipeline *txn.Pipeline
	signer   signer.Signer
}

// Builder assembles a Client.
type Builder struct {
	endpoint  string
	signer    signer.Signer
	retry     *rpc.RetryConfig
	waitUntil types.TxExecutionStatus
	err       error
}

// Mainnet starts a builder bound to the mainnet endpoint.
func Mainnet() *Builder {
	return Custom(rpc.MainnetRPC)
}

// Testnet starts a builder bound to the testnet endpoint.
func Testnet() *Builder {
	return Custom(rpc.TestnetRPC)
}

// Localnet starts a builder bound to a local node.
func Localnet() *Builder {
	return Custom(rpc.LocalnetRPC)
}

// Custom starts a builder bound to an arbitrary endpoint URL.
func Custom(endpoint string) *Builder {
	return &Builder{endpoint: endpoint}
}

// WithSigner attaches the signer used by transactional operations.
func (b *Builder) WithSigner(s signer.Signer) *Builder {
	b.signer = s
	return b
}

// WithRetryConfig overrides the transport retry policy.
func (b *Builder) WithRetryConfig(rc rpc.RetryConfig) *Builder {
	b.retry = &rc
	return b
}

// WithWaitUntil sets the default execution level submissions wait for.
func (b *Builder) WithWaitUntil(status types.TxExecutionStatus) *Builder {
	b.waitUntil = status
	return b
}

// Build creates the Client.
func (b *Builder) Build() (*Client, error) {
	if b.err != nil {
		return nil, b.err
	}

	opts := []rpc.Option{}
	if b.retry != nil {
		opts = append(opts, rpc.WithRetryConfig(*b.retry))
	}
	transport, err := rpc.NewClient(b.endpoint, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpc:      transport,
		pipeline: txn.NewPipeline(transport, b.waitUntil),
		signer:   b.signer,
	}, nil
}

// RPC exposes the underlying transport for queries the facade does not
// cover.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// Signer returns the configured signer, or nil for a read-only client.
func (c *Client) Signer() signer.Signer {
	return c.signer
}

// Account returns the account state at the latest final block.
func (c *Client) Account(ctx context.Context, accountID types.AccountID) (*types.AccountView, error) {
	return c.rpc.ViewAccount(ctx, accountID, types.BlockFinality(types.FinalityFinal))
}

// AccountExists reports whether the account exists on chain.
func (c *Client) AccountExists(ctx context.Context, accountID types.AccountID) (bool, error) {
	_, err := c.Account(ctx, accountID)
	if err != nil {
		var notFound *rpc.AccountNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Balance returns the account's balance breakdown.
func (c *Client) Balance(ctx context.Context, accountID types.AccountID) (*types.AccountBalance, error) {
	view, err := c.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balance := view.BalanceBreakdown()
	return &balance, nil
}

// AccessKeys lists all access keys on the account.
func (c *Client) AccessKeys(ctx context.Context, accountID types.AccountID) ([]types.AccessKeyInfoView, error) {
	list, err := c.rpc.ViewAccessKeyList(ctx, accountID, types.BlockFinality(types.FinalityFinal))
	if err != nil {
		return nil, err
	}
	return list.Keys, nil
}

// View invokes a read-only contract method with JSON arguments and decodes
// the JSON result into out (which may be nil).
func (c *Client) View(ctx context.Context, contractID types.AccountID, method string, args []byte, out any) error {
	if args == nil {
		args = []byte("{}")
	}
	result, err := c.rpc.CallFunction(ctx, contractID, method, args, types.BlockFinality(types.FinalityFinal))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(result.JSON(out), "failed to decode %s result", method)
}

// Transaction starts a transaction builder addressed to receiverID, to be
// submitted with Send.
func (c *Client) Transaction(receiverID types.AccountID) *txn.TransactionBuilder {
	return txn.NewTransactionBuilder(receiverID)
}

// Send submits a built transaction through the configured signer.
func (c *Client) Send(ctx context.Context, b *txn.TransactionBuilder) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.pipeline.Send(ctx, c.signer, b)
}

// Transfer sends tokens to the receiver.
func (c *Client) Transfer(ctx context.Context, receiverID types.AccountID, amount types.Balance) (*types.FinalExecutionOutcome, error) {
	return c.Send(ctx, c.Transaction(receiverID).Transfer(amount))
}

// Call invokes a state-changing contract method with raw argument bytes.
// Zero gas means the default function-call gas.
func (c *Client) Call(ctx context.Context, contractID types.AccountID, method string, args []byte, gas types.Gas, deposit types.Balance) (*types.FinalExecutionOutcome, error) {
	return c.Send(ctx, c.Transaction(contractID).FunctionCall(method, args, gas, deposit))
}

// Deploy deploys contract code to the signer's own account.
func (c *Client) Deploy(ctx context.Context, code []byte) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.Send(ctx, c.Transaction(c.signer.AccountID()).DeployContract(code))
}

// AddFullAccessKey adds a full-access key to the signer's account.
func (c *Client) AddFullAccessKey(ctx context.Context, publicKey types.PublicKey) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.Send(ctx, c.Transaction(c.signer.AccountID()).AddFullAccessKey(publicKey))
}

// DeleteKey removes an access key from the signer's account.
func (c *Client) DeleteKey(ctx context.Context, publicKey types.PublicKey) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.Send(ctx, c.Transaction(c.signer.AccountID()).DeleteKey(publicKey))
}

// CreateSubAccount creates a sub-account of the signer's account with an
// initial balance and full-access key.
func (c *Client) CreateSubAccount(ctx context.Context, newAccountID types.AccountID, publicKey types.PublicKey, deposit types.Balance) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if !newAccountID.IsSubAccountOf(c.signer.AccountID()) {
		return nil, errors.Errorf("%s is not a sub-account of %s", newAccountID, c.signer.AccountID())
	}
	b := c.Transaction(newAccountID).
		CreateAccount().
		Transfer(deposit).
		AddFullAccessKey(publicKey)
	return c.Send(ctx, b)
}

// SignDelegate signs a meta-transaction for a relayer to submit.
func (c *Client) SignDelegate(ctx context.Context, receiverID types.AccountID, actions []types.Action) (*types.SignedDelegateAction, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.pipeline.SignDelegate(ctx, c.signer, receiverID, actions)
}

// SendDelegate relays a signed meta-transaction, paying its gas.
func (c *Client) SendDelegate(ctx context.Context, signed *types.SignedDelegateAction) (*types.FinalExecutionOutcome, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	return c.pipeline.SendDelegate(ctx, c.signer, signed)
}

// TxStatus fetches the outcome of a previously submitted transaction.
func (c *Client) TxStatus(ctx context.Context, hash types.CryptoHash, sender types.AccountID, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error) {
	return c.pipeline.Status(ctx, hash, sender, waitUntil)
}

// Status returns the node status.
func (c *Client) Status(ctx context.Context) (*types.StatusResponse, error) {
	return c.rpc.Status(ctx)
}

// GasPrice returns the current gas price.
func (c *Client) GasPrice(ctx context.Context) (types.Balance, error) {
	view, err := c.rpc.GasPrice(ctx, types.BlockReference{})
	if err != nil {
		return types.Balance{}, err
	}
	return view.GasPrice, nil
}
