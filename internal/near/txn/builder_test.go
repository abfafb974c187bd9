package txn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/txn"
	"github/chapool/go-near/internal/near/types"
)

// sendThrough runs the builder through a pipeline that captures the
// submitted transaction.
func sendThrough(t *testing.T, b *txn.TransactionBuilder) *types.Transaction {
	t.Helper()
	s, _ := newTestSigner(t, "alice.near")

	var submitted *types.SignedTransaction
	transport := &fakeTransport{
		viewAccessKey: func(ctx context.Context, accountID types.AccountID, publicKey types.PublicKey, ref types.BlockReference) (*types.AccessKeyView, error) {
			return &types.AccessKeyView{Nonce: 0}, nil
		},
		send: func(ctx context.Context, signed *types.SignedTransaction, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error) {
			submitted = signed
			return successOutcome(t), nil
		},
	}

	_, err := txn.NewPipeline(transport, "").Send(context.Background(), s, b)
	require.NoError(t, err)
	require.NotNil(t, submitted)
	return &submitted.Transaction
}

func TestBuilderAccumulatesActionsInOrder(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	b := txn.NewTransactionBuilder(types.MustParseAccountID("app.near")).
		CreateAccount().
		Transfer(types.NearToken(2)).
		AddFullAccessKey(key.PublicKey())

	tx := sendThrough(t, b)
	require.Len(t, tx.Actions, 3)
	assert.IsType(t, types.CreateAccount{}, tx.Actions[0])
	assert.IsType(t, types.Transfer{}, tx.Actions[1])
	assert.IsType(t, types.AddKey{}, tx.Actions[2])
}

func TestBuilderFunctionCallDefaultsGas(t *testing.T) {
	b := txn.NewTransactionBuilder(types.MustParseAccountID("app.near")).
		FunctionCall("ping", []byte("{}"), 0, types.Balance{})

	tx := sendThrough(t, b)
	call, ok := tx.Actions[0].(types.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, types.DefaultFunctionCallGas, call.Gas)
}

func TestBuilderFunctionCallJSON(t *testing.T) {
	b := txn.NewTransactionBuilder(types.MustParseAccountID("app.near")).
		FunctionCallJSON("set_greeting", map[string]string{"greeting": "hola"}, types.Tgas(50), types.Balance{})

	tx := sendThrough(t, b)
	call, ok := tx.Actions[0].(types.FunctionCall)
	require.True(t, ok)
	assert.JSONEq(t, `{"greeting":"hola"}`, string(call.Args))
	assert.Equal(t, types.Tgas(50), call.Gas)
}

func TestBuilderFunctionCallJSONBadArgs(t *testing.T) {
	s, _ := newTestSigner(t, "alice.near")
	transport := &fakeTransport{
		viewAccessKey: func(ctx context.Context, accountID types.AccountID, publicKey types.PublicKey, ref types.BlockReference) (*types.AccessKeyView, error) {
			return &types.AccessKeyView{Nonce: 0}, nil
		},
	}

	b := txn.NewTransactionBuilder(types.MustParseAccountID("app.near")).
		FunctionCallJSON("bad", map[string]any{"fn": func() {}}, 0, types.Balance{})

	_, err := txn.NewPipeline(transport, "").Send(context.Background(), s, b)
	assert.ErrorContains(t, err, "failed to encode arguments")
}

func TestBuilderRequiresReceiver(t *testing.T) {
	s, _ := newTestSigner(t, "alice.near")
	transport := &fakeTransport{
		viewAccessKey: func(ctx context.Context, accountID types.AccountID, publicKey types.PublicKey, ref types.BlockReference) (*types.AccessKeyView, error) {
			return &types.AccessKeyView{Nonce: 0}, nil
		},
	}

	b := txn.NewTransactionBuilder(types.AccountID{}).Transfer(types.NearToken(1))
	_, err := txn.NewPipeline(transport, "").Send(context.Background(), s, b)
	assert.ErrorContains(t, err, "receiver account id is required")
}

func TestBuilderPriorityFeeReachesTransaction(t *testing.T) {
	b := txn.NewTransactionBuilder(types.MustParseAccountID("bob.near")).
		Transfer(types.NearToken(1)).
		WithPriorityFee(12)

	tx := sendThrough(t, b)
	assert.Equal(t, uint64(12), tx.PriorityFee)
}
