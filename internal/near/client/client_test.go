package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/client"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

// stubNode is a minimal JSON-RPC node backing the facade tests. It serves a
// fixed chain head and one access key, and records submitted transactions.
type stubNode struct {
	t         *testing.T
	accountID string
	nonce     uint64
	blockHash types.CryptoHash
	submitted []*types.SignedTransaction
}

func (n *stubNode) handler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))

	switch req.Method {
	case "query":
		var params struct {
			RequestType string `json:"request_type"`
			AccountID   string `json:"account_id"`
		}
		require.NoError(n.t, json.Unmarshal(req.Params, &params))
		switch params.RequestType {
		case "view_access_key":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"nonce":%d,"permission":"FullAccess","block_height":100,"block_hash":"%s"}}`, n.nonce, n.blockHash)
		case "view_account":
			if params.AccountID != n.accountID {
				fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"name":"HANDLER_ERROR","cause":{"name":"UNKNOWN_ACCOUNT"},"code":-32000,"message":"account does not exist"}}`)
				return
			}
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"amount":"5000000000000000000000000","locked":"0","storage_usage":500,"code_hash":"11111111111111111111111111111111"}}`)
		default:
			n.t.Errorf("unexpected query request_type %q", params.RequestType)
		}
	case "block":
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"header":{"height":100,"hash":"%s"}}}`, n.blockHash)
	case "send_tx":
		var params struct {
			SignedTxBase64 string `json:"signed_tx_base64"`
		}
		require.NoError(n.t, json.Unmarshal(req.Params, &params))
		signed, err := types.SignedTransactionFromBase64(params.SignedTxBase64)
		require.NoError(n.t, err)
		n.submitted = append(n.submitted, signed)
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"status":{"SuccessValue":""},"transaction_outcome":{"id":"11111111111111111111111111111111","outcome":{"gas_burnt":450000000000}}}}`)
	default:
		n.t.Errorf("unexpected RPC method %q", req.Method)
	}
}

func newStubClient(t *testing.T, node *stubNode, s signer.Signer) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(node.handler))
	t.Cleanup(srv.Close)

	b := client.Custom(srv.URL)
	if s != nil {
		b.WithSigner(s)
	}
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func TestTransferEndToEnd(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	s, err := signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), key)
	require.NoError(t, err)

	node := &stubNode{
		t:         t,
		accountID: "alice.near",
		nonce:     6,
		blockHash: types.HashBytes([]byte("chain head")),
	}
	c := newStubClient(t, node, s)

	outcome, err := c.Transfer(context.Background(), types.MustParseAccountID("bob.near"), types.NearToken(1))
	require.NoError(t, err)
	assert.True(t, outcome.IsSuccess())

	require.Len(t, node.submitted, 1)
	tx := node.submitted[0].Transaction
	assert.Equal(t, "alice.near", tx.SignerID.String())
	assert.Equal(t, "bob.near", tx.ReceiverID.String())
	assert.Equal(t, uint64(7), tx.Nonce, "nonce is the fetched access key nonce plus one")
	assert.Equal(t, node.blockHash, tx.BlockHash)

	// The node-side view: decode, re-encode, hash, verify.
	hash, _, err := tx.Hash()
	require.NoError(t, err)
	assert.True(t, node.submitted[0].Signature.Verify(hash.Bytes(), key.PublicKey()))
}

func TestSequentialTransfersAdvanceNonce(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	s, err := signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), key)
	require.NoError(t, err)

	node := &stubNode{
		t:         t,
		accountID: "alice.near",
		nonce:     6,
		blockHash: types.HashBytes([]byte("chain head")),
	}
	c := newStubClient(t, node, s)

	for i := 0; i < 3; i++ {
		_, err := c.Transfer(context.Background(), types.MustParseAccountID("bob.near"), types.NearToken(1))
		require.NoError(t, err)
	}

	require.Len(t, node.submitted, 3)
	for i, signed := range node.submitted {
		assert.Equal(t, uint64(7+i), signed.Transaction.Nonce)
	}
}

func TestAccountExists(t *testing.T) {
	node := &stubNode{
		t:         t,
		accountID: "alice.near",
		blockHash: types.HashBytes([]byte("chain head")),
	}
	c := newStubClient(t, node, nil)

	exists, err := c.AccountExists(context.Background(), types.MustParseAccountID("alice.near"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.AccountExists(context.Background(), types.MustParseAccountID("nobody.near"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBalanceBreakdown(t *testing.T) {
	node := &stubNode{
		t:         t,
		accountID: "alice.near",
		blockHash: types.HashBytes([]byte("chain head")),
	}
	c := newStubClient(t, node, nil)

	balance, err := c.Balance(context.Background(), types.MustParseAccountID("alice.near"))
	require.NoError(t, err)
	assert.Equal(t, "5 NEAR", balance.Total.String())
}

func TestReadOnlyClientRejectsTransactions(t *testing.T) {
	node := &stubNode{t: t, accountID: "alice.near"}
	c := newStubClient(t, node, nil)

	_, err := c.Transfer(context.Background(), types.MustParseAccountID("bob.near"), types.NearToken(1))
	assert.ErrorIs(t, err, client.ErrNoSigner)

	_, err = c.Deploy(context.Background(), []byte{0x00})
	assert.ErrorIs(t, err, client.ErrNoSigner)
}

func TestFromConfigBuildsSigner(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	t.Setenv("NEAR_NETWORK", "testnet")
	t.Setenv("NEAR_ACCOUNT_ID", "alice.testnet")
	t.Setenv("NEAR_PRIVATE_KEY", key.Export())

	c, err := client.FromEnv()
	require.NoError(t, err)
	require.NotNil(t, c.Signer())
	assert.Equal(t, "alice.testnet", c.Signer().AccountID().String())
}

func TestCreateSubAccountValidatesParent(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	s, err := signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), key)
	require.NoError(t, err)

	node := &stubNode{t: t, accountID: "alice.near", blockHash: types.HashBytes([]byte("head"))}
	c := newStubClient(t, node, s)

	_, err = c.CreateSubAccount(context.Background(), types.MustParseAccountID("app.bob.near"), key.PublicKey(), types.NearToken(1))
	assert.ErrorContains(t, err, "not a sub-account")

	_, err = c.CreateSubAccount(context.Background(), types.MustParseAccountID("app.alice.near"), key.PublicKey(), types.NearToken(1))
	require.NoError(t, err)

	require.Len(t, node.submitted, 1)
	actions := node.submitted[0].Transaction.Actions
	require.Len(t, actions, 3)
	assert.IsType(t, types.CreateAccount{}, actions[0])
	assert.IsType(t, types.Transfer{}, actions[1])
	assert.IsType(t, types.AddKey{}, actions[2])
}
