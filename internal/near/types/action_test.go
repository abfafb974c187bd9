package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/types"
)

// encodeSingleAction builds a one-action transaction and returns the bytes
// of the action list portion (count prefix plus encoded action).
func encodeSingleAction(t *testing.T, a types.Action) []byte {
	t.Helper()

	tx := baseTransaction(t)
	tx.Actions = []types.Action{a}
	withAction, err := tx.Encode()
	require.NoError(t, err)

	tx.Actions = nil
	withoutAction, err := tx.Encode()
	require.NoError(t, err)

	// Both encodings share the fixed prefix up to the action count.
	prefix := len(withoutAction) - 4
	return withAction[prefix:]
}

func baseTransaction(t *testing.T) *types.Transaction {
	t.Helper()
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	return &types.Transaction{
		SignerID:   types.MustParseAccountID("alice.near"),
		PublicKey:  key.PublicKey(),
		Nonce:      7,
		ReceiverID: types.MustParseAccountID("bob.near"),
		BlockHash:  types.HashBytes([]byte("block")),
	}
}

func TestActionDiscriminantsAreStable(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	pub := key.PublicKey()
	beneficiary := types.MustParseAccountID("bob.near")
	codeHash := types.HashBytes([]byte("code"))

	cases := []struct {
		name string
		a    types.Action
		tag  uint8
	}{
		{"CreateAccount", types.CreateAccount{}, 0},
		{"DeployContract", types.DeployContract{Code: []byte{0}}, 1},
		{"FunctionCall", types.FunctionCall{MethodName: "m", Gas: types.Tgas(30)}, 2},
		{"Transfer", types.Transfer{Deposit: types.NearToken(1)}, 3},
		{"Stake", types.Stake{Stake: types.NearToken(1), PublicKey: pub}, 4},
		{"AddKey", types.AddKey{PublicKey: pub, AccessKey: types.FullAccessKey()}, 5},
		{"DeleteKey", types.DeleteKey{PublicKey: pub}, 6},
		{"DeleteAccount", types.DeleteAccount{BeneficiaryID: beneficiary}, 7},
		{"DeployGlobalContract", types.DeployGlobalContract{Code: []byte{0}}, 9},
		{"UseGlobalContract", types.UseGlobalContract{Identifier: types.GlobalContractIdentifier{CodeHash: &codeHash}}, 10},
		{"DeterministicStateInit", types.DeterministicStateInit{StateInit: types.StateInit{Code: types.GlobalContractIdentifier{CodeHash: &codeHash}}}, 11},
	}

	for _, tc := range cases {
		raw := encodeSingleAction(t, tc.a)
		// u32 count = 1, then the discriminant byte.
		require.GreaterOrEqual(t, len(raw), 5, tc.name)
		assert.Equal(t, []byte{1, 0, 0, 0}, raw[:4], tc.name)
		assert.Equal(t, tc.tag, raw[4], tc.name)
	}
}

func TestTransferActionLayout(t *testing.T) {
	raw := encodeSingleAction(t, types.Transfer{Deposit: types.YoctoNear(2)})

	want := append([]byte{1, 0, 0, 0, 3}, make([]byte, 16)...)
	want[5] = 2 // u128 little-endian deposit
	assert.Equal(t, want, raw)
}

func TestFunctionCallRequiresMethodName(t *testing.T) {
	tx := baseTransaction(t)
	tx.Actions = []types.Action{types.FunctionCall{Args: []byte("{}")}}
	_, err := tx.Encode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method name")
}

func TestDeployContractSizeLimit(t *testing.T) {
	tx := baseTransaction(t)
	tx.Actions = []types.Action{types.DeployContract{Code: make([]byte, types.MaxContractCodeSize+1)}}
	_, err := tx.Encode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")

	var encErr *types.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestAccessKeyPermissionLayout(t *testing.T) {
	allowance := types.NearToken(1)
	receiver := types.MustParseAccountID("app.near")

	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	fnKey := types.FunctionCallKey(receiver, []string{"get", "set"}, &allowance)
	raw := encodeSingleAction(t, types.AddKey{PublicKey: key.PublicKey(), AccessKey: fnKey})

	// count(4) + tag(1) + pubkey(1+32) + nonce(8), then the permission.
	perm := raw[4+1+33+8:]
	assert.Equal(t, uint8(0), perm[0], "function call permission discriminant")
	assert.Equal(t, uint8(1), perm[1], "allowance option tag")

	full := encodeSingleAction(t, types.AddKey{PublicKey: key.PublicKey(), AccessKey: types.FullAccessKey()})
	perm = full[4+1+33+8:]
	assert.Equal(t, []byte{1}, perm, "full access permission discriminant")
}

func TestStateInitDeriveAccountID(t *testing.T) {
	codeHash := types.HashBytes([]byte("wasm"))
	init := types.StateInit{
		Code: types.GlobalContractIdentifier{CodeHash: &codeHash},
		Data: map[string][]byte{"k": []byte("v")},
	}

	id, err := init.DeriveAccountID()
	require.NoError(t, err)
	assert.Len(t, id.String(), 42)
	assert.Equal(t, "0s", id.String()[:2])

	// Derivation is deterministic.
	again, err := init.DeriveAccountID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}
