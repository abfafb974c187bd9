package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/types"
)

func sampleTransaction(t *testing.T) (*types.Transaction, types.SecretKey) {
	t.Helper()
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	allowance := types.MilliNear(250)
	tx := &types.Transaction{
		SignerID:   types.MustParseAccountID("alice.near"),
		PublicKey:  key.PublicKey(),
		Nonce:      42,
		ReceiverID: types.MustParseAccountID("bob.near"),
		BlockHash:  types.HashBytes([]byte("recent block")),
		Actions: []types.Action{
			types.CreateAccount{},
			types.Transfer{Deposit: types.NearToken(3)},
			types.FunctionCall{
				MethodName: "set_status",
				Args:       []byte(`{"status":"ok"}`),
				Gas:        types.DefaultFunctionCallGas,
				Deposit:    types.YoctoNear(1),
			},
			types.AddKey{
				PublicKey: key.PublicKey(),
				AccessKey: types.FunctionCallKey(types.MustParseAccountID("app.near"), []string{"get"}, &allowance),
			},
			types.DeleteKey{PublicKey: key.PublicKey()},
			types.DeleteAccount{BeneficiaryID: types.MustParseAccountID("bob.near")},
		},
	}
	return tx, key
}

func TestEncodeIsDeterministic(t *testing.T) {
	tx, _ := sampleTransaction(t)

	first, err := tx.Encode()
	require.NoError(t, err)
	second, err := tx.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransactionRoundTrip(t *testing.T) {
	tx, _ := sampleTransaction(t)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := types.DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)

	reencoded, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestTransactionRoundTripWithPriorityFee(t *testing.T) {
	tx, _ := sampleTransaction(t)
	tx.PriorityFee = 12

	encoded, err := tx.Encode()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), encoded[0], "versioned layout starts with version byte")

	decoded, err := types.DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)
	assert.Equal(t, uint64(12), decoded.PriorityFee)
}

func TestVersionedZeroFeeRoundTrip(t *testing.T) {
	tx, _ := sampleTransaction(t)
	tx.PriorityFee = 5

	encoded, err := tx.Encode()
	require.NoError(t, err)

	// A versioned envelope may legitimately carry a zero fee; patch the
	// trailing u64 down and make sure the layout survives a round trip.
	for i := len(encoded) - 8; i < len(encoded); i++ {
		encoded[i] = 0
	}

	decoded, err := types.DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Zero(t, decoded.PriorityFee)

	reencoded, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestPriorityFeeChangesEncoding(t *testing.T) {
	tx, _ := sampleTransaction(t)
	plain, err := tx.Encode()
	require.NoError(t, err)

	tx.PriorityFee = 1
	versioned, err := tx.Encode()
	require.NoError(t, err)
	assert.NotEqual(t, plain, versioned)
}

func TestSignAndVerify(t *testing.T) {
	tx, key := sampleTransaction(t)

	signed, err := tx.Sign(key)
	require.NoError(t, err)

	hash, _, err := tx.Hash()
	require.NoError(t, err)
	assert.True(t, signed.Signature.Verify(hash.Bytes(), key.PublicKey()))
}

func TestSignRejectsMismatchedKey(t *testing.T) {
	tx, _ := sampleTransaction(t)
	other, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	_, err = tx.Sign(other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestSignedTransactionBase64RoundTrip(t *testing.T) {
	tx, key := sampleTransaction(t)
	signed, err := tx.Sign(key)
	require.NoError(t, err)

	b64, err := signed.ToBase64()
	require.NoError(t, err)

	back, err := types.SignedTransactionFromBase64(b64)
	require.NoError(t, err)
	assert.Equal(t, signed, back)
}

func TestDecodeRejectsTrailingGarbage(t *testing.T) {
	tx, _ := sampleTransaction(t)
	encoded, err := tx.Encode()
	require.NoError(t, err)

	_, err = types.DecodeTransaction(append(encoded, 0x00))
	assert.Error(t, err)
}

func TestEncodeRejectsIncompleteTransaction(t *testing.T) {
	_, err := (&types.Transaction{}).Encode()
	assert.Error(t, err)
}

func TestDelegateActionSigningPrefix(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	action := types.DelegateAction{
		SenderID:       types.MustParseAccountID("alice.near"),
		ReceiverID:     types.MustParseAccountID("bob.near"),
		Actions:        []types.Action{types.Transfer{Deposit: types.NearToken(1)}},
		Nonce:          8,
		MaxBlockHeight: 1000,
		PublicKey:      key.PublicKey(),
	}

	payload, err := action.SigningPayload()
	require.NoError(t, err)
	// NEP-461 prefix 2^30+366, little-endian.
	assert.Equal(t, []byte{0x6e, 0x01, 0x00, 0x40}, payload[:4])
}

func TestSignedDelegateActionVerify(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	action := types.DelegateAction{
		SenderID:       types.MustParseAccountID("alice.near"),
		ReceiverID:     types.MustParseAccountID("bob.near"),
		Actions:        []types.Action{types.Transfer{Deposit: types.NearToken(1)}},
		Nonce:          8,
		MaxBlockHeight: 1000,
		PublicKey:      key.PublicKey(),
	}

	hash, err := action.Hash()
	require.NoError(t, err)
	sig, err := key.Sign(hash.Bytes())
	require.NoError(t, err)

	signed := types.SignedDelegateAction{DelegateAction: action, Signature: sig}
	assert.True(t, signed.Verify())

	signed.DelegateAction.Nonce++
	assert.False(t, signed.Verify())
}

func TestDelegateCannotNest(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	inner := types.SignedDelegateAction{
		DelegateAction: types.DelegateAction{
			SenderID:   types.MustParseAccountID("alice.near"),
			ReceiverID: types.MustParseAccountID("bob.near"),
			PublicKey:  key.PublicKey(),
		},
	}

	outer := types.DelegateAction{
		SenderID:   types.MustParseAccountID("alice.near"),
		ReceiverID: types.MustParseAccountID("bob.near"),
		Actions:    []types.Action{types.Delegate{SignedDelegate: inner}},
		PublicKey:  key.PublicKey(),
	}

	_, err = outer.SigningPayload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot contain")
}

func TestDelegateActionInTransactionRoundTrip(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	delegate := types.DelegateAction{
		SenderID:       types.MustParseAccountID("carol.near"),
		ReceiverID:     types.MustParseAccountID("app.near"),
		Actions:        []types.Action{types.Transfer{Deposit: types.YoctoNear(5)}},
		Nonce:          3,
		MaxBlockHeight: 99,
		PublicKey:      key.PublicKey(),
	}
	hash, err := delegate.Hash()
	require.NoError(t, err)
	sig, err := key.Sign(hash.Bytes())
	require.NoError(t, err)

	tx, _ := sampleTransaction(t)
	tx.Actions = []types.Action{types.Delegate{SignedDelegate: types.SignedDelegateAction{
		DelegateAction: delegate,
		Signature:      sig,
	}}}

	encoded, err := tx.Encode()
	require.NoError(t, err)
	decoded, err := types.DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, tx, decoded)
}
