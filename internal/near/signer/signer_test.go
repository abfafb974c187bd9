package signer_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/keystore"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

func TestInMemorySignerSignsVerifiably(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	s, err := signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), key)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", s.AccountID().String())
	assert.True(t, s.PublicKey().Equal(key.PublicKey()))

	msg := []byte("payload digest placeholder 32 by")
	sig, pub, err := s.Sign(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, pub.Equal(key.PublicKey()))
	assert.True(t, sig.Verify(msg, pub))
}

func TestInMemorySignerRejectsEmptyInputs(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	_, err = signer.NewInMemorySigner(types.AccountID{}, key)
	assert.Error(t, err)

	_, err = signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), types.SecretKey{})
	assert.ErrorIs(t, err, signer.ErrNoKeyMaterial)
}

func TestInMemorySignerFromString(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	s, err := signer.NewInMemorySignerFromString(types.MustParseAccountID("alice.near"), key.Export())
	require.NoError(t, err)
	assert.True(t, s.PublicKey().Equal(key.PublicKey()))
}

func TestClaimedKeyStableAcrossReuse(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	s, err := signer.NewInMemorySigner(types.MustParseAccountID("alice.near"), key)
	require.NoError(t, err)

	claimed := s.ClaimKey()
	pub := claimed.PublicKey()
	for i := 0; i < 3; i++ {
		sig, err := claimed.Sign(context.Background(), []byte("rebuilt payload"))
		require.NoError(t, err)
		assert.True(t, claimed.PublicKey().Equal(pub))
		assert.True(t, sig.Verify([]byte("rebuilt payload"), pub))
	}
}

func TestRotatingSignerDistinctKeysPerRound(t *testing.T) {
	const n = 8
	keys := make([]types.SecretKey, n)
	for i := range keys {
		k, err := types.GenerateSecretKey(types.KeyTypeEd25519)
		require.NoError(t, err)
		keys[i] = k
	}
	s, err := signer.NewRotatingSigner(types.MustParseAccountID("pool.near"), keys)
	require.NoError(t, err)
	require.Equal(t, n, s.Len())

	var (
		mu       sync.Mutex
		selected = make(map[string]int)
		wg       sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub := s.ClaimKey().PublicKey().String()
			mu.Lock()
			selected[pub]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// One full round over n keys selects every key exactly once.
	assert.Len(t, selected, n)
	for pub, count := range selected {
		assert.Equal(t, 1, count, "key %s claimed more than once in a round", pub)
	}
}

func TestRotatingSignerWrapsAround(t *testing.T) {
	keys := make([]types.SecretKey, 3)
	for i := range keys {
		k, err := types.GenerateSecretKey(types.KeyTypeEd25519)
		require.NoError(t, err)
		keys[i] = k
	}
	s, err := signer.NewRotatingSigner(types.MustParseAccountID("pool.near"), keys)
	require.NoError(t, err)

	first := s.ClaimKey().PublicKey()
	s.ClaimKey()
	s.ClaimKey()
	assert.True(t, s.ClaimKey().PublicKey().Equal(first))
}

func TestRotatingSignerRejectsEmptyPool(t *testing.T) {
	_, err := signer.NewRotatingSigner(types.MustParseAccountID("pool.near"), nil)
	assert.Error(t, err)
}

func TestEnvSigner(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	t.Setenv(signer.EnvAccountID, "alice.near")
	t.Setenv(signer.EnvPrivateKey, key.Export())

	s, err := signer.NewEnvSigner()
	require.NoError(t, err)
	assert.Equal(t, "alice.near", s.AccountID().String())
	assert.True(t, s.PublicKey().Equal(key.PublicKey()))
}

func TestEnvSignerMissingVariables(t *testing.T) {
	t.Setenv(signer.EnvAccountID, "")
	t.Setenv(signer.EnvPrivateKey, "")
	_, err := signer.NewEnvSigner()
	assert.Error(t, err)
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	accountID := types.MustParseAccountID("alice.testnet")
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	path, err := signer.WriteCredentialsFile(dir, "testnet", accountID, key)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "testnet", "alice.testnet.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err := signer.NewCredentialsSigner(dir, "testnet", accountID)
	require.NoError(t, err)
	assert.Equal(t, accountID, s.AccountID())
	assert.True(t, s.PublicKey().Equal(key.PublicKey()))
}

func TestParseCredentialsSecretKeyAlias(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	raw := []byte(`{"account_id":"alice.near","secret_key":"` + key.Export() + `"}`)
	accountID, parsed, err := signer.ParseCredentials(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", accountID.String())
	assert.True(t, parsed.PublicKey().Equal(key.PublicKey()))
}

func TestParseCredentialsMismatchedPublicKey(t *testing.T) {
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)
	other, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	file := signer.CredentialsFile{
		AccountID:  types.MustParseAccountID("alice.near"),
		PublicKey:  other.PublicKey(),
		PrivateKey: key.Export(),
	}
	raw, err := json.Marshal(file)
	require.NoError(t, err)

	_, _, err = signer.ParseCredentials(raw)
	assert.ErrorContains(t, err, "does not match")
}

func TestFileSignerRejectsSealedEnvelope(t *testing.T) {
	accountID := types.MustParseAccountID("alice.near")
	key, err := types.GenerateSecretKey(types.KeyTypeEd25519)
	require.NoError(t, err)

	env, err := keystore.Seal(accountID, key, "hunter2")
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sealed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = signer.NewFileSigner(path)
	assert.ErrorContains(t, err, "sealed")

	s, err := signer.NewEncryptedFileSigner(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, accountID, s.AccountID())
	assert.True(t, s.PublicKey().Equal(key.PublicKey()))
}
