package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-near/internal/near/types"
)

func TestParseAccountIDValid(t *testing.T) {
	valid := []string{
		"alice.near",
		"bob",
		"app.alice.near",
		"a1-b2_c3.near",
		"near",
		"0x" + strings.Repeat("ab", 20),
		strings.Repeat("ab", 32), // implicit
	}

	for _, s := range valid {
		_, err := types.ParseAccountID(s)
		assert.NoError(t, err, s)
	}
}

func TestParseAccountIDInvalid(t *testing.T) {
	invalid := []string{
		"",
		"a",
		"Alice.near",
		"alice..near",
		".alice",
		"alice.",
		"-alice",
		"alice-",
		"_alice",
		"alice_",
		"al ice",
		"sub.-part.near",
		strings.Repeat("a", 65),
		"0x" + strings.Repeat("ab", 19), // too short for EVM form
		"0x" + strings.Repeat("zz", 20), // non-hex
	}

	for _, s := range invalid {
		_, err := types.ParseAccountID(s)
		assert.Error(t, err, s)
	}
}

func TestAccountIDPredicates(t *testing.T) {
	implicit := types.MustParseAccountID(strings.Repeat("ab", 32))
	assert.True(t, implicit.IsImplicit())
	assert.False(t, implicit.IsNamed())

	evm := types.MustParseAccountID("0x" + strings.Repeat("cd", 20))
	assert.True(t, evm.IsEVMImplicit())
	assert.False(t, evm.IsNamed())

	near := types.MustParseAccountID("near")
	assert.True(t, near.IsTopLevel())

	alice := types.MustParseAccountID("alice.near")
	sub := types.MustParseAccountID("app.alice.near")
	assert.True(t, alice.IsSubAccountOf(near))
	assert.True(t, sub.IsSubAccountOf(alice))
	assert.True(t, sub.IsSubAccountOf(near))
	assert.False(t, near.IsSubAccountOf(alice))
	assert.False(t, alice.IsSubAccountOf(alice))

	assert.Equal(t, "alice.near", sub.Parent().String())
	assert.True(t, near.Parent().IsZero())
}

func TestAccountIDJSON(t *testing.T) {
	a := types.MustParseAccountID("alice.near")
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"alice.near"`, string(raw))

	var back types.AccountID
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a, back)

	assert.Error(t, json.Unmarshal([]byte(`"Invalid!"`), &back))
}
