package txn

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/types"
)

// NonceManager caches the last used nonce per (account, public key) pair so
// sequential submissions through one key avoid an access-key query each
// time. The ledger tracks nonces per key, hence the pair granularity.
type NonceManager struct {
	mu      sync.Mutex
	entries map[string]*nonceEntry
}

type nonceEntry struct {
	mu    sync.Mutex
	known bool
	nonce uint64 // last used nonce, not the next one
}

// NewNonceManager returns an empty manager; first use of each key fetches
// the on-chain nonce.
func NewNonceManager() *NonceManager {
	return &NonceManager{entries: make(map[string]*nonceEntry)}
}

func nonceKey(accountID types.AccountID, publicKey types.PublicKey) string {
	return accountID.String() + ":" + publicKey.String()
}

func (m *NonceManager) entry(accountID types.AccountID, publicKey types.PublicKey) *nonceEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := nonceKey(accountID, publicKey)
	e, ok := m.entries[key]
	if !ok {
		e = &nonceEntry{}
		m.entries[key] = e
	}
	return e
}

// Next returns the nonce for the next submission through the given key,
// fetching the access-key state on first use and incrementing the cache on
// every call.
func (m *NonceManager) Next(ctx context.Context, transport Transport, accountID types.AccountID, publicKey types.PublicKey) (uint64, error) {
	e := m.entry(accountID, publicKey)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.known {
		view, err := transport.ViewAccessKey(ctx, accountID, publicKey, types.BlockFinality(types.FinalityFinal))
		if err != nil {
			return 0, errors.Wrap(err, "failed to fetch access key nonce")
		}
		e.nonce = view.Nonce
		e.known = true
	}

	e.nonce++
	return e.nonce, nil
}

// Correct records the nonce the node reported for the access key and
// returns the next usable one. The cache never moves backwards.
func (m *NonceManager) Correct(accountID types.AccountID, publicKey types.PublicKey, observed uint64) uint64 {
	e := m.entry(accountID, publicKey)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.known || observed > e.nonce {
		e.nonce = observed
		e.known = true
	}
	e.nonce++
	return e.nonce
}

// Invalidate drops the cached nonce for the key; the next submission
// re-fetches it.
func (m *NonceManager) Invalidate(accountID types.AccountID, publicKey types.PublicKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, nonceKey(accountID, publicKey))
}
