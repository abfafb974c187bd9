package types

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Finality names how strongly a block must be protected against
// reorganization before it is treated as authoritative.
type Finality string

const (
	// FinalityOptimistic is the latest block the node has seen.
	FinalityOptimistic Finality = "optimistic"
	// FinalityNearFinal is a block endorsed by the doomslug tier.
	FinalityNearFinal Finality = "near-final"
	// FinalityFinal is an irreversibly finalized block.
	FinalityFinal Finality = "final"
)

// BlockReference selects a block by finality level, height or hash. Exactly
// one selector is set; the zero value is invalid.
type BlockReference struct {
	finality Finality
	height   *uint64
	hash     *CryptoHash
}

// BlockFinality references the most recent block at the given finality.
func BlockFinality(f Finality) BlockReference {
	return BlockReference{finality: f}
}

// BlockHeight references a block by height.
func BlockHeight(height uint64) BlockReference {
	return BlockReference{height: &height}
}

// BlockHash references a block by hash.
func BlockHash(hash CryptoHash) BlockReference {
	return BlockReference{hash: &hash}
}

// IsZero reports whether no selector is set.
func (r BlockReference) IsZero() bool {
	return r.finality == "" && r.height == nil && r.hash == nil
}

// MarshalJSON emits the RPC block-reference fragment, either
// {"finality": ...} or {"block_id": <height|hash>}.
func (r BlockReference) MarshalJSON() ([]byte, error) {
	switch {
	case r.height != nil:
		return json.Marshal(map[string]any{"block_id": *r.height})
	case r.hash != nil:
		return json.Marshal(map[string]any{"block_id": r.hash.String()})
	case r.finality != "":
		return json.Marshal(map[string]Finality{"finality": r.finality})
	default:
		return nil, errors.New("block reference has no selector")
	}
}

// Params returns the reference as RPC parameter fields, for methods that
// splice the block selector into a larger parameter object.
func (r BlockReference) Params() map[string]any {
	switch {
	case r.height != nil:
		return map[string]any{"block_id": *r.height}
	case r.hash != nil:
		return map[string]any{"block_id": r.hash.String()}
	default:
		f := r.finality
		if f == "" {
			f = FinalityFinal
		}
		return map[string]any{"finality": f}
	}
}

// TxExecutionStatus is the wait-until level of a transaction submission: how
// far execution must have progressed before the node responds.
type TxExecutionStatus string

const (
	// TxStatusNone returns as soon as the node accepts the transaction.
	TxStatusNone TxExecutionStatus = "NONE"
	// TxStatusIncluded waits for inclusion in a block.
	TxStatusIncluded TxExecutionStatus = "INCLUDED"
	// TxStatusExecutedOptimistic waits for execution on the optimistic
	// chain. The default wait level.
	TxStatusExecutedOptimistic TxExecutionStatus = "EXECUTED_OPTIMISTIC"
	// TxStatusIncludedFinal waits for the including block to finalize.
	TxStatusIncludedFinal TxExecutionStatus = "INCLUDED_FINAL"
	// TxStatusExecuted waits for execution in a finalized block.
	TxStatusExecuted TxExecutionStatus = "EXECUTED"
	// TxStatusFinal waits for execution and all resulting receipts to
	// land in finalized blocks.
	TxStatusFinal TxExecutionStatus = "FINAL"
)

// OrDefault returns s, or the default wait level when s is empty.
func (s TxExecutionStatus) OrDefault() TxExecutionStatus {
	if s == "" {
		return TxStatusExecutedOptimistic
	}
	return s
}
