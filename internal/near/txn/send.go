// Package txn orchestrates transaction submission: it resolves the nonce
// and reference block, builds and signs the transaction, submits it, and
// recovers from nonce skew by rebuilding with the corrected value.
package txn

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-near/internal/near/rpc"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

// MaxNonceRetries bounds how many times a submission is rebuilt after the
// node rejects its nonce. Distinct from the transport's transient-retry
// budget.
const MaxNonceRetries = 3

// Transport is the slice of the RPC surface the pipeline depends on.
// *rpc.Client satisfies it; tests inject fakes.
type Transport interface {
	ViewAccessKey(ctx context.Context, accountID types.AccountID, publicKey types.PublicKey, ref types.BlockReference) (*types.AccessKeyView, error)
	Block(ctx context.Context, ref types.BlockReference) (*types.BlockView, error)
	SendTransaction(ctx context.Context, signed *types.SignedTransaction, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error)
	TxStatus(ctx context.Context, hash types.CryptoHash, sender types.AccountID, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error)
}

// TransactionFailedError reports a transaction that executed on the ledger
// and failed there. For multi-action transactions the failure names the
// index of the offending action.
type TransactionFailedError struct {
	Hash    types.CryptoHash
	Outcome *types.FinalExecutionOutcome
}

func (e *TransactionFailedError) Error() string {
	return "transaction " + e.Hash.String() + " failed: " + e.Outcome.FailureMessage()
}

// NonceRetriesExhaustedError reports persistent nonce skew: every rebuild
// was rejected again.
type NonceRetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *NonceRetriesExhaustedError) Error() string {
	return errors.Wrapf(e.Err, "nonce recovery failed after %d attempts", e.Attempts).Error()
}

func (e *NonceRetriesExhaustedError) Unwrap() error {
	return e.Err
}

// Pipeline drives submissions against one transport. Safe for concurrent
// use; per-key nonce state lives in the NonceManager.
type Pipeline struct {
	transport Transport
	nonces    *NonceManager
	waitUntil types.TxExecutionStatus
}

// NewPipeline creates a pipeline with its own nonce cache.
func NewPipeline(transport Transport, waitUntil types.TxExecutionStatus) *Pipeline {
	return &Pipeline{
		transport: transport,
		nonces:    NewNonceManager(),
		waitUntil: waitUntil,
	}
}

// Nonces exposes the nonce cache, mainly for invalidation.
func (p *Pipeline) Nonces() *NonceManager {
	return p.nonces
}

// submissionState is the phase a submission is in. The driver in Send moves
// through these explicitly so the recovery bound is visible in one place.
type submissionState int

const (
	stateResolving submissionState = iota
	stateSigning
	stateSubmitting
	stateRecovering
	stateDone
)

// submission is the mutable context of one Send call.
type submission struct {
	id        uuid.UUID
	builder   *TransactionBuilder
	signerID  types.AccountID
	key       signer.ClaimedKey
	nonce     uint64
	blockHash types.CryptoHash
	signed    *types.SignedTransaction
	recovers  int
}

// Send runs one transaction through the pipeline: resolve, sign, submit,
// recover if the nonce was stale, and interpret the outcome.
//
// The signing key is claimed exactly once, up front; recovery re-signs with
// the same key so all attempts stay on one nonce sequence.
func (p *Pipeline) Send(ctx context.Context, s signer.Signer, b *TransactionBuilder) (*types.FinalExecutionOutcome, error) {
	sub := &submission{
		id:       uuid.New(),
		builder:  b,
		signerID: s.AccountID(),
		key:      s.ClaimKey(),
	}

	state := stateResolving
	for state != stateDone {
		var err error
		switch state {
		case stateResolving:
			err = p.resolve(ctx, sub)
			state = stateSigning
		case stateSigning:
			err = p.sign(ctx, sub)
			state = stateSubmitting
		case stateSubmitting:
			var outcome *types.FinalExecutionOutcome
			outcome, err = p.submit(ctx, sub)
			if err == nil {
				return outcome, p.interpret(sub, outcome)
			}
			var nonceErr *rpc.InvalidNonceError
			if errors.As(err, &nonceErr) && sub.recovers < MaxNonceRetries {
				sub.recovers++
				sub.nonce = p.nonces.Correct(sub.signerID, sub.key.PublicKey(), nonceErr.AccessKeyNonce)
				log.Warn().
					Str("submission_id", sub.id.String()).
					Uint64("corrected_nonce", sub.nonce).
					Int("recovery_attempt", sub.recovers).
					Msg("Nonce rejected, rebuilding transaction")
				err = nil
				state = stateRecovering
			} else if errors.As(err, &nonceErr) {
				err = &NonceRetriesExhaustedError{Attempts: sub.recovers + 1, Err: err}
			}
		case stateRecovering:
			// The corrected nonce is already in place; only the
			// signature must be recomputed.
			err = p.sign(ctx, sub)
			state = stateSubmitting
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errors.New("submission driver exited without a result")
}

// resolve fetches the nonce and reference block concurrently. Builder
// overrides short-circuit the corresponding fetch.
func (p *Pipeline) resolve(ctx context.Context, sub *submission) error {
	var (
		nonceErr, blockErr error
		nonceDone          = make(chan struct{})
	)

	go func() {
		defer close(nonceDone)
		if sub.builder.nonce != nil {
			sub.nonce = *sub.builder.nonce
			return
		}
		sub.nonce, nonceErr = p.nonces.Next(ctx, p.transport, sub.signerID, sub.key.PublicKey())
	}()

	if sub.builder.blockHash != nil {
		sub.blockHash = *sub.builder.blockHash
	} else {
		var block *types.BlockView
		block, blockErr = p.transport.Block(ctx, types.BlockFinality(types.FinalityFinal))
		if blockErr == nil {
			sub.blockHash = block.Header.Hash
		}
	}

	<-nonceDone
	if nonceErr != nil {
		return nonceErr
	}
	if blockErr != nil {
		return errors.Wrap(blockErr, "failed to fetch reference block")
	}
	return nil
}

func (p *Pipeline) sign(ctx context.Context, sub *submission) error {
	tx, err := sub.builder.build(sub.signerID, sub.key.PublicKey(), sub.nonce, sub.blockHash)
	if err != nil {
		return err
	}

	hash, _, err := tx.Hash()
	if err != nil {
		return errors.Wrap(err, "failed to encode transaction")
	}

	sig, err := sub.key.Sign(ctx, hash[:])
	if err != nil {
		return errors.Wrap(err, "failed to sign transaction")
	}

	sub.signed = &types.SignedTransaction{Transaction: *tx, Signature: sig}
	return nil
}

func (p *Pipeline) submit(ctx context.Context, sub *submission) (*types.FinalExecutionOutcome, error) {
	waitUntil := sub.builder.waitUntil
	if waitUntil == "" {
		waitUntil = p.waitUntil
	}

	hash, err := sub.signed.Hash()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("submission_id", sub.id.String()).
		Str("tx_hash", hash.String()).
		Str("signer_id", sub.signerID.String()).
		Uint64("nonce", sub.nonce).
		Msg("Submitting transaction")

	return p.transport.SendTransaction(ctx, sub.signed, waitUntil)
}

// interpret turns a ledger-level failure into a typed error; successful and
// still-pending outcomes pass through.
func (p *Pipeline) interpret(sub *submission, outcome *types.FinalExecutionOutcome) error {
	if !outcome.IsFailure() {
		return nil
	}
	hash, _ := sub.signed.Hash()
	return &TransactionFailedError{Hash: hash, Outcome: outcome}
}

// Status polls the outcome of a previously submitted transaction. Callers
// use this before resubmitting after an ambiguous timeout.
func (p *Pipeline) Status(ctx context.Context, hash types.CryptoHash, sender types.AccountID, waitUntil types.TxExecutionStatus) (*types.FinalExecutionOutcome, error) {
	return p.transport.TxStatus(ctx, hash, sender, waitUntil)
}
