package txn

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-near/internal/near/signer"
	"github/chapool/go-near/internal/near/types"
)

// DelegateValidityWindow is how many blocks past the latest final block a
// signed delegate action stays submittable.
const DelegateValidityWindow = 200

// SignDelegate produces a SignedDelegateAction the sender hands to a relayer.
// The relayer wraps it in its own transaction and pays the gas; the actions
// still execute as the sender.
//
// The delegate nonce comes from the sender's access-key sequence, so a
// later transaction through the same key invalidates an unspent delegate.
func (p *Pipeline) SignDelegate(ctx context.Context, s signer.Signer, receiverID types.AccountID, actions []types.Action) (*types.SignedDelegateAction, error) {
	if receiverID.IsZero() {
		return nil, errors.New("receiver account id is required")
	}
	if len(actions) == 0 {
		return nil, errors.New("delegate has no actions")
	}

	key := s.ClaimKey()

	nonce, err := p.nonces.Next(ctx, p.transport, s.AccountID(), key.PublicKey())
	if err != nil {
		return nil, err
	}

	block, err := p.transport.Block(ctx, types.BlockFinality(types.FinalityFinal))
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch reference block")
	}

	delegate := &types.DelegateAction{
		SenderID:       s.AccountID(),
		ReceiverID:     receiverID,
		Actions:        actions,
		Nonce:          nonce,
		MaxBlockHeight: block.Header.Height + DelegateValidityWindow,
		PublicKey:      key.PublicKey(),
	}

	hash, err := delegate.Hash()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode delegate action")
	}
	sig, err := key.Sign(ctx, hash[:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign delegate action")
	}

	return &types.SignedDelegateAction{DelegateAction: *delegate, Signature: sig}, nil
}

// SendDelegate submits a signed delegate action as the relayer: the pipeline
// signer pays for a transaction whose single action is the delegate.
func (p *Pipeline) SendDelegate(ctx context.Context, relayer signer.Signer, signed *types.SignedDelegateAction) (*types.FinalExecutionOutcome, error) {
	if !signed.Verify() {
		return nil, errors.New("refusing to relay delegate with an invalid signature")
	}
	b := NewTransactionBuilder(signed.DelegateAction.SenderID).
		Action(types.Delegate{SignedDelegate: *signed})
	return p.Send(ctx, relayer, b)
}
