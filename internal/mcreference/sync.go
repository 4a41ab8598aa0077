package mcreference

import (
	"context"
	"time"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/pkg/log"
)

// DataSource answers stable mainchain block queries. A false result means
// no block satisfies the query.
type DataSource interface {
	// GetLatestStableBlockFor returns the latest stable block whose
	// timestamp lies in the stability window of ref.
	GetLatestStableBlockFor(ctx context.Context, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error)
	// GetStableBlockFor returns the block with the given hash if it is
	// stable and lies in the stability window of ref.
	GetStableBlockFor(ctx context.Context, hash crypto.Hash, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error)
	// GetBlockByHash returns the block with the given hash.
	GetBlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, bool, error)
}

// Parent is the parent of a verified block, either Genesis or a ParentBlock.
type Parent interface {
	parent()
}

// Genesis is the parent of the first block. It references nothing.
type Genesis struct{}

// ParentBlock is a non-genesis parent together with the slot it was
// produced in.
type ParentBlock struct {
	Header block.Header
	Slot   mcepoch.PartnerSlot
}

func (Genesis) parent()     {}
func (ParentBlock) parent() {}

// NewProposal selects the mainchain block referenced by a block produced at
// slot on top of parent. The result never references an older block than
// parent does.
func NewProposal(
	ctx context.Context,
	ds DataSource,
	parent block.Header,
	slot mcepoch.PartnerSlot,
	slotDuration time.Duration,
) (*Reference, error) {
	ref, err := propose(ctx, ds, parent, slot, slotDuration)
	if err != nil {
		log.Reference.Warn().Err(err).Uint64("slot", uint64(slot)).
			Bool("deferrable", IsDeferrable(err)).Msg("skipping slot")
		return nil, err
	}
	log.Reference.Debug().Uint64("slot", uint64(slot)).Stringer("mc_hash", ref.McHash()).
		Uint64("mc_block", ref.McBlockNumber()).Msg("proposing main chain reference")
	return ref, nil
}

func propose(
	ctx context.Context,
	ds DataSource,
	parent block.Header,
	slot mcepoch.PartnerSlot,
	slotDuration time.Duration,
) (*Reference, error) {
	ts, err := mcepoch.SlotStartTimestamp(slot, slotDuration)
	if err != nil {
		return nil, err
	}
	candidate, ok, err := ds.GetLatestStableBlockFor(ctx, ts)
	if err != nil {
		return nil, &DataSourceError{Err: err}
	}
	if !ok {
		return nil, &StableBlockNotFoundError{Timestamp: ts}
	}

	parentHash, hasReference, err := block.McHashForHeader(parent)
	if err != nil {
		return nil, &DigestError{Err: err}
	}
	if !hasReference {
		return &Reference{block: candidate}, nil
	}

	parentBlock, ok, err := ds.GetBlockByHash(ctx, parentHash)
	if err != nil {
		return nil, &DataSourceError{Err: err}
	}
	if !ok {
		return nil, &StableBlockNotFoundByHashError{Hash: parentHash}
	}
	if candidate.Number >= parentBlock.Number {
		return &Reference{block: candidate, previous: &parentBlock}, nil
	}
	log.Reference.Debug().Uint64("candidate", candidate.Number).Uint64("parent", parentBlock.Number).
		Msg("latest stable block is behind the parent reference, keeping the parent's")
	return &Reference{block: parentBlock, previous: &parentBlock}, nil
}

// NewVerification checks the reference mcHash claimed by a block produced at
// slot on top of parent.
func NewVerification(
	ctx context.Context,
	ds DataSource,
	parent Parent,
	slot mcepoch.PartnerSlot,
	mcHash crypto.Hash,
	slotDuration time.Duration,
) (*Reference, error) {
	ref, err := verify(ctx, ds, parent, slot, mcHash, slotDuration)
	if err != nil {
		log.Reference.Warn().Err(err).Uint64("slot", uint64(slot)).Stringer("mc_hash", mcHash).
			Msg("rejecting main chain reference")
		return nil, err
	}
	return ref, nil
}

func verify(
	ctx context.Context,
	ds DataSource,
	parent Parent,
	slot mcepoch.PartnerSlot,
	mcHash crypto.Hash,
	slotDuration time.Duration,
) (*Reference, error) {
	referenced, err := stateReference(ctx, ds, slot, mcHash, slotDuration)
	if err != nil {
		return nil, err
	}

	switch p := parent.(type) {
	case Genesis:
		return &Reference{block: referenced}, nil
	case ParentBlock:
		parentHash, err := block.McHashFromDigest(p.Header.Digest)
		if err != nil {
			return nil, &DigestError{Err: err}
		}
		parentReferenced, err := stateReference(ctx, ds, p.Slot, parentHash, slotDuration)
		if err != nil {
			return nil, err
		}
		if referenced.Number < parentReferenced.Number {
			return nil, &ReferenceRegressedError{
				Hash:         mcHash,
				Slot:         slot,
				Number:       referenced.Number,
				ParentNumber: parentReferenced.Number,
			}
		}
		return &Reference{block: referenced, previous: &parentReferenced}, nil
	default:
		return nil, &DigestError{Err: errUnknownParent}
	}
}

// stateReference resolves hash as a block that was stable at slot.
func stateReference(
	ctx context.Context,
	ds DataSource,
	slot mcepoch.PartnerSlot,
	hash crypto.Hash,
	slotDuration time.Duration,
) (block.MainchainBlock, error) {
	ts, err := mcepoch.SlotStartTimestamp(slot, slotDuration)
	if err != nil {
		return block.MainchainBlock{}, err
	}
	b, ok, err := ds.GetStableBlockFor(ctx, hash, ts)
	if err != nil {
		return block.MainchainBlock{}, &DataSourceError{Err: err}
	}
	if !ok {
		return block.MainchainBlock{}, &ReferenceInvalidError{Hash: hash, Slot: slot, Timestamp: ts}
	}
	return b, nil
}
