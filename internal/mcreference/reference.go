package mcreference

import (
	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// Reference is an accepted mainchain reference together with the one held
// by the parent block, if any.
type Reference struct {
	block    block.MainchainBlock
	previous *block.MainchainBlock
}

// Block returns the referenced mainchain block.
func (r *Reference) Block() block.MainchainBlock { return r.block }

// Previous returns the block referenced by the parent. Blocks built on
// genesis have none.
func (r *Reference) Previous() (block.MainchainBlock, bool) {
	if r.previous == nil {
		return block.MainchainBlock{}, false
	}
	return *r.previous, true
}

func (r *Reference) McHash() crypto.Hash    { return r.block.Hash }
func (r *Reference) McBlockNumber() uint64  { return r.block.Number }
func (r *Reference) McEpoch() mcepoch.Epoch { return r.block.Epoch }

// PreviousMcHash returns the parent's reference hash.
func (r *Reference) PreviousMcHash() (crypto.Hash, bool) {
	if r.previous == nil {
		return crypto.Hash{}, false
	}
	return r.previous.Hash, true
}

func (r *Reference) ChainReference() block.ChainReference {
	return r.block.Reference()
}

// DigestItem returns the header log entry carrying the reference.
func (r *Reference) DigestItem() block.DigestItem {
	return block.NewMcHashDigest(r.block.Hash)
}
