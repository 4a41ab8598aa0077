package testutils

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

func RandomHash(t *testing.T) crypto.Hash {
	hash := make([]byte, crypto.HashSize)
	_, err := rand.Read(hash)
	require.NoError(t, err)
	return crypto.Hash(hash)
}

// BlockHash returns a deterministic hash for the mainchain block number n.
func BlockHash(n uint64) crypto.Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return crypto.HashData(b[:])
}

// MainchainBlocks builds count consecutive mainchain blocks starting at
// genesis, one block every slotGap slots of one second each. Every block
// lives in epoch slot / slotsPerEpoch.
func MainchainBlocks(count int, genesisSeconds, slotGap, slotsPerEpoch uint64) []block.MainchainBlock {
	blocks := make([]block.MainchainBlock, count)
	for i := range blocks {
		n := uint64(i)
		slot := n * slotGap
		blocks[i] = block.MainchainBlock{
			Number:    n,
			Hash:      BlockHash(n),
			Epoch:     mcepoch.Epoch(slot / slotsPerEpoch),
			Slot:      mcepoch.Slot(slot),
			Timestamp: genesisSeconds + slot,
		}
	}
	return blocks
}
