package block

import (
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// MainchainBlock is the observed summary of a mainchain block.
type MainchainBlock struct {
	Number    uint64        `json:"number"`
	Hash      crypto.Hash   `json:"hash"`
	Epoch     mcepoch.Epoch `json:"epoch"`
	Slot      mcepoch.Slot  `json:"slot"`
	Timestamp uint64        `json:"timestamp"` // unix seconds
}

// TimestampMillis returns the block timestamp in milliseconds.
func (b MainchainBlock) TimestampMillis() mcepoch.Timestamp {
	return mcepoch.FromUnixSeconds(b.Timestamp)
}

// Reference returns the chain reference pointing at b.
func (b MainchainBlock) Reference() ChainReference {
	return ChainReference{Hash: b.Hash, Number: b.Number, Epoch: b.Epoch}
}

func (b MainchainBlock) String() string {
	return fmt.Sprintf("#%d (%s) epoch %d slot %d", b.Number, b.Hash, b.Epoch, b.Slot)
}

// ChainReference identifies the mainchain block a partner chain block
// references. Only Hash is written to the header.
type ChainReference struct {
	Hash   crypto.Hash
	Number uint64
	Epoch  mcepoch.Epoch
}

type mainchainBlockRecord struct {
	Number    uint64
	Hash      [crypto.HashSize]byte
	Epoch     uint32
	Slot      uint64
	Timestamp uint64
}

// Bytes returns the SCALE encoding of b.
func (b MainchainBlock) Bytes() ([]byte, error) {
	return scale.Marshal(mainchainBlockRecord{
		Number:    b.Number,
		Hash:      b.Hash,
		Epoch:     uint32(b.Epoch),
		Slot:      uint64(b.Slot),
		Timestamp: b.Timestamp,
	})
}

// MainchainBlockFromBytes decodes a block encoded with MainchainBlock.Bytes.
func MainchainBlockFromBytes(data []byte) (MainchainBlock, error) {
	var r mainchainBlockRecord
	if err := scale.Unmarshal(data, &r); err != nil {
		return MainchainBlock{}, fmt.Errorf("unmarshal mainchain block: %w", err)
	}
	return MainchainBlock{
		Number:    r.Number,
		Hash:      r.Hash,
		Epoch:     mcepoch.Epoch(r.Epoch),
		Slot:      mcepoch.Slot(r.Slot),
		Timestamp: r.Timestamp,
	}, nil
}
