package block

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// Digest item kinds, numbered as the header digest enum variants.
const (
	DigestConsensus  uint8 = 4
	DigestSeal       uint8 = 5
	DigestPreRuntime uint8 = 6
)

// EngineID tags an engine specific digest item.
type EngineID = [4]byte

var (
	// McHashDigestID tags the mainchain reference hash.
	McHashDigestID = EngineID{'m', 'c', 's', 'h'}
	// AuraEngineID tags the slot claimed by the block author.
	AuraEngineID = EngineID{'a', 'u', 'r', 'a'}
)

var (
	ErrMcHashMissing       = errors.New("main chain block hash missing from digest")
	ErrMcHashInvalidLength = errors.New("invalid MC hash referenced by block author in digest: MC hash must be exactly 32 bytes long")
	ErrSlotMissing         = errors.New("slot missing from digest")
	ErrSlotInvalidLength   = errors.New("slot in digest must be exactly 8 bytes long")
)

// DigestItem is a single engine tagged header log entry.
type DigestItem struct {
	Kind     uint8
	EngineID EngineID
	Payload  []byte
}

// Digest is the ordered list of header log entries.
type Digest []DigestItem

// PreRuntime creates a pre-runtime digest item.
func PreRuntime(id EngineID, payload []byte) DigestItem {
	return DigestItem{Kind: DigestPreRuntime, EngineID: id, Payload: payload}
}

// PreRuntime returns the payload of the first pre-runtime item tagged with id.
func (d Digest) PreRuntime(id EngineID) ([]byte, bool) {
	for _, item := range d {
		if item.Kind == DigestPreRuntime && item.EngineID == id {
			return item.Payload, true
		}
	}
	return nil, false
}

// NewMcHashDigest creates the digest item holding the mainchain reference hash.
func NewMcHashDigest(hash crypto.Hash) DigestItem {
	payload := make([]byte, crypto.HashSize)
	copy(payload, hash[:])
	return PreRuntime(McHashDigestID, payload)
}

// McHashFromDigest extracts the mainchain reference hash.
func McHashFromDigest(d Digest) (crypto.Hash, error) {
	payload, ok := d.PreRuntime(McHashDigestID)
	if !ok {
		return crypto.Hash{}, ErrMcHashMissing
	}
	if len(payload) != crypto.HashSize {
		return crypto.Hash{}, fmt.Errorf("%w: got 0x%x", ErrMcHashInvalidLength, payload)
	}
	var h crypto.Hash
	copy(h[:], payload)
	return h, nil
}

// NewSlotDigest creates the aura pre-runtime item announcing slot.
func NewSlotDigest(slot mcepoch.PartnerSlot) DigestItem {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, uint64(slot))
	return PreRuntime(AuraEngineID, payload)
}

// SlotFromDigest extracts the slot announced by the block author.
func SlotFromDigest(d Digest) (mcepoch.PartnerSlot, error) {
	payload, ok := d.PreRuntime(AuraEngineID)
	if !ok {
		return 0, ErrSlotMissing
	}
	if len(payload) != 8 {
		return 0, ErrSlotInvalidLength
	}
	return mcepoch.PartnerSlot(binary.LittleEndian.Uint64(payload)), nil
}
