package block

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// Header is a partner chain block header. Its encoding follows the
// substrate header layout so the hash matches what the host pipeline sees.
type Header struct {
	ParentHash     crypto.Hash
	Number         uint // compact encoded
	StateRoot      crypto.Hash
	ExtrinsicsRoot crypto.Hash
	Digest         Digest
}

// Bytes returns the SCALE encoding of the header.
func (h Header) Bytes() ([]byte, error) {
	b, err := scale.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	return b, nil
}

// Hash returns the blake2b-256 hash of the encoded header.
func (h Header) Hash() (crypto.Hash, error) {
	b, err := h.Bytes()
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashData(b), nil
}

// HeaderFromBytes decodes a header produced by Header.Bytes.
func HeaderFromBytes(data []byte) (Header, error) {
	var h Header
	if err := scale.Unmarshal(data, &h); err != nil {
		return Header{}, fmt.Errorf("unmarshal header: %w", err)
	}
	return h, nil
}

// IsGenesis reports whether h is the genesis header.
func (h Header) IsGenesis() bool {
	return h.Number == 0
}

// McHashForHeader returns the mainchain reference carried by h. The genesis
// header carries none and reports ok=false.
func McHashForHeader(h Header) (hash crypto.Hash, ok bool, err error) {
	if h.IsGenesis() {
		return crypto.Hash{}, false, nil
	}
	hash, err = McHashFromDigest(h.Digest)
	if err != nil {
		return crypto.Hash{}, false, err
	}
	return hash, true, nil
}

// Slot returns the slot announced in the header digest. The genesis header
// has no slot.
func (h Header) Slot() (mcepoch.PartnerSlot, bool, error) {
	if h.IsGenesis() {
		return 0, false, nil
	}
	slot, err := SlotFromDigest(h.Digest)
	if errors.Is(err, ErrSlotMissing) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return slot, true, nil
}
