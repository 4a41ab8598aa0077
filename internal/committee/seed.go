package committee

import (
	"github.com/holiman/uint256"
)

// SeedFromNonceAndEpoch derives the selection seed for a partner chain epoch
// by adding the epoch number to the big endian mainchain epoch nonce, modulo
// 2^256. Shorter nonces are right padded with zeros and longer ones
// truncated to 32 bytes.
func SeedFromNonceAndEpoch(nonce []byte, epoch uint64) [SeedSize]byte {
	var padded [SeedSize]byte
	copy(padded[:], nonce)

	var seed uint256.Int
	seed.SetBytes32(padded[:])
	seed.Add(&seed, uint256.NewInt(epoch))
	return seed.Bytes32()
}
