package committee

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/chacha20"
)

// SeedSize is the size of a ChaChaRNG seed.
const SeedSize = chacha20.KeySize

const blockSize = 64

// ChaChaRNG is a deterministic generator reading the 20 round ChaCha
// keystream keyed by a 32 byte seed with an all-zero nonce. Equal seeds
// always produce equal streams on every platform.
type ChaChaRNG struct {
	cipher *chacha20.Cipher
	buf    [blockSize]byte
	pos    int
}

func NewChaChaRNG(seed [SeedSize]byte) *ChaChaRNG {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// key and nonce sizes are fixed by the array types
		panic(err)
	}
	return &ChaChaRNG{cipher: c, pos: blockSize}
}

func (r *ChaChaRNG) refill() {
	clear(r.buf[:])
	r.cipher.XORKeyStream(r.buf[:], r.buf[:])
	r.pos = 0
}

// Uint64 returns the next 8 keystream bytes as a little endian integer.
func (r *ChaChaRNG) Uint64() uint64 {
	if r.pos+8 > blockSize {
		r.refill()
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

// Uint64n returns a uniform integer in [0, n). It panics if n is zero.
func (r *ChaChaRNG) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("committee: Uint64n called with zero bound")
	}
	// values below threshold would bias the modulo
	threshold := -n % n
	for {
		v := r.Uint64()
		if v >= threshold {
			return v % n
		}
	}
}

// Uint256n returns a uniform integer in [0, n). It panics if n is zero.
func (r *ChaChaRNG) Uint256n(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		panic("committee: Uint256n called with zero bound")
	}
	bits := n.BitLen()
	words := (bits + 63) / 64
	topMask := ^uint64(0) >> (uint(words*64 - bits))
	for {
		var v uint256.Int
		for i := 0; i < words; i++ {
			v[i] = r.Uint64()
		}
		v[words-1] &= topMask
		if v.Lt(n) {
			return &v
		}
	}
}

// Shuffle permutes s in place with a Fisher-Yates shuffle.
func Shuffle[T any](r *ChaChaRNG, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Uint64n(uint64(i) + 1)
		s[i], s[j] = s[j], s[i]
	}
}
