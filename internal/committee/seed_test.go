package committee

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedFromNonceAndEpoch(t *testing.T) {
	var nonce [SeedSize]byte
	nonce[31] = 0xfe

	seed := SeedFromNonceAndEpoch(nonce[:], 3)
	assert.Equal(t, byte(0x01), seed[31])
	assert.Equal(t, byte(0x01), seed[30], "carry into the next byte")

	ones := bytes.Repeat([]byte{0xff}, SeedSize)
	assert.Equal(t, [SeedSize]byte{}, SeedFromNonceAndEpoch(ones, 1), "wraps modulo 2^256")

	short := SeedFromNonceAndEpoch([]byte{0xab}, 0)
	assert.Equal(t, byte(0xab), short[0])
	assert.Equal(t, [SeedSize - 1]byte{}, [SeedSize - 1]byte(short[1:]))
}

func TestSelectForEpoch(t *testing.T) {
	in := Inputs[string]{
		DParameter:   DParameter{RegisteredSeats: 2, PermissionedSeats: 2},
		EpochNonce:   bytes.Repeat([]byte{7}, 32),
		Registered:   []WeightedCandidate[string]{Weighted("R1", 10), Weighted("R2", 20)},
		Permissioned: []string{"P1"},
	}
	a, ok := SelectForEpoch(in, 1000)
	assert.True(t, ok)
	assert.Len(t, a, 4)
	assert.Equal(t, 2, count(a, "P1"))

	b, _ := SelectForEpoch(in, 1000)
	assert.Equal(t, a, b)

	_, ok = SelectForEpoch(Inputs[string]{DParameter: in.DParameter}, 1000)
	assert.False(t, ok)
}
