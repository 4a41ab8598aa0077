package crypto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHash(t *testing.T) {
	const hexHash = "ebeed7fb0067f14d6f6436c7f7dedb27ce3ceb4d2d18ff249d43b22d86fae3f1"

	h, err := ParseHash(hexHash)
	require.NoError(t, err)
	assert.Equal(t, hexHash, h.String())

	prefixed, err := ParseHash("0x" + hexHash)
	require.NoError(t, err)
	assert.Equal(t, h, prefixed)

	_, err = ParseHash("abcd")
	require.ErrorIs(t, err, ErrInvalidHashLength)

	_, err = ParseHash("zz")
	require.Error(t, err)
}

func TestHash_JSON(t *testing.T) {
	h := HashData([]byte("mainchain"))
	b, err := json.Marshal(struct{ H Hash }{h})
	require.NoError(t, err)

	var out struct{ H Hash }
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, h, out.H)
	assert.False(t, out.H.IsZero())
	assert.True(t, Hash{}.IsZero())
}
