package dbsync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/testutils"
)

func newBlockStore(t *testing.T) *BlockStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "dbsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestBlockStoreQueries(t *testing.T) {
	ctx := context.Background()
	s := newBlockStore(t)
	blocks := testutils.MainchainBlocks(40, 1_600_000_000, 20, 100)
	require.NoError(t, s.PutBlocks(ctx, blocks...))

	latest, err := s.LatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, blocks[39], latest)

	b, err := s.BlockByHash(ctx, blocks[7].Hash)
	require.NoError(t, err)
	assert.Equal(t, blocks[7], b)

	b, err = s.BlockByNumber(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, blocks[12], b)

	rng, err := s.BlocksByNumbers(ctx, 30, 50)
	require.NoError(t, err)
	assert.Equal(t, blocks[30:], rng)

	_, err = s.BlockByHash(ctx, testutils.RandomHash(t))
	assert.ErrorIs(t, err, block.ErrBlockNotFound)
	_, err = s.BlockByNumber(ctx, 400)
	assert.ErrorIs(t, err, block.ErrBlockNotFound)
}

func TestBlockStoreEmpty(t *testing.T) {
	s := newBlockStore(t)
	_, err := s.LatestBlock(context.Background())
	assert.ErrorIs(t, err, block.ErrBlockNotFound)
	got, err := s.BlocksByNumbers(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPutBlocksReplacesByNumber(t *testing.T) {
	ctx := context.Background()
	s := newBlockStore(t)
	blocks := testutils.MainchainBlocks(3, 1_600_000_000, 20, 100)
	require.NoError(t, s.PutBlocks(ctx, blocks...))

	fork := blocks[2]
	fork.Hash = testutils.RandomHash(t)
	require.NoError(t, s.PutBlocks(ctx, fork))

	latest, err := s.LatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, fork, latest)
	_, err = s.BlockByHash(ctx, blocks[2].Hash)
	assert.ErrorIs(t, err, block.ErrBlockNotFound)
}

func TestHighestBlockInWindow(t *testing.T) {
	ctx := context.Background()
	s := newBlockStore(t)
	blocks := testutils.MainchainBlocks(50, 1_600_000_000, 20, 100)
	require.NoError(t, s.PutBlocks(ctx, blocks...))

	for name, tc := range map[string]struct {
		q    block.WindowQuery
		want int
	}{
		"time bound": {
			q:    block.WindowQuery{MaxNumber: 40, MinTimestamp: 1_600_000_100, MaxTimestamp: 1_600_000_700, MaxSlot: 10_000},
			want: 35,
		},
		"number bound": {
			q:    block.WindowQuery{MaxNumber: 12, MaxTimestamp: 1_600_000_700, MaxSlot: 10_000},
			want: 12,
		},
		"slot bound": {
			q:    block.WindowQuery{MaxNumber: 49, MaxTimestamp: 1_700_000_000, MinSlot: 100, MaxSlot: 300},
			want: 15,
		},
		"nothing matches": {
			q:    block.WindowQuery{MaxNumber: 49, MaxTimestamp: 1_000, MaxSlot: 10_000},
			want: -1,
		},
	} {
		t.Run(name, func(t *testing.T) {
			b, err := s.HighestBlockInWindow(ctx, tc.q)
			if tc.want < 0 {
				assert.ErrorIs(t, err, block.ErrBlockNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, blocks[tc.want], b)
		})
	}
}
