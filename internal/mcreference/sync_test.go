package mcreference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/testutils"
)

const slotDuration = 6 * time.Second

type dataSourceMock struct {
	mock.Mock
}

func (m *dataSourceMock) GetLatestStableBlockFor(ctx context.Context, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	args := m.MethodCalled("GetLatestStableBlockFor", ctx, ref)
	return args.Get(0).(block.MainchainBlock), args.Bool(1), args.Error(2)
}

func (m *dataSourceMock) GetStableBlockFor(ctx context.Context, hash crypto.Hash, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	args := m.MethodCalled("GetStableBlockFor", ctx, hash, ref)
	return args.Get(0).(block.MainchainBlock), args.Bool(1), args.Error(2)
}

func (m *dataSourceMock) GetBlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, bool, error) {
	args := m.MethodCalled("GetBlockByHash", ctx, hash)
	return args.Get(0).(block.MainchainBlock), args.Bool(1), args.Error(2)
}

func mcBlock(n uint64) block.MainchainBlock {
	return block.MainchainBlock{
		Number:    n,
		Hash:      testutils.BlockHash(n),
		Epoch:     mcepoch.Epoch(n / 100),
		Slot:      mcepoch.Slot(n * 20),
		Timestamp: 1_600_000_000 + n*20,
	}
}

func headerReferencing(n uint, mcHash crypto.Hash) block.Header {
	return block.Header{
		Number: n,
		Digest: block.Digest{block.NewSlotDigest(mcepoch.PartnerSlot(n)), block.NewMcHashDigest(mcHash)},
	}
}

func slotStart(slot mcepoch.PartnerSlot) mcepoch.Timestamp {
	return mcepoch.Timestamp(uint64(slot) * uint64(slotDuration.Milliseconds()))
}

func TestNewProposal(t *testing.T) {
	ctx := context.Background()
	const slot mcepoch.PartnerSlot = 300_000_000

	t.Run("genesis parent takes latest stable block", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(mcBlock(10), true, nil)

		ref, err := NewProposal(ctx, ds, block.Header{}, slot, slotDuration)
		require.NoError(t, err)
		assert.Equal(t, mcBlock(10), ref.Block())
		_, ok := ref.PreviousMcHash()
		assert.False(t, ok)
		ds.AssertExpectations(t)
		ds.AssertNotCalled(t, "GetBlockByHash", mock.Anything, mock.Anything)
	})

	for name, tc := range map[string]struct {
		candidate, parent, want uint64
	}{
		"newer block is proposed":  {candidate: 10, parent: 8, want: 10},
		"equal block is proposed":  {candidate: 10, parent: 10, want: 10},
		"older block is not taken": {candidate: 10, parent: 12, want: 12},
	} {
		t.Run(name, func(t *testing.T) {
			ds := &dataSourceMock{}
			ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(mcBlock(tc.candidate), true, nil)
			ds.On("GetBlockByHash", mock.Anything, mcBlock(tc.parent).Hash).Return(mcBlock(tc.parent), true, nil)

			ref, err := NewProposal(ctx, ds, headerReferencing(5, mcBlock(tc.parent).Hash), slot, slotDuration)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref.McBlockNumber())
			assert.Equal(t, mcBlock(tc.want).Hash, ref.McHash())
			prev, ok := ref.PreviousMcHash()
			require.True(t, ok)
			assert.Equal(t, mcBlock(tc.parent).Hash, prev)
			assert.Equal(t, block.NewMcHashDigest(ref.McHash()), ref.DigestItem())
		})
	}

	t.Run("no stable block", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(block.MainchainBlock{}, false, nil)

		_, err := NewProposal(ctx, ds, block.Header{}, slot, slotDuration)
		var notFound *StableBlockNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, slotStart(slot), notFound.Timestamp)
		assert.True(t, IsDeferrable(err))
	})

	t.Run("parent reference cannot be resolved", func(t *testing.T) {
		ds := &dataSourceMock{}
		parentHash := testutils.RandomHash(t)
		ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(mcBlock(10), true, nil)
		ds.On("GetBlockByHash", mock.Anything, parentHash).Return(block.MainchainBlock{}, false, nil)

		_, err := NewProposal(ctx, ds, headerReferencing(5, parentHash), slot, slotDuration)
		var notFound *StableBlockNotFoundByHashError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, parentHash, notFound.Hash)
		assert.True(t, IsDeferrable(err))
	})

	t.Run("parent header without reference", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(mcBlock(10), true, nil)

		_, err := NewProposal(ctx, ds, block.Header{Number: 5}, slot, slotDuration)
		var digestErr *DigestError
		require.ErrorAs(t, err, &digestErr)
		assert.ErrorIs(t, err, block.ErrMcHashMissing)
		assert.False(t, IsDeferrable(err))
	})

	t.Run("data source failure", func(t *testing.T) {
		errBoom := errors.New("db down")
		ds := &dataSourceMock{}
		ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(slot)).Return(block.MainchainBlock{}, false, errBoom)

		_, err := NewProposal(ctx, ds, block.Header{}, slot, slotDuration)
		var sourceErr *DataSourceError
		require.ErrorAs(t, err, &sourceErr)
		assert.ErrorIs(t, err, errBoom)
		assert.True(t, IsDeferrable(err))
	})

	t.Run("slot too big", func(t *testing.T) {
		ds := &dataSourceMock{}
		_, err := NewProposal(ctx, ds, block.Header{}, mcepoch.PartnerSlot(1<<62), slotDuration)
		assert.ErrorIs(t, err, mcepoch.ErrSlotTooBig)
		assert.False(t, IsDeferrable(err))
		ds.AssertNotCalled(t, "GetLatestStableBlockFor", mock.Anything, mock.Anything)
	})
}

func TestNewVerification(t *testing.T) {
	ctx := context.Background()
	const (
		slot       mcepoch.PartnerSlot = 300_000_010
		parentSlot mcepoch.PartnerSlot = 300_000_009
	)

	t.Run("genesis parent", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(10).Hash, slotStart(slot)).Return(mcBlock(10), true, nil)

		ref, err := NewVerification(ctx, ds, Genesis{}, slot, mcBlock(10).Hash, slotDuration)
		require.NoError(t, err)
		assert.Equal(t, mcBlock(10).Reference(), ref.ChainReference())
		_, ok := ref.Previous()
		assert.False(t, ok)
	})

	t.Run("reference not stable", func(t *testing.T) {
		ds := &dataSourceMock{}
		hash := testutils.RandomHash(t)
		ds.On("GetStableBlockFor", mock.Anything, hash, slotStart(slot)).Return(block.MainchainBlock{}, false, nil)

		_, err := NewVerification(ctx, ds, Genesis{}, slot, hash, slotDuration)
		var invalid *ReferenceInvalidError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, ReferenceInvalidError{Hash: hash, Slot: slot, Timestamp: slotStart(slot)}, *invalid)
	})

	t.Run("reference moves forward", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(10).Hash, slotStart(slot)).Return(mcBlock(10), true, nil)
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(9).Hash, slotStart(parentSlot)).Return(mcBlock(9), true, nil)

		parent := ParentBlock{Header: headerReferencing(5, mcBlock(9).Hash), Slot: parentSlot}
		ref, err := NewVerification(ctx, ds, parent, slot, mcBlock(10).Hash, slotDuration)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), ref.McBlockNumber())
		prev, ok := ref.Previous()
		require.True(t, ok)
		assert.Equal(t, mcBlock(9), prev)
		ds.AssertExpectations(t)
	})

	t.Run("reference regressed", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(8).Hash, slotStart(slot)).Return(mcBlock(8), true, nil)
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(9).Hash, slotStart(parentSlot)).Return(mcBlock(9), true, nil)

		parent := ParentBlock{Header: headerReferencing(5, mcBlock(9).Hash), Slot: parentSlot}
		_, err := NewVerification(ctx, ds, parent, slot, mcBlock(8).Hash, slotDuration)
		var regressed *ReferenceRegressedError
		require.ErrorAs(t, err, &regressed)
		assert.Equal(t, ReferenceRegressedError{Hash: mcBlock(8).Hash, Slot: slot, Number: 8, ParentNumber: 9}, *regressed)
	})

	t.Run("malformed parent digest", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(10).Hash, slotStart(slot)).Return(mcBlock(10), true, nil)

		header := block.Header{Number: 5, Digest: block.Digest{block.PreRuntime(block.McHashDigestID, []byte{1, 2})}}
		_, err := NewVerification(ctx, ds, ParentBlock{Header: header, Slot: parentSlot}, slot, mcBlock(10).Hash, slotDuration)
		var digestErr *DigestError
		require.ErrorAs(t, err, &digestErr)
		assert.ErrorIs(t, err, block.ErrMcHashInvalidLength)
	})

	t.Run("parent reference no longer stable at its slot", func(t *testing.T) {
		ds := &dataSourceMock{}
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(10).Hash, slotStart(slot)).Return(mcBlock(10), true, nil)
		ds.On("GetStableBlockFor", mock.Anything, mcBlock(9).Hash, slotStart(parentSlot)).Return(block.MainchainBlock{}, false, nil)

		parent := ParentBlock{Header: headerReferencing(5, mcBlock(9).Hash), Slot: parentSlot}
		_, err := NewVerification(ctx, ds, parent, slot, mcBlock(10).Hash, slotDuration)
		var invalid *ReferenceInvalidError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, parentSlot, invalid.Slot)
	})
}

// tipSource pretends the latest stable block moves by the given steps,
// sometimes backwards.
type tipSource struct {
	tips []uint64
	call int
}

func (s *tipSource) GetLatestStableBlockFor(context.Context, mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	b := mcBlock(s.tips[s.call%len(s.tips)])
	s.call++
	return b, true, nil
}

func (s *tipSource) GetStableBlockFor(_ context.Context, hash crypto.Hash, _ mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	return s.GetBlockByHash(context.Background(), hash)
}

func (s *tipSource) GetBlockByHash(_ context.Context, hash crypto.Hash) (block.MainchainBlock, bool, error) {
	for n := uint64(0); n < 1000; n++ {
		if testutils.BlockHash(n) == hash {
			return mcBlock(n), true, nil
		}
	}
	return block.MainchainBlock{}, false, nil
}

func TestProposedReferencesNeverRegress(t *testing.T) {
	ctx := context.Background()
	ds := &tipSource{tips: []uint64{5, 7, 6, 6, 9, 3, 10, 10, 8, 12}}

	parent := block.Header{}
	var parentNumber uint64
	for i := 1; i <= 30; i++ {
		slot := mcepoch.PartnerSlot(300_000_000 + i)
		ref, err := NewProposal(ctx, ds, parent, slot, slotDuration)
		require.NoError(t, err)
		require.GreaterOrEqual(t, ref.McBlockNumber(), parentNumber)

		var parentLink Parent = Genesis{}
		if !parent.IsGenesis() {
			parentLink = ParentBlock{Header: parent, Slot: slot - 1}
		}
		_, err = NewVerification(ctx, ds, parentLink, slot, ref.McHash(), slotDuration)
		require.NoError(t, err)

		parent = block.Header{
			Number: uint(i),
			Digest: block.Digest{block.NewSlotDigest(slot), ref.DigestItem()},
		}
		parentNumber = ref.McBlockNumber()
	}
}
