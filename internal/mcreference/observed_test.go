package mcreference

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/pkg/metrics"
)

func TestObserved(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := metrics.NewDataSource(reg)
	require.NoError(t, err)

	errBoom := errors.New("timeout")
	ds := &dataSourceMock{}
	ds.On("GetBlockByHash", mock.Anything, mcBlock(1).Hash).Return(mcBlock(1), true, nil)
	ds.On("GetStableBlockFor", mock.Anything, mcBlock(2).Hash, slotStart(5)).Return(block.MainchainBlock{}, false, errBoom)
	ds.On("GetLatestStableBlockFor", mock.Anything, slotStart(5)).Return(block.MainchainBlock{}, false, nil)

	observed := NewObserved(ds, m)

	b, ok, err := observed.GetBlockByHash(ctx, mcBlock(1).Hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, mcBlock(1), b)

	_, _, err = observed.GetStableBlockFor(ctx, mcBlock(2).Hash, slotStart(5))
	assert.ErrorIs(t, err, errBoom)

	_, ok, err = observed.GetLatestStableBlockFor(ctx, slotStart(5))
	require.NoError(t, err)
	assert.False(t, ok)

	ds.AssertExpectations(t)
	count, err := testutil.GatherAndCount(reg, "partner_chains_data_source_method_call_count")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestObservedWithoutMetrics(t *testing.T) {
	ds := &dataSourceMock{}
	ds.On("GetBlockByHash", mock.Anything, mcBlock(1).Hash).Return(mcBlock(1), true, nil)

	_, ok, err := NewObserved(ds, nil).GetBlockByHash(context.Background(), mcBlock(1).Hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
