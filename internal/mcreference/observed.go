package mcreference

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/pkg/log"
	"github.com/eigerco/pcbridge/pkg/metrics"
)

// Observed is a DataSource that records metrics and debug logs for every
// call made to the wrapped source.
type Observed struct {
	ds      DataSource
	metrics *metrics.DataSource
}

// NewObserved wraps ds. A nil m disables metrics but keeps logging.
func NewObserved(ds DataSource, m *metrics.DataSource) *Observed {
	return &Observed{ds: ds, metrics: m}
}

func (o *Observed) GetLatestStableBlockFor(ctx context.Context, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	const method = "get_latest_stable_block_for"
	defer o.metrics.Start(method)()
	log.Follower.Debug().Str("method", method).Stringer("reference_timestamp", ref).Msg("called")

	b, ok, err := o.ds.GetLatestStableBlockFor(ctx, ref)
	logResult(method, b, ok, err)
	return b, ok, err
}

func (o *Observed) GetStableBlockFor(ctx context.Context, hash crypto.Hash, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	const method = "get_stable_block_for"
	defer o.metrics.Start(method)()
	log.Follower.Debug().Str("method", method).Stringer("hash", hash).Stringer("reference_timestamp", ref).Msg("called")

	b, ok, err := o.ds.GetStableBlockFor(ctx, hash, ref)
	logResult(method, b, ok, err)
	return b, ok, err
}

func (o *Observed) GetBlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, bool, error) {
	const method = "get_block_by_hash"
	defer o.metrics.Start(method)()
	log.Follower.Debug().Str("method", method).Stringer("hash", hash).Msg("called")

	b, ok, err := o.ds.GetBlockByHash(ctx, hash)
	logResult(method, b, ok, err)
	return b, ok, err
}

func logResult(method string, b block.MainchainBlock, ok bool, err error) {
	if err != nil {
		log.Follower.Error().Err(err).Str("method", method).Msg("failed")
		return
	}
	var ev *zerolog.Event
	if ok {
		ev = log.Follower.Debug().Stringer("block", b)
	} else {
		ev = log.Follower.Debug().Str("block", "none")
	}
	ev.Str("method", method).Msg("returns")
}
