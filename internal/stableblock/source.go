package stableblock

import (
	"context"
	"errors"
	"fmt"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/safemath"
	"github.com/eigerco/pcbridge/pkg/log"
)

// DefaultCacheSize is the number of blocks loaded on a by-hash cache miss.
const DefaultCacheSize = 100

// BlockQuerier reads raw, unfiltered mainchain blocks. Lookups that match
// nothing return block.ErrBlockNotFound.
type BlockQuerier interface {
	LatestBlock(ctx context.Context) (block.MainchainBlock, error)
	BlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, error)
	BlockByNumber(ctx context.Context, n uint64) (block.MainchainBlock, error)
	BlocksByNumbers(ctx context.Context, from, to uint64) ([]block.MainchainBlock, error)
}

// WindowQuerier is implemented by queriers able to search a stability window
// natively. Queriers without it are scanned backwards block by block.
type WindowQuerier interface {
	HighestBlockInWindow(ctx context.Context, q block.WindowQuery) (block.MainchainBlock, error)
}

// Config parametrises a Source.
type Config struct {
	// SecurityParameter is the number of confirmations after which a
	// mainchain block is final.
	SecurityParameter uint32
	// StabilityMargin adds confirmations when picking the latest stable block.
	StabilityMargin uint32
	CacheSize       uint32
	Window          Window
	Epochs          mcepoch.Config
}

// Source answers stable block queries on top of a raw block querier.
type Source struct {
	cfg     Config
	querier BlockQuerier
	cache   *BlocksCache
}

func NewSource(querier BlockQuerier, cfg Config) *Source {
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	return &Source{
		cfg:     cfg,
		querier: querier,
		cache:   NewBlocksCache(),
	}
}

// Cache exposes the by-hash cache.
func (s *Source) Cache() *BlocksCache {
	return s.cache
}

// LatestBlock returns the current, possibly unstable, mainchain tip.
func (s *Source) LatestBlock(ctx context.Context) (block.MainchainBlock, bool, error) {
	return optional(s.querier.LatestBlock(ctx))
}

// GetLatestStableBlockFor returns the highest block with at least
// SecurityParameter+StabilityMargin confirmations whose timestamp lies in
// the stability window of ref.
func (s *Source) GetLatestStableBlockFor(ctx context.Context, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	latest, ok, err := s.LatestBlock(ctx)
	if err != nil || !ok {
		return block.MainchainBlock{}, false, err
	}
	offset := uint64(s.cfg.SecurityParameter) + uint64(s.cfg.StabilityMargin)
	q := s.windowQuery(safemath.SaturatingSub64(latest.Number, offset), ref)

	if wq, ok := s.querier.(WindowQuerier); ok {
		return optional(wq.HighestBlockInWindow(ctx, q))
	}
	return s.scanWindow(ctx, q)
}

// GetStableBlockFor returns the block with the given hash if it has at least
// SecurityParameter confirmations and lies in the stability window of ref.
// A miss refills the cache starting at the found block.
func (s *Source) GetStableBlockFor(ctx context.Context, hash crypto.Hash, ref mcepoch.Timestamp) (block.MainchainBlock, bool, error) {
	if b, ok := s.cache.Find(hash); ok && s.cfg.Window.Contains(b, ref) {
		log.Follower.Debug().Stringer("hash", hash).Msg("stable block found in cache")
		return b, true, nil
	}
	log.Follower.Debug().Stringer("hash", hash).Msg("stable block not in cache, querying source")

	b, ok, err := optional(s.querier.BlockByHash(ctx, hash))
	if err != nil || !ok {
		return block.MainchainBlock{}, false, err
	}
	latest, ok, err := s.LatestBlock(ctx)
	if err != nil || !ok {
		return block.MainchainBlock{}, false, err
	}
	confirmed := safemath.SaturatingAdd64(b.Number, uint64(s.cfg.SecurityParameter)) <= latest.Number
	if !confirmed || !s.cfg.Window.Contains(b, ref) {
		return block.MainchainBlock{}, false, nil
	}

	if err := s.fillCache(ctx, b, latest); err != nil {
		return block.MainchainBlock{}, false, err
	}
	return b, true, nil
}

// GetBlockByHash returns the block with the given hash without checking
// stability.
func (s *Source) GetBlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, bool, error) {
	if b, ok := s.cache.Find(hash); ok {
		return b, true, nil
	}
	return optional(s.querier.BlockByHash(ctx, hash))
}

// fillCache loads the stable blocks following from, at most CacheSize of
// them, and replaces the cache.
func (s *Source) fillCache(ctx context.Context, from, latest block.MainchainBlock) error {
	stable := safemath.SaturatingSub64(latest.Number, uint64(s.cfg.SecurityParameter))
	to := min(safemath.SaturatingAdd64(from.Number, uint64(s.cfg.CacheSize)), stable)

	blocks := []block.MainchainBlock{from}
	if from.Number < to {
		var err error
		blocks, err = s.querier.BlocksByNumbers(ctx, from.Number, to)
		if err != nil {
			return fmt.Errorf("load blocks %d to %d: %w", from.Number, to, err)
		}
	}
	s.cache.Update(blocks)
	log.Follower.Debug().Uint64("from", from.Number).Uint64("to", to).Msg("cached blocks for by hash lookups")
	return nil
}

// windowQuery builds the search for ref among blocks numbered up to
// maxNumber. Timestamps before the first epoch map to the first slot.
func (s *Source) windowQuery(maxNumber uint64, ref mcepoch.Timestamp) block.WindowQuery {
	earliest, latest := s.cfg.Window.SecondBounds(ref)
	return block.WindowQuery{
		MaxNumber:    maxNumber,
		MinTimestamp: earliest,
		MaxTimestamp: latest,
		MinSlot:      s.slotAt(mcepoch.FromUnixSeconds(earliest)),
		MaxSlot:      s.slotAt(mcepoch.FromUnixSeconds(latest)),
	}
}

func (s *Source) slotAt(ts mcepoch.Timestamp) mcepoch.Slot {
	slot, err := s.cfg.Epochs.TimestampToSlot(ts)
	if err != nil {
		return mcepoch.Slot(s.cfg.Epochs.FirstSlotNumber)
	}
	return slot
}

// scanWindow walks blocks downwards from q.MaxNumber until one matches or
// the walk leaves the window.
func (s *Source) scanWindow(ctx context.Context, q block.WindowQuery) (block.MainchainBlock, bool, error) {
	n := q.MaxNumber
	for {
		b, ok, err := optional(s.querier.BlockByNumber(ctx, n))
		if err != nil || !ok {
			return block.MainchainBlock{}, false, err
		}
		if q.Matches(b) {
			return b, true, nil
		}
		if q.Below(b) || b.Number == 0 {
			return block.MainchainBlock{}, false, nil
		}
		n = b.Number - 1
	}
}

func optional(b block.MainchainBlock, err error) (block.MainchainBlock, bool, error) {
	if errors.Is(err, block.ErrBlockNotFound) {
		return block.MainchainBlock{}, false, nil
	}
	if err != nil {
		return block.MainchainBlock{}, false, err
	}
	return b, true, nil
}
