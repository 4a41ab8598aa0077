package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/config"
	"github.com/eigerco/pcbridge/internal/dbsync"
	"github.com/eigerco/pcbridge/internal/stableblock"
	"github.com/eigerco/pcbridge/internal/store"
	"github.com/eigerco/pcbridge/pkg/db/pebble"
)

// blockStore is a raw mainchain block source that can also be written to.
type blockStore interface {
	stableblock.BlockQuerier
	stableblock.WindowQuerier
	PutBlocks(ctx context.Context, blocks ...block.MainchainBlock) error
	Close() error
}

func openBlockStore(ctx context.Context, cfg config.Config) (blockStore, error) {
	switch cfg.BlockSource {
	case config.SourceSQLite:
		bs, err := dbsync.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return bs, nil
	case config.SourcePebble:
		kv, err := pebble.NewKVStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store.NewChain(kv), nil
	default:
		return nil, fmt.Errorf("unknown block source %q", cfg.BlockSource)
	}
}

// openHeaders returns the partner chain header store. The pebble block
// store doubles as the header store.
func openHeaders(cfg config.Config, blocks blockStore) (headers *store.Chain, closeFn func() error, err error) {
	if chain, ok := blocks.(*store.Chain); ok {
		return chain, func() error { return nil }, nil
	}
	kv, err := pebble.NewKVStore(cfg.HeaderDBPath)
	if err != nil {
		return nil, nil, err
	}
	chain := store.NewChain(kv)
	return chain, chain.Close, nil
}

// storage bundles everything the reference commands read and write.
type storage struct {
	blocks       blockStore
	headers      *store.Chain
	closeHeaders func() error
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	blocks, err := openBlockStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open block store: %w", err)
	}
	headers, closeHeaders, err := openHeaders(cfg, blocks)
	if err != nil {
		_ = blocks.Close()
		return nil, fmt.Errorf("open header store: %w", err)
	}
	return &storage{blocks: blocks, headers: headers, closeHeaders: closeHeaders}, nil
}

func (s *storage) Close() error {
	return errors.Join(s.closeHeaders(), s.blocks.Close())
}
