package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/pkg/db"
	"github.com/eigerco/pcbridge/pkg/db/pebble"
)

// PutBlocks stores mainchain blocks and their number index atomically.
// A block already stored under the same number with another hash is
// removed, so it can no longer be found by hash.
func (c *Chain) PutBlocks(ctx context.Context, blocks ...block.MainchainBlock) error {
	if err := c.check(ctx); err != nil {
		return err
	}

	batch := c.db.NewBatch()
	defer batch.Close()

	indexed := make(map[uint64]crypto.Hash, len(blocks))
	for _, b := range blocks {
		prev, ok, err := c.indexedHash(b.Number, indexed)
		if err != nil {
			return err
		}
		if ok && prev != b.Hash {
			if err := batch.Delete(makeKey(prefixMainchainBlock, prev[:])); err != nil {
				return fmt.Errorf("remove replaced block %d: %w", b.Number, err)
			}
		}

		bb, err := b.Bytes()
		if err != nil {
			return fmt.Errorf("marshal block %d: %w", b.Number, err)
		}
		if err := batch.Put(makeKey(prefixMainchainBlock, b.Hash[:]), bb); err != nil {
			return fmt.Errorf("store block: %w", err)
		}
		if err := batch.Put(numberKey(b.Number), b.Hash[:]); err != nil {
			return fmt.Errorf("store block number: %w", err)
		}
		indexed[b.Number] = b.Hash
	}

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// indexedHash returns the hash indexed under number n, looking at the
// pending writes of the current batch first.
func (c *Chain) indexedHash(n uint64, pending map[uint64]crypto.Hash) (crypto.Hash, bool, error) {
	if h, ok := pending[n]; ok {
		return h, true, nil
	}
	hash, err := c.db.Get(numberKey(n))
	if errors.Is(err, pebble.ErrNotFound) {
		return crypto.Hash{}, false, nil
	}
	if err != nil {
		return crypto.Hash{}, false, fmt.Errorf("get block number %d: %w", n, err)
	}
	h, err := crypto.HashFromBytes(hash)
	if err != nil {
		return crypto.Hash{}, false, fmt.Errorf("block number %d index: %w", n, err)
	}
	return h, true, nil
}

// BlockByHash retrieves a block by its hash.
func (c *Chain) BlockByHash(ctx context.Context, hash crypto.Hash) (block.MainchainBlock, error) {
	if err := c.check(ctx); err != nil {
		return block.MainchainBlock{}, err
	}
	return c.blockByHash(hash)
}

// BlockByNumber retrieves the block indexed under number n.
func (c *Chain) BlockByNumber(ctx context.Context, n uint64) (block.MainchainBlock, error) {
	if err := c.check(ctx); err != nil {
		return block.MainchainBlock{}, err
	}
	hash, err := c.db.Get(numberKey(n))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return block.MainchainBlock{}, block.ErrBlockNotFound
		}
		return block.MainchainBlock{}, fmt.Errorf("get block number %d: %w", n, err)
	}
	h, err := crypto.HashFromBytes(hash)
	if err != nil {
		return block.MainchainBlock{}, fmt.Errorf("block number %d index: %w", n, err)
	}
	return c.blockByHash(h)
}

// BlocksByNumbers returns the stored blocks numbered in [from, to], ascending.
// Gaps in the index are skipped.
func (c *Chain) BlocksByNumbers(ctx context.Context, from, to uint64) ([]block.MainchainBlock, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	if to < from {
		return nil, nil
	}

	iter, err := c.db.NewIterator(numberKey(from), numberUpperBound(to))
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	var blocks []block.MainchainBlock
	for iter.Next() {
		b, err := c.blockAt(iter)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// LatestBlock returns the highest numbered block.
func (c *Chain) LatestBlock(ctx context.Context) (block.MainchainBlock, error) {
	if err := c.check(ctx); err != nil {
		return block.MainchainBlock{}, err
	}

	iter, err := c.reverseIterator(math.MaxUint64)
	if err != nil {
		return block.MainchainBlock{}, err
	}
	defer iter.Close()

	if !iter.Last() {
		return block.MainchainBlock{}, block.ErrBlockNotFound
	}
	return c.blockAt(iter)
}

// HighestBlockInWindow walks the number index downwards from q.MaxNumber and
// returns the first block inside the window. The walk stops as soon as a
// block falls below the window.
func (c *Chain) HighestBlockInWindow(ctx context.Context, q block.WindowQuery) (block.MainchainBlock, error) {
	if err := c.check(ctx); err != nil {
		return block.MainchainBlock{}, err
	}

	iter, err := c.reverseIterator(q.MaxNumber)
	if err != nil {
		return block.MainchainBlock{}, err
	}
	defer iter.Close()

	for ok := iter.Last(); ok; ok = iter.Prev() {
		if err := ctx.Err(); err != nil {
			return block.MainchainBlock{}, err
		}
		b, err := c.blockAt(iter)
		if err != nil {
			return block.MainchainBlock{}, err
		}
		if q.Matches(b) {
			return b, nil
		}
		if q.Below(b) {
			break
		}
	}
	return block.MainchainBlock{}, block.ErrBlockNotFound
}

func (c *Chain) reverseIterator(maxNumber uint64) (db.ReverseIterator, error) {
	iter, err := c.db.NewIterator(numberKey(0), numberUpperBound(maxNumber))
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	rev, ok := iter.(db.ReverseIterator)
	if !ok {
		_ = iter.Close()
		return nil, fmt.Errorf("store does not support reverse iteration")
	}
	return rev, nil
}

func (c *Chain) blockAt(iter db.Iterator) (block.MainchainBlock, error) {
	value, err := iter.Value()
	if err != nil {
		return block.MainchainBlock{}, fmt.Errorf("read block index: %w", err)
	}
	hash, err := crypto.HashFromBytes(value)
	if err != nil {
		return block.MainchainBlock{}, fmt.Errorf("block index for key %x: %w", iter.Key(), err)
	}
	return c.blockByHash(hash)
}

func (c *Chain) blockByHash(hash crypto.Hash) (block.MainchainBlock, error) {
	bb, err := c.db.Get(makeKey(prefixMainchainBlock, hash[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return block.MainchainBlock{}, block.ErrBlockNotFound
		}
		return block.MainchainBlock{}, fmt.Errorf("get block: %w", err)
	}
	return block.MainchainBlockFromBytes(bb)
}

func (c *Chain) check(ctx context.Context) error {
	if c.closed.Load() {
		return ErrChainClosed
	}
	return ctx.Err()
}

// numberUpperBound is the exclusive iterator bound covering number n.
func numberUpperBound(n uint64) []byte {
	if n == math.MaxUint64 {
		return []byte{prefixMainchainNumber + 1}
	}
	return numberKey(n + 1)
}
