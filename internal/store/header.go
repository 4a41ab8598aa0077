package store

import (
	"errors"
	"fmt"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/pkg/db/pebble"
)

// PutHeader stores a partner chain header under its hash.
func (c *Chain) PutHeader(header block.Header) (crypto.Hash, error) {
	if c.closed.Load() {
		return crypto.Hash{}, ErrChainClosed
	}

	encoded, err := header.Bytes()
	if err != nil {
		return crypto.Hash{}, err
	}
	hash := crypto.HashData(encoded)

	if err := c.db.Put(makeKey(prefixHeader, hash[:]), encoded); err != nil {
		return crypto.Hash{}, fmt.Errorf("store header: %w", err)
	}
	return hash, nil
}

// GetHeader retrieves a partner chain header by its hash.
func (c *Chain) GetHeader(hash crypto.Hash) (block.Header, error) {
	if c.closed.Load() {
		return block.Header{}, ErrChainClosed
	}

	encoded, err := c.db.Get(makeKey(prefixHeader, hash[:]))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return block.Header{}, fmt.Errorf("%w: %s", ErrHeaderNotFound, hash)
		}
		return block.Header{}, fmt.Errorf("get header: %w", err)
	}
	return block.HeaderFromBytes(encoded)
}

// GetParent retrieves the parent of header.
func (c *Chain) GetParent(header block.Header) (block.Header, error) {
	if header.IsGenesis() {
		return block.Header{}, fmt.Errorf("%w: genesis has no parent", ErrHeaderNotFound)
	}
	return c.GetHeader(header.ParentHash)
}
