package stableblock

import (
	"sync"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/crypto"
)

// BlocksCache holds a contiguous run of stable blocks for lookups by hash.
// The run is replaced wholesale on every Update.
type BlocksCache struct {
	mu     sync.RWMutex
	blocks []block.MainchainBlock
	byHash map[crypto.Hash]int
}

func NewBlocksCache() *BlocksCache {
	return &BlocksCache{byHash: map[crypto.Hash]int{}}
}

// Find returns the cached block with the given hash.
func (c *BlocksCache) Find(hash crypto.Hash) (block.MainchainBlock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byHash[hash]
	if !ok {
		return block.MainchainBlock{}, false
	}
	return c.blocks[i], true
}

// Update replaces the cached run with blocks.
func (c *BlocksCache) Update(blocks []block.MainchainBlock) {
	byHash := make(map[crypto.Hash]int, len(blocks))
	for i, b := range blocks {
		byHash[b.Hash] = i
	}

	c.mu.Lock()
	c.blocks = blocks
	c.byHash = byHash
	c.mu.Unlock()
}

// Len returns the number of cached blocks.
func (c *BlocksCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}
