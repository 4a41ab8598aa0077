package store

import (
	"errors"
	"sync/atomic"

	"github.com/eigerco/pcbridge/pkg/db"
)

var (
	ErrChainClosed    = errors.New("chain store is closed")
	ErrHeaderNotFound = errors.New("header not found")
)

// Chain stores observed mainchain blocks and partner chain headers in a
// key-value store.
type Chain struct {
	db     db.KVStore
	closed atomic.Bool
}

// NewChain creates a new chain store using KVStore
func NewChain(db db.KVStore) *Chain {
	return &Chain{db: db}
}

// Close closes the chain store
func (c *Chain) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.db.Close()
}
