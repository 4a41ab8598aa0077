package block

import (
	"errors"

	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// ErrBlockNotFound is returned by block sources when no block matches a query.
var ErrBlockNotFound = errors.New("mainchain block not found")

// WindowQuery selects the highest block numbered at most MaxNumber whose
// slot and timestamp both fall in the closed ranges given.
type WindowQuery struct {
	MaxNumber    uint64
	MinTimestamp uint64 // unix seconds
	MaxTimestamp uint64 // unix seconds
	MinSlot      mcepoch.Slot
	MaxSlot      mcepoch.Slot
}

// Matches reports whether b satisfies every bound of q.
func (q WindowQuery) Matches(b MainchainBlock) bool {
	return b.Number <= q.MaxNumber &&
		b.Slot >= q.MinSlot && b.Slot <= q.MaxSlot &&
		b.Timestamp >= q.MinTimestamp && b.Timestamp <= q.MaxTimestamp
}

// Below reports whether b, and therefore every lower numbered block, is
// older than the query window.
func (q WindowQuery) Below(b MainchainBlock) bool {
	return b.Slot < q.MinSlot || b.Timestamp < q.MinTimestamp
}
