package mcreference

import (
	"errors"
	"fmt"

	"github.com/eigerco/pcbridge/internal/crypto"
	"github.com/eigerco/pcbridge/internal/mcepoch"
)

// StableBlockNotFoundError means no stable mainchain block lies in the
// window of the proposal timestamp.
type StableBlockNotFoundError struct {
	Timestamp mcepoch.Timestamp
}

func (e *StableBlockNotFoundError) Error() string {
	return fmt.Sprintf("stable block not found at %d: the main chain has not produced blocks for a long time", e.Timestamp)
}

// StableBlockNotFoundByHashError means the block referenced by the parent
// header could not be retrieved.
type StableBlockNotFoundByHashError struct {
	Hash crypto.Hash
}

func (e *StableBlockNotFoundByHashError) Error() string {
	return fmt.Sprintf("failed to retrieve main chain block %s that was verified as stable", e.Hash)
}

// ReferenceInvalidError means the referenced block is unknown or not stable
// for the slot of the block referencing it.
type ReferenceInvalidError struct {
	Hash      crypto.Hash
	Slot      mcepoch.PartnerSlot
	Timestamp mcepoch.Timestamp
}

func (e *ReferenceInvalidError) Error() string {
	return fmt.Sprintf("main chain state %s referenced in imported block at slot %d with timestamp %d not found",
		e.Hash, e.Slot, e.Timestamp)
}

// ReferenceRegressedError means a block references an older mainchain block
// than its parent does.
type ReferenceRegressedError struct {
	Hash         crypto.Hash
	Slot         mcepoch.PartnerSlot
	Number       uint64
	ParentNumber uint64
}

func (e *ReferenceRegressedError) Error() string {
	return fmt.Sprintf("main chain state %s referenced in imported block at slot %d has block number lower than its parent's: %d < %d",
		e.Hash, e.Slot, e.Number, e.ParentNumber)
}

// DigestError means the parent header reference could not be decoded.
type DigestError struct {
	Err error
}

func (e *DigestError) Error() string {
	return fmt.Sprintf("failed to retrieve MC hash from digest: %v", e.Err)
}

func (e *DigestError) Unwrap() error { return e.Err }

// DataSourceError wraps any failure of the mainchain data source.
type DataSourceError struct {
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("main chain data source: %v", e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// IsDeferrable reports whether a proposal failed for a reason that may go
// away at a later slot. Block production should skip the slot rather than
// stop.
func IsDeferrable(err error) bool {
	var (
		notFound       *StableBlockNotFoundError
		notFoundByHash *StableBlockNotFoundByHashError
		invalid        *ReferenceInvalidError
		source         *DataSourceError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &notFoundByHash) ||
		errors.As(err, &invalid) ||
		errors.As(err, &source)
}

var errUnknownParent = errors.New("unknown parent kind")
