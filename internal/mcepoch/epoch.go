package mcepoch

import (
	"math"

	"github.com/eigerco/pcbridge/internal/safemath"
)

// Epoch is a mainchain epoch number
type Epoch uint32

// Slot is a mainchain slot number
type Slot uint64

// EpochsPassed returns the number of whole epochs between the first epoch
// and ts.
func (c Config) EpochsPassed(ts Timestamp) (uint32, error) {
	if c.EpochDurationMillis == 0 {
		return 0, ErrInvalidConfig
	}
	elapsed, ok := safemath.Sub64(uint64(ts), c.FirstEpochTimestampMillis)
	if !ok {
		return 0, ErrTimestampTooSmall
	}
	passed := elapsed / c.EpochDurationMillis
	if passed > math.MaxInt32 {
		return 0, ErrEpochTooBig
	}
	return uint32(passed), nil
}

// TimestampToEpoch returns the epoch containing ts.
func (c Config) TimestampToEpoch(ts Timestamp) (Epoch, error) {
	passed, err := c.EpochsPassed(ts)
	if err != nil {
		return 0, err
	}
	return Epoch(safemath.SaturatingAdd32(c.FirstEpochNumber, passed)), nil
}

// TimestampToSlot returns the slot containing ts.
func (c Config) TimestampToSlot(ts Timestamp) (Slot, error) {
	if c.SlotDurationMillis == 0 {
		return 0, ErrInvalidConfig
	}
	elapsed, ok := safemath.Sub64(uint64(ts), c.FirstEpochTimestampMillis)
	if !ok {
		return 0, ErrTimestampTooSmall
	}
	return Slot(safemath.SaturatingAdd64(c.FirstSlotNumber, elapsed/c.SlotDurationMillis)), nil
}

// EpochToTimestamp returns the start of epoch e. Epochs before the first
// epoch map to the first epoch's start; overflow saturates.
func (c Config) EpochToTimestamp(e Epoch) Timestamp {
	epochs := safemath.SaturatingSub32(uint32(e), c.FirstEpochNumber)
	elapsed := safemath.SaturatingMul64(c.EpochDurationMillis, uint64(epochs))
	return Timestamp(safemath.SaturatingAdd64(c.FirstEpochTimestampMillis, elapsed))
}

// FirstSlotOfEpoch returns the number of the first slot in epoch e.
func (c Config) FirstSlotOfEpoch(e Epoch) (Slot, error) {
	epochs, ok := safemath.Sub32(uint32(e), c.FirstEpochNumber)
	if !ok {
		return 0, ErrEpochTooSmall
	}
	slots := safemath.SaturatingMul64(uint64(epochs), c.SlotsPerEpoch())
	return Slot(safemath.SaturatingAdd64(c.FirstSlotNumber, slots)), nil
}

// EpochForSlot returns the epoch containing slot s.
func (c Config) EpochForSlot(s Slot) (Epoch, error) {
	slots, ok := safemath.Sub64(uint64(s), c.FirstSlotNumber)
	if !ok {
		return 0, ErrSlotTooSmall
	}
	perEpoch := c.SlotsPerEpoch()
	if perEpoch == 0 {
		return 0, ErrInvalidConfig
	}
	epochs := slots / perEpoch
	if epochs > math.MaxUint32 {
		return 0, ErrEpochTooBig
	}
	e, ok := safemath.Add32(c.FirstEpochNumber, uint32(epochs))
	if !ok {
		return 0, ErrEpochTooBig
	}
	return Epoch(e), nil
}
