package mcepoch

import (
	"fmt"
	"time"
)

// Timestamp is a unix timestamp in milliseconds.
type Timestamp uint64

// FromTime converts t to a millisecond Timestamp. Times before the unix
// epoch map to zero.
func FromTime(t time.Time) Timestamp {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return Timestamp(ms)
}

// FromUnixSeconds converts a unix timestamp in seconds to a Timestamp.
func FromUnixSeconds(s uint64) Timestamp {
	return Timestamp(s * 1000)
}

// Time returns ts as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

// Seconds returns ts truncated to whole seconds.
func (ts Timestamp) Seconds() uint64 {
	return uint64(ts) / 1000
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%d", uint64(ts))
}

// Config describes the epoch layout of the mainchain. All durations are
// milliseconds and must stay constant after FirstEpochTimestampMillis.
type Config struct {
	// FirstEpochTimestampMillis is the start of the first epoch a partner
	// chain may observe, usually the beginning of the Shelley era.
	FirstEpochTimestampMillis uint64 `koanf:"first_epoch_timestamp_millis" json:"first_epoch_timestamp_millis"`
	EpochDurationMillis       uint64 `koanf:"epoch_duration_millis" json:"epoch_duration_millis"`
	// FirstEpochNumber is the number of the epoch starting at FirstEpochTimestampMillis.
	FirstEpochNumber uint32 `koanf:"first_epoch_number" json:"first_epoch_number"`
	// FirstSlotNumber is the number of the slot starting at FirstEpochTimestampMillis.
	FirstSlotNumber    uint64 `koanf:"first_slot_number" json:"first_slot_number"`
	SlotDurationMillis uint64 `koanf:"slot_duration_millis" json:"slot_duration_millis"`
}

// Validate checks that the durations are non-zero and that every epoch
// holds a whole number of slots.
func (c Config) Validate() error {
	if c.SlotDurationMillis == 0 {
		return fmt.Errorf("%w: slot duration is zero", ErrInvalidConfig)
	}
	if c.EpochDurationMillis == 0 {
		return fmt.Errorf("%w: epoch duration is zero", ErrInvalidConfig)
	}
	if c.EpochDurationMillis%c.SlotDurationMillis != 0 {
		return fmt.Errorf("%w: epoch duration %dms is not a multiple of slot duration %dms",
			ErrInvalidConfig, c.EpochDurationMillis, c.SlotDurationMillis)
	}
	return nil
}

// SlotsPerEpoch returns the number of mainchain slots in one epoch.
func (c Config) SlotsPerEpoch() uint64 {
	if c.SlotDurationMillis == 0 {
		return 0
	}
	return c.EpochDurationMillis / c.SlotDurationMillis
}

// SlotDuration returns the mainchain slot duration.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMillis) * time.Millisecond
}
