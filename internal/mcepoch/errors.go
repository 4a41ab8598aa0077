package mcepoch

import "errors"

var (
	// ErrTimestampTooSmall is returned when a timestamp precedes the first
	// observable mainchain epoch.
	ErrTimestampTooSmall = errors.New("timestamp before first mainchain epoch")

	// ErrEpochTooBig is returned when an epoch number exceeds the maximal
	// allowed value (math.MaxInt32).
	ErrEpochTooBig = errors.New("epoch number exceeds maximal allowed value")

	// ErrEpochTooSmall is returned when an epoch number precedes the first
	// observable mainchain epoch.
	ErrEpochTooSmall = errors.New("epoch number is below the allowed value")

	// ErrSlotTooSmall is returned when a slot number precedes the first
	// observable mainchain slot.
	ErrSlotTooSmall = errors.New("slot number is below the allowed value")

	// ErrSlotTooBig is returned when a partner chain slot represents a
	// timestamp that does not fit in 64 bits.
	ErrSlotTooBig = errors.New("slot represents a timestamp bigger than max uint64")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid mainchain epoch configuration")
)
