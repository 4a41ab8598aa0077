package mcepoch

import (
	"time"

	"github.com/eigerco/pcbridge/internal/safemath"
)

// PartnerSlot is a partner chain slot number, counted from the unix epoch
// in units of the partner chain slot duration.
type PartnerSlot uint64

// SlotStartTimestamp returns the timestamp at which slot begins given the
// partner chain slot duration.
func SlotStartTimestamp(slot PartnerSlot, slotDuration time.Duration) (Timestamp, error) {
	ms, ok := safemath.Mul64(uint64(slot), uint64(slotDuration.Milliseconds()))
	if !ok {
		return 0, ErrSlotTooBig
	}
	return Timestamp(ms), nil
}

// PartnerSlotAt returns the partner chain slot containing ts.
func PartnerSlotAt(ts Timestamp, slotDuration time.Duration) PartnerSlot {
	ms := uint64(slotDuration.Milliseconds())
	if ms == 0 {
		return 0
	}
	return PartnerSlot(uint64(ts) / ms)
}
