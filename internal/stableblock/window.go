package stableblock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eigerco/pcbridge/internal/block"
	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/safemath"
)

var ErrInvalidWindow = errors.New("invalid stability window parameters")

// Window bounds the age a mainchain block must have, relative to a reference
// timestamp, to be referenced by a partner chain block.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// NewWindow derives the stability window from the mainchain slot duration,
// the security parameter k and the active slots coefficient f. The minimum
// age is slotDuration*k/f rounded to the millisecond and the maximum is three
// times that.
func NewWindow(slotDuration time.Duration, securityParameter uint32, activeSlotsCoeff float64) (Window, error) {
	if slotDuration <= 0 || securityParameter == 0 {
		return Window{}, fmt.Errorf("%w: slot duration %s, security parameter %d", ErrInvalidWindow, slotDuration, securityParameter)
	}
	if !(activeSlotsCoeff > 0 && activeSlotsCoeff <= 1) {
		return Window{}, fmt.Errorf("%w: active slots coefficient %v", ErrInvalidWindow, activeSlotsCoeff)
	}
	slotMillis := float64(slotDuration.Milliseconds())
	minMillis := math.Round(slotMillis * float64(securityParameter) / activeSlotsCoeff)
	if minMillis*3 > float64(math.MaxInt64/int64(time.Millisecond)) {
		return Window{}, fmt.Errorf("%w: window too large", ErrInvalidWindow)
	}
	min := time.Duration(minMillis) * time.Millisecond
	return Window{Min: min, Max: 3 * min}, nil
}

// Bounds returns the earliest and latest block timestamps accepted for ref.
// Both ends saturate at zero.
func (w Window) Bounds(ref mcepoch.Timestamp) (earliest, latest mcepoch.Timestamp) {
	earliest = mcepoch.Timestamp(safemath.SaturatingSub64(uint64(ref), uint64(w.Max.Milliseconds())))
	latest = mcepoch.Timestamp(safemath.SaturatingSub64(uint64(ref), uint64(w.Min.Milliseconds())))
	return earliest, latest
}

// SecondBounds returns Bounds in whole seconds. The earliest bound is rounded
// up and the latest down, so the range never reaches outside the millisecond
// window.
func (w Window) SecondBounds(ref mcepoch.Timestamp) (earliest, latest uint64) {
	e, l := w.Bounds(ref)
	return ceilSeconds(e), l.Seconds()
}

// Contains reports whether the block timestamp, which has second precision,
// lies inside the closed window for ref.
func (w Window) Contains(b block.MainchainBlock, ref mcepoch.Timestamp) bool {
	earliest, latest := w.SecondBounds(ref)
	return earliest <= b.Timestamp && b.Timestamp <= latest
}

func ceilSeconds(ts mcepoch.Timestamp) uint64 {
	s := ts.Seconds()
	if uint64(ts)%1000 != 0 {
		s++
	}
	return s
}
