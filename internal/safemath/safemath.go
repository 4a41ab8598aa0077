package safemath

import (
	"errors"
	"math"
	"math/bits"
)

var ErrOverflow = errors.New("number overflow")

func Add32(a, b uint32) (uint32, bool) {
	v, carry := bits.Add32(a, b, 0)
	return v, carry == 0
}

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub32(a, b uint32) (uint32, bool) {
	v, borrow := bits.Sub32(a, b, 0)
	return v, borrow == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// SaturatingAdd32 returns a+b, or math.MaxUint32 on overflow.
func SaturatingAdd32(a, b uint32) uint32 {
	if v, ok := Add32(a, b); ok {
		return v
	}
	return math.MaxUint32
}

// SaturatingAdd64 returns a+b, or math.MaxUint64 on overflow.
func SaturatingAdd64(a, b uint64) uint64 {
	if v, ok := Add64(a, b); ok {
		return v
	}
	return math.MaxUint64
}

// SaturatingSub32 returns a-b, or 0 when b > a.
func SaturatingSub32(a, b uint32) uint32 {
	if v, ok := Sub32(a, b); ok {
		return v
	}
	return 0
}

// SaturatingSub64 returns a-b, or 0 when b > a.
func SaturatingSub64(a, b uint64) uint64 {
	if v, ok := Sub64(a, b); ok {
		return v
	}
	return 0
}

// SaturatingMul64 returns a*b, or math.MaxUint64 on overflow.
func SaturatingMul64(a, b uint64) uint64 {
	if v, ok := Mul64(a, b); ok {
		return v
	}
	return math.MaxUint64
}
