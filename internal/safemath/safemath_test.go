package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd64(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		want   uint64
		wantOk bool
	}{
		{"zero plus zero", 0, 0, 0, true},
		{"small values", 1, 2, 3, true},
		{"at boundary", math.MaxUint64 - 1, 1, math.MaxUint64, true},
		{"overflow max plus one", math.MaxUint64, 1, 0, false},
		{"overflow max plus max", math.MaxUint64, math.MaxUint64, math.MaxUint64 - 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Add64(tt.a, tt.b)
			assert.Equal(t, tt.wantOk, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSub64(t *testing.T) {
	tests := []struct {
		name   string
		a, b   uint64
		want   uint64
		wantOk bool
	}{
		{"equal values", 7, 7, 0, true},
		{"positive result", 10, 3, 7, true},
		{"underflow", 3, 10, 0, false},
		{"underflow from zero", 0, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sub64(tt.a, tt.b)
			assert.Equal(t, tt.wantOk, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAddSub32(t *testing.T) {
	v, ok := Add32(math.MaxUint32, 1)
	assert.False(t, ok)
	assert.Equal(t, uint32(0), v)

	v, ok = Sub32(1, 2)
	assert.False(t, ok)

	v, ok = Sub32(5, 2)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), v)
}

func TestMul64(t *testing.T) {
	v, ok := Mul64(1<<32, 1<<31)
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63), v)

	_, ok = Mul64(1<<32, 1<<32)
	assert.False(t, ok)

	v, ok = Mul64(0, math.MaxUint64)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), v)
}

func TestSaturating(t *testing.T) {
	assert.Equal(t, uint64(0), SaturatingSub64(5, 10))
	assert.Equal(t, uint64(5), SaturatingSub64(10, 5))
	assert.Equal(t, uint32(0), SaturatingSub32(5, 10))
	assert.Equal(t, uint32(math.MaxUint32), SaturatingAdd32(math.MaxUint32, 10))
	assert.Equal(t, uint32(15), SaturatingAdd32(5, 10))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAdd64(math.MaxUint64-1, 2))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingMul64(math.MaxUint64/2, 3))
	assert.Equal(t, uint64(30), SaturatingMul64(5, 6))
}
