package mcepoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero slot duration", Config{EpochDurationMillis: 1000}},
		{"zero epoch duration", Config{SlotDurationMillis: 1000}},
		{"epoch not multiple of slot", Config{EpochDurationMillis: 2500, SlotDurationMillis: 1000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_SlotsPerEpoch(t *testing.T) {
	assert.Equal(t, uint64(432000), testConfig().SlotsPerEpoch())
	assert.Equal(t, uint64(5), Config{EpochDurationMillis: 10_000, SlotDurationMillis: 2000}.SlotsPerEpoch())
	assert.Equal(t, uint64(0), Config{}.SlotsPerEpoch())
	assert.Equal(t, time.Second, testConfig().SlotDuration())
}

func TestTimestamp_Conversions(t *testing.T) {
	ts := FromUnixSeconds(1650561570)
	assert.Equal(t, Timestamp(1650561570000), ts)
	assert.Equal(t, uint64(1650561570), ts.Seconds())
	assert.Equal(t, ts, FromTime(ts.Time()))
	assert.Equal(t, Timestamp(0), FromTime(time.Unix(-5, 0)))
}
