package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		iso  string
		want int
	}{
		{"PT4M13S", 253},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT1H", 3600},
		{"PT10M", 600},
		{"P1DT2H", 93600},
		{"P1D", 86400},
		{"", 0},
		{"garbage", 0},
		{"PT", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODuration(tt.iso), "iso=%q", tt.iso)
	}
}

func TestDurationParts(t *testing.T) {
	p := durationParts("PT1H2M3S")
	assert.Equal(t, 1, p.Hours)
	assert.Equal(t, 2, p.Minutes)
	assert.Equal(t, 3, p.Seconds)

	p = durationParts("PT90S")
	assert.Equal(t, 0, p.Hours)
	assert.Equal(t, 1, p.Minutes)
	assert.Equal(t, 30, p.Seconds)
}

func TestReadableDuration(t *testing.T) {
	assert.Equal(t, "04:13", readableDuration("PT4M13S"))
	assert.Equal(t, "00:45", readableDuration("PT45S"))
	assert.Equal(t, "01:02:03", readableDuration("PT1H2M3S"))
	assert.Equal(t, "26:00:00", readableDuration("P1DT2H"))
	// Live streams come through with no duration at all.
	assert.Equal(t, "00:00", readableDuration(""))
}
