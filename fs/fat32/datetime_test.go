package fat32

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTimeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"plain", time.Date(2023, time.April, 5, 10, 20, 30, 0, time.UTC)},
		{"epoch", time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"latest", time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := serializeDate(tt.in)
			timeOfDay := serializeTime(tt.in)
			tenths := serializeTenths(tt.in)

			assert.Equal(t, tt.in, parseDateTime(date, timeOfDay, tenths))
		})
	}
}

func TestDateTime_TwoSecondGranularity(t *testing.T) {
	// Without the tenths byte odd seconds are rounded down.
	in := time.Date(2023, time.April, 5, 10, 20, 31, 0, time.UTC)

	got := parseDateTime(serializeDate(in), serializeTime(in), 0)
	assert.Equal(t, in.Add(-time.Second), got)

	// The tenths byte restores the odd second.
	got = parseDateTime(serializeDate(in), serializeTime(in), serializeTenths(in))
	assert.Equal(t, in, got)
}

func TestParseDate_Invalid(t *testing.T) {
	assert.True(t, parseDate(0).IsZero())
}

func TestParseDate_Bounds(t *testing.T) {
	// 1980-01-01 is day 1, month 1, year offset 0.
	assert.Equal(t, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), parseDate(1<<5|1))
}
