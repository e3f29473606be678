package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimezone(t *testing.T) {
	loc, err := ParseTimezone("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = ParseTimezone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	loc, err = ParseTimezone("Not/AZone")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone(""))
	assert.True(t, IsValidTimezone("UTC"))
	assert.True(t, IsValidTimezone("Asia/Tokyo"))
	assert.False(t, IsValidTimezone("Mars/Olympus"))
}

func TestDayKeyRespectsTimezone(t *testing.T) {
	// 2025-06-15 23:30 in New York is already 2025-06-16 in UTC.
	ny, err := ParseTimezone("America/New_York")
	require.NoError(t, err)
	ts := time.Date(2025, 6, 16, 3, 30, 0, 0, time.UTC).Unix()

	assert.Equal(t, "2025-06-16", DayKey(ts, nil))
	assert.Equal(t, "2025-06-15", DayKey(ts, ny))
}

func TestStartOfDay(t *testing.T) {
	ny, err := ParseTimezone("America/New_York")
	require.NoError(t, err)
	ts := time.Date(2025, 6, 16, 3, 30, 0, 0, time.UTC)

	start := StartOfDay(ts, ny)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 15, start.Day())
	assert.Equal(t, ny, start.Location())
}
