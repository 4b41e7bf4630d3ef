package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 11, 26, 8, 25, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-11-26T08:25:00Z",
		"2025-11-26T08:25:00+00:00",
		"2025-11-26T05:25:00-03:00",
		"2025-11-26 08:25:00+00",
		"2025-11-26 05:25:00-03:00",
		"2025-11-26T08:25:00",
		"2025-11-26 08:25:00",
	} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(ts), "%s parsed as %v", s, ts)
		assert.Equal(t, time.UTC, ts.Location())
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
	_, err = ParseTimestamp("")
	require.Error(t, err)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 11, 26, 5, 25, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "2025-11-26T08:25:00Z", FormatTimestamp(ts))

	back, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))

	frac := time.Date(2025, 11, 26, 8, 25, 0, 500_000_000, time.UTC)
	assert.Equal(t, "2025-11-26T08:25:00.5Z", FormatTimestamp(frac))
	back, err = ParseTimestamp(FormatTimestamp(frac))
	require.NoError(t, err)
	assert.True(t, frac.Equal(back), "fractional seconds survive storage")
	assert.False(t, Watermark{LastPublishedAt: &back}.Advances(frac))
}

func TestWatermark_Advances(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, Watermark{}.Advances(ts))

	w := Watermark{LastPublishedAt: &ts}
	assert.False(t, w.Advances(ts), "equal instant does not advance")
	assert.False(t, w.Advances(ts.Add(-time.Second)))
	assert.True(t, w.Advances(ts.Add(time.Second)))
}

func TestIngestionResult_Add(t *testing.T) {
	ts := time.Now()
	total := IngestionResult{Inserted: 1, NewWatermark: &ts}
	total.Add(IngestionResult{Inserted: 2, DuplicatesSkipped: 3, Failures: 4})
	assert.Equal(t, IngestionResult{Inserted: 3, DuplicatesSkipped: 3, Failures: 4, NewWatermark: &ts}, total)
}
