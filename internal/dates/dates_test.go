package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"02/11/2025", time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{" 1/5/2024 ", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"31/02/2025", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"2025-11-02", time.Time{}, false},
		{"02/11", time.Time{}, false},
		{"02/11/2025/1", time.Time{}, false},
		{"aa/11/2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			require.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestNormalizeDay(t *testing.T) {
	noisy := time.Date(2025, 11, 2, 14, 33, 7, 42, time.UTC)

	assert.Equal(t, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), NormalizeDayStart(noisy))
	assert.Equal(t, time.Date(2025, 11, 2, 23, 59, 59, 999000000, time.UTC), NormalizeDayEnd(noisy))
}

func TestMonthHelpers(t *testing.T) {
	d := MustParse("17/02/2024")
	assert.Equal(t, MustParse("01/02/2024"), FirstOfMonth(d))
	assert.Equal(t, MustParse("29/02/2024"), LastOfMonth(d))
	assert.Equal(t, "2/2024", MonthKey(d))
	assert.Equal(t, "17/02/2024", FormatDate(d))
}

func TestOverlapDays(t *testing.T) {
	novStart := NormalizeDayStart(MustParse("01/11/2025"))
	novEnd := NormalizeDayEnd(MustParse("30/11/2025"))

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"stay inside window", MustParse("02/11/2025"), MustParse("06/11/2025"), 4},
		{"stay before window", MustParse("01/10/2025"), MustParse("05/10/2025"), 0},
		{"stay after window", MustParse("01/12/2025"), MustParse("03/12/2025"), 0},
		{"stay crossing window start", MustParse("28/10/2025"), MustParse("03/11/2025"), 2},
		{"stay crossing window end", MustParse("28/11/2025"), MustParse("03/12/2025"), 3},
		{"zero-length stay", MustParse("10/11/2025"), MustParse("10/11/2025"), 0},
		{"single day through day end", MustParse("10/11/2025"), NormalizeDayEnd(MustParse("10/11/2025")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverlapDays(tt.start, tt.end, novStart, novEnd))
		})
	}
}

func TestOverlapDays_IsSymmetric(t *testing.T) {
	a1, a2 := MustParse("01/01/2025"), MustParse("10/01/2025")
	b1, b2 := MustParse("05/01/2025"), MustParse("20/01/2025")
	assert.Equal(t, OverlapDays(a1, a2, b1, b2), OverlapDays(b1, b2, a1, a2))
	assert.Equal(t, 5, OverlapDays(a1, a2, b1, b2))
}

func TestParseQuery(t *testing.T) {
	want := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-04-30", "30/04/2024", " 30/4/2024 "} {
		got, ok := ParseQuery(s)
		assert.True(t, ok, s)
		assert.True(t, want.Equal(got), s)
	}
	for _, s := range []string{"", "abril", "2024-13-01", "30-04-2024"} {
		_, ok := ParseQuery(s)
		assert.False(t, ok, s)
	}
}
