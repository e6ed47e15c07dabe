package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testDate.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		valid   bool
		wantErr bool
	}{
		{"09:00:00", "09:00:00", true, false},
		{"17:30", "17:30:00", true, false},
		{"00:00:00", "00:00:00", true, false},
		{"", "", false, false},
		{"25:00", "", false, true},
		{"nine", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParsePunch_MidnightIsNoPunch(t *testing.T) {
	got, err := ParsePunch("00:00:00")
	require.NoError(t, err)
	assert.False(t, got.Valid())

	got, err = ParsePunch("08:59:30")
	require.NoError(t, err)
	assert.Equal(t, "08:59:30", got.String())
}

func TestToTimestamp(t *testing.T) {
	_, ok := ToTimestamp(testDate, NoPunch)
	assert.False(t, ok)

	ts, ok := ToTimestamp(testDate, Clock(9, 15, 0))
	require.True(t, ok)
	assert.Equal(t, at(9, 15), ts)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		start     ClockTime
		end       ClockTime
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day shift", Clock(9, 0, 0), Clock(18, 0, 0), at(9, 0), at(18, 0)},
		{"overnight", Clock(22, 0, 0), Clock(6, 0, 0), at(22, 0), at(30, 0)},
		{"end equals start", Clock(8, 0, 0), Clock(8, 0, 0), at(8, 0), at(32, 0)},
		{"ends at midnight", Clock(16, 0, 0), Clock(0, 0, 0), at(16, 0), at(24, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, ok := Normalize(testDate, tt.start, tt.end)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, iv.Start)
			assert.Equal(t, tt.wantEnd, iv.End)
			assert.True(t, iv.End.After(iv.Start))
		})
	}

	_, ok := Normalize(testDate, Clock(9, 0, 0), NoPunch)
	assert.False(t, ok)
	_, ok = Normalize(testDate, NoPunch, Clock(9, 0, 0))
	assert.False(t, ok)
}

func TestOverlapSeconds(t *testing.T) {
	tests := []struct {
		name       string
		a0, a1     time.Time
		b0, b1     time.Time
		wantSecond int64
	}{
		{"partial", at(9, 0), at(12, 0), at(11, 0), at(13, 0), 3600},
		{"contained", at(9, 0), at(18, 0), at(12, 0), at(13, 0), 3600},
		{"touching", at(9, 0), at(12, 0), at(12, 0), at(13, 0), 0},
		{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), 0},
		{"reversed inputs", at(12, 0), at(9, 0), at(9, 0), at(12, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapSeconds(tt.a0, tt.a1, tt.b0, tt.b1)
			assert.Equal(t, tt.wantSecond, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestSubtract(t *testing.T) {
	shift := Interval{Start: at(9, 0), End: at(18, 0)}

	t.Run("middle split", func(t *testing.T) {
		got := Subtract([]Interval{shift}, Interval{Start: at(12, 0), End: at(13, 0)})
		assert.Equal(t, []Interval{
			{Start: at(9, 0), End: at(12, 0)},
			{Start: at(13, 0), End: at(18, 0)},
		}, got)
	})

	t.Run("no overlap keeps interval", func(t *testing.T) {
		got := Subtract([]Interval{shift}, Interval{Start: at(19, 0), End: at(20, 0)})
		assert.Equal(t, []Interval{shift}, got)
	})

	t.Run("covering removes interval", func(t *testing.T) {
		got := Subtract([]Interval{shift}, Interval{Start: at(8, 0), End: at(19, 0)})
		assert.Empty(t, got)
	})

	t.Run("left edge", func(t *testing.T) {
		got := Subtract([]Interval{shift}, Interval{Start: at(8, 0), End: at(10, 0)})
		assert.Equal(t, []Interval{{Start: at(10, 0), End: at(18, 0)}}, got)
	})

	t.Run("order independent", func(t *testing.T) {
		lunch := Interval{Start: at(12, 0), End: at(13, 0)}
		coffee := Interval{Start: at(15, 0), End: at(15, 15)}
		a := Subtract(Subtract([]Interval{shift}, lunch), coffee)
		b := Subtract(Subtract([]Interval{shift}, coffee), lunch)
		assert.Equal(t, TotalSeconds(a), TotalSeconds(b))
		assert.Len(t, a, 3)
	})
}

func TestRollForward(t *testing.T) {
	anchor := at(22, 0)
	assert.Equal(t, at(26, 0), RollForward(at(2, 0), anchor))
	assert.Equal(t, at(21, 0), RollForward(at(21, 0), anchor))
}

func TestRoundMinutes(t *testing.T) {
	assert.Equal(t, 1, RoundMinutes(30))
	assert.Equal(t, 0, RoundMinutes(29))
	assert.Equal(t, 480, RoundMinutes(480*60))
	assert.Equal(t, 2, CeilMinutes(61))
	assert.Equal(t, 15, CeilMinutes(15*60))
}
