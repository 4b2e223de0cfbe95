package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 1, DaysInclusive(mustDate(t, "2025-03-01"), mustDate(t, "2025-03-01")))
	assert.Equal(t, 7, DaysInclusive(mustDate(t, "2025-03-03"), mustDate(t, "2025-03-09")))
	assert.Equal(t, 366, DaysInclusive(mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31")))
	assert.Equal(t, 0, DaysInclusive(mustDate(t, "2025-03-09"), mustDate(t, "2025-03-03")))
}

func TestCalculateWeekRange(t *testing.T) {
	tests := []struct {
		date       string
		wantMonday string
		wantSunday string
	}{
		{"2025-03-05", "2025-03-03", "2025-03-09"}, // Wednesday
		{"2025-03-03", "2025-03-03", "2025-03-09"}, // Monday
		{"2025-03-09", "2025-03-03", "2025-03-09"}, // Sunday
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			monday, sunday := CalculateWeekRange(mustDate(t, tt.date))
			assert.Equal(t, tt.wantMonday, FormatDate(monday))
			assert.Equal(t, tt.wantSunday, FormatDate(sunday))
		})
	}
}

func TestCalculateMonthAndYearRange(t *testing.T) {
	first, last := CalculateMonthRange(mustDate(t, "2024-02-17"))
	assert.Equal(t, "2024-02-01", FormatDate(first))
	assert.Equal(t, "2024-02-29", FormatDate(last))

	first, last = CalculateYearRange(mustDate(t, "2024-06-30"))
	assert.Equal(t, "2024-01-01", FormatDate(first))
	assert.Equal(t, "2024-12-31", FormatDate(last))
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(130, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
	assert.Equal(t, 3.14, Round2(3.14159))
}

func TestGenerateUUIDIsUnique(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
