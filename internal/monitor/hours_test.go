package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSEquityHours(t *testing.T) {
	hours, err := NewUSEquityHours()
	require.NoError(t, err)

	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"mid session", time.Date(2026, 8, 26, 12, 0, 0, 0, eastern), true},
		{"opening bell", time.Date(2026, 8, 26, 9, 30, 0, 0, eastern), true},
		{"one minute before open", time.Date(2026, 8, 26, 9, 29, 0, 0, eastern), false},
		{"closing bell", time.Date(2026, 8, 26, 16, 0, 0, 0, eastern), false},
		{"last minute", time.Date(2026, 8, 26, 15, 59, 0, 0, eastern), true},
		{"saturday", time.Date(2026, 8, 29, 12, 0, 0, 0, eastern), false},
		{"sunday", time.Date(2026, 8, 30, 12, 0, 0, 0, eastern), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, hours.IsOpen(tt.at))
		})
	}
}

func TestUSEquityHoursConvertsTimezone(t *testing.T) {
	hours, err := NewUSEquityHours()
	require.NoError(t, err)

	// 18:00 Berlin is 12:00 Eastern in August
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	assert.True(t, hours.IsOpen(time.Date(2026, 8, 26, 18, 0, 0, 0, berlin)))
}
