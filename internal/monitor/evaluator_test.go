package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		price     float64
		ma        float64
		want      bool
	}{
		{"long above average", DirectionLong, 150, 148, false},
		{"long below average", DirectionLong, 146, 148, true},
		{"long exactly at average", DirectionLong, 148, 148, false},
		{"short below average", DirectionShort, 146, 148, false},
		{"short above average", DirectionShort, 150, 148, true},
		{"short exactly at average", DirectionShort, 148, 148, false},
		{"zero price never signals", DirectionLong, 0, 148, false},
		{"zero average never signals", DirectionShort, 150, 0, false},
		{"unknown direction", Direction("SIDEWAYS"), 146, 148, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.direction, tt.price, tt.ma))
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"long", DirectionLong, false},
		{"LONG", DirectionLong, false},
		{"buy", DirectionLong, false},
		{"short", DirectionShort, false},
		{"SELL", DirectionShort, false},
		{" Short ", DirectionShort, false},
		{"hold", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
