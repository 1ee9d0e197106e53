package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/EdgesSeeker/ma-monitor/internal/marketdata"
)

// Direction is the side of a monitored position
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection normalizes the user-facing direction strings.
// BUY and SELL are accepted as aliases for LONG and SHORT.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return DirectionLong, nil
	case "SHORT", "SELL":
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// PositionSpec is the caller-supplied description of a position to watch
type PositionSpec struct {
	Symbol     string              `json:"symbol"`
	Direction  string              `json:"direction"`
	MAPeriod   marketdata.MAPeriod `json:"ma_period"`
	EntryPrice float64             `json:"entry_price,omitempty"`
}

// Position is a monitored position with its alert state.
// AlertActive is the de-duplication latch: once an alert fires it
// stays set until the signal clears, so a persisting condition sends
// exactly one notification.
type Position struct {
	ID         string              `json:"id"`
	Symbol     string              `json:"symbol"`
	Direction  Direction           `json:"direction"`
	MAPeriod   marketdata.MAPeriod `json:"ma_period"`
	EntryPrice float64             `json:"entry_price,omitempty"`

	AlertActive bool      `json:"alert_active"`
	AddedAt     time.Time `json:"added_at"`

	// Last observation
	LastCheckedAt time.Time `json:"last_checked_at,omitempty"`
	CurrentPrice  float64   `json:"current_price,omitempty"`
	MAValue       float64   `json:"ma_value,omitempty"`
	SignalActive  bool      `json:"signal_active"`
	LastError     string    `json:"last_error,omitempty"`
}

// Validate checks a spec before it becomes a position
func (s PositionSpec) Validate() error {
	if strings.TrimSpace(s.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, err := ParseDirection(s.Direction); err != nil {
		return err
	}
	if !s.MAPeriod.Valid() {
		return fmt.Errorf("invalid ma period %q", s.MAPeriod)
	}
	if s.EntryPrice < 0 {
		return fmt.Errorf("entry price must not be negative")
	}
	return nil
}
