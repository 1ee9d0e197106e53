package alert

import (
	"context"
	"errors"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
)

// Multi fans an alert out to several notifiers. Every notifier is
// attempted; errors are joined so one broken sink does not hide the
// others.
type Multi struct {
	notifiers []monitor.Notifier
}

// NewMulti creates a fan-out notifier
func NewMulti(notifiers ...monitor.Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Notify delivers the alert to all notifiers
func (m *Multi) Notify(ctx context.Context, alert monitor.Alert) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
