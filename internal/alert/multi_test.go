package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EdgesSeeker/ma-monitor/internal/monitor"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, alert monitor.Alert) error {
	s.calls++
	return s.err
}

func TestMultiDeliversToAll(t *testing.T) {
	a := &stubNotifier{}
	b := &stubNotifier{}

	multi := NewMulti(a, b)
	assert.NoError(t, multi.Notify(context.Background(), monitor.Alert{Symbol: "AAPL"}))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMultiContinuesPastFailure(t *testing.T) {
	a := &stubNotifier{err: errors.New("sink down")}
	b := &stubNotifier{}

	multi := NewMulti(a, b)
	err := multi.Notify(context.Background(), monitor.Alert{Symbol: "AAPL"})
	assert.Error(t, err)
	assert.Equal(t, 1, b.calls)
}
