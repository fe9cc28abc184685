package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	base := 5 * time.Second
	cap := 80 * time.Second

	cases := map[string]struct {
		attempt int
		want    time.Duration
	}{
		"first":        {attempt: 0, want: 5 * time.Second},
		"second":       {attempt: 1, want: 10 * time.Second},
		"third":        {attempt: 2, want: 20 * time.Second},
		"at cap":       {attempt: 4, want: 80 * time.Second},
		"past cap":     {attempt: 10, want: 80 * time.Second},
		"way past cap": {attempt: 40, want: 80 * time.Second},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.want, Backoff(base, cap, c.attempt))
		})
	}
}

func TestBackoffDefaults(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(0, 0, 0))
	assert.Equal(t, time.Minute, Backoff(0, 0, 10))
}

func TestStartTickStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	w := &TickWorker{Delay: time.Millisecond, ErrDelay: time.Millisecond}

	err := w.StartTick(ctx, func(ctx context.Context) error {
		ticks++
		if ticks >= 3 {
			cancel()
		}

		return errors.New("EOF")
	})

	require.Equal(t, context.Canceled, err)
	assert.GreaterOrEqual(t, ticks, 3)
}
