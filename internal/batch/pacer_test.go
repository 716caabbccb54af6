package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDelayWaits(t *testing.T) {
	p := FixedDelay{Interval: 20 * time.Millisecond}

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, "0.02 seconds", p.String())
}

func TestFixedDelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := FixedDelay{Interval: time.Hour}.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedDelayZero(t *testing.T) {
	assert.NoError(t, FixedDelay{}.Wait(context.Background()))
}

func TestLimiterPacerSpacesCalls(t *testing.T) {
	p := NewLimiterPacer(30 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNewPacer(t *testing.T) {
	p, err := NewPacer("", time.Second)
	require.NoError(t, err)
	assert.Equal(t, FixedDelay{Interval: time.Second}, p)

	p, err = NewPacer("FIXED", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, FixedDelay{Interval: 2 * time.Second}, p)

	p, err = NewPacer("none", time.Second)
	require.NoError(t, err)
	assert.Equal(t, NoDelay{}, p)

	p, err = NewPacer("limiter", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &LimiterPacer{}, p)

	_, err = NewPacer("exponential", time.Second)
	assert.ErrorIs(t, err, ErrUnknownPacing)
}

func TestCheckPacing(t *testing.T) {
	for _, kind := range []string{"", "fixed", "Limiter", " none "} {
		assert.NoError(t, CheckPacing(kind), kind)
	}
	assert.ErrorIs(t, CheckPacing("sometimes"), ErrUnknownPacing)
}

func TestPacerStrings(t *testing.T) {
	assert.Equal(t, "20 seconds", FixedDelay{Interval: DefaultDelay}.String())
	assert.Equal(t, "1 second", FixedDelay{Interval: time.Second}.String())
	assert.Equal(t, "1.5 seconds", FixedDelay{Interval: 1500 * time.Millisecond}.String())
	assert.Equal(t, "0 seconds", NoDelay{}.String())
	assert.Equal(t, "up to 20 seconds", NewLimiterPacer(DefaultDelay).String())
}
