package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the pause between two consecutive images.
const DefaultDelay = 20 * time.Second

// ErrUnknownPacing is returned by NewPacer for an unrecognised policy name.
var ErrUnknownPacing = errors.New("unknown pacing policy")

// Pacer decides how long the driver waits between two images. Wait is called
// once after every image except the last one.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for Interval regardless of how long the call took.
type FixedDelay struct {
	Interval time.Duration
}

func (p FixedDelay) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return nil
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p FixedDelay) String() string { return seconds(p.Interval) }

// NoDelay never waits.
type NoDelay struct{}

func (NoDelay) Wait(context.Context) error { return nil }

func (NoDelay) String() string { return seconds(0) }

// LimiterPacer spaces the starts of consecutive calls Interval apart, so the
// time spent inside a call counts towards the pause.
type LimiterPacer struct {
	Interval time.Duration
	lim      *rate.Limiter
}

// NewLimiterPacer must be created right before the first call: the first
// token is taken on construction.
func NewLimiterPacer(interval time.Duration) *LimiterPacer {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	lim.Allow()
	return &LimiterPacer{Interval: interval, lim: lim}
}

func (p *LimiterPacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

func (p *LimiterPacer) String() string { return "up to " + seconds(p.Interval) }

// CheckPacing reports whether kind names a known pacing policy.
func CheckPacing(kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "fixed", "limiter", "none":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownPacing, kind)
}

// NewPacer builds the pacing policy named by kind: "fixed", "limiter" or
// "none". Call it right before the batch starts.
func NewPacer(kind string, interval time.Duration) (Pacer, error) {
	if err := CheckPacing(kind); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "limiter":
		if interval <= 0 {
			return NoDelay{}, nil
		}
		return NewLimiterPacer(interval), nil
	case "none":
		return NoDelay{}, nil
	}
	return FixedDelay{Interval: interval}, nil
}

// seconds renders d the way the progress line reads: "20 seconds".
func seconds(d time.Duration) string {
	if d == time.Second {
		return "1 second"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + " seconds"
}
