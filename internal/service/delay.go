package service

import (
	"context"
	"time"

	"github.com/cinewave/cinewave/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// Delay suspends the caller for d. It returns early with the context's error
// when ctx is done first.
type Delay func(ctx context.Context, d time.Duration) error

// SleepContext is the production Delay.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay returns immediately. Tests use it to skip simulated latency.
func NoDelay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
