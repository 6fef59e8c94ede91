package ai

import (
	"context"

	"golang.org/x/time/rate"
)

type throttled struct {
	next    Embedder
	limiter *rate.Limiter
}

// Throttle limits the rate of Embed calls on next. A non-positive rps disables throttling.
func Throttle(next Embedder, rps float64, burst int) Embedder {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &throttled{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *throttled) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.Embed(ctx, texts)
}

func (t *throttled) Model() string {
	return t.next.Model()
}
