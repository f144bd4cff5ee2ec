package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures client-side rate limiting for LLM providers.
type RateLimitConfig struct {
	// RequestsPerMinute limits the number of API calls per minute (0 = unlimited).
	RequestsPerMinute int
	// BurstSize allows a short burst above the steady rate.
	BurstSize int
}

// RateLimitProvider wraps a provider with a token-bucket request limiter.
// Each Answer call makes two LLM requests (embed + complete), so the bucket
// is shared across both operations.
type RateLimitProvider struct {
	inner  Provider
	config *RateLimitConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimitProvider creates a rate-limited provider wrapper.
func NewRateLimitProvider(inner Provider, config *RateLimitConfig) *RateLimitProvider {
	if config == nil {
		config = &RateLimitConfig{}
	}
	burst := config.BurstSize
	if burst <= 0 {
		burst = 3
	}
	return &RateLimitProvider{
		inner:      inner,
		config:     &RateLimitConfig{RequestsPerMinute: config.RequestsPerMinute, BurstSize: burst},
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Name returns the underlying provider name.
func (r *RateLimitProvider) Name() string {
	return r.inner.Name()
}

// Complete rate-limits and delegates to the inner provider.
func (r *RateLimitProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	if err := r.waitForCapacity(ctx); err != nil {
		return nil, err
	}
	return r.inner.Complete(ctx, prompt, opts)
}

// Embed rate-limits and delegates to the inner provider.
func (r *RateLimitProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.waitForCapacity(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}

// waitForCapacity blocks until the bucket yields a token or ctx is done.
func (r *RateLimitProvider) waitForCapacity(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.config.RequestsPerMinute <= 0 {
			r.mu.Unlock()
			return nil
		}

		r.refill()
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - r.tokens) / r.ratePerSecond() * float64(time.Second))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *RateLimitProvider) ratePerSecond() float64 {
	return float64(r.config.RequestsPerMinute) / 60.0
}

func (r *RateLimitProvider) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.ratePerSecond()
	if max := float64(r.config.BurstSize); r.tokens > max {
		r.tokens = max
	}
	r.lastRefill = now
}
