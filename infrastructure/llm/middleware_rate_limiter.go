package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedModel paces requests with a token bucket.
type rateLimitedModel struct {
	next    CoreModel
	limiter *rate.Limiter
}

// RateLimitMiddleware paces requests to limit per second with the given
// burst allowance. The limiter is shared by every client wrapped with the
// returned middleware, so one limiter can govern a whole provider.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next CoreModel) CoreModel {
		return &rateLimitedModel{next: next, limiter: limiter}
	}
}

// DoRequest blocks until a token is available or the context expires.
func (r *rateLimitedModel) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.next.DoRequest(ctx, prompt, opts)
}

func (r *rateLimitedModel) GetModel() string  { return r.next.GetModel() }
func (r *rateLimitedModel) SetModel(m string) { r.next.SetModel(m) }
