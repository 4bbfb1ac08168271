package llm

import (
	"context"
	"time"
)

// timeoutModel enforces a per-request deadline around the wrapped model.
type timeoutModel struct {
	next    CoreModel
	timeout time.Duration
}

// TimeoutMiddleware bounds every request with its own deadline, independent
// of whatever deadline the caller's context carries.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreModel) CoreModel {
		return &timeoutModel{next: next, timeout: timeout}
	}
}

func (t *timeoutModel) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.DoRequest(ctx, prompt, opts)
}

func (t *timeoutModel) GetModel() string  { return t.next.GetModel() }
func (t *timeoutModel) SetModel(m string) { t.next.SetModel(m) }
