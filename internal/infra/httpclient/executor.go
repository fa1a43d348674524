package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

const defaultMaxBodyBytes = 4 << 20

// ResponseData captures a response body and how long the exchange took.
type ResponseData struct {
	Status    int
	BodyBytes []byte
	Truncated bool
	Duration  time.Duration
}

// Executor sends JSON requests and reads bounded responses.
type Executor struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

type ExecutorOption func(*Executor)

// WithTimeout sets the timeout applied to each request on top of ctx.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = timeout }
}

func WithClient(client *http.Client) ExecutorOption {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is kept.
func WithMaxBodyBytes(n int64) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxBodyBytes = n
		}
	}
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := DefaultConfig()
	e := &Executor{
		client:       New(cfg),
		timeout:      cfg.Timeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PostJSON posts payload to baseURL+path.
func (e *Executor) PostJSON(ctx context.Context, baseURL, path string, payload any) (ResponseData, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	req, err := BuildJSONRequest(ctx, http.MethodPost, baseURL, path, payload)
	if err != nil {
		return ResponseData{}, err
	}
	return e.Do(ctx, req)
}

// Do executes req and returns its status and bounded body.
func (e *Executor) Do(ctx context.Context, req *http.Request) (ResponseData, error) {
	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	resp, err := e.client.Do(req.WithContext(ctx))
	if err != nil {
		return ResponseData{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()

	body, truncated, err := readBounded(resp.Body, e.maxBodyBytes)
	duration := time.Since(start)
	if err != nil {
		return ResponseData{Status: resp.StatusCode, Duration: duration}, err
	}

	return ResponseData{
		Status:    resp.StatusCode,
		BodyBytes: body,
		Truncated: truncated,
		Duration:  duration,
	}, nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return ctx, func() {}
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	lim := io.LimitReader(r, maxBytes+1)
	b, err := io.ReadAll(lim)
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], true, nil
	}
	return b, false, nil
}
