// Package httprunner solves problems on a remote numlab server.
package httprunner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/httpapi"
	"github.com/aalvaropc/numlab/internal/infra/httpclient"
	"github.com/aalvaropc/numlab/internal/ports"
)

const defaultMaxBodyBytes = 4 << 20

type Runner struct {
	baseURL      string
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
}

type Option func(*Runner)

func WithMaxBodyBytes(n int64) Option {
	return func(r *Runner) { r.maxBodyBytes = n }
}

// WithTimeout bounds each round trip on top of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

func New(baseURL string, client *http.Client, opts ...Option) *Runner {
	r := &Runner{
		baseURL:      baseURL,
		client:       client,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.Solver = (*Runner)(nil)

// Solve posts p to the server with s as final settings. Transport failures
// and unexpected responses are reported on the result, except for a bad
// server URL which is returned as an error.
func (r *Runner) Solve(ctx context.Context, p domain.ProblemSpec, s domain.SolveSettings) (domain.ProblemResult, error) {
	result := domain.ProblemResult{
		Name:     p.Name,
		Method:   p.Method,
		Settings: s,
		Trace:    domain.Trace{Records: []domain.IterationRecord{}},
	}

	body := p
	body.Tuning = domain.Tuning{}

	exec := httpclient.NewExecutor(
		httpclient.WithClient(r.client),
		httpclient.WithTimeout(r.timeout),
		httpclient.WithMaxBodyBytes(r.maxBodyBytes),
	)
	resp, err := exec.PostJSON(ctx, r.baseURL, "/v1/solve", httpapi.SolveRequest{Problem: body, Settings: &s})
	result.LatencyMS = resp.Duration.Milliseconds()
	if err != nil {
		if domain.IsKind(err, domain.KindInvalidConfig) {
			return result, err
		}
		result.Error = domain.NewRunError(err)
		return result, nil
	}
	if resp.Truncated {
		result.Error = remote("response exceeds %d bytes", r.maxBodyBytes)
		return result, nil
	}

	switch resp.Status {
	case http.StatusOK:
		var out domain.ProblemResult
		if err := json.Unmarshal(resp.BodyBytes, &out); err != nil {
			result.Error = remote("decode result: %v", err)
			return result, nil
		}
		out.LatencyMS = result.LatencyMS
		return out, nil

	case http.StatusConflict:
		var er httpapi.ErrorResponse
		if err := json.Unmarshal(resp.BodyBytes, &er); err != nil {
			result.Error = remote("decode error response: %v", err)
			return result, nil
		}
		if er.Result != nil {
			latency := result.LatencyMS
			result = *er.Result
			result.LatencyMS = latency
		}
		result.Error = &domain.RunError{Kind: er.Kind, Message: er.Detail}
		return result, nil
	}

	result.Error = remote("server returned %d: %s", resp.Status, snippet(resp.BodyBytes))
	return result, nil
}

func remote(format string, args ...any) *domain.RunError {
	return &domain.RunError{Kind: domain.KindRemote, Message: fmt.Sprintf(format, args...)}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
