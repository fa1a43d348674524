package httprunner

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/httpapi"
	"github.com/aalvaropc/numlab/internal/infra/httpclient"
	"github.com/aalvaropc/numlab/internal/infra/localrunner"
)

func f64(v float64) *float64 { return &v }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpapi.New(localrunner.New()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestRunner_SolvesRemotely(t *testing.T) {
	srv := newServer(t)
	r := New(srv.URL, httpclient.New(httpclient.DefaultConfig()))

	tol := 0.5
	p := domain.ProblemSpec{
		Name:   "sqrt2",
		Method: domain.MethodSecant,
		Root:   &domain.RootParams{F: "x^2 - 2", X0: f64(1), X1: f64(2)},
		Tuning: domain.Tuning{Tolerance: &tol},
	}
	s := domain.SolveSettings{Tolerance: 1e-10, MaxIterations: 50, ErrorType: domain.ErrorAbsolute}

	res, err := r.Solve(context.Background(), p, s)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if res.Error != nil {
		t.Fatalf("expected no run error, got %+v", res.Error)
	}
	if res.Settings != s {
		t.Fatalf("expected settings to be final, got %+v", res.Settings)
	}
	if res.Root == nil || math.Abs(*res.Root-math.Sqrt2) > 1e-9 {
		t.Fatalf("expected sqrt(2), got %v", res.Root)
	}
	if res.Trace.Len() == 0 {
		t.Fatalf("expected trace to travel back")
	}
}

func TestRunner_CarriesSolverFailure(t *testing.T) {
	srv := newServer(t)
	r := New(srv.URL, http.DefaultClient)

	p := domain.ProblemSpec{
		Name:   "flat",
		Method: domain.MethodNewton,
		Root:   &domain.RootParams{F: "x^2 + 1", X0: f64(0)},
	}

	res, err := r.Solve(context.Background(), p, domain.DefaultSettings())
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if res.Error == nil || res.Error.Kind != domain.KindDegenerate {
		t.Fatalf("expected numeric_degeneracy, got %+v", res.Error)
	}
	if res.Name != "flat" || res.Method != domain.MethodNewton {
		t.Fatalf("expected partial result, got %+v", res)
	}
}

func TestRunner_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := New(srv.URL, http.DefaultClient).Solve(context.Background(), domain.ProblemSpec{Name: "p"}, domain.DefaultSettings())
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if res.Error == nil || res.Error.Kind != domain.KindRemote {
		t.Fatalf("expected remote kind, got %+v", res.Error)
	}
	if !strings.Contains(res.Error.Message, "502") {
		t.Fatalf("expected status in message, got %q", res.Error.Message)
	}
}

func TestRunner_TruncatedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("a", 300)))
	}))
	defer srv.Close()

	res, err := New(srv.URL, http.DefaultClient, WithMaxBodyBytes(256)).Solve(context.Background(), domain.ProblemSpec{Name: "p"}, domain.DefaultSettings())
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if res.Error == nil || res.Error.Kind != domain.KindRemote {
		t.Fatalf("expected remote kind, got %+v", res.Error)
	}
}

func TestRunner_ClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	r := New(srv.URL, httpclient.New(cfg))

	res, err := r.Solve(context.Background(), domain.ProblemSpec{Name: "slow"}, domain.DefaultSettings())
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if res.Error == nil {
		t.Fatalf("expected a run error")
	}
	if res.Error.Kind != domain.KindTimeout {
		t.Fatalf("expected timeout kind, got=%s (msg=%s)", res.Error.Kind, res.Error.Message)
	}
}

func TestRunner_EmptyURL(t *testing.T) {
	_, err := New("", http.DefaultClient).Solve(context.Background(), domain.ProblemSpec{Name: "p"}, domain.DefaultSettings())
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
