// Package httpclient is the HTTP transport used to reach a numlab server.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/aalvaropc/numlab/internal/buildinfo"
)

type Config struct {
	// Total timeout for a request, body included. A context deadline can
	// still cut it short.
	Timeout time.Duration

	DialTimeout     time.Duration
	KeepAlive       time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration

	MaxIdleConnsPerHost int

	// UserAgent defaults to "numlab/<version>".
	UserAgent string
}

func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
		ResponseHeader:      20 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 4,
	}
}

// New returns a client tuned for talking to a single solve server.
func New(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "numlab/" + buildinfo.Resolved()
	}

	return &http.Client{
		Transport: userAgent{next: tr, value: ua},
		Timeout:   cfg.Timeout,
	}
}

type userAgent struct {
	next  http.RoundTripper
	value string
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.value)
	return u.next.RoundTrip(r)
}
