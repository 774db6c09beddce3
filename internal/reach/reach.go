package reach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/mirrorkit/mirrorkit/internal/catalog"
	"github.com/mirrorkit/mirrorkit/internal/mirror"
)

// DefaultTimeout bounds one HEAD request.
const DefaultTimeout = 10 * time.Second

// FailureKind classifies a failed test.
type FailureKind string

const (
	Unreachable FailureKind = "unreachable"
	Timeout     FailureKind = "timeout"
	DNSFailure  FailureKind = "dns-failure"
	InvalidURL  FailureKind = "invalid-url"
)

// Result is the outcome of one test.
type Result struct {
	Target mirror.Target
	Preset mirror.Preset
	URL    string
	// OK is true when any HTTP response came back, whatever its status.
	OK      bool
	Latency time.Duration
	Status  int
	// Synthetic marks the no-mirror preset, which is never requested.
	Synthetic bool
	Failure   FailureKind
	Err       error
}

// Tester runs reachability tests against catalog presets.
type Tester struct {
	catalog   *catalog.Catalog
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
	inflight  map[mirror.Target]*atomic.Bool
}

// Option configures a Tester.
type Option func(*Tester)

// WithHTTPClient sets the HTTP client. Redirects are never followed
// regardless of the client's own policy.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tester) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Tester) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *Tester) { t.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tester) {
		if l != nil {
			t.logger = l
		}
	}
}

// New returns a Tester for the presets of c.
func New(c *catalog.Catalog, opts ...Option) *Tester {
	t := &Tester{
		catalog:  c,
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		logger:   slog.New(slog.DiscardHandler),
		inflight: make(map[mirror.Target]*atomic.Bool),
	}
	for _, target := range mirror.AllTargets() {
		t.inflight[target] = new(atomic.Bool)
	}
	for _, opt := range opts {
		opt(t)
	}
	client := *t.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	t.client = &client
	return t
}

// Test starts a test of preset name for target. The result is delivered
// once on the returned channel. Unknown names and a test already running
// for target are reported synchronously.
func (t *Tester) Test(ctx context.Context, target mirror.Target, name string) (<-chan Result, error) {
	slot, ok := t.inflight[target]
	if !ok {
		return nil, fmt.Errorf("%w %q", mirror.ErrUnknownTarget, target)
	}
	preset, err := t.catalog.Resolve(target, name)
	if err != nil {
		return nil, err
	}

	ch := make(chan Result, 1)
	if preset.IsOriginal() {
		ch <- Result{Target: target, Preset: preset, URL: preset.URL, OK: true, Synthetic: true}
		close(ch)
		return ch, nil
	}

	if !slot.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w for %s", mirror.ErrTestInFlight, target)
	}
	go func() {
		defer close(ch)
		r := t.head(ctx, target, preset)
		slot.Store(false)
		ch <- r
	}()
	return ch, nil
}

// Wait runs Test and blocks for its result.
func (t *Tester) Wait(ctx context.Context, target mirror.Target, name string) (Result, error) {
	ch, err := t.Test(ctx, target, name)
	if err != nil {
		return Result{}, err
	}
	return <-ch, nil
}

func (t *Tester) head(ctx context.Context, target mirror.Target, preset mirror.Preset) Result {
	r := Result{Target: target, Preset: preset, URL: preset.URL}

	u, err := url.Parse(preset.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("unsupported URL %q", preset.URL)
		}
		r.Failure, r.Err = InvalidURL, err
		return r
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		r.Failure, r.Err = InvalidURL, err
		return r
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	r.Latency = time.Since(start)
	if err != nil {
		r.Failure, r.Err = Classify(err), err
		t.logger.Debug("reachability test failed", "target", target, "url", preset.URL, "kind", r.Failure, "err", err)
		return r
	}
	resp.Body.Close()

	r.OK = true
	r.Status = resp.StatusCode
	t.logger.Debug("reachability test", "target", target, "url", preset.URL, "status", resp.StatusCode, "latency", r.Latency)
	return r
}

// Classify maps a request error onto a FailureKind.
func Classify(err error) FailureKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return DNSFailure
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return InvalidURL
	}
	return Unreachable
}
