package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// User-Agent components.
// Format: museumstyle/1.0.0 (https://github.com/nao1215/museumstyle) Go-HTTP-Client/go1.25.0
const (
	userAgentName    = "museumstyle"
	userAgentContact = "https://github.com/nao1215/museumstyle"
	userAgentLibrary = "Go-HTTP-Client"
)

// BuildUserAgent returns the policy compliant User-Agent for appVersion.
func BuildUserAgent(appVersion string) string {
	if appVersion == "" {
		appVersion = "unknown"
	}
	return fmt.Sprintf("%s/%s (%s) %s/%s",
		userAgentName, appVersion, userAgentContact, userAgentLibrary, runtime.Version())
}

// Option configures the client built by New.
type Option func(*options)

type options struct {
	userAgent    string
	rateLimit    float64
	burst        int
	proxyAddress string
	timeout      time.Duration
	transport    http.RoundTripper
}

// WithUserAgent overrides the default User-Agent.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		o.burst = burst
	}
}

// WithProxy routes connections through the SOCKS5 proxy at address
// ("host:port").
func WithProxy(address string) Option {
	return func(o *options) {
		o.proxyAddress = address
	}
}

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithTransport replaces the base transport. Proxy settings are ignored
// when a transport is given.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New builds an HTTP client from opts.
func New(opts ...Option) (*http.Client, error) {
	o := options{userAgent: BuildUserAgent("")}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		transport, err := newTransport(o.proxyAddress)
		if err != nil {
			return nil, err
		}
		base = transport
	}

	rt := &policyTransport{
		next:      base,
		userAgent: o.userAgent,
	}
	if o.rateLimit > 0 {
		burst := o.burst
		if burst < 1 {
			burst = 1
		}
		rt.limiter = rate.NewLimiter(rate.Limit(o.rateLimit), burst)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   o.timeout,
	}, nil
}

// newTransport creates the base transport, dialing through a SOCKS5 proxy
// when proxyAddress is set.
func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyAddress == "" {
		return transport, nil
	}

	if !isValidProxyAddress(proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, proxyAddress)
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in
// 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || strings.TrimSpace(host) == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// policyTransport sets the User-Agent header and waits on the limiter before
// each request.
type policyTransport struct {
	next      http.RoundTripper
	userAgent string
	limiter   *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *policyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}
