// Package httpclient builds the outbound HTTP clients used to reach the identity
// provider and the protocol engine.
package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

// Options configures an upstream client.
type Options struct {
	// Name labels the client in logs and outbound metrics.
	Name string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryPeriod is the constant wait between attempts.
	RetryPeriod time.Duration
	// Timeout bounds a single attempt. Zero disables it, which streaming clients need.
	Timeout time.Duration
	// HostOverride replaces the Host header of every request when not empty.
	HostOverride string
	// MeterProvider receives outbound request metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
	Logger        *slog.Logger
}

// New returns a retrying client. Retries follow the default policy (connection
// errors and 5xx); once exhausted, the last response is returned unchanged so the
// caller can classify its status.
func New(opts Options) *retryablehttp.Client {
	var transport http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	if opts.HostOverride != "" {
		transport = &hostOverrideTransport{host: opts.HostOverride, next: transport}
	}

	otelOpts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return opts.Name + " " + r.Method
		}),
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: otelhttp.NewTransport(transport, otelOpts...),
	}
	client.RetryMax = opts.MaxRetries
	client.RetryWaitMin = opts.RetryPeriod
	client.RetryWaitMax = opts.RetryPeriod
	client.Backoff = constantBackoff
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Logger != nil {
		client.Logger = opts.Logger.With(slog.String("upstream", opts.Name))
	} else {
		client.Logger = nil
	}
	return client
}

func constantBackoff(minWait, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return minWait
}

// hostOverrideTransport sets the Host header on every request.
type hostOverrideTransport struct {
	host string
	next http.RoundTripper
}

func (t *hostOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Host = t.host
	return t.next.RoundTrip(clone)
}
