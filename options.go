package schemaref

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/schemaref/document"
)

// DefaultCacheSize is the LRU capacity used unless WithCacheSize overrides it.
const DefaultCacheSize = 1024

const tracerName = "github.com/reoring/schemaref"

// Options configures a Registry and the loaders NewResolutionContext builds.
type Options struct {
	// CacheSize is the number of documents kept per registry. Zero or less
	// disables caching; every load then reaches the loader.
	CacheSize int

	// Logger receives load events. Default: slog.Default().
	Logger *slog.Logger

	// Tracer wraps each loader invocation in a span. Default: the global
	// OpenTelemetry tracer provider.
	Tracer trace.Tracer

	// Metrics records loads and cache behavior when non-nil.
	Metrics *Metrics

	// HTTPClient is used by the http/https loader. Default: http.DefaultClient.
	HTTPClient *http.Client

	// UserAgent is sent by the http/https loader when non-empty.
	UserAgent string

	// S3Client enables the s3 scheme when non-nil.
	S3Client S3GetObjectAPI

	// Decode bounds document decoding in the file, http and s3 loaders.
	Decode document.Options
}

// Option configures Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		CacheSize: DefaultCacheSize,
		Logger:    slog.Default(),
		Tracer:    otel.Tracer(tracerName),
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	return o
}

// WithCacheSize sets the LRU capacity; n <= 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *Options) { o.CacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithHTTPClient sets the client used for http and https.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

// WithUserAgent sets the User-Agent header for http and https.
func WithUserAgent(ua string) Option {
	return func(o *Options) { o.UserAgent = ua }
}

// WithS3Client registers an s3 loader backed by c.
func WithS3Client(c S3GetObjectAPI) Option {
	return func(o *Options) { o.S3Client = c }
}

// WithDecodeOptions sets the document decoding limits.
func WithDecodeOptions(d document.Options) Option {
	return func(o *Options) { o.Decode = d }
}
