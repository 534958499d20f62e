// Package telemetry wraps sentry-go for the pipeline, index worker and API.
// Every helper is safe to call when Sentry was never initialized.
package telemetry

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	serverName   = "lexcorpus"
	flushTimeout = 5 * time.Second
)

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
	Release          string
}

// Init starts Sentry and returns a flush function. An empty DSN yields a
// no-op; a rejected DSN is logged and also yields a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate <= 0 || cfg.TracesSampleRate > 1 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
		TracesSampler:    sampler(cfg.TracesSampleRate),
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without tracing): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampler drops health checks, keeps children consistent with their parent
// and samples everything else at rate.
func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if ctx.Span == nil {
			return rate
		}
		if strings.HasSuffix(ctx.Span.Name, " /health") {
			return 0
		}
		if ctx.Parent != nil {
			if ctx.Parent.Sampled.Bool() {
				return 1
			}
			return 0
		}
		return rate
	}
}

// SpanAttributes are the tags lexcorpus puts on its spans.
type SpanAttributes struct {
	Source    string
	Mode      string
	JobID     string
	Operation string
}

func (a SpanAttributes) apply(span *sentry.Span) {
	for key, value := range map[string]string{
		"source": a.Source,
		"mode":   a.Mode,
		"job_id": a.JobID,
	} {
		if value != "" {
			span.SetTag(key, value)
		}
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
}

// Span is a nil-safe handle on a sentry span.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a child of the span in ctx, or a new transaction when ctx
// carries none (CLI runs and the index worker).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}
	attrs.apply(span)
	return span.Context(), &Span{inner: span}
}

// End finishes the span.
func (s *Span) End() {
	if s != nil && s.inner != nil {
		s.inner.Finish()
	}
}

// SetData attaches a value to the span, such as a record count.
func (s *Span) SetData(key string, value any) {
	if s != nil && s.inner != nil {
		s.inner.SetData(key, value)
	}
}

// SetError marks the span failed and reports err once.
func (s *Span) SetError(err error) {
	if s == nil || s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	s.inner.SetData("error", err.Error())
	CaptureError(s.inner.Context(), err)
}

// CaptureError reports err on the hub carried by ctx, falling back to the
// global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records a pipeline step on the current scope.
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}
