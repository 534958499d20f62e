package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware runs each request inside a Sentry transaction named after
// its chi route. Panics are reported and re-raised; 5xx responses are
// captured as messages. Without sentry.Init it only costs the bookkeeping.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
			options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
		}

		transaction := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path, options...)
		defer transaction.Finish()

		r = r.WithContext(sentry.SetHubOnContext(transaction.Context(), hub))

		scope := hub.Scope()
		scope.SetRequest(r)
		if requestID := GetRequestID(r.Context()); requestID != "" {
			scope.SetTag("request_id", requestID)
			transaction.SetTag("request_id", requestID)
		}

		var principal string
		r = withPrincipalSlot(r, &principal)

		defer func() {
			if err := recover(); err != nil {
				transaction.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		// the route is only known once chi has matched it
		if route := routePattern(r); route != r.URL.Path {
			transaction.Name = r.Method + " " + route
			transaction.Source = sentry.SourceRoute
		}

		status := rec.statusCode()
		transaction.Status = httpStatusToSpanStatus(status)
		transaction.SetData("http.response.status_code", status)

		if principal != "" {
			scope.SetTag("principal", principal)
			transaction.SetTag("principal", principal)
		}

		if status >= http.StatusInternalServerError {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d %s: %s", status, transaction.Name, http.StatusText(status)))
		}
	})
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	switch {
	case status < 400:
		return sentry.SpanStatusOK
	case status == http.StatusUnauthorized:
		return sentry.SpanStatusUnauthenticated
	case status == http.StatusNotFound:
		return sentry.SpanStatusNotFound
	case status == http.StatusRequestEntityTooLarge:
		return sentry.SpanStatusFailedPrecondition
	case status == http.StatusTooManyRequests:
		return sentry.SpanStatusResourceExhausted
	case status < 500:
		return sentry.SpanStatusInvalidArgument
	case status == http.StatusNotImplemented:
		return sentry.SpanStatusUnimplemented
	case status == http.StatusServiceUnavailable:
		return sentry.SpanStatusUnavailable
	case status == http.StatusGatewayTimeout:
		return sentry.SpanStatusDeadlineExceeded
	default:
		return sentry.SpanStatusInternalError
	}
}
