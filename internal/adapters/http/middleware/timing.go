package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"clubdash/internal/adapters/http/perf"
)

// HeaderRequestID carries the request ID. An ID set by the proxy is kept.
const HeaderRequestID = "X-Request-ID"

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

const requestIDContextKey contextKey = "request_id"

// slowRequestThreshold reads CLUB_SLOW_REQUEST_MS once.
var slowRequestThreshold = sync.OnceValue(func() time.Duration {
	ms := DefaultSlowRequestMs
	if v := os.Getenv("CLUB_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
})

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// RequestIDFromContext returns the ID Timing assigned to the request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// requestID keeps a sane proxy-supplied ID, otherwise mints one.
func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}

// Timing returns middleware that assigns a request ID and logs how long each
// request took, tagged with the calling member. Health checks are excluded.
// Slow requests log at WARN, the rest at DEBUG. If collector is non-nil,
// entries are recorded for /api/admin/perf.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowRequestThreshold()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestID(r)
			w.Header().Set(HeaderRequestID, reqID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDContextKey, reqID))

			// Identify runs inside this middleware, so read the headers directly.
			var member string
			if id, ok := identityFromHeaders(r); ok {
				member = id.MemberID
			}

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				level := slog.LevelDebug
				msg := "request"
				if elapsed >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"member_id", member,
					"duration_ms", float64(elapsed.Microseconds())/1000.0,
				)

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + r.URL.Path,
						StatusCode: sw.status,
						DurationMs: float64(elapsed.Microseconds()) / 1000.0,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
