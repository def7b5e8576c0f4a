package web

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/grade-journal/pkg/logger"
)

type middleware func(http.Handler) http.Handler

// wrap applies the page middleware; the first entry runs first.
func (s *Server) wrap(h http.Handler) http.Handler {
	mws := []middleware{withRequestID, s.recoverPanics, s.observe}
	if s.limiter != nil {
		mws = append([]middleware{s.throttle}, mws...)
	}
	if s.config.MaxBodyBytes > 0 {
		mws = append(mws, limitBody(s.config.MaxBodyBytes))
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type requestIDKey struct{}

// withRequestID reuses an incoming X-Request-ID or mints one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// observe puts a request-scoped logger into the context, then logs the
// request and records it by matched route.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		reqLog := s.logger.WithRequestID(requestID(r.Context()))
		r = r.WithContext(logger.WithContext(r.Context(), reqLog))
		next.ServeHTTP(sr, r)

		took := time.Since(began)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveHTTP(r.Method, route, sr.status, took)
		}
		reqLog.Debug("page request",
			logger.String("method", r.Method),
			logger.String("route", route),
			logger.Int("status", sr.status),
			logger.Latency(took),
			logger.String("client", clientIP(r)),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			s.logger.Error("handler panicked",
				logger.Any("panic", rec),
				logger.String("path", r.URL.Path),
				logger.RequestID(requestID(r.Context())),
				logger.String("stack", string(debug.Stack())),
			)
			writeJSONError(w, http.StatusInternalServerError, "internal", "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter.Allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "60")
		writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	})
}

func limitBody(limit int64) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "body_too_large", "form body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
