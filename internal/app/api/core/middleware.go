package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

// RequestObserver receives the outcome of every handled request.
type RequestObserver interface {
	ObserveServerRequest(path string, status int, duration time.Duration)
}

// writerWrapper tracks the status code and the number of body bytes written.
// If WriteHeader is never called, http.StatusOK is assumed.
type writerWrapper struct {
	http.ResponseWriter

	StatusCode   int
	WrittenBytes int64
}

func newWriterWrapper(w http.ResponseWriter) *writerWrapper {
	return &writerWrapper{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (w *writerWrapper) WriteHeader(code int) {
	w.StatusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *writerWrapper) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	w.WrittenBytes += int64(n)
	return n, err
}

// recoveryMiddleware turns panics into a 500 error envelope.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				slog.Error("panic while handling request", "path", r.URL.Path, "error", err,
					"stack", string(debug.Stack()))
				respond.Errors(w, http.StatusInternalServerError,
					domain.FieldError{Message: "Internal Server Error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// tracingMiddleware re-uses the request id sent by the client or generates a new one.
// The id is echoed in the response header and stored in the request context.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := r.Header.Get(RequestIDKey)
		if reqId == "" {
			reqId = uuid.NewString()
		}

		w.Header().Set(RequestIDKey, reqId)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqId)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestId returns the id assigned by the tracing middleware.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

type loggingMiddleware struct {
	logRequests bool
	observer    RequestObserver
}

func (m loggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newWriterWrapper(w)
		start := time.Now()
		defer func() {
			duration := time.Since(start)
			if m.observer != nil {
				m.observer.ObserveServerRequest(r.URL.Path, ww.StatusCode, duration)
			}
			if m.logRequests {
				slog.Debug(fmt.Sprintf("%s %s", r.Method, r.URL.Path),
					"status", ww.StatusCode,
					"length", ww.WrittenBytes,
					"duration", duration.String(),
					"rid", RequestId(r.Context()))
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
