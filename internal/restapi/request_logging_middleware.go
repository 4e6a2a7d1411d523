package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bdeb.transit/board/internal/logging"
)

// RequestIDHeader carries the id tying a response to its log lines.
const RequestIDHeader = "X-Request-ID"

// statusRecorder remembers the status written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// NewRequestLoggingMiddleware tags each request with an id, stores a request
// scoped logger in the context and logs the outcome once served.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logging.Component(logger, "http_server")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			reqLogger := logger.With(slog.String("request_id", id))
			r = r.WithContext(logging.WithLogger(r.Context(), reqLogger))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logging.LogHTTPRequest(reqLogger, r.Method, r.URL.Path, rec.status,
				float64(time.Since(start).Microseconds())/1e3,
				slog.String("client", clientKey(r)),
				slog.String("user_agent", r.UserAgent()))
		})
	}
}
