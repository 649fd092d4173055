package alarm

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// actorHeader is set by the command-line client to username@hostname.
const actorHeader = "X-Alarm-Clock-Actor"

// requestLogger names the request logger, tags it with the request id and
// logs one line per finished request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithName(r.Context(), "http")
		ctx = logger.WithKV(ctx, "request_id", middleware.GetReqID(ctx))

		if actor := r.Header.Get(actorHeader); actor != "" {
			ctx = logger.WithKV(ctx, "actor", actor)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.DebugKV(ctx, "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started))
	})
}
