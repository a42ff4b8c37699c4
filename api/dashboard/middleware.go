package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	corelogger "github.com/kilianp07/occupancy/core/logger"
	"github.com/kilianp07/occupancy/infra/logger"
)

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := map[string]any{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": middleware.GetReqID(r.Context()),
				}
				if fl, ok := log.(corelogger.FieldLogger); ok {
					fl.Infow("http request", fields)
					return
				}
				log.Infof("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
