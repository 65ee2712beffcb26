package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nsai-uio/IMF-AITool/internal/api/server/handlers"
)

func (s *Server) registerRoutes(handler *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", handler.IndexHandler)
	r.Get("/healthz", handler.HealthHandler)
	r.Post("/upload", handler.UploadHandler)
	r.Get("/status/{taskID}", handler.StatusHandler)
	r.Post("/chat", handler.ChatHandler)
	r.Get("/get_processed_data/{filename}", handler.ProcessedDataHandler)

	return r
}

// logRequests sends one line per request to the tagged logger; chi's own
// Logger middleware would print over the terminal UI.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infof("%s %s %d %dB in %s (req %s)", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}
