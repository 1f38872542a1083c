package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/auth"
	"github.com/UkralStul/blog-posts-service/internal/posts"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the posts API. Reads are public; create, update and
// delete require a bearer token accepted by verifier.
func NewRouter(svc *posts.Service, verifier auth.Verifier, pinger Pinger, logger *slog.Logger) http.Handler {
	h := &Handler{posts: svc, pinger: pinger, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.health)

	router.Route("/api/posts", func(r chi.Router) {
		r.Get("/", h.listPosts)
		r.Get("/{id}", h.getPost)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier, logger))
			r.Post("/", h.createPost)
			r.Put("/{id}", h.updatePost)
			r.Delete("/{id}", h.deletePost)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
