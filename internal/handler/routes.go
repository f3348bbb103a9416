package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"postboard/internal/middleware"
)

// NewRouter registers every route. Everything except /session and /health
// sits behind the auth gate.
func NewRouter(h *Handlers, limiter middleware.Limiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	login := middleware.Pipeline(middleware.RateLimit(limiter, h.Cfg.LoginRateLimit, h.Cfg.LoginRateWindow))
	r.Handle("/session", login(http.HandlerFunc(h.Login))).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(mux.MiddlewareFunc(middleware.Pipeline(
		middleware.AuthGate(h.Tokens, h.Cfg.AuthHeader, h.Logger),
	)))

	protected.HandleFunc("/identity", h.GetCurrentUser).Methods(http.MethodGet)

	protected.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	protected.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	protected.HandleFunc("/posts/{id}/like", h.LikePost).Methods(http.MethodPut)
	protected.HandleFunc("/posts/{id}/unlike", h.UnlikePost).Methods(http.MethodPut)
	protected.HandleFunc("/posts/{id}/comments", h.AddComment).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id}/comments/{commentId}", h.DeleteComment).Methods(http.MethodDelete)

	return middleware.Chain(r,
		middleware.LoggingMiddleware(h.Logger),
		middleware.CORSMiddleware(h.Cfg.AuthHeader),
	)
}
