package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter serves the status page for GET on every path. limiter may be nil.
func NewRouter(logger *logrus.Logger, status *StatusHandler, limiter *RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.SkipClean(true)
	r.Use(LoggingMiddleware(logger))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.PathPrefix("/").Methods(http.MethodGet).Handler(status)

	// Router middleware only wraps matched routes.
	r.MethodNotAllowedHandler = LoggingMiddleware(logger)(http.HandlerFunc(methodNotAllowed))
	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
