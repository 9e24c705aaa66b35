package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/HammerMeetNail/butterfly/internal/handlers"
	"github.com/HammerMeetNail/butterfly/internal/middleware"
)

type routerDeps struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Friends *handlers.FriendHandler
	Users   *handlers.UserHandler

	AuthMiddleware *middleware.AuthMiddleware
	AuthLimiter    *middleware.RateLimiter
	Security       *middleware.SecurityHeaders
	RequestLogger  *middleware.RequestLogger
	AllowedOrigins []string
	Metrics        http.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(d.RequestLogger.Apply)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(d.Security.Apply)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(chimw.NoCache)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
	})

	r.Get("/health", d.Health.Health)
	r.Get("/ready", d.Health.Ready)
	r.Get("/live", d.Health.Live)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(d.AuthLimiter.Middleware)
		r.Post("/register/", d.Auth.Register)
		r.Post("/login/", d.Auth.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.AuthMiddleware.Authenticate)
		r.Use(d.AuthMiddleware.RequireAuth)

		r.Post("/status/", d.Friends.CreateStatus)
		r.Patch("/status/{id}/", d.Friends.UpdateStatus)
		r.Get("/friends/", d.Friends.Friends)
		r.Get("/received/", d.Friends.Received)
		r.Get("/incoming/", d.Friends.Incoming)
		r.Get("/users/", d.Users.List)
		r.Post("/password/", d.Auth.SetPassword)
	})

	return r
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
