// Package http
package http

import (
	"net/http"

	"finmon/internal/adapters/http/middleware"
	"finmon/internal/config"
)

type RouterDeps struct {
	Auth   *AuthHandler
	Advice *AdviceHandler
	Health *HealthHandler

	Verifier middleware.TokenVerifier
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.CORS(cfg))

	sessionStack := middleware.New()
	sessionStack.Use(middleware.Session(deps.Verifier))

	mux.HandleFunc("GET /health", deps.Health.Check)

	mux.HandleFunc("POST /auth/register", deps.Auth.Register)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("POST /auth/logout", deps.Auth.Logout)

	mux.Handle("GET /auth/me", sessionStack.Then(http.HandlerFunc(deps.Auth.Me)))
	mux.Handle("PUT /auth/update", sessionStack.Then(http.HandlerFunc(deps.Auth.Update)))

	mux.Handle("POST /api/advice", sessionStack.Then(http.HandlerFunc(deps.Advice.Advise)))

	return globalMw.Apply(mux)
}
