package api

import (
	"net/http"
	"time"

	"harf_sayi/internal/api/handler"
	"harf_sayi/internal/api/middleware"
	"harf_sayi/internal/app/service"
	"harf_sayi/internal/common/security"
	"harf_sayi/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/cors"
)

func NewRouter(
	cfg *config.Config,
	authService *service.AuthService,
	resultService *service.ResultService,
	tokens *security.TokenIssuer,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}).Handler)

	routes := func(base chi.Router) {
		handler.NewHealthHandler().RegisterRoutes(base)

		base.Route("/auth", handler.NewAuthHandler(authService).RegisterRoutes)
		base.Route("/test", handler.NewTestHandler(resultService).RegisterRoutes)

		adminHandler := handler.NewAdminHandler(authService, resultService)
		base.Route("/admin", func(admin chi.Router) {
			if cfg.RequireAdminAuth {
				admin.Use(jwtauth.Verifier(tokens.JWTAuth()))
				admin.Use(middleware.Authenticator)
				admin.Use(middleware.AdminOnly)
			}
			adminHandler.RegisterRoutes(admin)
		})
	}

	if cfg.BasePath != "" {
		r.Route(cfg.BasePath, routes)
	} else {
		routes(r)
	}

	return r
}
