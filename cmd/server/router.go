package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/isturunt/kst-api/internal/api"
	apimiddleware "github.com/isturunt/kst-api/internal/api/middleware"
)

// setupRouter builds the route tree with the application's handlers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		app.passwordVerifier,
		tokenLifetime,
		app.logger,
	)
	structureHandler := api.NewStructureHandler(app.structureService, app.logger)
	assessmentHandler := api.NewAssessmentHandler(app.assessmentService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Everything else requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/structures", func(r chi.Router) {
				r.Post("/", structureHandler.CreateStructure)
				r.Get("/", structureHandler.ListStructures)
				r.Get("/{id}", structureHandler.GetStructure)
				r.Delete("/{id}", structureHandler.DeleteStructure)
				r.Get("/{id}/analysis", structureHandler.GetAnalysis)
				r.Get("/{id}/reduction", structureHandler.GetReduction)
			})

			r.Route("/assessments", func(r chi.Router) {
				r.Post("/", assessmentHandler.StartAssessment)
				r.Get("/", assessmentHandler.ListAssessments)
				r.Get("/{id}", assessmentHandler.GetAssessment)
				r.Get("/{id}/next", assessmentHandler.NextQuestion)
				r.Post("/{id}/responses", assessmentHandler.SubmitResponse)
				r.Get("/{id}/responses", assessmentHandler.ListResponses)
				r.Post("/{id}/abandon", assessmentHandler.AbandonAssessment)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
