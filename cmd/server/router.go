package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/examprep-api/internal/api"
	apiMiddleware "github.com/phrazzld/examprep-api/internal/api/middleware"
)

// requestTimeout bounds every request, including retries inside the services.
const requestTimeout = 30 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if len(app.config.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	catalogHandler := api.NewCatalogHandler(app.catalogService, app.logger)
	attemptHandler := api.NewAttemptHandler(app.attemptService, app.logger)
	feedbackHandler := api.NewFeedbackHandler(app.feedbackService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Catalog
		r.Get("/packs", catalogHandler.ListPackCards)
		r.Get("/packs/{packID}/exams", catalogHandler.GetExamsForPack)
		r.Get("/exams/{examID}/questions", catalogHandler.ListQuestions)

		// Attempt ledger
		r.Post("/exams/{examID}/attempts", attemptHandler.CreateAttempt)
		r.Get("/exams/{examID}/attempts", attemptHandler.ListAttempts)
		r.Get("/attempts/{attemptID}", attemptHandler.GetAttempt)
		r.Put("/attempts/{attemptID}/response", attemptHandler.RecordResponse)
		r.Post("/attempts/{attemptID}/status", attemptHandler.AdvanceStatus)
		r.Delete("/attempts/{attemptID}", attemptHandler.DeleteAttempt)

		r.Get("/progress", progressHandler.GetProgress)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/packs", catalogHandler.CreatePack)
			r.Post("/packs/{packID}/exams", catalogHandler.CreatePackExam)
			r.Post("/exams", catalogHandler.CreateExam)
			r.Post("/exams/{examID}/questions", catalogHandler.CreateQuestion)
			r.Post("/feedback", feedbackHandler.CreateFeedback)

			r.Post("/attempts/{attemptID}/status", attemptHandler.GradeStatus)
			r.Post("/attempts/{attemptID}/feedback", feedbackHandler.AttachFeedback)

			r.Delete("/packs/{id}", catalogHandler.DeletePack)
			r.Delete("/exams/{id}", catalogHandler.DeleteExam)
			r.Delete("/questions/{id}", catalogHandler.DeleteQuestion)
			r.Delete("/feedback/{id}", feedbackHandler.DeleteFeedback)
			r.Delete("/attempts/{id}", attemptHandler.AdminDeleteAttempt)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
