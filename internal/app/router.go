package app

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/sharanvarma0/student-submissions/internal/app/apiresp"
	"github.com/sharanvarma0/student-submissions/internal/app/observability"
	"github.com/sharanvarma0/student-submissions/internal/store"
	"github.com/sharanvarma0/student-submissions/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg Config, dbConn *sql.DB, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(dbConn)
	r.Use(collector.Middleware)

	grades := submission.ParseGradeScale(cfg.GradeScale)
	svc := submission.NewService(st, grades)
	handler := submission.NewHandler(svc)

	limiter := NewIPRateLimiter(cfg.WriteRateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Get("/metrics", collector.MetricsHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		apiresp.WriteOK(w, r, http.StatusOK, map[string]any{
			"name":        "Student Submissions API",
			"description": "A backend to track submissions for certain exams by students",
			"capabilities": []string{
				"Track user specific marks",
				"Track subject specific marks for a user",
				"Track the questions posed to the user",
				"Track results for each exam for the user",
			},
			"endpoints": map[string]string{
				"users":            "/api/v1/users",
				"exams":            "/api/v1/exams",
				"results":          "/api/v1/results",
				"submit_answers":   "/api/v1/submit-answers",
				"calculate_result": "/api/v1/calculate-result",
			},
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/users", handler.ListUsers)
		api.Get("/users/export", handler.ExportRoster)
		api.Get("/users/{userID}", handler.GetUser)
		api.Get("/exams", handler.ListExams)
		api.Get("/exams/{examName}", handler.GetExam)
		api.Get("/results", handler.ListResults)
		api.Get("/results/{userID}", handler.GetResult)

		api.Group(func(writes chi.Router) {
			writes.Use(RateLimitMiddleware(limiter))
			writes.Post("/users", handler.RegisterUser)
			writes.Post("/users/import", handler.ImportRoster)
			writes.Post("/exams", handler.CreateExam)
			writes.Post("/results", handler.ReplaceResults)
			writes.Post("/submit-answers", handler.SubmitAnswers)
			writes.Post("/calculate-result/{userID}/{examName}", handler.CalculateResult)
		})
	})

	return r
}
