package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/wordpath/wordpath-api/internal/api/middleware"
)

// RouterDeps bundles the handlers and middleware the router mounts.
type RouterDeps struct {
	Auth        *AuthHandler
	Collections *CollectionHandler
	Study       *StudyHandler
	Exams       *ExamHandler
	Messages    *MessageHandler
	AuthMW      *middleware.AuthMiddleware
}

// NewRouter builds the service's HTTP routing tree.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints.
		r.Post("/auth/register", deps.Auth.Register)
		r.Post("/auth/login", deps.Auth.Login)

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW.Authenticate)

			r.Post("/collections", deps.Collections.Create)
			r.Get("/collections", deps.Collections.List)
			r.Get("/collections/{collectionID}", deps.Collections.Get)
			r.Post("/collections/{collectionID}/words", deps.Collections.ImportWords)

			r.Get("/collections/{collectionID}/study", deps.Study.BuildSession)
			r.Post("/study/outcomes", deps.Study.SubmitOutcome)

			r.Get("/collections/{collectionID}/exams/availability", deps.Exams.Availability)
			r.Post("/collections/{collectionID}/exams", deps.Exams.Generate)
			r.Get("/exams", deps.Exams.List)
			r.Get("/exams/{examID}", deps.Exams.Get)
			r.Post("/exams/{examID}/submission", deps.Exams.Submit)
			r.Delete("/exams/{examID}", deps.Exams.Delete)

			r.Get("/messages", deps.Messages.List)
			r.Post("/messages/{messageID}/read", deps.Messages.MarkRead)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
