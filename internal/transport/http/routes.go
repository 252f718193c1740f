package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"validation-proxy-service/internal/telemetry"
)

func Routes(h *Handler, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// after RequestID so the id is in the context
	r.Use(RequestLogger(log))

	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	r.Post("/sort", h.Sort)

	r.Route("/validate", func(r chi.Router) {
		r.Post("/start", h.StartValidation)
		r.Get("/result/{jobId}", h.GetValidationResult)
	})

	r.Mount("/metrics", telemetry.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
