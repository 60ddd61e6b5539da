package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-agent-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	uiOrigin string,
	attendanceHandler AttendanceHandler,
	profileHandler ProfileHandler,
	settingsHandler SettingsHandler,
	sessionHandler SessionHandler,
	syncHandler SyncHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-agent"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{uiOrigin},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/session", func(r chi.Router) {
			r.Post("/unlock", sessionHandler.Unlock)

			// Requires an unlocked session
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
				r.Use(middleware.AuthRequired(jwtService))

				r.Post("/pin", sessionHandler.SetPin)
				r.Post("/sse-token", sessionHandler.SSEToken)
				r.Post("/logout", sessionHandler.Logout)
			})
		})

		// EventSource cannot set headers; the stream authenticates with a
		// short-lived query token instead.
		r.Get("/sync/events", syncHandler.Events)

		// Requires an unlocked session
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch", attendanceHandler.Punch)
				r.Get("/status", attendanceHandler.Status)
				r.Get("/history", attendanceHandler.History)
				r.Post("/missed-checkout", attendanceHandler.ResolveMissedCheckout)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Put("/", profileHandler.Update)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/{key}", settingsHandler.Get)
				r.Put("/{key}", settingsHandler.Put)
			})

			r.Route("/sync", func(r chi.Router) {
				r.Post("/", syncHandler.Trigger)
				r.Get("/state", syncHandler.State)
			})
		})
	})

	return r
}
