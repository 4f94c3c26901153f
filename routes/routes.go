package routes

import (
	"net/http"

	_ "github.com/Dosada05/bracket-engine/docs" // swagger docs
	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// пишущие эндпоинты организатора
	WriteLimiter *middleware.RateLimiter
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/api/v1", func(r chi.Router) {
		// публичное чтение
		r.Get("/tournaments", h.Tournament.ListHandler)
		r.Get("/tournaments/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/tournaments/{tournamentID}/bracket", h.Bracket.GetHandler)
		r.Get("/tournaments/{tournamentID}/standings", h.Bracket.StandingsHandler)
		r.Get("/tournaments/{tournamentID}/standings/advancing", h.Bracket.AdvancingHandler)
		r.Get("/tournaments/{tournamentID}/matches", h.Match.ListHandler)
		r.Get("/matches/{matchID}", h.Match.GetByIDHandler)
		r.Get("/teams/{teamID}", h.Team.GetByIDHandler)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
			if opts.WriteLimiter != nil {
				r.Use(opts.WriteLimiter.Handler)
			}

			r.Post("/tournaments", h.Tournament.CreateHandler)
			r.Post("/tournaments/{tournamentID}/bracket", h.Bracket.GenerateHandler)
			r.Post("/matches/{matchID}/complete", h.Match.CompleteHandler)
			r.Post("/matches/{matchID}/cancel", h.Match.CancelHandler)
			r.Post("/teams", h.Team.CreateHandler)
		})
	})
}
