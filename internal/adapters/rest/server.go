package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	core_port "deal-finder-service/internal/core/port"
)

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string, serviceName string,
	scrapeHandler *ScrapeHandler,
	dealsHandler *DealsHandler,
	baseLogger core_port.LoggerPort) *Server {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		// How long a browser may cache the preflight response, in seconds.
		MaxAge: 300,
	}))

	r.Get("/health", NewHealthHandler(serviceName))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape/{source}", scrapeHandler.Scrape)
		r.Get("/deals", dealsHandler.GetDeals)
		r.Get("/deals/{dealID}", dealsHandler.GetDealByID)
	})

	// Unversioned aliases for the primary surface.
	r.Post("/scrape/{source}", scrapeHandler.Scrape)
	r.Get("/deals", dealsHandler.GetDeals)
	r.Get("/deals/{dealID}", dealsHandler.GetDealByID)

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + port,
			Handler: r,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
