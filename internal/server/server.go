// Package server exposes the prediction game over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/predmarket/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Server is the HTTP API for the prediction game.
type Server struct {
	httpServer *http.Server
}

// New builds the router and wires middleware and routes.
func New(cfg Config, e *engine.Engine) *Server {
	h := NewHandler(e)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestID)
	r.Use(logging)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", h.health)

	r.Post("/api/deposit", h.deposit)
	r.Get("/api/balance/{account}", h.balance)

	r.Post("/api/predictions", h.placePrediction)
	r.Get("/api/predictions/{id}", h.predictionDetails)
	r.Post("/api/predictions/{id}/settle", h.settlePrediction)
	r.Post("/api/settle-all", h.settleAll)

	r.Get("/api/accounts/{account}/predictions", h.userPredictions)
	r.Get("/api/accounts/{account}/stats", h.userStats)

	r.Get("/api/leaderboard", h.leaderboard)
	r.Get("/api/stats", h.gameStats)
	r.Get("/api/price/{symbol}", h.currentPrice)
	r.Get("/api/clock", h.currentInstant)
	r.Post("/api/clock/advance", h.advanceClock)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	slog.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
