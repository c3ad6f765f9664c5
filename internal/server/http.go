package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lernquiz/backend/internal/config"
	"github.com/lernquiz/backend/internal/quiz"
)

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, quizHandlers *quiz.HTTPHandlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ready":true}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /upload-and-generate", quizHandlers.UploadAndGenerate)
	mux.HandleFunc("GET /quiz/{sessionID}", quizHandlers.GetQuiz)
	mux.HandleFunc("GET /quiz/{sessionID}/status", quizHandlers.GetStatus)
	mux.HandleFunc("POST /quiz/{sessionID}/answer", quizHandlers.SubmitAnswer)
	mux.HandleFunc("POST /quiz/{sessionID}/progress", quizHandlers.UpdateProgress)
	mux.HandleFunc("GET /review-pool/stats", quizHandlers.ReviewPoolStats)
	mux.HandleFunc("GET /ws/quiz/{sessionID}", quizHandlers.HandleWebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return redisClient.Ping(ctx).Err()
}
