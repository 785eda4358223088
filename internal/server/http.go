package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-platform/internal/arena"
	"github.com/modelarena/arena-platform/internal/config"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewHTTPServer wires base routes (health, metrics) plus the arena API.
// wsHandler can be nil if the event stream is not yet initialized.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, redis *redis.Client, handlers *arena.HTTPHandlers, wsHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if handlers != nil {
		mux.HandleFunc("/v1/arena/questions/parse", handlers.ParseQuestions)
		mux.HandleFunc("/v1/arena/questions/migrate", handlers.MigrateQuestions)
		mux.HandleFunc("/v1/arena/questions/generate", handlers.GenerateQuestions)
		mux.HandleFunc("/v1/arena/rounds", handlers.RunRound)
		mux.HandleFunc("/v1/arena/standings", handlers.Standings)
		mux.HandleFunc("/v1/arena/runs/reset", handlers.ResetRun)
		mux.HandleFunc("/v1/arena/judge/pick", handlers.PickJudge)
		mux.HandleFunc("/v1/models", handlers.Models)
	}

	if wsHandler != nil {
		mux.HandleFunc("/ws/arena", wsHandler)
	} else {
		mux.HandleFunc("/ws/arena", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not yet integrated", http.StatusNotImplemented)
		})
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, redis *redis.Client) error {
	return redis.Ping(ctx).Err()
}
