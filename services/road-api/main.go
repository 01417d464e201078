package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := LoadConfig()
	logger.Info("Startuji Road API", "port", cfg.HTTPPort)

	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k DB", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.ValkeyAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Kritická chyba: Nelze se připojit k Valkey", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	api := NewAPIHandler(NewService(dbPool, rdb), logger)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: CorsMiddleware(mux),
	}

	logger.Info("HTTP server naslouchá", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Server spadl", "error", err)
		os.Exit(1)
	}
}
