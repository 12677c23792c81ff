package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"echofall/internal/cache"
	"echofall/internal/database"
	"echofall/internal/game"
	"echofall/internal/handlers"
	"echofall/internal/middleware"
)

func main() {
	logger := logrus.New()
	if os.Getenv("DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Redis and Postgres are both optional: the action log and match
	// history degrade to no-ops without them.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, action log disabled: %v", err)
	}
	if os.Getenv("PG_HOST") != "" {
		if err := database.Connect(logger); err != nil {
			logger.Warnf("Postgres unavailable, match history disabled: %v", err)
		}
	}

	srv := handlers.NewGameServer(game.DefaultConfig(), logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))
	mux.Handle("/health", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.HealthHandler,
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
