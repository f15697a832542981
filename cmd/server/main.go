package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/wildlens/gateway/internal/config"
	"github.com/wildlens/gateway/internal/engine"
	"github.com/wildlens/gateway/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: Could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	eng, err := engine.NewEngine(cfg.Engine)
	if err != nil {
		log.Fatalf("Failed to initialize prediction engine: %v", err)
	}

	srv := server.NewServer(cfg, eng)
	router := srv.SetupRouter()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Engine provider: %s, model: %s, geofence: %v", cfg.Engine.Provider, cfg.Engine.Model, cfg.Engine.Geofence)
	log.Printf("Extra fields: %v", cfg.Pipeline.ExtraFields)
	log.Printf("Workers: %d, timeout: %ds, backlog: %d", cfg.Server.Workers, cfg.Server.TimeoutSeconds, cfg.Server.Backlog)
	log.Printf("Starting server on %s", addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
