// Command main is the entry point for the Commons backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commons/internal/cache"
	"commons/internal/config"
	"commons/internal/database"
	"commons/internal/seed"
	"commons/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	if cfg.SeedOnBoot {
		if err := seed.Run(context.Background(), db); err != nil {
			log.Printf("seed failed: %v", err)
		}
	}

	srv := server.NewServerWithDeps(cfg, db, cache.New(cfg.RedisURL))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	return srv.Start()
}
