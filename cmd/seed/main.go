package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"pizzashack/internal/config"
	"pizzashack/internal/seed"
	"pizzashack/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}

	if err := seed.Apply(context.Background(), st, cfg.MenuPath); err != nil {
		logger.Fatalf("apply seed: %v", err)
	}
	logger.Printf("seed data written to %s", cfg.DataDir)
}
