package main

import (
	"context"
	"fmt"
	"os"

	"vatshop/internal/config"
	"vatshop/internal/db"
	"vatshop/internal/logging"
	productrepo "vatshop/internal/repository/product"
	"vatshop/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("seed", cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, productrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied", zap.Int("products", n))
}
