package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vatshop/internal/config"
	"vatshop/internal/db"
	"vatshop/internal/logging"
	sessionrepo "vatshop/internal/repository/session"
	sessionsvc "vatshop/internal/service/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "Purge expired sessions once and exit")
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New("janitor", cfg.LogLevel, cfg.Development)
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

	sessions := sessionsvc.New(sessionrepo.NewPostgres(pool), cfg.SessionTTL, logger.Named("session"))
	purge := func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		n, err := sessions.PurgeExpired(runCtx)
		if err != nil {
			logger.Error("purge expired sessions", zap.Error(err))
			return
		}
		logger.Info("purged expired sessions", zap.Int64("deleted", n))
	}

	if *once {
		purge()
		return
	}

	cronLog := logging.CronLogger(logger.Named("cron"))
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(cfg.SessionPurgeSchedule, purge); err != nil {
		logger.Fatal("invalid purge schedule", zap.String("schedule", cfg.SessionPurgeSchedule), zap.Error(err))
	}
	c.Start()
	logger.Info("janitor started", zap.String("schedule", cfg.SessionPurgeSchedule))

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	<-c.Stop().Done()
}
