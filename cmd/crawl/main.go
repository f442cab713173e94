package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bgg-catalog/internal/bgg"
	"bgg-catalog/internal/config"
	"bgg-catalog/internal/db"
	"bgg-catalog/internal/ingest"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warnf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		logger.Fatalf("database connection failed: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		logger.Fatalf("database handle unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)

	if err := db.Migrate(conn); err != nil {
		logger.Fatalf("database migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bgg.NewClient(cfg.BGGBaseURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second, cfg.UserAgent)
	crawler := ingest.NewCrawler(conn, client, logger, cfg.CrawlWorkers)

	summary, err := crawler.Run(ctx, cfg.CrawlPages)
	if err != nil {
		logger.Fatalf("crawl run failed: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"batch_id":   summary.BatchID,
		"candidates": summary.Candidates,
		"created":    summary.Created,
		"updated":    summary.Updated,
		"failed":     summary.Failed,
		"duration":   summary.CompletedAt.Sub(summary.StartedAt).String(),
	}).Info("crawl summary")

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
